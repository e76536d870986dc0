package index

// FieldInfo is the per-field metadata recorded at schema/field
// configuration time (an external collaborator the core only reads:
// whether a field is indexed, and under what name).
type FieldInfo struct {
	Name    string
	Number  int
	Indexed bool
}

// FieldInfos is an ordered collection of FieldInfo, preserving declaration
// order.
type FieldInfos struct {
	byName   map[string]*FieldInfo
	ordered  []*FieldInfo
}

// NewFieldInfos returns an empty FieldInfos.
func NewFieldInfos() *FieldInfos {
	return &FieldInfos{byName: make(map[string]*FieldInfo)}
}

// Add registers a field, assigning it the next ordinal. Re-adding an
// existing name is a no-op.
func (fi *FieldInfos) Add(name string, indexed bool) *FieldInfo {
	if existing, ok := fi.byName[name]; ok {
		return existing
	}
	info := &FieldInfo{Name: name, Number: len(fi.ordered), Indexed: indexed}
	fi.byName[name] = info
	fi.ordered = append(fi.ordered, info)
	return info
}

// FieldInfo looks up a field by name.
func (fi *FieldInfos) FieldInfo(name string) (*FieldInfo, bool) {
	info, ok := fi.byName[name]
	return info, ok
}

// Names returns field names in declaration order.
func (fi *FieldInfos) Names() []string {
	names := make([]string, len(fi.ordered))
	for i, info := range fi.ordered {
		names[i] = info.Name
	}
	return names
}
