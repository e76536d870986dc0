package index

import "sort"

// postingList is the mutable, append-only posting list kept by Accumulator
// while a flush epoch is open.
type postingList struct {
	docs  []int32
	freqs []int32
}

func (p *postingList) docFreq() int { return len(p.docs) }

func (p *postingList) totalTermFreq() int64 {
	var sum int64
	for _, f := range p.freqs {
		sum += int64(f)
	}
	return sum
}

type fieldState struct {
	terms       map[string]*postingList
	sortedCache []string // invalidated (nil'd) whenever a new term is added
	lastDoc     int32    // last doc observed for this field; -1 before any
	docCount    int
	sumTotalTermFreq int64
	sumDocFreq       int64
}

func newFieldState() *fieldState {
	return &fieldState{terms: make(map[string]*postingList), lastDoc: -1}
}

// Accumulator is the in-memory term accumulator (FreqProx): during a flush
// epoch it accepts (field, term, docID) observations and, at flush time,
// exposes a pull iterator over fields in declaration order, terms per field
// in lexicographic order, and postings per term in docID order.
//
// Accumulator exclusively owns its posting arrays; pull iterators over it
// (FreqProxFields and friends) borrow non-owning, read-only views and must
// not outlive the flush epoch.
type Accumulator struct {
	fieldOrder []string
	fields     map[string]*fieldState
}

// NewAccumulator returns an empty accumulator for a new flush epoch.
func NewAccumulator() *Accumulator {
	return &Accumulator{fields: make(map[string]*fieldState)}
}

// Record appends an observation of term occurring in docID within field.
// If (term, docID) matches the most recent observation for that term, the
// existing posting's freq is incremented; otherwise a new (docID, 1)
// posting is appended. docID must be monotonically non-decreasing across
// calls for the same term within a field (the core does not sort after the
// fact).
func (a *Accumulator) Record(field, term string, docID int32) {
	fs, ok := a.fields[field]
	if !ok {
		fs = newFieldState()
		a.fields[field] = fs
		a.fieldOrder = append(a.fieldOrder, field)
	}

	pl, ok := fs.terms[term]
	if !ok {
		pl = &postingList{}
		fs.terms[term] = pl
		fs.sortedCache = nil
	}

	if n := len(pl.docs); n > 0 && pl.docs[n-1] == docID {
		pl.freqs[n-1]++
	} else {
		pl.docs = append(pl.docs, docID)
		pl.freqs = append(pl.freqs, 1)
		fs.sumDocFreq++
	}
	fs.sumTotalTermFreq++

	if fs.lastDoc != docID {
		fs.docCount++
		fs.lastDoc = docID
	}
}

// TermsForField returns the field's terms in lexicographic byte order,
// computed (and cached) on demand.
func (a *Accumulator) TermsForField(field string) []string {
	fs, ok := a.fields[field]
	if !ok {
		return nil
	}
	if fs.sortedCache == nil {
		terms := make([]string, 0, len(fs.terms))
		for t := range fs.terms {
			terms = append(terms, t)
		}
		sort.Strings(terms)
		fs.sortedCache = terms
	}
	return fs.sortedCache
}

// PostingList returns the read-only (docID, freq) sequence for (field,
// term), in the order postings were recorded (strictly increasing docID).
// The second return is false if the field or term is absent.
func (a *Accumulator) PostingList(field, term string) (docs, freqs []int32, ok bool) {
	fs, ok := a.fields[field]
	if !ok {
		return nil, nil, false
	}
	pl, ok := fs.terms[term]
	if !ok {
		return nil, nil, false
	}
	return pl.docs, pl.freqs, true
}

// FieldStatsFor returns the incremental statistics for field.
func (a *Accumulator) FieldStatsFor(field string) FieldStats {
	fs, ok := a.fields[field]
	if !ok {
		return FieldStats{}
	}
	return FieldStats{
		Size:             int64(len(fs.terms)),
		DocCount:         fs.docCount,
		SumTotalTermFreq: fs.sumTotalTermFreq,
		SumDocFreq:       fs.sumDocFreq,
	}
}

// Fields returns field names in declaration order.
func (a *Accumulator) Fields() []string {
	out := make([]string, len(a.fieldOrder))
	copy(out, a.fieldOrder)
	return out
}

// HasField reports whether field has been observed this epoch.
func (a *Accumulator) HasField(field string) bool {
	_, ok := a.fields[field]
	return ok
}
