package index

// SeekStatus is the outcome of TermsEnum.SeekCeil.
type SeekStatus int

const (
	// SeekStatusEnd means no term >= the target exists; the cursor moves
	// to the End state.
	SeekStatusEnd SeekStatus = iota
	// SeekStatusFound means a term exactly equal to the target was found.
	SeekStatusFound
	// SeekStatusNotFound means the cursor moved to the first term greater
	// than the target.
	SeekStatusNotFound
)

// FieldStats summarizes a field's term/posting statistics.
type FieldStats struct {
	Size            int64
	DocCount        int
	SumTotalTermFreq int64
	SumDocFreq      int64
}

// Fields enumerates indexed fields and exposes each field's Terms.
type Fields interface {
	// FieldNames returns field names in declaration order.
	FieldNames() []string
	// Terms returns the Terms for field, or nil if the field is absent or
	// not indexed.
	Terms(field string) (Terms, error)
}

// Terms exposes one field's term dictionary.
type Terms interface {
	// Iterator returns a fresh TermsEnum positioned BeforeFirst.
	Iterator() (TermsEnum, error)
	// Stats returns the field's aggregate statistics.
	Stats() FieldStats
}

// TermsEnum is a lexicographic cursor over one field's terms. It is a state
// machine with three states: BeforeFirst (initial), Positioned(i) for 0 <=
// i < size, and End. Term/DocFreq/TotalTermFreq/Postings require Positioned
// and fail with diagonerr.ErrInvalidCursor otherwise.
type TermsEnum interface {
	// Next advances to the next term in lexicographic order. Returns
	// false (and moves to End) once exhausted.
	Next() (bool, error)
	// SeekExact repositions to term if present, leaving the cursor
	// unchanged (and returning false) otherwise.
	SeekExact(term []byte) (bool, error)
	// SeekCeil repositions to the first term >= term.
	SeekCeil(term []byte) (SeekStatus, error)
	// Term returns the current term's bytes. Requires Positioned.
	Term() ([]byte, error)
	// DocFreq returns the current term's docFreq. Requires Positioned.
	DocFreq() (int, error)
	// TotalTermFreq returns the current term's totalTermFreq. Requires
	// Positioned.
	TotalTermFreq() (int64, error)
	// Postings returns a one-at-a-time PostingsEnum for the current term.
	// Requires Positioned.
	Postings() (PostingsEnum, error)
	// PostingsBatch returns a BatchPostingsEnum for the current term when
	// useBatch is true; when false it behaves like Postings. Requires
	// Positioned.
	PostingsBatch(useBatch bool) (PostingsEnum, error)
}
