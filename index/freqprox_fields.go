package index

import (
	"sort"

	"github.com/go-mizu/diagon/diagonerr"
	"github.com/pkg/errors"
)

// FreqProxFields adapts an Accumulator to the Fields pull API, exposing
// only the fields FieldInfos marks as indexed.
type FreqProxFields struct {
	acc    *Accumulator
	fields []string
}

// NewFreqProxFields returns a Fields view over acc, restricted to fields
// present in fieldInfos and marked indexed. Fields are reported in
// fieldInfos declaration order.
func NewFreqProxFields(acc *Accumulator, fieldInfos *FieldInfos) *FreqProxFields {
	var names []string
	for _, name := range fieldInfos.Names() {
		info, _ := fieldInfos.FieldInfo(name)
		if info.Indexed && acc.HasField(name) {
			names = append(names, name)
		}
	}
	return &FreqProxFields{acc: acc, fields: names}
}

func (f *FreqProxFields) FieldNames() []string {
	out := make([]string, len(f.fields))
	copy(out, f.fields)
	return out
}

func (f *FreqProxFields) Terms(field string) (Terms, error) {
	found := false
	for _, name := range f.fields {
		if name == field {
			found = true
			break
		}
	}
	if !found {
		return nil, nil
	}
	return &freqProxTerms{field: field, acc: f.acc}, nil
}

type freqProxTerms struct {
	field string
	acc   *Accumulator
}

func (t *freqProxTerms) Iterator() (TermsEnum, error) {
	sorted := t.acc.TermsForField(t.field)
	return &freqProxTermsEnum{field: t.field, acc: t.acc, sortedTerms: sorted, ord: -1}, nil
}

func (t *freqProxTerms) Stats() FieldStats {
	stats := t.acc.FieldStatsFor(t.field)
	stats.Size = int64(len(t.acc.TermsForField(t.field)))
	return stats
}

// freqProxTermsEnum is a TermsEnum over an accumulator's sorted term list
// for one field. ord == -1 is BeforeFirst; ord == len(sortedTerms) is End.
type freqProxTermsEnum struct {
	field       string
	acc         *Accumulator
	sortedTerms []string
	ord         int
}

func (e *freqProxTermsEnum) positioned() bool {
	return e.ord >= 0 && e.ord < len(e.sortedTerms)
}

func (e *freqProxTermsEnum) Next() (bool, error) {
	e.ord++
	if e.ord >= len(e.sortedTerms) {
		e.ord = len(e.sortedTerms)
		return false, nil
	}
	return true, nil
}

func (e *freqProxTermsEnum) SeekExact(term []byte) (bool, error) {
	i := sort.SearchStrings(e.sortedTerms, string(term))
	if i < len(e.sortedTerms) && e.sortedTerms[i] == string(term) {
		e.ord = i
		return true, nil
	}
	return false, nil
}

func (e *freqProxTermsEnum) SeekCeil(term []byte) (SeekStatus, error) {
	i := sort.SearchStrings(e.sortedTerms, string(term))
	if i >= len(e.sortedTerms) {
		e.ord = len(e.sortedTerms)
		return SeekStatusEnd, nil
	}
	e.ord = i
	if e.sortedTerms[i] == string(term) {
		return SeekStatusFound, nil
	}
	return SeekStatusNotFound, nil
}

func (e *freqProxTermsEnum) Term() ([]byte, error) {
	if !e.positioned() {
		return nil, errors.Wrap(diagonerr.ErrInvalidCursor, "freqprox: Term() requires Positioned state")
	}
	return []byte(e.sortedTerms[e.ord]), nil
}

func (e *freqProxTermsEnum) DocFreq() (int, error) {
	if !e.positioned() {
		return 0, errors.Wrap(diagonerr.ErrInvalidCursor, "freqprox: DocFreq() requires Positioned state")
	}
	docs, _, _ := e.acc.PostingList(e.field, e.sortedTerms[e.ord])
	return len(docs), nil
}

func (e *freqProxTermsEnum) TotalTermFreq() (int64, error) {
	if !e.positioned() {
		return 0, errors.Wrap(diagonerr.ErrInvalidCursor, "freqprox: TotalTermFreq() requires Positioned state")
	}
	_, freqs, _ := e.acc.PostingList(e.field, e.sortedTerms[e.ord])
	var sum int64
	for _, f := range freqs {
		sum += int64(f)
	}
	return sum, nil
}

func (e *freqProxTermsEnum) Postings() (PostingsEnum, error) {
	return e.PostingsBatch(false)
}

func (e *freqProxTermsEnum) PostingsBatch(useBatch bool) (PostingsEnum, error) {
	if !e.positioned() {
		return nil, errors.Wrap(diagonerr.ErrInvalidCursor, "freqprox: Postings() requires Positioned state")
	}
	docs, freqs, _ := e.acc.PostingList(e.field, e.sortedTerms[e.ord])
	batchEnum := &freqProxPostingsEnum{docs: docs, freqs: freqs, pos: -1, doc: -1}
	if !useBatch {
		return batchEnum, nil
	}
	return batchEnum, nil
}

// freqProxPostingsEnum iterates an Accumulator's in-memory posting list. It
// natively supports batch refill, so it satisfies BatchPostingsEnum
// directly rather than needing a BatchCursor.
type freqProxPostingsEnum struct {
	docs  []int32
	freqs []int32
	pos   int // index of current posting, or -1 before first
	doc   int32
}

func (p *freqProxPostingsEnum) DocID() int32 { return p.doc }

func (p *freqProxPostingsEnum) NextDoc() (int32, error) {
	p.pos++
	if p.pos >= len(p.docs) {
		p.pos = len(p.docs)
		p.doc = NoMoreDocs
		return NoMoreDocs, nil
	}
	p.doc = p.docs[p.pos]
	return p.doc, nil
}

func (p *freqProxPostingsEnum) Advance(target int32) (int32, error) {
	for p.doc < target && p.doc != NoMoreDocs {
		if _, err := p.NextDoc(); err != nil {
			return 0, err
		}
	}
	return p.doc, nil
}

func (p *freqProxPostingsEnum) Freq() int32 {
	if p.pos < 0 || p.pos >= len(p.freqs) {
		return 1
	}
	return p.freqs[p.pos]
}

func (p *freqProxPostingsEnum) Cost() int64 {
	consumed := p.pos + 1
	if consumed < 0 {
		consumed = 0
	}
	if consumed > len(p.docs) {
		consumed = len(p.docs)
	}
	return int64(len(p.docs) - consumed)
}

func (p *freqProxPostingsEnum) NextBatch(batch *PostingsBatch) (int, error) {
	remaining := len(p.docs) - (p.pos + 1)
	if remaining < 0 {
		remaining = 0
	}
	n := batch.Capacity()
	if remaining < n {
		n = remaining
	}
	for i := 0; i < n; i++ {
		p.pos++
		batch.Docs[i] = p.docs[p.pos]
		batch.Freqs[i] = p.freqs[p.pos]
	}
	batch.Count = n
	batch.MarkPresence()
	if n > 0 {
		p.doc = batch.Docs[n-1]
	} else if p.pos >= len(p.docs)-1 {
		p.doc = NoMoreDocs
	}
	return n, nil
}
