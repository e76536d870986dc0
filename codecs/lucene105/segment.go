package lucene105

import (
	"log/slog"

	"github.com/RoaringBitmap/roaring"
	"github.com/go-mizu/diagon/diagonerr"
	"github.com/go-mizu/diagon/index"
	"github.com/go-mizu/diagon/store"
	"github.com/pkg/errors"
)

func docsFileName(segment string) string { return segment + ".doc" }
func timFileName(segment string) string  { return segment + ".tim" }
func tipFileName(segment string) string  { return segment + ".tip" }

type options struct {
	logger *slog.Logger
}

// Option configures WriteSegment/OpenSegment.
type Option func(*options)

// WithLogger sets the logger WriteSegment/OpenSegment/Segment use for
// structured diagnostics. Defaults to slog.Default() when unset.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func resolveOptions(opts []Option) *options {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WriteSegment flushes fields (any index.Fields implementation, typically
// an in-memory index.Accumulator's FreqProxFields) to dir as segment's
// three files: docs (block-aligned postings), tim (bit-exact term
// records), tip (FST index over tim).
func WriteSegment(dir store.Directory, segment string, fields index.Fields, opts ...Option) error {
	o := resolveOptions(opts)
	o.logger.Debug("writing segment", slog.String("segment", segment), slog.Any("fields", fields.FieldNames()))

	docsOut, err := dir.CreateOutput(docsFileName(segment))
	if err != nil {
		return errors.Wrap(err, "lucene105: creating docs file")
	}
	defer docsOut.Close()

	writer, err := NewWriter(docsOut)
	if err != nil {
		return err
	}

	fieldOrder := fields.FieldNames()
	fieldStats := make(map[string]index.FieldStats, len(fieldOrder))
	fieldDocSets := make(map[string]*roaring.Bitmap, len(fieldOrder))
	var records []termRecord

	for _, name := range fieldOrder {
		terms, err := fields.Terms(name)
		if err != nil {
			return errors.Wrapf(err, "lucene105: reading terms for field %q", name)
		}
		if terms == nil {
			continue
		}
		fieldStats[name] = terms.Stats()
		docSet := roaring.New()
		fieldDocSets[name] = docSet

		it, err := terms.Iterator()
		if err != nil {
			return errors.Wrapf(err, "lucene105: iterating terms for field %q", name)
		}
		for {
			has, err := it.Next()
			if err != nil {
				return errors.Wrapf(err, "lucene105: advancing term iterator for field %q", name)
			}
			if !has {
				break
			}
			term, err := it.Term()
			if err != nil {
				return err
			}
			docs, freqs, err := collectPostings(it)
			if err != nil {
				return errors.Wrapf(err, "lucene105: collecting postings for %q/%q", name, term)
			}
			for _, d := range docs {
				docSet.Add(uint32(d))
			}
			state, err := writer.WriteTerm(docs, freqs)
			if err != nil {
				return err
			}
			records = append(records, termRecord{field: name, term: string(term), state: state})
		}
	}

	docsSize, err := writer.Finish()
	if err != nil {
		return err
	}

	timOut, err := dir.CreateOutput(timFileName(segment))
	if err != nil {
		return errors.Wrap(err, "lucene105: creating tim file")
	}
	defer timOut.Close()

	tipOut, err := dir.CreateOutput(tipFileName(segment))
	if err != nil {
		return errors.Wrap(err, "lucene105: creating tip file")
	}
	defer tipOut.Close()

	if err := writeTermDictionary(timOut, tipOut, fieldOrder, fieldStats, fieldDocSets, records); err != nil {
		return err
	}
	o.logger.Info("wrote segment", slog.String("segment", segment), slog.Int("terms", len(records)), slog.Int64("docsBytes", docsSize))
	return nil
}

func collectPostings(it index.TermsEnum) ([]int32, []int32, error) {
	pe, err := it.Postings()
	if err != nil {
		return nil, nil, err
	}
	var docs, freqs []int32
	for {
		doc, err := pe.NextDoc()
		if err != nil {
			return nil, nil, err
		}
		if doc == index.NoMoreDocs {
			break
		}
		docs = append(docs, doc)
		freqs = append(freqs, pe.Freq())
	}
	return docs, freqs, nil
}

// Segment is an opened, read-only view over a WriteSegment output,
// implementing index.Fields. Segments are immutable once written; Segment
// opens a fresh docs Input per postings iterator so concurrent readers never
// share a file pointer.
type Segment struct {
	dir    store.Directory
	name   string
	dict   *TermDictionary
	logger *slog.Logger
}

// OpenSegment opens segment's three files from dir.
func OpenSegment(dir store.Directory, segment string, opts ...Option) (*Segment, error) {
	o := resolveOptions(opts)

	timIn, err := dir.OpenInput(timFileName(segment))
	if err != nil {
		return nil, errors.Wrap(err, "lucene105: opening tim file")
	}
	tipIn, err := dir.OpenInput(tipFileName(segment))
	if err != nil {
		return nil, errors.Wrap(err, "lucene105: opening tip file")
	}
	dict, err := OpenTermDictionary(timIn, tipIn)
	if err != nil {
		return nil, err
	}

	o.logger.Debug("opened segment", slog.String("segment", segment), slog.Any("fields", dict.fieldOrder))
	return &Segment{dir: dir, name: segment, dict: dict, logger: o.logger}, nil
}

// openPostingsInput opens a fresh, header-validated docs Input positioned at
// the start of the block region.
func (s *Segment) openPostingsInput() (store.Input, error) {
	in, err := s.dir.OpenInput(docsFileName(s.name))
	if err != nil {
		return nil, errors.Wrap(err, "lucene105: opening docs file")
	}
	reader, err := OpenReader(in)
	if err != nil {
		s.logger.Warn("corrupt postings header", slog.String("segment", s.name), slog.Any("error", err))
		return nil, err
	}
	return reader, nil
}

// FieldNames returns field names in the order they were written.
func (s *Segment) FieldNames() []string { return s.dict.fieldOrder }

// DocSet returns the roaring bitmap of distinct document IDs with at least
// one posting in field, or nil if the field was never written.
func (s *Segment) DocSet(field string) *roaring.Bitmap {
	return s.dict.DocSet(field)
}

// Terms returns the Terms for field, or nil if the field was never written.
func (s *Segment) Terms(field string) (index.Terms, error) {
	stats, ok := s.dict.fieldStats[field]
	if !ok {
		return nil, nil
	}
	return &segmentTerms{seg: s, field: field, stats: stats}, nil
}

type segmentTerms struct {
	seg   *Segment
	field string
	stats index.FieldStats
}

func (t *segmentTerms) Stats() index.FieldStats { return t.stats }

func (t *segmentTerms) Iterator() (index.TermsEnum, error) {
	return &segmentTermsEnum{seg: t.seg, field: t.field}, nil
}

// segmentTermsEnum is a lexicographic cursor backed by a dictIterator over
// one field's FST range.
type segmentTermsEnum struct {
	seg   *Segment
	field string
	it    *dictIterator
	state TermState
	term  []byte
	ended bool
}

func (e *segmentTermsEnum) ensureIterator() error {
	if e.it != nil {
		return nil
	}
	it, err := newDictIterator(e.seg.dict, e.field)
	if err != nil {
		return err
	}
	e.it = it
	return nil
}

func (e *segmentTermsEnum) Next() (bool, error) {
	if e.ended {
		return false, nil
	}
	if err := e.ensureIterator(); err != nil {
		return false, err
	}
	has, err := e.it.next()
	if err != nil {
		return false, err
	}
	if !has {
		e.ended = true
		e.term = nil
		return false, nil
	}
	e.term = e.it.term
	e.state = e.it.state
	return true, nil
}

// SeekExact repositions via a direct FST lookup rather than scanning.
func (e *segmentTermsEnum) SeekExact(term []byte) (bool, error) {
	state, found, err := e.seg.dict.Lookup(e.field, term)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	e.term = append([]byte(nil), term...)
	e.state = state
	e.ended = false
	e.it = nil
	return true, nil
}

// SeekCeil falls back to a linear scan from the start of the field; this
// codec's FST does not expose a direct predecessor/successor walk, so exact
// hits reuse the fast lookup and inexact seeks pay for a full rescan.
func (e *segmentTermsEnum) SeekCeil(term []byte) (index.SeekStatus, error) {
	if state, found, err := e.seg.dict.Lookup(e.field, term); err != nil {
		return index.SeekStatusEnd, err
	} else if found {
		e.term = append([]byte(nil), term...)
		e.state = state
		e.ended = false
		e.it = nil
		return index.SeekStatusFound, nil
	}

	it, err := newDictIterator(e.seg.dict, e.field)
	if err != nil {
		return index.SeekStatusEnd, err
	}
	for {
		has, err := it.next()
		if err != nil {
			return index.SeekStatusEnd, err
		}
		if !has {
			e.ended = true
			e.term = nil
			return index.SeekStatusEnd, nil
		}
		if string(it.term) > string(term) {
			e.term = it.term
			e.state = it.state
			e.it = it
			e.ended = false
			return index.SeekStatusNotFound, nil
		}
	}
}

func (e *segmentTermsEnum) requirePositioned() error {
	if e.term == nil {
		return errors.Wrap(diagonerr.ErrInvalidCursor, "lucene105: terms enum not positioned")
	}
	return nil
}

func (e *segmentTermsEnum) Term() ([]byte, error) {
	if err := e.requirePositioned(); err != nil {
		return nil, err
	}
	return e.term, nil
}

func (e *segmentTermsEnum) DocFreq() (int, error) {
	if err := e.requirePositioned(); err != nil {
		return 0, err
	}
	return int(e.state.DocFreq), nil
}

func (e *segmentTermsEnum) TotalTermFreq() (int64, error) {
	if err := e.requirePositioned(); err != nil {
		return 0, err
	}
	return int64(e.state.TotalTermFreq), nil
}

func (e *segmentTermsEnum) Postings() (index.PostingsEnum, error) {
	if err := e.requirePositioned(); err != nil {
		return nil, err
	}
	in, err := e.seg.openPostingsInput()
	if err != nil {
		return nil, err
	}
	return NewPostingsEnum(in, e.state)
}

func (e *segmentTermsEnum) PostingsBatch(useBatch bool) (index.PostingsEnum, error) {
	return e.Postings()
}
