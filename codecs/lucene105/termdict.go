package lucene105

import (
	"bytes"
	"sort"

	"github.com/RoaringBitmap/roaring"
	"github.com/blevesearch/vellum"
	"github.com/go-mizu/diagon/diagonerr"
	"github.com/go-mizu/diagon/index"
	"github.com/go-mizu/diagon/store"
	"github.com/go-mizu/diagon/vbyte"
	"github.com/pkg/errors"
)

// termRecord is one field's term and the TermState its postings resolve to,
// combined into a single byte key (field name, NUL, term bytes) so a whole
// segment's terms share one FST regardless of field declaration order.
type termRecord struct {
	field string
	term  string
	state TermState
}

func combinedKey(field, term string) []byte {
	key := make([]byte, 0, len(field)+1+len(term))
	key = append(key, field...)
	key = append(key, 0)
	key = append(key, term...)
	return key
}

// writeTermDictionary writes the bit-exact term-dictionary record stream to
// tim (one record per term, in combined-key order: termLength varint,
// termBytes, docStartFP u64, docFreq varint, totalTermFreq varint, numBlocks
// varint, flags u8) and, in tip, a vellum FST mapping each combined key to
// its ordinal plus a parallel array of each record's byte offset into tim.
//
// fieldStats is written first in tim as a small header so a reader can
// recover field declaration order and aggregate stats without touching the
// FST.
func writeTermDictionary(tim, tip store.Output, fieldOrder []string, fieldStats map[string]index.FieldStats, fieldDocSets map[string]*roaring.Bitmap, records []termRecord) error {
	sort.Slice(records, func(i, j int) bool {
		return bytes.Compare(combinedKey(records[i].field, records[i].term), combinedKey(records[j].field, records[j].term)) < 0
	})

	timOut := newChecksumOutput(tim)
	if err := writeFieldHeader(timOut, fieldOrder, fieldStats, fieldDocSets); err != nil {
		return err
	}

	offsets := make([]uint64, len(records))
	for i, rec := range records {
		fp, err := timOut.FilePointer()
		if err != nil {
			return errors.Wrap(err, "lucene105: file pointer")
		}
		offsets[i] = uint64(fp)
		if err := writeTermRecord(timOut, rec); err != nil {
			return err
		}
	}
	if _, err := timOut.finish(); err != nil {
		return errors.Wrap(err, "lucene105: writing tim footer")
	}

	return writeFST(tip, records, offsets)
}

func writeFieldHeader(out *checksumOutput, fieldOrder []string, fieldStats map[string]index.FieldStats, fieldDocSets map[string]*roaring.Bitmap) error {
	if err := writeVarintTo(out, uint64(len(fieldOrder))); err != nil {
		return err
	}
	for _, name := range fieldOrder {
		if err := writeVarintTo(out, uint64(len(name))); err != nil {
			return err
		}
		if err := out.WriteBytes([]byte(name)); err != nil {
			return errors.Wrap(err, "lucene105: writing field header")
		}
		stats := fieldStats[name]
		if err := writeVarintTo(out, uint64(stats.DocCount)); err != nil {
			return err
		}
		if err := writeVarintTo(out, uint64(stats.SumTotalTermFreq)); err != nil {
			return err
		}
		if err := writeVarintTo(out, uint64(stats.SumDocFreq)); err != nil {
			return err
		}

		docSet := fieldDocSets[name]
		if docSet == nil {
			docSet = roaring.New()
		}
		docSetBytes, err := docSet.ToBytes()
		if err != nil {
			return errors.Wrapf(err, "lucene105: serializing doc set for field %q", name)
		}
		if err := writeVarintTo(out, uint64(len(docSetBytes))); err != nil {
			return err
		}
		if err := out.WriteBytes(docSetBytes); err != nil {
			return errors.Wrap(err, "lucene105: writing field header")
		}
	}
	return nil
}

func writeTermRecord(out *checksumOutput, rec termRecord) error {
	key := []byte(rec.term)
	if err := writeVarintTo(out, uint64(len(key))); err != nil {
		return err
	}
	if err := out.WriteBytes(key); err != nil {
		return errors.Wrap(err, "lucene105: writing term record")
	}
	if err := out.WriteUint64LE(rec.state.DocStartFP); err != nil {
		return errors.Wrap(err, "lucene105: writing term record")
	}
	if err := writeVarintTo(out, uint64(rec.state.DocFreq)); err != nil {
		return err
	}
	if err := writeVarintTo(out, rec.state.TotalTermFreq); err != nil {
		return err
	}
	if err := writeVarintTo(out, uint64(rec.state.NumBlocks)); err != nil {
		return err
	}
	flags := byte(0)
	if rec.state.HasFreqs {
		flags = 1
	}
	if err := out.WriteByte(flags); err != nil {
		return errors.Wrap(err, "lucene105: writing term record")
	}
	return nil
}

func writeVarintTo(out *checksumOutput, v uint64) error {
	if err := vbyte.WriteUvarint64(out, v); err != nil {
		return errors.Wrap(err, "lucene105: writing varint")
	}
	return nil
}

// writeFST builds the combined-key -> ordinal FST plus the ordinal -> tim
// offset array, and appends an xxhash footer over both.
func writeFST(tip store.Output, records []termRecord, offsets []uint64) error {
	out := newChecksumOutput(tip)

	var fstBuf bytes.Buffer
	builder, err := vellum.New(&fstBuf, nil)
	if err != nil {
		return errors.Wrap(err, "lucene105: creating FST builder")
	}
	for i, rec := range records {
		if err := builder.Insert(combinedKey(rec.field, rec.term), uint64(i)); err != nil {
			return errors.Wrap(err, "lucene105: inserting into FST")
		}
	}
	if err := builder.Close(); err != nil {
		return errors.Wrap(err, "lucene105: closing FST builder")
	}

	if err := writeVarintTo(out, uint64(fstBuf.Len())); err != nil {
		return err
	}
	if err := out.WriteBytes(fstBuf.Bytes()); err != nil {
		return errors.Wrap(err, "lucene105: writing FST")
	}
	if err := writeVarintTo(out, uint64(len(offsets))); err != nil {
		return err
	}
	for _, off := range offsets {
		if err := out.WriteUint64LE(off); err != nil {
			return errors.Wrap(err, "lucene105: writing offset table")
		}
	}
	if _, err := out.finish(); err != nil {
		return errors.Wrap(err, "lucene105: writing tip footer")
	}
	return nil
}

// TermDictionary is an opened term dictionary: the vellum FST for
// SeekExact/SeekCeil lookups, the ordinal -> tim-offset table, and the tim
// input for decoding the bit-exact term record at a given offset.
type TermDictionary struct {
	tim          store.Input
	fst          *vellum.FST
	offsets      []uint64
	fieldOrder   []string
	fieldStats   map[string]index.FieldStats
	fieldDocSets map[string]*roaring.Bitmap
}

// OpenTermDictionary reads tip (FST + offset table, footer-verified) and the
// field header at the start of tim.
func OpenTermDictionary(tim, tip store.Input) (*TermDictionary, error) {
	fieldOrder, fieldStats, fieldDocSets, err := readFieldHeader(tim)
	if err != nil {
		return nil, err
	}

	in := newChecksumInput(tip)
	fstLen, err := readVarintFrom(in)
	if err != nil {
		return nil, err
	}
	fstBytes := make([]byte, fstLen)
	if err := in.ReadBytes(fstBytes); err != nil {
		return nil, errors.Wrap(err, "lucene105: reading FST")
	}
	fst, err := vellum.Load(fstBytes)
	if err != nil {
		return nil, errors.Wrap(err, "lucene105: loading FST")
	}

	numOffsets, err := readVarintFrom(in)
	if err != nil {
		return nil, err
	}
	offsets := make([]uint64, numOffsets)
	for i := range offsets {
		v, err := in.ReadUint64LE()
		if err != nil {
			return nil, errors.Wrap(err, "lucene105: reading offset table")
		}
		offsets[i] = v
	}
	if err := in.verify(); err != nil {
		return nil, err
	}

	return &TermDictionary{
		tim:          tim,
		fst:          fst,
		offsets:      offsets,
		fieldOrder:   fieldOrder,
		fieldStats:   fieldStats,
		fieldDocSets: fieldDocSets,
	}, nil
}

// DocSet returns the roaring bitmap of distinct document IDs that have at
// least one posting in field, or nil if the field is absent.
func (d *TermDictionary) DocSet(field string) *roaring.Bitmap {
	return d.fieldDocSets[field]
}

func readFieldHeader(tim store.Input) ([]string, map[string]index.FieldStats, map[string]*roaring.Bitmap, error) {
	fp, err := tim.FilePointer()
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "lucene105: file pointer")
	}
	if fp != 0 {
		if err := tim.Seek(0); err != nil {
			return nil, nil, nil, errors.Wrap(err, "lucene105: seeking tim header")
		}
	}

	count, err := readVarintFrom(tim)
	if err != nil {
		return nil, nil, nil, err
	}
	fieldOrder := make([]string, count)
	fieldStats := make(map[string]index.FieldStats, count)
	fieldDocSets := make(map[string]*roaring.Bitmap, count)
	for i := range fieldOrder {
		nameLen, err := readVarintFrom(tim)
		if err != nil {
			return nil, nil, nil, err
		}
		nameBuf := make([]byte, nameLen)
		if err := tim.ReadBytes(nameBuf); err != nil {
			return nil, nil, nil, errors.Wrap(err, "lucene105: reading field header")
		}
		name := string(nameBuf)
		fieldOrder[i] = name

		docCount, err := readVarintFrom(tim)
		if err != nil {
			return nil, nil, nil, err
		}
		sumTTF, err := readVarintFrom(tim)
		if err != nil {
			return nil, nil, nil, err
		}
		sumDF, err := readVarintFrom(tim)
		if err != nil {
			return nil, nil, nil, err
		}
		fieldStats[name] = index.FieldStats{
			DocCount:         int(docCount),
			SumTotalTermFreq: int64(sumTTF),
			SumDocFreq:       int64(sumDF),
		}

		docSetLen, err := readVarintFrom(tim)
		if err != nil {
			return nil, nil, nil, err
		}
		docSetBytes := make([]byte, docSetLen)
		if err := tim.ReadBytes(docSetBytes); err != nil {
			return nil, nil, nil, errors.Wrap(err, "lucene105: reading field doc set")
		}
		docSet := roaring.New()
		if err := docSet.UnmarshalBinary(docSetBytes); err != nil {
			return nil, nil, nil, errors.Wrapf(err, "lucene105: decoding doc set for field %q", name)
		}
		fieldDocSets[name] = docSet
	}
	return fieldOrder, fieldStats, fieldDocSets, nil
}

func readVarintFrom(in interface{ ReadByte() (byte, error) }) (uint64, error) {
	return vbyte.ReadUvarint64(in)
}

// termStateAt decodes the bit-exact term record at the given tim offset.
func (d *TermDictionary) termStateAt(offset uint64) (TermState, error) {
	if err := d.tim.Seek(int64(offset)); err != nil {
		return TermState{}, errors.Wrap(err, "lucene105: seeking term record")
	}
	termLen, err := readVarintFrom(d.tim)
	if err != nil {
		return TermState{}, err
	}
	// Skip the term bytes themselves; the caller already knows the term
	// (it looked the offset up by key).
	skip := make([]byte, termLen)
	if err := d.tim.ReadBytes(skip); err != nil {
		return TermState{}, errors.Wrap(err, "lucene105: reading term record")
	}
	docStartFP, err := d.tim.ReadUint64LE()
	if err != nil {
		return TermState{}, errors.Wrap(err, "lucene105: reading term record")
	}
	docFreq, err := readVarintFrom(d.tim)
	if err != nil {
		return TermState{}, err
	}
	totalTermFreq, err := readVarintFrom(d.tim)
	if err != nil {
		return TermState{}, err
	}
	numBlocks, err := readVarintFrom(d.tim)
	if err != nil {
		return TermState{}, err
	}
	flags, err := d.tim.ReadByte()
	if err != nil {
		return TermState{}, errors.Wrap(err, "lucene105: reading term record")
	}
	return TermState{
		DocStartFP:    docStartFP,
		DocFreq:       uint32(docFreq),
		TotalTermFreq: totalTermFreq,
		NumBlocks:     uint32(numBlocks),
		HasFreqs:      flags&1 != 0,
	}, nil
}

// Lookup resolves a (field, term) pair to its TermState, reporting found =
// false when absent.
func (d *TermDictionary) Lookup(field string, term []byte) (TermState, bool, error) {
	key := combinedKey(field, string(term))
	ordinal, found, err := d.fst.Get(key)
	if err != nil {
		return TermState{}, false, errors.Wrap(err, "lucene105: FST lookup")
	}
	if !found {
		return TermState{}, false, nil
	}
	if ordinal >= uint64(len(d.offsets)) {
		return TermState{}, false, errors.Wrap(diagonerr.ErrCorruptEncoding, "lucene105: FST ordinal out of range")
	}
	state, err := d.termStateAt(d.offsets[ordinal])
	if err != nil {
		return TermState{}, false, err
	}
	return state, true, nil
}

// dictIterator walks the FST over one field's key range, in lexicographic
// term order, decoding each hit's TermState on demand.
type dictIterator struct {
	dict  *TermDictionary
	field string
	it    *vellum.FSTIterator
	done  bool
	term  []byte
	state TermState
}

func newDictIterator(dict *TermDictionary, field string) (*dictIterator, error) {
	start := combinedKey(field, "")
	end := combinedKey(field, "")
	end = append(end, 0xff) // exclusive upper bound past any byte value
	it, err := dict.fst.Iterator(start, end)
	if err == vellum.ErrIteratorDone {
		return &dictIterator{dict: dict, field: field, done: true}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "lucene105: creating FST iterator")
	}
	return &dictIterator{dict: dict, field: field, it: it}, nil
}

// next advances to the next term in this field, returning false once
// exhausted.
func (d *dictIterator) next() (bool, error) {
	if d.done {
		return false, nil
	}
	key, ordinal := d.it.Current()
	field, term := splitCombinedKey(key)
	if field != d.field {
		d.done = true
		return false, nil
	}
	d.term = term
	state, err := d.dict.termStateAt(d.dict.offsets[ordinal])
	if err != nil {
		return false, err
	}
	d.state = state

	if err := d.it.Next(); err == vellum.ErrIteratorDone {
		d.done = true
	} else if err != nil {
		return false, errors.Wrap(err, "lucene105: advancing FST iterator")
	}
	return true, nil
}

func splitCombinedKey(key []byte) (string, []byte) {
	idx := bytes.IndexByte(key, 0)
	if idx < 0 {
		return string(key), nil
	}
	return string(key[:idx]), key[idx+1:]
}
