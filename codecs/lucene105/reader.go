package lucene105

import (
	"github.com/go-mizu/diagon/diagonerr"
	"github.com/go-mizu/diagon/index"
	"github.com/go-mizu/diagon/store"
	"github.com/pkg/errors"
)

// OpenReader validates the file header (magic, version) and returns the
// already-aligned input ready to seek to any term's DocStartFP.
func OpenReader(in store.Input) (store.Input, error) {
	magic, err := in.ReadUint32LE()
	if err != nil {
		return nil, errors.Wrap(err, "lucene105: reading postings header")
	}
	if magic != DocsMagic {
		return nil, errors.Wrapf(diagonerr.ErrCorruptEncoding, "lucene105: bad magic %x", magic)
	}
	version, err := in.ReadByte()
	if err != nil {
		return nil, errors.Wrap(err, "lucene105: reading postings header")
	}
	if version != FormatVersion {
		return nil, errors.Wrapf(diagonerr.ErrCorruptEncoding, "lucene105: unsupported version %d", version)
	}
	pos, err := in.FilePointer()
	if err != nil {
		return nil, errors.Wrap(err, "lucene105: file pointer")
	}
	if err := in.Seek(alignUp(pos)); err != nil {
		return nil, errors.Wrap(err, "lucene105: aligning to first block")
	}
	return in, nil
}

// PostingsEnum reads a single term's postings directly off a block-aligned
// postings file. It satisfies index.BatchPostingsEnum natively; NextDoc and
// Advance are implemented atop NextBatch via a small internal cursor.
type PostingsEnum struct {
	in    store.Input
	state TermState

	docsRead          uint32
	currentBlockIndex uint32
	blockDocCount     int
	bufferPos         int
	docBuffer         [BlockSize]int32
	freqBuffer        [BlockSize]int32

	cur *index.BatchCursor

	err error
}

// NewPostingsEnum seeks in to state.DocStartFP and returns an enum ready to
// iterate that term's postings.
func NewPostingsEnum(in store.Input, state TermState) (*PostingsEnum, error) {
	if err := in.Seek(int64(state.DocStartFP)); err != nil {
		return nil, errors.Wrap(err, "lucene105: seeking to term postings")
	}
	e := &PostingsEnum{in: in, state: state}
	e.cur = index.NewBatchCursor(e)
	return e, nil
}

// readNextBlock reads one 136-byte block into the internal buffers and
// advances past its alignment padding.
func (e *PostingsEnum) readNextBlock() error {
	blockSizeByte, err := e.in.ReadByte()
	if err != nil {
		return errors.Wrap(err, "lucene105: reading block")
	}
	blockSize := int(blockSizeByte)
	if blockSize < 1 || blockSize > BlockSize {
		return errors.Wrapf(diagonerr.ErrCorruptEncoding, "lucene105: invalid block size %d", blockSize)
	}

	hasFreqsByte, err := e.in.ReadByte()
	if err != nil {
		return errors.Wrap(err, "lucene105: reading block")
	}
	if hasFreqsByte != 0 && hasFreqsByte != 1 {
		return errors.Wrapf(diagonerr.ErrCorruptEncoding, "lucene105: invalid hasFreqs flag %d", hasFreqsByte)
	}
	hasFreqs := hasFreqsByte == 1

	var reserved [6]byte
	if err := e.in.ReadBytes(reserved[:]); err != nil {
		return errors.Wrap(err, "lucene105: reading block")
	}
	for _, b := range reserved {
		if b != 0 {
			return errors.Wrap(diagonerr.ErrCorruptEncoding, "lucene105: reserved bytes must be zero")
		}
	}

	for i := 0; i < BlockSize; i++ {
		v, err := e.in.ReadUint32LE()
		if err != nil {
			return errors.Wrap(err, "lucene105: reading block docIDs")
		}
		if v >= 0x80000000 {
			return errors.Wrapf(diagonerr.ErrCorruptEncoding, "lucene105: docID %d out of signed range", v)
		}
		e.docBuffer[i] = int32(v)
	}
	for i := 0; i < BlockSize; i++ {
		v, err := e.in.ReadUint32LE()
		if err != nil {
			return errors.Wrap(err, "lucene105: reading block freqs")
		}
		if hasFreqs {
			e.freqBuffer[i] = int32(v)
		} else {
			e.freqBuffer[i] = 1
		}
	}

	pos, err := e.in.FilePointer()
	if err != nil {
		return errors.Wrap(err, "lucene105: file pointer")
	}
	if err := e.in.Seek(alignUp(pos)); err != nil {
		return errors.Wrap(err, "lucene105: aligning to next block")
	}

	e.blockDocCount = blockSize
	e.bufferPos = 0
	e.currentBlockIndex++
	return nil
}

// NextBatch fills batch with up to batch.Capacity() postings, refilling
// blocks from disk as needed, and returns the count filled.
func (e *PostingsEnum) NextBatch(batch *index.PostingsBatch) (int, error) {
	if e.err != nil {
		batch.Count = 0
		return 0, nil
	}
	capacity := batch.Capacity()
	n := 0
	for n < capacity && e.docsRead < e.state.DocFreq {
		if e.bufferPos >= e.blockDocCount {
			if e.currentBlockIndex >= e.state.NumBlocks {
				break
			}
			if err := e.readNextBlock(); err != nil {
				e.err = err
				batch.Count = n
				batch.MarkPresence()
				return n, err
			}
		}
		avail := e.blockDocCount - e.bufferPos
		room := capacity - n
		take := avail
		if take > room {
			take = room
		}
		copy(batch.Docs[n:n+take], e.docBuffer[e.bufferPos:e.bufferPos+take])
		copy(batch.Freqs[n:n+take], e.freqBuffer[e.bufferPos:e.bufferPos+take])
		e.bufferPos += take
		e.docsRead += uint32(take)
		n += take
	}
	batch.Count = n
	batch.MarkPresence()
	return n, nil
}

func (e *PostingsEnum) DocID() int32 { return e.cur.DocID() }
func (e *PostingsEnum) Freq() int32  { return e.cur.Freq() }

func (e *PostingsEnum) NextDoc() (int32, error) {
	return e.cur.NextDoc()
}

func (e *PostingsEnum) Advance(target int32) (int32, error) {
	return e.cur.Advance(target)
}

// Cost returns the term's exact remaining document count (not merely an
// upper bound): docFreq minus however many documents have already been
// consumed through NextBatch.
func (e *PostingsEnum) Cost() int64 {
	return int64(e.state.DocFreq) - int64(e.docsRead)
}

// Err returns the first error encountered while reading blocks, recorded on
// the iterator rather than surfaced from every NextDoc/NextBatch call once
// set.
func (e *PostingsEnum) Err() error { return e.err }
