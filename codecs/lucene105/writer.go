package lucene105

import (
	"github.com/go-mizu/diagon/store"
	"github.com/pkg/errors"
)

// Writer writes blocks of a single postings file. One Writer wraps one
// store.Output; WriteTerm is called once per term, in any order, and
// appends that term's blocks starting at the output's current (already
// 64-byte-aligned) file pointer.
type Writer struct {
	out *checksumOutput
}

// NewWriter writes the file header (magic, version) and aligns the file
// pointer to the first block boundary.
func NewWriter(out store.Output) (*Writer, error) {
	co := newChecksumOutput(out)
	if err := co.WriteUint32LE(DocsMagic); err != nil {
		return nil, errors.Wrap(err, "lucene105: writing postings header")
	}
	if err := co.WriteByte(FormatVersion); err != nil {
		return nil, errors.Wrap(err, "lucene105: writing postings header")
	}
	if err := padToAlignment(co); err != nil {
		return nil, err
	}
	return &Writer{out: co}, nil
}

func padToAlignment(out *checksumOutput) error {
	pos, err := out.FilePointer()
	if err != nil {
		return errors.Wrap(err, "lucene105: file pointer")
	}
	target := alignUp(pos)
	for ; pos < target; pos++ {
		if err := out.WriteByte(0); err != nil {
			return errors.Wrap(err, "lucene105: padding")
		}
	}
	return nil
}

// WriteTerm appends docs/freqs as one or more 16-doc blocks and returns the
// TermState a reader needs to open this term's postings. docs must be
// non-negative, strictly increasing, and below 0x80000000. freqs may be nil,
// in which case every posting is treated as frequency 1 and hasFreqs is
// recorded false.
func (w *Writer) WriteTerm(docs []int32, freqs []int32) (TermState, error) {
	docStartFP, err := w.out.FilePointer()
	if err != nil {
		return TermState{}, errors.Wrap(err, "lucene105: file pointer")
	}
	hasFreqs := freqs != nil

	var totalTermFreq int64
	for i := 0; i < len(docs); i += BlockSize {
		end := i + BlockSize
		if end > len(docs) {
			end = len(docs)
		}
		blockDocs := docs[i:end]
		var blockFreqs []int32
		if hasFreqs {
			blockFreqs = freqs[i:end]
			for _, f := range blockFreqs {
				totalTermFreq += int64(f)
			}
		} else {
			totalTermFreq += int64(len(blockDocs))
		}
		if err := w.writeBlock(blockDocs, blockFreqs, hasFreqs); err != nil {
			return TermState{}, err
		}
	}

	return TermState{
		DocStartFP:    uint64(docStartFP),
		DocFreq:       uint32(len(docs)),
		TotalTermFreq: uint64(totalTermFreq),
		NumBlocks:     NumBlocksFor(len(docs)),
		HasFreqs:      hasFreqs,
	}, nil
}

// writeBlock emits one fixed 136-byte block (for a short final block, the
// unused doc/freq slots are zero-filled) and pads to the next 64-byte
// boundary.
func (w *Writer) writeBlock(docs []int32, freqs []int32, hasFreqs bool) error {
	if len(docs) == 0 || len(docs) > BlockSize {
		return errors.Errorf("lucene105: invalid block size %d", len(docs))
	}

	if err := w.out.WriteByte(byte(len(docs))); err != nil {
		return errors.Wrap(err, "lucene105: writing block")
	}
	flag := byte(0)
	if hasFreqs {
		flag = 1
	}
	if err := w.out.WriteByte(flag); err != nil {
		return errors.Wrap(err, "lucene105: writing block")
	}
	var reserved [6]byte
	if err := w.out.WriteBytes(reserved[:]); err != nil {
		return errors.Wrap(err, "lucene105: writing block")
	}

	var docBuf [BlockSize]uint32
	for i, d := range docs {
		docBuf[i] = uint32(d)
	}
	if err := writeU32Array(w.out, docBuf[:]); err != nil {
		return err
	}

	var freqBuf [BlockSize]uint32
	if hasFreqs {
		for i, f := range freqs {
			freqBuf[i] = uint32(f)
		}
	}
	if err := writeU32Array(w.out, freqBuf[:]); err != nil {
		return err
	}

	return padToAlignment(w.out)
}

func writeU32Array(out *checksumOutput, vals []uint32) error {
	for _, v := range vals {
		if err := out.WriteUint32LE(v); err != nil {
			return errors.Wrap(err, "lucene105: writing block")
		}
	}
	return nil
}

// Finish writes the trailing checksum footer and returns the total file
// size, including the footer.
func (w *Writer) Finish() (int64, error) {
	if _, err := w.out.finish(); err != nil {
		return 0, errors.Wrap(err, "lucene105: writing footer")
	}
	return w.out.FilePointer()
}
