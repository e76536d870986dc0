package index

import "github.com/bits-and-blooms/bitset"

// NoMoreDocs is the sentinel returned by NextDoc/Advance once a postings
// iterator is exhausted.
const NoMoreDocs int32 = 0x7FFFFFFF

// PostingsBatch is a caller-owned, pre-sized buffer a BatchPostingsEnum
// fills in place. Slots [0, Count) hold a contiguous run of postings from
// the underlying list, in list order; the iterator never reallocates Docs
// or Freqs.
type PostingsBatch struct {
	Docs  []int32
	Freqs []int32
	Count int

	// Present marks which of [0, Capacity) are valid slots in this fill;
	// refreshed by MarkPresence on every fill so a SIMD consumer can avoid a
	// separate bounds check. Optional: nil unless requested via
	// NewPostingsBatchWithPresence.
	Present *bitset.BitSet
}

// NewPostingsBatch allocates a batch of the given capacity.
func NewPostingsBatch(capacity int) *PostingsBatch {
	return &PostingsBatch{
		Docs:  make([]int32, capacity),
		Freqs: make([]int32, capacity),
	}
}

// NewPostingsBatchWithPresence allocates a batch that also tracks, via a
// bitset, which slots were filled on the most recent NextBatch call.
func NewPostingsBatchWithPresence(capacity int) *PostingsBatch {
	b := NewPostingsBatch(capacity)
	b.Present = bitset.New(uint(capacity))
	return b
}

// Capacity returns the batch's fixed slot count.
func (b *PostingsBatch) Capacity() int { return len(b.Docs) }

// MarkPresence refreshes Present (if the batch was allocated with one) to
// mark slots [0, Count) as filled. NextBatch implementers that fill a
// presence-tracking batch must call this after setting Count.
func (b *PostingsBatch) MarkPresence() {
	if b.Present == nil {
		return
	}
	b.Present.ClearAll()
	for i := 0; i < b.Count; i++ {
		b.Present.Set(uint(i))
	}
}

// PostingsEnum iterates over the (docID, freq) postings of one term.
// NextDoc/Advance are the only methods that advance position; Freq/DocID
// are only meaningful after a successful advance.
type PostingsEnum interface {
	// DocID returns the current document, or -1 before the first advance.
	DocID() int32
	// NextDoc advances to the next document, or returns NoMoreDocs.
	NextDoc() (int32, error)
	// Advance moves to the first document >= target, or returns
	// NoMoreDocs. A linear scan (repeated NextDoc) is always a correct
	// implementation; block-skipping is an optimization.
	Advance(target int32) (int32, error)
	// Freq returns the term frequency in the current document.
	Freq() int32
	// Cost returns an upper bound on the number of documents remaining.
	Cost() int64
}

// BatchPostingsEnum extends PostingsEnum with batch-at-a-time refill.
type BatchPostingsEnum interface {
	PostingsEnum
	// NextBatch fills batch with up to batch.Capacity() postings and
	// returns the count filled; 0 signals exhaustion. Intermixing
	// NextBatch with NextDoc/Advance on the same iterator is undefined by
	// contract — callers choose one traversal mode.
	NextBatch(batch *PostingsBatch) (int, error)
}

// batchRefiller is the subset of BatchPostingsEnum a BatchCursor needs to
// implement NextDoc/Advance/Freq on top of NextBatch.
type batchRefiller interface {
	NextBatch(batch *PostingsBatch) (int, error)
}

// BatchCursor implements the one-at-a-time PostingsEnum methods on top of
// any type exposing NextBatch, refilling a small internal batch (capacity
// 8) and stepping through it. Embed it in a BatchPostingsEnum implementation
// and delegate NextDoc/Advance/Freq/DocID to it.
type BatchCursor struct {
	src   batchRefiller
	batch *PostingsBatch
	pos   int
	doc   int32
	freq  int32
}

// NewBatchCursor returns a cursor reading from src via its NextBatch method.
func NewBatchCursor(src batchRefiller) *BatchCursor {
	return &BatchCursor{
		src:   src,
		batch: NewPostingsBatch(8),
		doc:   -1,
	}
}

// DocID returns the current document, or -1 before the first advance.
func (c *BatchCursor) DocID() int32 { return c.doc }

// Freq returns the term frequency in the current document.
func (c *BatchCursor) Freq() int32 { return c.freq }

// NextDoc advances one document at a time, refilling the internal batch as
// needed.
func (c *BatchCursor) NextDoc() (int32, error) {
	if c.pos >= c.batch.Count {
		count, err := c.src.NextBatch(c.batch)
		if err != nil {
			return 0, err
		}
		c.pos = 0
		if count == 0 {
			c.doc = NoMoreDocs
			return NoMoreDocs, nil
		}
	}
	c.doc = c.batch.Docs[c.pos]
	c.freq = c.batch.Freqs[c.pos]
	c.pos++
	return c.doc, nil
}

// Advance implements the required linear-scan fallback: repeated NextDoc
// until a document >= target is reached.
func (c *BatchCursor) Advance(target int32) (int32, error) {
	for c.doc < target && c.doc != NoMoreDocs {
		if _, err := c.NextDoc(); err != nil {
			return 0, err
		}
	}
	return c.doc, nil
}
