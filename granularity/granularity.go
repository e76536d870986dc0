// Package granularity implements the row↔mark bookkeeping a columnar
// sibling structure uses to map logical row ranges to block positions:
// constant (fixed rows per mark) and adaptive (variable rows, tracked as
// cumulative sums) granularity, mark ranges, and a granule-boundary driver.
package granularity

import (
	"sort"

	"github.com/go-mizu/diagon/diagonerr"
	"github.com/pkg/errors"
)

// Granularity maps rows to marks. Constant and Adaptive are the two
// implementations.
type Granularity interface {
	// MarksCount returns the number of marks recorded so far.
	MarksCount() int
	// MarkRows returns the row count of mark i. Fails with ErrOutOfRange
	// if i is outside [0, MarksCount()).
	MarkRows(i int) (int, error)
	// RowsCountInRange returns the total rows in marks [begin, end).
	RowsCountInRange(begin, end int) int
	// MarkContainingRow returns the index of the mark containing row.
	// Fails with ErrOutOfRange if row is beyond the granularity's rows.
	MarkContainingRow(row int) (int, error)
	// CountMarksForRows returns how many marks, starting at fromMark, are
	// needed to cover numberOfRows rows.
	CountMarksForRows(fromMark, numberOfRows int) int
	// HasFinalMark reports whether the last mark is a zero-row sentinel.
	HasFinalMark() bool
	// Empty reports whether no marks have been recorded.
	Empty() bool
	// TotalRows returns the sum of all mark row counts.
	TotalRows() int
	// AddMark records a new mark covering the given row count.
	AddMark(rows int)
}

// Constant implements fixed-rows-per-mark granularity: mark i covers rows
// [i*G, (i+1)*G). Never produces a final mark.
type Constant struct {
	granularity int
	numMarks    int
}

// NewConstant returns a Constant granularity with the given rows-per-mark.
// numMarks seeds an already-written granularity (0 for a fresh writer).
func NewConstant(rowsPerMark int, numMarks int) *Constant {
	return &Constant{granularity: rowsPerMark, numMarks: numMarks}
}

func (c *Constant) MarksCount() int { return c.numMarks }

func (c *Constant) MarkRows(i int) (int, error) {
	if i < 0 || i >= c.numMarks {
		return 0, errors.Wrapf(diagonerr.ErrOutOfRange, "granularity: mark %d outside [0, %d)", i, c.numMarks)
	}
	return c.granularity, nil
}

func (c *Constant) RowsCountInRange(begin, end int) int {
	if end <= begin {
		return 0
	}
	if end > c.numMarks {
		end = c.numMarks
	}
	if begin >= c.numMarks {
		return 0
	}
	rows := 0
	if end > begin+1 {
		rows += (end - begin - 1) * c.granularity
	}
	if end > begin {
		last, _ := c.MarkRows(end - 1)
		rows += last
	}
	return rows
}

func (c *Constant) MarkContainingRow(row int) (int, error) {
	mark := row / c.granularity
	if mark >= c.numMarks {
		return 0, errors.Wrapf(diagonerr.ErrOutOfRange, "granularity: row %d outside granularity", row)
	}
	return mark, nil
}

func (c *Constant) CountMarksForRows(fromMark, numberOfRows int) int {
	if fromMark >= c.numMarks {
		return 0
	}
	fromRow := fromMark * c.granularity
	toRow := fromRow + numberOfRows
	toMark := (toRow + c.granularity - 1) / c.granularity
	if toMark > c.numMarks {
		toMark = c.numMarks
	}
	return toMark - fromMark
}

func (c *Constant) HasFinalMark() bool { return false }
func (c *Constant) Empty() bool        { return c.numMarks == 0 }

func (c *Constant) TotalRows() int {
	if c.numMarks == 0 {
		return 0
	}
	return c.RowsCountInRange(0, c.numMarks)
}

func (c *Constant) AddMark(rows int) { c.numMarks++ }

// Granularity returns the configured rows-per-mark.
func (c *Constant) Granularity() int { return c.granularity }

// Adaptive implements variable-rows-per-mark granularity, storing
// cumulative row counts to enable O(log n) row<->mark conversions. May end
// with a final empty mark.
type Adaptive struct {
	partialSums []int // partialSums[i] = total rows from start through mark i
}

// NewAdaptive returns an empty Adaptive granularity.
func NewAdaptive() *Adaptive {
	return &Adaptive{}
}

func (a *Adaptive) MarksCount() int { return len(a.partialSums) }

func (a *Adaptive) MarkRows(i int) (int, error) {
	if i < 0 || i >= len(a.partialSums) {
		return 0, errors.Wrapf(diagonerr.ErrOutOfRange, "granularity: mark %d outside [0, %d)", i, len(a.partialSums))
	}
	if i == 0 {
		return a.partialSums[0], nil
	}
	return a.partialSums[i] - a.partialSums[i-1], nil
}

func (a *Adaptive) RowsCountInRange(begin, end int) int {
	if end <= begin {
		return 0
	}
	if end > len(a.partialSums) {
		end = len(a.partialSums)
	}
	if begin >= len(a.partialSums) {
		return 0
	}
	endRows := a.partialSums[end-1]
	beginRows := 0
	if begin > 0 {
		beginRows = a.partialSums[begin-1]
	}
	return endRows - beginRows
}

func (a *Adaptive) MarkContainingRow(row int) (int, error) {
	if len(a.partialSums) == 0 {
		return 0, errors.Wrap(diagonerr.ErrOutOfRange, "granularity: no marks")
	}
	i := sort.Search(len(a.partialSums), func(i int) bool { return a.partialSums[i] > row })
	if i == len(a.partialSums) {
		return 0, errors.Wrapf(diagonerr.ErrOutOfRange, "granularity: row %d out of range", row)
	}
	return i, nil
}

func (a *Adaptive) CountMarksForRows(fromMark, numberOfRows int) int {
	if fromMark >= len(a.partialSums) {
		return 0
	}
	rowsBefore := 0
	if fromMark > 0 {
		rowsBefore = a.partialSums[fromMark-1]
	}
	targetRow := rowsBefore + numberOfRows

	i := sort.Search(len(a.partialSums)-fromMark, func(i int) bool {
		return a.partialSums[fromMark+i] >= targetRow
	})
	if i == len(a.partialSums)-fromMark {
		return len(a.partialSums) - fromMark
	}
	return i + 1
}

func (a *Adaptive) HasFinalMark() bool {
	if len(a.partialSums) == 0 {
		return false
	}
	last, _ := a.MarkRows(len(a.partialSums) - 1)
	return last == 0
}

func (a *Adaptive) Empty() bool { return len(a.partialSums) == 0 }

func (a *Adaptive) TotalRows() int {
	if len(a.partialSums) == 0 {
		return 0
	}
	return a.partialSums[len(a.partialSums)-1]
}

func (a *Adaptive) AddMark(rows int) {
	cumulative := rows
	if n := len(a.partialSums); n > 0 {
		cumulative = a.partialSums[n-1] + rows
	}
	a.partialSums = append(a.partialSums, cumulative)
}

// MarkRange is a contiguous, half-open range of marks [Begin, End).
type MarkRange struct {
	Begin, End int
}

// Empty reports whether the range contains no marks.
func (r MarkRange) Empty() bool { return r.Begin >= r.End }

// NumberOfMarks returns the range's mark count, 0 if empty.
func (r MarkRange) NumberOfMarks() int {
	if r.End > r.Begin {
		return r.End - r.Begin
	}
	return 0
}

// RowRange is a contiguous, half-open range of rows [Begin, End).
type RowRange struct {
	Begin, End int
}

// MarkRangesToRows converts each mark range to its corresponding row range,
// skipping empty ranges.
func MarkRangesToRows(ranges []MarkRange, g Granularity) []RowRange {
	rows := make([]RowRange, 0, len(ranges))
	for _, r := range ranges {
		if r.Empty() {
			continue
		}
		start := g.RowsCountInRange(0, r.Begin)
		end := g.RowsCountInRange(0, r.End)
		rows = append(rows, RowRange{Begin: start, End: end})
	}
	return rows
}

// Mark is a two-level address into a compressed columnar file: the offset
// of the compressed block holding this mark, and the byte offset within
// that block once decompressed. The core only stores and compares these;
// it never interprets the compressed-file format itself.
type Mark struct {
	CompressedOffset   uint64
	DecompressedOffset uint64
}
