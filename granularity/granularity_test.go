package granularity

import (
	"errors"
	"testing"

	"github.com/go-mizu/diagon/diagonerr"
)

// TestAdaptiveScenario is spec.md §8 scenario 6: after addMark(100),
// addMark(150), addMark(200), getMarkContainingRow(249) = 1,
// getMarkContainingRow(250) = 2, rowsCountInRange(1,3) = 350, no final mark.
func TestAdaptiveScenario(t *testing.T) {
	g := NewAdaptive()
	g.AddMark(100)
	g.AddMark(150)
	g.AddMark(200)

	got, err := g.MarkContainingRow(249)
	if err != nil || got != 1 {
		t.Fatalf("MarkContainingRow(249) = %d, %v, want 1", got, err)
	}
	got, err = g.MarkContainingRow(250)
	if err != nil || got != 2 {
		t.Fatalf("MarkContainingRow(250) = %d, %v, want 2", got, err)
	}
	if rows := g.RowsCountInRange(1, 3); rows != 350 {
		t.Errorf("RowsCountInRange(1,3) = %d, want 350", rows)
	}
	if g.HasFinalMark() {
		t.Error("expected no final mark")
	}
}

func TestAdaptiveFinalMark(t *testing.T) {
	g := NewAdaptive()
	g.AddMark(100)
	g.AddMark(0)
	if !g.HasFinalMark() {
		t.Error("expected final mark after a trailing zero-row AddMark")
	}
}

func TestAdaptiveMarkRowsOutOfRange(t *testing.T) {
	g := NewAdaptive()
	g.AddMark(10)
	if _, err := g.MarkRows(5); !errors.Is(err, diagonerr.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestAdaptiveMarkContainingRowEmptyGranularity(t *testing.T) {
	g := NewAdaptive()
	if _, err := g.MarkContainingRow(0); !errors.Is(err, diagonerr.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange on empty granularity, got %v", err)
	}
}

func TestConstantMarkContainingRow(t *testing.T) {
	c := NewConstant(100, 5) // 5 marks of 100 rows each: 500 rows total
	for _, tc := range []struct {
		row  int
		want int
	}{
		{0, 0}, {99, 0}, {100, 1}, {499, 4},
	} {
		got, err := c.MarkContainingRow(tc.row)
		if err != nil || got != tc.want {
			t.Errorf("MarkContainingRow(%d) = %d, %v, want %d", tc.row, got, err, tc.want)
		}
	}
}

func TestConstantRowsCountInRange(t *testing.T) {
	c := NewConstant(64, 10)
	if rows := c.RowsCountInRange(2, 5); rows != 3*64 {
		t.Errorf("RowsCountInRange(2,5) = %d, want %d", rows, 3*64)
	}
}

func TestConstantNeverHasFinalMark(t *testing.T) {
	c := NewConstant(8192, 3)
	if c.HasFinalMark() {
		t.Error("constant granularity must never report a final mark")
	}
}

func TestConstantOutOfRangeRow(t *testing.T) {
	c := NewConstant(100, 2) // rows [0, 200)
	if _, err := c.MarkContainingRow(200); !errors.Is(err, diagonerr.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

// TestMarkContainingRowInvariant checks the invariant from spec.md §8 property 7:
// mark_containing_row(rows_count_in_range(0, m)) = m for any nonempty mark m.
func TestMarkContainingRowInvariant(t *testing.T) {
	cases := []Granularity{
		NewConstant(50, 10),
		func() Granularity {
			g := NewAdaptive()
			for _, rows := range []int{10, 20, 30, 40} {
				g.AddMark(rows)
			}
			return g
		}(),
	}

	for _, g := range cases {
		for m := 0; m < g.MarksCount(); m++ {
			rows, err := g.MarkRows(m)
			if err != nil {
				t.Fatal(err)
			}
			if rows == 0 {
				continue // invariant only holds for nonempty marks
			}
			rowsBefore := g.RowsCountInRange(0, m)
			got, err := g.MarkContainingRow(rowsBefore)
			if err != nil {
				t.Fatal(err)
			}
			if got != m {
				t.Errorf("MarkContainingRow(RowsCountInRange(0,%d)) = %d, want %d", m, got, m)
			}
		}
	}
}

func TestMarkRangesToRows(t *testing.T) {
	g := NewConstant(100, 5)
	ranges := []MarkRange{{Begin: 0, End: 2}, {Begin: 3, End: 3}, {Begin: 3, End: 5}}
	rows := MarkRangesToRows(ranges, g)
	want := []RowRange{{Begin: 0, End: 200}, {Begin: 300, End: 500}}
	if len(rows) != len(want) {
		t.Fatalf("got %d row ranges, want %d", len(rows), len(want))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("rows[%d] = %+v, want %+v", i, rows[i], want[i])
		}
	}
}

func TestMarkRangeEmpty(t *testing.T) {
	if !(MarkRange{Begin: 3, End: 3}).Empty() {
		t.Error("begin == end should be empty")
	}
	if (MarkRange{Begin: 0, End: 1}).Empty() {
		t.Error("begin < end should not be empty")
	}
}

func TestGranuleWriterConstant(t *testing.T) {
	w, err := NewWriter(Config{IndexGranularity: 10})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if w.ShouldFinishGranule(9) {
		t.Error("should not finish granule before row threshold")
	}
	if !w.ShouldFinishGranule(10) {
		t.Error("should finish granule at row threshold")
	}
	if err := w.FinishGranule(10); err != nil {
		t.Fatal(err)
	}
	if w.Granularity().MarksCount() != 1 {
		t.Errorf("MarksCount() = %d, want 1", w.Granularity().MarksCount())
	}
}

func TestGranuleWriterAdaptiveByteThreshold(t *testing.T) {
	w, err := NewWriter(Config{IndexGranularity: 1_000_000, IndexGranularityBytes: 16})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if w.ShouldFinishGranule(1) {
		t.Error("should not finish before any bytes tracked")
	}
	// Write enough data (a repeating 256-byte pattern) that the
	// zstd-compressed size crosses the 16-byte threshold.
	raw := make([]byte, 4096)
	for i := range raw {
		raw[i] = byte(i * 131)
	}
	if err := w.TrackBytes(raw); err != nil {
		t.Fatal(err)
	}
	if !w.ShouldFinishGranule(1) {
		t.Error("should finish granule once byte threshold is exceeded")
	}
	if err := w.FinishGranule(500); err != nil {
		t.Fatal(err)
	}
	if w.BytesWrittenInGranule() != 0 {
		t.Errorf("BytesWrittenInGranule() after FinishGranule = %d, want 0", w.BytesWrittenInGranule())
	}
}
