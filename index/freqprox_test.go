package index

import (
	"reflect"
	"testing"
)

func TestAccumulatorRecordAndStats(t *testing.T) {
	acc := NewAccumulator()
	acc.Record("content", "apple", 0)
	acc.Record("content", "banana", 1)
	acc.Record("content", "apple", 2)
	acc.Record("content", "apple", 2) // repeat doc: freq increments, not a new posting

	docs, freqs, ok := acc.PostingList("content", "apple")
	if !ok {
		t.Fatal("expected apple posting list")
	}
	if !reflect.DeepEqual(docs, []int32{0, 2}) {
		t.Errorf("docs = %v, want [0 2]", docs)
	}
	if !reflect.DeepEqual(freqs, []int32{1, 2}) {
		t.Errorf("freqs = %v, want [1 2]", freqs)
	}

	stats := acc.FieldStatsFor("content")
	if stats.DocCount != 3 {
		t.Errorf("docCount = %d, want 3", stats.DocCount)
	}
	if stats.SumDocFreq != 3 { // apple:2 distinct docs, banana:1 distinct doc
		t.Errorf("sumDocFreq = %d, want 3", stats.SumDocFreq)
	}
	if stats.SumTotalTermFreq != 4 {
		t.Errorf("sumTotalTermFreq = %d, want 4", stats.SumTotalTermFreq)
	}
}

func TestAccumulatorTermsForFieldSorted(t *testing.T) {
	acc := NewAccumulator()
	acc.Record("content", "cherry", 0)
	acc.Record("content", "apple", 1)
	acc.Record("content", "banana", 2)

	terms := acc.TermsForField("content")
	want := []string{"apple", "banana", "cherry"}
	if !reflect.DeepEqual(terms, want) {
		t.Errorf("terms = %v, want %v", terms, want)
	}
}

func TestAccumulatorFieldDeclarationOrder(t *testing.T) {
	acc := NewAccumulator()
	acc.Record("title", "x", 0)
	acc.Record("content", "y", 0)
	acc.Record("title", "z", 1)

	want := []string{"title", "content"}
	if got := acc.Fields(); !reflect.DeepEqual(got, want) {
		t.Errorf("Fields() = %v, want %v", got, want)
	}
}

// tinyRoundTrip is scenario 1 from spec.md §8: docs 0..9 cycling through
// apple/banana/cherry.
func TestAccumulatorTinyRoundTripScenario(t *testing.T) {
	acc := NewAccumulator()
	cycle := []string{"apple", "banana", "cherry"}
	for doc := int32(0); doc < 10; doc++ {
		acc.Record("content", cycle[doc%3], doc)
	}

	fieldInfos := NewFieldInfos()
	fieldInfos.Add("content", true)
	fields := NewFreqProxFields(acc, fieldInfos)

	terms, err := fields.Terms("content")
	if err != nil || terms == nil {
		t.Fatalf("Terms(content) = %v, %v", terms, err)
	}

	it, err := terms.Iterator()
	if err != nil {
		t.Fatal(err)
	}

	wantDocFreq := map[string]int{"apple": 4, "banana": 3, "cherry": 3}
	wantOrder := []string{"apple", "banana", "cherry"}
	var gotOrder []string

	for {
		has, err := it.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !has {
			break
		}
		term, err := it.Term()
		if err != nil {
			t.Fatal(err)
		}
		gotOrder = append(gotOrder, string(term))

		df, err := it.DocFreq()
		if err != nil {
			t.Fatal(err)
		}
		if df != wantDocFreq[string(term)] {
			t.Errorf("docFreq(%s) = %d, want %d", term, df, wantDocFreq[string(term)])
		}

		pe, err := it.Postings()
		if err != nil {
			t.Fatal(err)
		}
		for {
			doc, err := pe.NextDoc()
			if err != nil {
				t.Fatal(err)
			}
			if doc == NoMoreDocs {
				break
			}
			if pe.Freq() != 1 {
				t.Errorf("freq(%s, doc %d) = %d, want 1", term, doc, pe.Freq())
			}
		}
	}

	if !reflect.DeepEqual(gotOrder, wantOrder) {
		t.Errorf("term order = %v, want %v", gotOrder, wantOrder)
	}
}

func TestTermsEnumInvalidCursorBeforePositioning(t *testing.T) {
	acc := NewAccumulator()
	acc.Record("content", "apple", 0)

	terms := &freqProxTerms{field: "content", acc: acc}
	it, _ := terms.Iterator()

	if _, err := it.Term(); err == nil {
		t.Error("expected error calling Term() before positioning")
	}
	if _, err := it.DocFreq(); err == nil {
		t.Error("expected error calling DocFreq() before positioning")
	}
	if _, err := it.Postings(); err == nil {
		t.Error("expected error calling Postings() before positioning")
	}
}

func TestTermsEnumSeekCeilAndExact(t *testing.T) {
	acc := NewAccumulator()
	acc.Record("content", "apple", 0)
	acc.Record("content", "cherry", 1)

	terms := &freqProxTerms{field: "content", acc: acc}
	it, _ := terms.Iterator()

	status, err := it.SeekCeil([]byte("banana"))
	if err != nil {
		t.Fatal(err)
	}
	if status != SeekStatusNotFound {
		t.Errorf("SeekCeil(banana) = %v, want NotFound", status)
	}
	term, _ := it.Term()
	if string(term) != "cherry" {
		t.Errorf("after SeekCeil(banana), term = %q, want cherry", term)
	}

	ok, err := it.SeekExact([]byte("apple"))
	if err != nil || !ok {
		t.Fatalf("SeekExact(apple) = %v, %v", ok, err)
	}

	status, err = it.SeekCeil([]byte("zzz"))
	if err != nil {
		t.Fatal(err)
	}
	if status != SeekStatusEnd {
		t.Errorf("SeekCeil(zzz) = %v, want End", status)
	}
}

func TestPostingsEnumAdvancePastEnd(t *testing.T) {
	acc := NewAccumulator()
	acc.Record("content", "apple", 0)
	acc.Record("content", "apple", 5)

	terms := &freqProxTerms{field: "content", acc: acc}
	it, _ := terms.Iterator()
	if _, err := it.SeekExact([]byte("apple")); err != nil {
		t.Fatal(err)
	}
	pe, err := it.Postings()
	if err != nil {
		t.Fatal(err)
	}
	doc, err := pe.Advance(100)
	if err != nil {
		t.Fatal(err)
	}
	if doc != NoMoreDocs {
		t.Errorf("Advance(100) = %d, want NoMoreDocs", doc)
	}
	// Subsequent NextDoc must not reposition.
	doc, err = pe.NextDoc()
	if err != nil {
		t.Fatal(err)
	}
	if doc != NoMoreDocs {
		t.Errorf("NextDoc after exhaustion = %d, want NoMoreDocs", doc)
	}
}

func TestPostingsEnumNextBatch(t *testing.T) {
	acc := NewAccumulator()
	for doc := int32(0); doc < 20; doc++ {
		acc.Record("content", "apple", doc)
	}

	terms := &freqProxTerms{field: "content", acc: acc}
	it, _ := terms.Iterator()
	if _, err := it.SeekExact([]byte("apple")); err != nil {
		t.Fatal(err)
	}
	pe, err := it.PostingsBatch(true)
	if err != nil {
		t.Fatal(err)
	}
	batchPe, ok := pe.(BatchPostingsEnum)
	if !ok {
		t.Fatal("expected BatchPostingsEnum")
	}

	batch := NewPostingsBatch(8)
	var all []int32
	for {
		n, err := batchPe.NextBatch(batch)
		if err != nil {
			t.Fatal(err)
		}
		if n == 0 {
			break
		}
		all = append(all, batch.Docs[:n]...)
	}
	if len(all) != 20 {
		t.Errorf("got %d docs via batch, want 20", len(all))
	}
	for i, d := range all {
		if d != int32(i) {
			t.Errorf("all[%d] = %d, want %d", i, d, i)
		}
	}
}
