package main

import (
	"fmt"

	"github.com/go-mizu/diagon/codecs/lucene105"
	"github.com/go-mizu/diagon/index"
	"github.com/go-mizu/diagon/store"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	var segmentDir, segmentName string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Re-read every term's postings and confirm docFreq/cost/docID order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(segmentDir, segmentName)
		},
	}
	cmd.Flags().StringVar(&segmentDir, "segment-dir", "./segment", "directory holding the segment files")
	cmd.Flags().StringVar(&segmentName, "segment", "seg0", "segment name (file prefix)")
	return cmd
}

func runVerify(segmentDir, segmentName string) error {
	dir := store.NewFSDirectory(segmentDir)
	seg, err := lucene105.OpenSegment(dir, segmentName)
	if err != nil {
		return errors.Wrap(err, "diagonctl: opening segment")
	}

	var termCount, postingCount int
	for _, field := range seg.FieldNames() {
		terms, err := seg.Terms(field)
		if err != nil {
			return err
		}
		it, err := terms.Iterator()
		if err != nil {
			return err
		}
		for {
			has, err := it.Next()
			if err != nil {
				return err
			}
			if !has {
				break
			}
			term, err := it.Term()
			if err != nil {
				return err
			}
			df, err := it.DocFreq()
			if err != nil {
				return err
			}
			if err := verifyTermPostings(it, field, string(term), df); err != nil {
				return err
			}
			termCount++
			postingCount += df
		}
	}

	fmt.Printf("verified: %d terms, %d postings across %d fields\n", termCount, postingCount, len(seg.FieldNames()))
	return nil
}

func verifyTermPostings(it index.TermsEnum, field, term string, docFreq int) error {
	pe, err := it.Postings()
	if err != nil {
		return err
	}
	if cost := pe.Cost(); int(cost) != docFreq {
		return errors.Errorf("diagonctl: %s/%s: Cost() = %d, want exactly docFreq %d", field, term, cost, docFreq)
	}

	var lastDoc int32 = -1
	count := 0
	for {
		doc, err := pe.NextDoc()
		if err != nil {
			return err
		}
		if doc == index.NoMoreDocs {
			break
		}
		if doc <= lastDoc {
			return errors.Errorf("diagonctl: %s/%s: docIDs out of order: %d after %d", field, term, doc, lastDoc)
		}
		lastDoc = doc
		count++
	}
	if count != docFreq {
		return errors.Errorf("diagonctl: %s/%s: walked %d postings, want docFreq %d", field, term, count, docFreq)
	}
	return nil
}
