package main

import (
	"fmt"

	"github.com/go-mizu/diagon/codecs/lucene105"
	"github.com/go-mizu/diagon/store"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newTermsCmd() *cobra.Command {
	var segmentDir, segmentName, field string

	cmd := &cobra.Command{
		Use:   "terms",
		Short: "List a field's terms with their document and total frequencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTerms(segmentDir, segmentName, field)
		},
	}
	cmd.Flags().StringVar(&segmentDir, "segment-dir", "./segment", "directory holding the segment files")
	cmd.Flags().StringVar(&segmentName, "segment", "seg0", "segment name (file prefix)")
	cmd.Flags().StringVar(&field, "field", "body", "field to list terms for")
	return cmd
}

func runTerms(segmentDir, segmentName, field string) error {
	dir := store.NewFSDirectory(segmentDir)
	seg, err := lucene105.OpenSegment(dir, segmentName)
	if err != nil {
		return errors.Wrap(err, "diagonctl: opening segment")
	}

	terms, err := seg.Terms(field)
	if err != nil {
		return errors.Wrap(err, "diagonctl: reading field terms")
	}
	if terms == nil {
		return errors.Errorf("diagonctl: field %q not present in segment %q", field, segmentName)
	}
	stats := terms.Stats()
	fmt.Printf("field %q: docCount=%d sumDocFreq=%d sumTotalTermFreq=%d\n",
		field, stats.DocCount, stats.SumDocFreq, stats.SumTotalTermFreq)

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
		ttf, err := it.TotalTermFreq()
		if err != nil {
			return err
		}
		fmt.Printf("%-20s docFreq=%-6d totalTermFreq=%d\n", term, df, ttf)
	}
	return nil
}
