package main

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-mizu/diagon/codecs/lucene105"
	"github.com/go-mizu/diagon/index"
	"github.com/go-mizu/diagon/store"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newIndexCmd() *cobra.Command {
	var segmentDir, segmentName, field string

	cmd := &cobra.Command{
		Use:   "index <text-dir>",
		Short: "Tokenize every file under text-dir and write a segment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(args[0], segmentDir, segmentName, field)
		},
	}
	cmd.Flags().StringVar(&segmentDir, "out", "./segment", "directory the segment files are written to")
	cmd.Flags().StringVar(&segmentName, "segment", "seg0", "segment name (file prefix)")
	cmd.Flags().StringVar(&field, "field", "body", "field name every token is recorded under")
	return cmd
}

func runIndex(textDir, segmentDir, segmentName, field string) error {
	if err := os.MkdirAll(segmentDir, 0o755); err != nil {
		return errors.Wrap(err, "diagonctl: creating segment directory")
	}

	acc := index.NewAccumulator()
	infos := index.NewFieldInfos()
	infos.Add(field, true)

	var docID int32
	err := filepath.WalkDir(textDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		slog.Debug("indexing file", "path", path, "doc", docID)
		if err := indexFile(acc, field, path, docID); err != nil {
			return errors.Wrapf(err, "diagonctl: indexing %s", path)
		}
		docID++
		return nil
	})
	if err != nil {
		return err
	}

	fields := index.NewFreqProxFields(acc, infos)
	dir := store.NewFSDirectory(segmentDir)
	if err := lucene105.WriteSegment(dir, segmentName, fields); err != nil {
		return errors.Wrap(err, "diagonctl: writing segment")
	}

	slog.Info("wrote segment", "dir", segmentDir, "segment", segmentName, "docs", docID)
	return nil
}

// indexFile records every whitespace-delimited, lowercased token in path
// under field, in file order, all against the same docID.
func indexFile(acc *index.Accumulator, field, path string, docID int32) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		term := strings.ToLower(strings.Trim(scanner.Text(), ".,;:!?\"'()[]{}"))
		if term == "" {
			continue
		}
		acc.Record(field, term, docID)
	}
	return scanner.Err()
}
