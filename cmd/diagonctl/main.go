// Command diagonctl is a demo CLI over the postings core: index a
// directory of text files into a segment, list term statistics, and
// run a round-trip self-check. No CLI surface is part of the core; this
// is purely a thin ambient wrapper.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "diagonctl",
		Short: "Build and inspect diagon postings segments",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newIndexCmd())
	root.AddCommand(newTermsCmd())
	root.AddCommand(newVerifyCmd())
	return root
}
