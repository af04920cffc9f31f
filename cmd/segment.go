package main

import (
	"fmt"
	"strings"

	"codecomp-go/internal/service/pipeline"

	"github.com/spf13/cobra"
)

var segmentCmd = &cobra.Command{
	Use:   "segment NAME...",
	Short: "Print the fragments of identifier names",
	Long: `Split identifier names the way the ids mode does, applying the configured
stemmer and public-only filter.

Example:
  codecomp segment getUserName XMLHttpRequest --stemming`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSegment,
}

func runSegment(cmd *cobra.Command, args []string) error {
	p, err := pipeline.New(cfg.Pipeline, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, name := range args {
		line := name + ":"
		// one word at most; filtered or fragment-free names print bare
		if words := p.Segmenter().Words(identifier(name)); len(words) > 0 {
			line += " " + strings.Join(words[0], " ")
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
