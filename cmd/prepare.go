package main

import (
	"context"
	"fmt"
	"io"

	"codecomp-go/internal/service/dataset"
	"codecomp-go/internal/service/pipeline"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	prepareInput  string
	prepareOutput string
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Encode a corpus into training tensors",
	Long: `Run the vocabulary, counting and encoding passes over a corpus.

The ids mode stores the vocabulary in <output>.voc. With --cache the
unshuffled dataset is written to <input>.dataset and reused by later runs
with the same settings.

Examples:
  codecomp prepare --input corpus.txt --output model
  codecomp prepare --input corpus.txt --mode unified --cache`,
	RunE: runPrepare,
}

func init() {
	prepareCmd.Flags().StringVarP(&prepareInput, "input", "i", "", "Corpus file, one token list per line")
	prepareCmd.Flags().StringVarP(&prepareOutput, "output", "o", "", "Model path the vocabulary is stored beside")
	_ = prepareCmd.MarkFlagRequired("input")
}

// shapeReporter stands in for a trainer and prints what it would be fed
type shapeReporter struct {
	out io.Writer
}

func (r shapeReporter) Fit(_ context.Context, d *dataset.Dataset) error {
	x, y := d.Shape()
	fmt.Fprintf(r.out, "x: (%d, %d, %d)\n", x[0], x[1], x[2])
	fmt.Fprintf(r.out, "y: (%d, %d)\n", y[0], y[1])
	fmt.Fprintf(r.out, "size: %s\n", humanize.Bytes(d.Bytes()))
	return nil
}

func runPrepare(cmd *cobra.Command, _ []string) error {
	p, err := pipeline.New(cfg.Pipeline, logger)
	if err != nil {
		return err
	}

	res, err := p.Train(cmd.Context(), prepareInput, prepareOutput, shapeReporter{out: cmd.OutOrStdout()})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "mode: %s, columns: %s\n", res.Mode, humanize.Comma(int64(res.Lexicon.Len())))
	return nil
}
