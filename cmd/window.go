package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"codecomp-go/internal/model/token"
	"codecomp-go/internal/service/pipeline"
	"codecomp-go/internal/service/units"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var windowModel string

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Show the query window a model sees for each input line",
	Long: `Read token lists from stdin and print, for each one, the rows of the
right-aligned query window that a model trained with the same settings would
be queried with. Empty rows are omitted; a line that cannot be encoded
prints an empty line.

Example:
  echo '[ID_S, "getUserName", "(", ID_S, "userId"]' | codecomp window --model model`,
	RunE: runWindow,
}

func init() {
	windowCmd.Flags().StringVarP(&windowModel, "model", "m", "", "Model path whose <model>.voc is loaded in ids mode")
}

func identifier(name string) token.Context {
	return token.Context{token.Sentinel(token.Ident), token.Literal(name)}
}

func runWindow(cmd *cobra.Command, _ []string) error {
	p, err := pipeline.New(cfg.Pipeline, logger)
	if err != nil {
		return err
	}
	if p.Mode().UsesVocabulary() && windowModel == "" {
		return fmt.Errorf("mode %s needs --model", p.Mode())
	}

	// only queries are built, nothing is predicted
	suggester, err := p.Suggester(windowModel, nil)
	if err != nil {
		return err
	}
	lex := suggester.Lexicon()

	out := cmd.OutOrStdout()
	br := bufio.NewReader(cmd.InOrStdin())
	for {
		line, readErr := br.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return fmt.Errorf("failed to read query: %w", readErr)
		}
		if readErr == io.EOF && line == "" {
			return nil
		}

		x, err := suggester.Query(strings.TrimRight(line, "\r\n"))
		if err != nil {
			logger.Warn("Failed to encode query", zap.Error(err))
			fmt.Fprintln(out)
		} else {
			fmt.Fprintln(out, describeWindow(x, lex))
		}

		if readErr == io.EOF {
			return nil
		}
	}
}

// describeWindow lists the labels of every non-empty row of x
func describeWindow(x []float32, lex units.Lexicon) string {
	width := lex.Len()
	var rows []string
	for off := 0; off+width <= len(x) && width > 0; off += width {
		var labels []string
		for i, v := range x[off : off+width] {
			if v != 0 {
				labels = append(labels, lex.Label(i))
			}
		}
		if len(labels) > 0 {
			rows = append(rows, "["+strings.Join(labels, " ")+"]")
		}
	}
	return strings.Join(rows, " ")
}
