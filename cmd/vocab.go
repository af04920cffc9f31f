package main

import (
	"fmt"

	"codecomp-go/internal/service/pipeline"
	"codecomp-go/internal/service/vocab"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	vocabInput  string
	vocabOutput string
	vocabList   bool
)

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Build the fragment vocabulary of a corpus",
	Long: `Run only the vocabulary pass of the ids mode and report the vocabulary size
and the number of samples the encoding pass would produce.

Examples:
  codecomp vocab --input corpus.txt
  codecomp vocab --input corpus.txt --output model --list`,
	RunE: runVocab,
}

func init() {
	vocabCmd.Flags().StringVarP(&vocabInput, "input", "i", "", "Corpus file, one token list per line")
	vocabCmd.Flags().StringVarP(&vocabOutput, "output", "o", "", "Store the vocabulary in <output>.voc")
	vocabCmd.Flags().BoolVar(&vocabList, "list", false, "Print every entry with its index")
	_ = vocabCmd.MarkFlagRequired("input")
}

func runVocab(cmd *cobra.Command, _ []string) error {
	p, err := pipeline.New(cfg.Pipeline, logger)
	if err != nil {
		return err
	}

	res, err := vocab.Build(cmd.Context(), p.Reader(vocabInput), p.Segmenter(), cfg.Pipeline.EffectiveStartOffset(), logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "vocabulary: %s samples: %s skipped lines: %d\n",
		humanize.Comma(int64(res.Vocabulary.Len())), humanize.Comma(int64(res.Samples)), res.Stats.Skipped)
	if vocabList {
		for i, label := range res.Vocabulary.Labels() {
			fmt.Fprintf(out, "%d\t%s\n", i, label)
		}
	}

	if vocabOutput != "" {
		return vocab.NewPersistence(logger).Save(res.Vocabulary, vocabOutput, p.Segmenter().Stemmer().Name())
	}
	return nil
}
