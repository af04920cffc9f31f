package vocab

import (
	"context"
	"fmt"

	"codecomp-go/internal/model/token"
	"codecomp-go/internal/service/corpus"
	"codecomp-go/internal/service/segment"

	"go.uber.org/zap"
)

// Result is the outcome of the vocabulary pass
type Result struct {
	Vocabulary *Vocabulary
	// Samples is the exact number of samples the encoding pass will produce
	Samples int
	Stats   corpus.Stats
}

// Build streams src once, adds every fragment of every kept identifier to a
// new vocabulary and counts the samples each line contributes: one per word
// past the first startOffset words.
func Build(ctx context.Context, src corpus.Source, seg *segment.Segmenter, startOffset int, logger *zap.Logger) (*Result, error) {
	b := NewBuilder()
	samples := 0

	stats, err := src.Each(ctx, func(line int, c token.Context) error {
		words := seg.Words(c)
		for _, w := range words {
			for _, frag := range w {
				b.Add(frag)
			}
		}
		if n := len(words) - startOffset; n > 0 {
			samples += n
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("vocabulary pass failed: %w", err)
	}

	v := b.Vocabulary()
	logger.Info("Vocabulary pass complete",
		zap.Int("vocabulary", v.Len()),
		zap.Int("samples", samples),
		zap.Int("lines", stats.Lines),
		zap.Int("skipped_lines", stats.Skipped),
		zap.String("stemmer", seg.Stemmer().Name()),
	)

	return &Result{Vocabulary: v, Samples: samples, Stats: stats}, nil
}
