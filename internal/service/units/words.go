package units

import (
	"slices"

	"codecomp-go/internal/model"
	"codecomp-go/internal/model/token"
	"codecomp-go/internal/service/segment"
	"codecomp-go/internal/service/vocab"

	"go.uber.org/zap"
)

// WordExtractor produces one unit per identifier occurrence: the vocabulary
// indices of its fragments
type WordExtractor struct {
	seg    *segment.Segmenter
	vocab  *vocab.Vocabulary
	logger *zap.Logger
}

// NewWordExtractor creates an extractor for ModeIDs
func NewWordExtractor(seg *segment.Segmenter, v *vocab.Vocabulary, logger *zap.Logger) *WordExtractor {
	return &WordExtractor{seg: seg, vocab: v, logger: logger}
}

func (e *WordExtractor) Mode() Mode { return ModeIDs }

func (e *WordExtractor) Lexicon() Lexicon { return e.vocab }

// Units drops fragments missing from the vocabulary and words left without
// any fragment
func (e *WordExtractor) Units(c token.Context) ([]Unit, error) {
	words := e.seg.Words(c)
	out := make([]Unit, 0, len(words))

	for _, w := range words {
		u := make(Unit, 0, len(w))
		for _, frag := range w {
			i, ok := e.vocab.Index(frag)
			if !ok {
				e.logger.Debug("Dropping fragment", zap.Error(&model.UnknownEntryError{Entry: frag}))
				continue
			}
			if !slices.Contains(u, i) {
				u = append(u, i)
			}
		}
		if len(u) > 0 {
			out = append(out, u)
		}
	}

	return out, nil
}
