package units

import (
	"fmt"

	"codecomp-go/internal/model"
	"codecomp-go/internal/model/token"
)

// TokenExtractor produces one single-index unit per element of a context
type TokenExtractor struct {
	set     *token.Set
	unified bool
}

// NewTokenExtractor creates an extractor for ModeTokens
func NewTokenExtractor(set *token.Set) *TokenExtractor {
	return &TokenExtractor{set: set}
}

// NewUnifiedExtractor creates an extractor for ModeUnified. It reads the same
// corpus lines as ModeIDs.
func NewUnifiedExtractor(set *token.Set) *TokenExtractor {
	return &TokenExtractor{set: set, unified: true}
}

func (e *TokenExtractor) Mode() Mode {
	if e.unified {
		return ModeUnified
	}
	return ModeTokens
}

func (e *TokenExtractor) Lexicon() Lexicon { return e.set }

func (e *TokenExtractor) Units(c token.Context) ([]Unit, error) {
	if e.unified {
		c = c.WithoutNames()
	}

	out := make([]Unit, len(c))
	for pos, el := range c {
		i, ok := e.set.Index(el)
		if !ok {
			return nil, &model.ParseError{
				Line:   -1,
				Offset: -1,
				Reason: fmt.Sprintf("element %d %s is not in the token set", pos, el),
			}
		}
		out[pos] = Unit{i}
	}
	return out, nil
}
