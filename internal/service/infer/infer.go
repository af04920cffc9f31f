// Package infer builds query windows from single contexts and ranks the
// predictions made for them.
package infer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"codecomp-go/internal/model/token"
	"codecomp-go/internal/service/corpus"
	"codecomp-go/internal/service/units"

	"go.uber.org/zap"
)

// Predictor scores every lexicon column for one query window of shape
// (window, width)
type Predictor interface {
	Predict(ctx context.Context, x []float32, window, width int) ([]float32, error)
}

// Suggestion is one ranked lexicon entry
type Suggestion struct {
	Label string
	// Score is relative to the best suggestion, which scores 1
	Score float32
}

func (s Suggestion) String() string {
	return fmt.Sprintf("%s@%.3f", s.Label, s.Score)
}

// Format joins suggestions with spaces
func Format(suggestions []Suggestion) string {
	parts := make([]string, len(suggestions))
	for i, s := range suggestions {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

// Window encodes the last window units right-aligned into a (window, width)
// block. Earlier rows stay zero when there are fewer units than rows.
func Window(us []units.Unit, window, width int) ([]float32, error) {
	x := make([]float32, window*width)
	for i := 0; i < window; i++ {
		k := len(us) - window + i
		if k < 0 {
			continue
		}
		row := x[i*width : (i+1)*width]
		for _, idx := range us[k] {
			if idx < 0 || idx >= width {
				return nil, fmt.Errorf("index %d outside row width %d", idx, width)
			}
			row[idx] = 1
		}
	}
	return x, nil
}

// Rank returns the n best scored entries of lex, best first, with scores
// divided by the best score. Ties keep lexicon order.
func Rank(scores []float32, lex units.Lexicon, n int) []Suggestion {
	if n > len(scores) {
		n = len(scores)
	}
	if n <= 0 {
		return nil
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	best := scores[order[0]]
	out := make([]Suggestion, n)
	for i, idx := range order[:n] {
		score := scores[idx]
		if best != 0 {
			score /= best
		}
		out[i] = Suggestion{Label: lex.Label(idx), Score: score}
	}
	return out
}

// Suggester answers completion queries for single corpus lines
type Suggester struct {
	set       *token.Set
	extractor units.Extractor
	predictor Predictor
	window    int
	number    int
	logger    *zap.Logger
}

// NewSuggester creates a suggester returning number suggestions per query
func NewSuggester(set *token.Set, extractor units.Extractor, predictor Predictor, window, number int, logger *zap.Logger) *Suggester {
	return &Suggester{
		set:       set,
		extractor: extractor,
		predictor: predictor,
		window:    window,
		number:    number,
		logger:    logger,
	}
}

// Lexicon names the columns of query windows and scores
func (s *Suggester) Lexicon() units.Lexicon {
	return s.extractor.Lexicon()
}

// Query parses line and returns its query window
func (s *Suggester) Query(line string) ([]float32, error) {
	c, err := corpus.Parse(line, s.set)
	if err != nil {
		return nil, err
	}
	us, err := s.extractor.Units(c)
	if err != nil {
		return nil, err
	}
	return Window(us, s.window, units.Width(s.extractor))
}

// Suggest ranks the lexicon entries predicted to follow line
func (s *Suggester) Suggest(ctx context.Context, line string) ([]Suggestion, error) {
	x, err := s.Query(line)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	width := units.Width(s.extractor)
	scores, err := s.predictor.Predict(ctx, x, s.window, width)
	if err != nil {
		return nil, fmt.Errorf("prediction failed: %w", err)
	}
	if len(scores) != width {
		return nil, fmt.Errorf("predictor returned %d scores, want %d", len(scores), width)
	}

	suggestions := Rank(scores, s.extractor.Lexicon(), s.number)
	s.logger.Debug("Ranked suggestions",
		zap.String("mode", string(s.extractor.Mode())),
		zap.Int("count", len(suggestions)))
	return suggestions, nil
}
