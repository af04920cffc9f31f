// Package units turns parsed contexts into prediction units: the sets of
// lexicon columns a sample is built from.
package units

import (
	"fmt"

	"codecomp-go/internal/model"
	"codecomp-go/internal/model/token"
)

// Unit is the set of distinct lexicon indices of one prediction step.
// Indices keep the order in which they were first seen.
type Unit []int

// Mode selects what a unit is made of
type Mode string

const (
	// ModeIDs predicts identifier names as bags of vocabulary fragments
	ModeIDs Mode = "ids"
	// ModeTokens predicts every token of the closed token set
	ModeTokens Mode = "tokens"
	// ModeUnified predicts tokens after dropping the raw name behind each ID_S
	ModeUnified Mode = "unified"
)

// Modes lists the supported modes
var Modes = []Mode{ModeIDs, ModeTokens, ModeUnified}

// ParseMode validates a mode name
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", &model.ConfigError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", s)}
}

// UsesVocabulary reports whether the lexicon of the mode is a corpus vocabulary
func (m Mode) UsesVocabulary() bool {
	return m == ModeIDs
}

// DefaultStartOffset is the number of leading units of a line that never
// become a target
func (m Mode) DefaultStartOffset() int {
	if m == ModeIDs {
		return 1
	}
	return 4
}

// Lexicon names the columns of a one-hot row
type Lexicon interface {
	Len() int
	Label(i int) string
}

// Extractor maps a context onto its prediction units
type Extractor interface {
	Mode() Mode
	Lexicon() Lexicon
	// Units returns the units of c in order. A *model.ParseError means the
	// line cannot be encoded in this mode.
	Units(c token.Context) ([]Unit, error)
}

// Width returns the row width of the tensors produced from e
func Width(e Extractor) int {
	return e.Lexicon().Len()
}
