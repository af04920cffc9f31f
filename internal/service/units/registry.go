package units

import (
	"fmt"
	"sort"

	"codecomp-go/internal/model/token"
	"codecomp-go/internal/service/segment"
	"codecomp-go/internal/service/vocab"

	"go.uber.org/zap"
)

// Factory builds the extractor of a mode. v is nil for modes that do not use
// a corpus vocabulary.
type Factory func(v *vocab.Vocabulary) (Extractor, error)

// Registry manages extractor factories for the supported modes
type Registry struct {
	factories map[Mode]Factory
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Mode]Factory)}
}

// NewDefaultRegistry registers the ids, tokens and unified extractors
func NewDefaultRegistry(set *token.Set, seg *segment.Segmenter, logger *zap.Logger) *Registry {
	r := NewRegistry()
	r.Register(ModeIDs, func(v *vocab.Vocabulary) (Extractor, error) {
		if v == nil {
			return nil, fmt.Errorf("mode %s needs a vocabulary", ModeIDs)
		}
		return NewWordExtractor(seg, v, logger), nil
	})
	r.Register(ModeTokens, func(*vocab.Vocabulary) (Extractor, error) {
		return NewTokenExtractor(set), nil
	})
	r.Register(ModeUnified, func(*vocab.Vocabulary) (Extractor, error) {
		return NewUnifiedExtractor(set), nil
	})
	return r
}

// Register adds the factory of a mode
func (r *Registry) Register(mode Mode, f Factory) {
	r.factories[mode] = f
}

// Extractor builds the extractor registered for mode
func (r *Registry) Extractor(mode Mode, v *vocab.Vocabulary) (Extractor, error) {
	f, ok := r.factories[mode]
	if !ok {
		return nil, fmt.Errorf("no extractor registered for mode %q", mode)
	}
	return f(v)
}

// SupportedModes returns the registered modes in name order
func (r *Registry) SupportedModes() []Mode {
	modes := make([]Mode, 0, len(r.factories))
	for m := range r.factories {
		modes = append(modes, m)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
	return modes
}
