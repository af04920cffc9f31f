package segment

import (
	"fmt"

	"codecomp-go/internal/model/token"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Segmenter turns the identifier occurrences of a context into words: the
// stemmed fragment lists used by both the vocabulary and the encoding pass.
// A Segmenter is not safe for concurrent use.
type Segmenter struct {
	stemmer Stemmer
	filter  Filter
	memo    *lru.Cache[string, []string]
}

// NewSegmenter creates a segmenter. memoSize bounds the number of distinct
// names whose fragments are remembered; zero disables memoization.
func NewSegmenter(stemmer Stemmer, filter Filter, memoSize int) (*Segmenter, error) {
	if stemmer == nil {
		stemmer = IdentityStemmer{}
	}
	if filter == nil {
		filter = KeepAll{}
	}

	s := &Segmenter{stemmer: stemmer, filter: filter}
	if memoSize > 0 {
		memo, err := lru.New[string, []string](memoSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create segment memo: %w", err)
		}
		s.memo = memo
	}
	return s, nil
}

// Stemmer returns the stemmer in use
func (s *Segmenter) Stemmer() Stemmer {
	return s.stemmer
}

// Fragments returns the stemmed fragments of name. The returned slice may be
// shared with later calls and must not be modified.
func (s *Segmenter) Fragments(name string) []string {
	if s.memo != nil {
		if frags, ok := s.memo.Get(name); ok {
			return frags
		}
	}

	frags := Segment(name)
	for i, f := range frags {
		frags[i] = s.stemmer.Stem(f)
	}

	if s.memo != nil {
		s.memo.Add(name, frags)
	}
	return frags
}

// Words returns the fragment list of every identifier occurrence in c that
// passes the filter and yields at least one fragment, in order
func (s *Segmenter) Words(c token.Context) [][]string {
	names := c.Identifiers()
	words := make([][]string, 0, len(names))
	for _, name := range names {
		if !s.filter.Keep(name) {
			continue
		}
		if frags := s.Fragments(name); len(frags) > 0 {
			words = append(words, frags)
		}
	}
	return words
}
