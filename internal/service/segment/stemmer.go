package segment

import (
	"fmt"

	"github.com/blevesearch/snowballstem"
	"github.com/blevesearch/snowballstem/english"
)

// Stemmer maps a fragment onto its stem so that inflected variants share one
// vocabulary entry
type Stemmer interface {
	// Stem returns the stem of a lowercase fragment
	Stem(fragment string) string

	// Name returns the name of the stemming algorithm
	Name() string
}

// Stemmer names accepted by NewStemmer
const (
	StemmerIdentity = "identity"
	StemmerSnowball = "snowball"
)

// NewStemmer returns the stemmer registered under name
func NewStemmer(name string) (Stemmer, error) {
	switch name {
	case "", StemmerIdentity:
		return IdentityStemmer{}, nil
	case StemmerSnowball:
		return SnowballStemmer{}, nil
	default:
		return nil, fmt.Errorf("unknown stemmer: %s", name)
	}
}

// IdentityStemmer leaves fragments unchanged
type IdentityStemmer struct{}

func (IdentityStemmer) Stem(fragment string) string { return fragment }

func (IdentityStemmer) Name() string { return StemmerIdentity }

// SnowballStemmer applies the English Snowball (Porter2) algorithm
type SnowballStemmer struct{}

func (SnowballStemmer) Stem(fragment string) string {
	env := snowballstem.NewEnv(fragment)
	english.Stem(env)
	return env.Current()
}

func (SnowballStemmer) Name() string { return StemmerSnowball }
