package vocab

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	formatVersion = "1.0"
	fileSuffix    = ".voc"
)

// serializedVocabulary is the on-disk form of a vocabulary. The position of
// a label is its index.
type serializedVocabulary struct {
	Version   string
	CreatedAt time.Time
	Stemmer   string
	Labels    []string
}

// Persistence saves vocabularies next to the trained model
type Persistence struct {
	logger *zap.Logger
}

// NewPersistence creates a persistence manager
func NewPersistence(logger *zap.Logger) *Persistence {
	return &Persistence{logger: logger}
}

// Path returns the vocabulary side file of a model output path
func (p *Persistence) Path(output string) string {
	return output + fileSuffix
}

// Exists reports whether a vocabulary has been saved for output
func (p *Persistence) Exists(output string) bool {
	_, err := os.Stat(p.Path(output))
	return err == nil
}

// Save writes v to the side file of output
func (p *Persistence) Save(v *Vocabulary, output string, stemmer string) error {
	path := p.Path(output)
	model := &serializedVocabulary{
		Version:   formatVersion,
		CreatedAt: time.Now(),
		Stemmer:   stemmer,
		Labels:    v.labels,
	}

	if err := saveToFile(model, path); err != nil {
		return fmt.Errorf("failed to save vocabulary: %w", err)
	}

	p.logger.Info("Saved vocabulary",
		zap.String("path", path),
		zap.Int("size", v.Len()),
		zap.String("stemmer", stemmer))

	return nil
}

// Load reads the side file of output
func (p *Persistence) Load(output string) (*Vocabulary, error) {
	path := p.Path(output)

	model, err := loadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary: %w", err)
	}
	if model.Version != formatVersion {
		return nil, fmt.Errorf("unsupported vocabulary version %q in %s", model.Version, path)
	}

	v := FromLabels(model.Labels)
	if v.Len() != len(model.Labels) {
		return nil, fmt.Errorf("corrupt vocabulary %s: duplicate entries", path)
	}

	p.logger.Info("Loaded vocabulary",
		zap.String("path", path),
		zap.Int("size", v.Len()),
		zap.String("stemmer", model.Stemmer))

	return v, nil
}

// saveToFile writes through a temp file so a crash never leaves a truncated vocabulary
func saveToFile(model *serializedVocabulary, path string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	err = gob.NewEncoder(tmp).Encode(model)
	err = multierr.Append(err, tmp.Close())
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func loadFromFile(path string) (*serializedVocabulary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var model serializedVocabulary
	if err := gob.NewDecoder(file).Decode(&model); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &model, nil
}
