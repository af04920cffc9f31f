// Package pipeline runs the vocabulary, counting and encoding passes over a
// corpus and hands the resulting dataset to a trainer.
package pipeline

import (
	"context"
	"fmt"

	"codecomp-go/internal/config"
	"codecomp-go/internal/model/token"
	"codecomp-go/internal/service/corpus"
	"codecomp-go/internal/service/dataset"
	"codecomp-go/internal/service/infer"
	"codecomp-go/internal/service/segment"
	"codecomp-go/internal/service/units"
	"codecomp-go/internal/service/vocab"

	"go.uber.org/zap"
)

// Trainer fits a model on a prepared dataset
type Trainer interface {
	Fit(ctx context.Context, d *dataset.Dataset) error
}

// Result is a prepared dataset together with the lexicon naming its columns
type Result struct {
	Mode    units.Mode
	Dataset *dataset.Dataset
	Lexicon units.Lexicon
	// Vocabulary is nil for the token modes
	Vocabulary *vocab.Vocabulary
}

// Pipeline wires the services of one configuration
type Pipeline struct {
	cfg      config.PipelineConfig
	mode     units.Mode
	set      *token.Set
	seg      *segment.Segmenter
	registry *units.Registry
	cache    *dataset.Cache
	vocabs   *vocab.Persistence
	logger   *zap.Logger
}

// New creates a pipeline for a validated configuration
func New(cfg config.PipelineConfig, logger *zap.Logger) (*Pipeline, error) {
	mode, err := units.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	stemmerName := segment.StemmerIdentity
	if cfg.Stemming {
		stemmerName = segment.StemmerSnowball
	}
	stemmer, err := segment.NewStemmer(stemmerName)
	if err != nil {
		return nil, err
	}
	var filter segment.Filter = segment.KeepAll{}
	if cfg.PublicOnly {
		filter = segment.NewPublicOnly()
	}
	seg, err := segment.NewSegmenter(stemmer, filter, cfg.SegmentCacheSize)
	if err != nil {
		return nil, err
	}

	set := token.NewGoSet()
	return &Pipeline{
		cfg:      cfg,
		mode:     mode,
		set:      set,
		seg:      seg,
		registry: units.NewDefaultRegistry(set, seg, logger),
		cache:    dataset.NewCache(cfg.Cache, logger),
		vocabs:   vocab.NewPersistence(logger),
		logger:   logger,
	}, nil
}

// Mode returns the configured mode
func (p *Pipeline) Mode() units.Mode {
	return p.mode
}

// TokenSet returns the token set lines are parsed with
func (p *Pipeline) TokenSet() *token.Set {
	return p.set
}

// Segmenter returns the segmenter of the ids mode
func (p *Pipeline) Segmenter() *segment.Segmenter {
	return p.seg
}

// Reader opens a streaming reader over input honoring max_lines
func (p *Pipeline) Reader(input string) *corpus.Reader {
	return corpus.NewReader(input, p.cfg.MaxLines, p.set, p.logger)
}

func (p *Pipeline) cacheKey() dataset.Key {
	return dataset.Key{
		Mode:        string(p.mode),
		Window:      p.cfg.WindowSize,
		StartOffset: p.cfg.EffectiveStartOffset(),
		Stemmer:     p.seg.Stemmer().Name(),
		PublicOnly:  p.cfg.PublicOnly,
		MaxLines:    p.cfg.MaxLines,
	}
}

// Prepare returns the dataset of input, read from the dataset cache when a
// compatible one exists. The dataset is shuffled when shuffling is enabled.
func (p *Pipeline) Prepare(ctx context.Context, input string) (*Result, error) {
	d, labels, err := p.cache.LoadOrBuild(ctx, input, p.cacheKey(), func(ctx context.Context) (*dataset.Dataset, []string, error) {
		return p.build(ctx, p.Reader(input))
	})
	if err != nil {
		return nil, err
	}

	res := &Result{Mode: p.mode, Dataset: d, Lexicon: p.set}
	if p.mode.UsesVocabulary() {
		res.Vocabulary = vocab.FromLabels(labels)
		res.Lexicon = res.Vocabulary
	}
	if res.Lexicon.Len() != d.Width {
		return nil, fmt.Errorf("dataset width %d does not match lexicon size %d", d.Width, res.Lexicon.Len())
	}

	x, y := d.Shape()
	p.logger.Info("Dataset ready",
		zap.String("mode", string(p.mode)),
		zap.Ints("x", x[:]),
		zap.Ints("y", y[:]))

	if p.cfg.Shuffle {
		d.Shuffle(p.cfg.ShuffleSeed)
		p.logger.Debug("Shuffled dataset", zap.Uint64("seed", p.cfg.ShuffleSeed))
	}
	return res, nil
}

func (p *Pipeline) build(ctx context.Context, src corpus.Source) (*dataset.Dataset, []string, error) {
	startOffset := p.cfg.EffectiveStartOffset()

	var (
		v       *vocab.Vocabulary
		labels  []string
		samples int
	)
	if p.mode.UsesVocabulary() {
		res, err := vocab.Build(ctx, src, p.seg, startOffset, p.logger)
		if err != nil {
			return nil, nil, err
		}
		v, samples, labels = res.Vocabulary, res.Samples, res.Vocabulary.Labels()
	}

	extractor, err := p.registry.Extractor(p.mode, v)
	if err != nil {
		return nil, nil, err
	}

	if !p.mode.UsesVocabulary() {
		n, stats, err := dataset.Count(ctx, src, extractor, startOffset)
		if err != nil {
			return nil, nil, err
		}
		samples = n
		p.logger.Info("Counting pass complete",
			zap.Int("samples", samples),
			zap.Int("lines", stats.Lines),
			zap.Int("skipped_lines", stats.Skipped))
	}

	d, err := dataset.NewEncoder(p.cfg.WindowSize, startOffset, p.logger).Encode(ctx, src, extractor, samples)
	if err != nil {
		return nil, nil, err
	}
	return d, labels, nil
}

// Train prepares input, stores the vocabulary beside output and fits trainer
func (p *Pipeline) Train(ctx context.Context, input, output string, trainer Trainer) (*Result, error) {
	res, err := p.Prepare(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dataset: %w", err)
	}

	if res.Vocabulary != nil && output != "" {
		if err := p.vocabs.Save(res.Vocabulary, output, p.seg.Stemmer().Name()); err != nil {
			return nil, err
		}
	}

	if err := trainer.Fit(ctx, res.Dataset); err != nil {
		return nil, fmt.Errorf("training failed: %w", err)
	}

	p.logger.Info("Training complete",
		zap.String("input", input),
		zap.String("output", output),
		zap.Int("samples", res.Dataset.Samples))
	return res, nil
}

// Extractor returns the extractor used to query a model trained at output.
// The ids mode loads the vocabulary saved beside it.
func (p *Pipeline) Extractor(output string) (units.Extractor, error) {
	var v *vocab.Vocabulary
	if p.mode.UsesVocabulary() {
		loaded, err := p.vocabs.Load(output)
		if err != nil {
			return nil, err
		}
		v = loaded
	}
	return p.registry.Extractor(p.mode, v)
}

// Suggester returns a suggester for the model trained at output
func (p *Pipeline) Suggester(output string, predictor infer.Predictor) (*infer.Suggester, error) {
	extractor, err := p.Extractor(output)
	if err != nil {
		return nil, err
	}
	return infer.NewSuggester(p.set, extractor, predictor, p.cfg.WindowSize, p.cfg.Suggestions, p.logger), nil
}
