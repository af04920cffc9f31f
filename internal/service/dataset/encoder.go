package dataset

import (
	"context"
	"fmt"

	"codecomp-go/internal/model"
	"codecomp-go/internal/model/token"
	"codecomp-go/internal/service/corpus"
	"codecomp-go/internal/service/units"

	"github.com/dustin/go-humanize"
	"github.com/viterin/vek/vek32"
	"go.uber.org/zap"
)

// Count streams src once and returns the number of samples Encode will
// produce with the same extractor and start offset
func Count(ctx context.Context, src corpus.Source, e units.Extractor, startOffset int) (int, corpus.Stats, error) {
	samples := 0
	stats, err := src.Each(ctx, func(line int, c token.Context) error {
		us, err := e.Units(c)
		if err != nil {
			return err
		}
		if n := len(us) - startOffset; n > 0 {
			samples += n
		}
		return nil
	})
	if err != nil {
		return 0, stats, fmt.Errorf("counting pass failed: %w", err)
	}
	return samples, stats, nil
}

// Encoder writes fixed-width windows of prediction units into a dataset
type Encoder struct {
	window      int
	startOffset int
	logger      *zap.Logger
}

// NewEncoder creates an encoder producing windows of window rows. The first
// startOffset units of every line never become a target.
func NewEncoder(window, startOffset int, logger *zap.Logger) *Encoder {
	return &Encoder{
		window:      window,
		startOffset: startOffset,
		logger:      logger,
	}
}

// Encode streams src a second time and fills a dataset of exactly samples
// samples, in corpus order.
//
// Sample i of a line has window row j set to the multi-hot of unit
// i-window+j, or zeros when that unit precedes the line. Its target is the
// multi-hot of unit i scaled to sum to one.
func (enc *Encoder) Encode(ctx context.Context, src corpus.Source, e units.Extractor, samples int) (*Dataset, error) {
	width := units.Width(e)
	d, err := New(samples, enc.window, width)
	if err != nil {
		return nil, err
	}

	enc.logger.Info("Allocated dataset",
		zap.String("mode", string(e.Mode())),
		zap.Int("samples", samples),
		zap.Int("window", enc.window),
		zap.Int("width", width),
		zap.String("size", humanize.Bytes(d.Bytes())))

	n := 0
	stats, err := src.Each(ctx, func(line int, c token.Context) error {
		us, err := e.Units(c)
		if err != nil {
			return err
		}
		if need := len(us) - enc.startOffset; need > 0 && n+need > samples {
			return &model.ConsistencyError{Expected: samples, Actual: n + need}
		}

		for i := enc.startOffset; i < len(us); i++ {
			if err := enc.sample(d, n, us, i, line); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("encoding pass failed: %w", err)
	}
	if n != samples {
		return nil, fmt.Errorf("encoding pass failed: %w", &model.ConsistencyError{Expected: samples, Actual: n})
	}

	enc.logger.Info("Encoded dataset",
		zap.Int("samples", n),
		zap.Int("lines", stats.Lines),
		zap.Int("skipped_lines", stats.Skipped))

	return d, nil
}

func (enc *Encoder) sample(d *Dataset, n int, us []units.Unit, i, line int) error {
	target := us[i]
	if len(target) == 0 {
		return &model.DegenerateTargetError{Line: line, Position: i}
	}

	for j := 0; j < enc.window; j++ {
		k := i - enc.window + j
		if k < 0 {
			continue
		}
		if err := setOnes(d.Row(n, j), us[k]); err != nil {
			return err
		}
	}

	row := d.Target(n)
	if err := setOnes(row, target); err != nil {
		return err
	}
	vek32.MulNumber_Inplace(row, 1/float32(len(target)))
	return nil
}

func setOnes(row []float32, u units.Unit) error {
	for _, idx := range u {
		if idx < 0 || idx >= len(row) {
			return fmt.Errorf("%w: index %d outside row width %d", model.ErrInternal, idx, len(row))
		}
		row[idx] = 1
	}
	return nil
}
