package corpus

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"codecomp-go/internal/model"
	"codecomp-go/internal/model/token"

	"go.uber.org/zap"
)

const (
	readBufferSize = 1 << 20
	progressEvery  = 1000
)

// LineFunc receives every successfully parsed line of a corpus pass.
// Returning an error applies model.PolicyFor to it: skip-line and drop
// errors are logged and the pass continues, anything else aborts it.
type LineFunc func(line int, c token.Context) error

// Source is a corpus that can be streamed one context at a time
type Source interface {
	Each(ctx context.Context, fn LineFunc) (Stats, error)
}

// Stats summarizes one streaming pass
type Stats struct {
	Lines   int `json:"lines"`
	Parsed  int `json:"parsed"`
	Skipped int `json:"skipped"`
}

// Reader streams a corpus file, one context per line
type Reader struct {
	path     string
	maxLines int
	set      *token.Set
	logger   *zap.Logger
}

// NewReader creates a reader over path. maxLines > 0 stops the pass after the
// line numbered maxLines (zero-based) has been read.
func NewReader(path string, maxLines int, set *token.Set, logger *zap.Logger) *Reader {
	return &Reader{
		path:     path,
		maxLines: maxLines,
		set:      set,
		logger:   logger,
	}
}

// Path returns the corpus file path
func (r *Reader) Path() string {
	return r.path
}

// Each parses every line of the corpus and hands it to fn
func (r *Reader) Each(ctx context.Context, fn LineFunc) (Stats, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to open corpus: %w", err)
	}
	defer file.Close()

	return eachLine(ctx, file, r.maxLines, r.set, r.logger.With(zap.String("corpus", r.path)), fn)
}

// MemorySource is a corpus held in memory, mainly for inference and tests
type MemorySource struct {
	lines  []string
	set    *token.Set
	logger *zap.Logger
}

// NewMemorySource creates a source over the given lines
func NewMemorySource(lines []string, set *token.Set, logger *zap.Logger) *MemorySource {
	return &MemorySource{lines: lines, set: set, logger: logger}
}

// Each parses every line and hands it to fn
func (m *MemorySource) Each(ctx context.Context, fn LineFunc) (Stats, error) {
	return eachLine(ctx, strings.NewReader(strings.Join(m.lines, "\n")), 0, m.set, m.logger, fn)
}

func eachLine(ctx context.Context, rd io.Reader, maxLines int, set *token.Set, logger *zap.Logger, fn LineFunc) (Stats, error) {
	var stats Stats
	br := bufio.NewReaderSize(rd, readBufferSize)

	for lineno := 0; ; lineno++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if maxLines > 0 && lineno > maxLines {
			break
		}

		line, readErr := br.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return stats, fmt.Errorf("failed to read line %d: %w", lineno, readErr)
		}
		if readErr == io.EOF && line == "" {
			break
		}
		stats.Lines++

		if lineno%progressEvery == 0 {
			logger.Debug("Corpus progress", zap.Int("line", lineno))
		}

		if err := handleLine(lineno, strings.TrimRight(line, "\r\n"), set, fn); err != nil {
			switch model.PolicyFor(err) {
			case model.PolicySkipLine:
				stats.Skipped++
				logger.Warn("Skipping corpus line", zap.Int("line", lineno), zap.Error(err))
			case model.PolicyDrop, model.PolicyContinue:
				stats.Parsed++
				logger.Debug("Dropped entry", zap.Int("line", lineno), zap.Error(err))
			default:
				return stats, err
			}
		} else {
			stats.Parsed++
		}

		if readErr == io.EOF {
			break
		}
	}

	logger.Debug("Corpus pass complete",
		zap.Int("lines", stats.Lines),
		zap.Int("parsed", stats.Parsed),
		zap.Int("skipped", stats.Skipped),
	)

	return stats, nil
}

func handleLine(lineno int, line string, set *token.Set, fn LineFunc) error {
	c, err := Parse(line, set)
	if err == nil {
		err = fn(lineno, c)
	}

	var parseErr *model.ParseError
	if errors.As(err, &parseErr) && parseErr.Line < 0 {
		parseErr.Line = lineno
	}
	return err
}
