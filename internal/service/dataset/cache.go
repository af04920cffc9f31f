package dataset

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"codecomp-go/internal/model"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	cacheVersion = "1.1"
	cacheSuffix  = ".dataset"
)

// cacheChunk is the number of floats per gob message. Tensors are streamed
// in chunks so only one chunk is held encoded at a time.
var cacheChunk = 1 << 16

// Key lists the settings a cached dataset was built with. A cache file is
// reused only when its key equals the requested one.
type Key struct {
	Mode        string
	Window      int
	StartOffset int
	Stemmer     string
	PublicOnly  bool
	MaxLines    int
}

// cacheHeader precedes the tensors in a cache file
type cacheHeader struct {
	Version   string
	BuildID   string
	CreatedAt time.Time
	Key       Key
	Samples   int
	Window    int
	Width     int
	Chunk     int
	Labels    []string
}

// BuildFunc computes a dataset and the labels of its columns
type BuildFunc func(ctx context.Context) (*Dataset, []string, error)

// Cache stores encoded datasets beside their corpus
type Cache struct {
	write  bool
	logger *zap.Logger
}

// NewCache creates a cache. Existing cache files are always read; new ones
// are written only when write is set.
func NewCache(write bool, logger *zap.Logger) *Cache {
	return &Cache{write: write, logger: logger}
}

// Path returns the cache file of a corpus
func (c *Cache) Path(corpusPath string) string {
	return corpusPath + cacheSuffix
}

// LoadOrBuild returns the cached dataset of corpusPath when one exists for
// key, otherwise it calls build and caches the result. Cache failures never
// fail the call.
func (c *Cache) LoadOrBuild(ctx context.Context, corpusPath string, key Key, build BuildFunc) (*Dataset, []string, error) {
	path := c.Path(corpusPath)
	logger := c.logger.With(zap.String("cache", path))

	d, labels, err := c.load(path, key, logger)
	switch {
	case err == nil:
		return d, labels, nil
	case errors.Is(err, fs.ErrNotExist):
		logger.Debug("No cached dataset")
	default:
		logger.Warn("Ignoring cached dataset", zap.Error(err))
	}

	d, labels, err = build(ctx)
	if err != nil {
		return nil, nil, err
	}

	if c.write {
		if err := c.save(path, key, d, labels, logger); err != nil {
			logger.Warn("Failed to cache dataset", zap.Error(err))
		}
	}
	return d, labels, nil
}

func (c *Cache) load(path string, key Key, logger *zap.Logger) (*Dataset, []string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	zr, err := zstd.NewReader(file)
	if err != nil {
		return nil, nil, &model.CacheIOError{Path: path, Op: "read", Err: err}
	}
	defer zr.Close()

	dec := gob.NewDecoder(zr)
	var h cacheHeader
	if err := dec.Decode(&h); err != nil {
		return nil, nil, &model.CacheIOError{Path: path, Op: "read", Err: fmt.Errorf("decode header: %w", err)}
	}
	if h.Version != cacheVersion {
		return nil, nil, fmt.Errorf("unsupported cache version %q", h.Version)
	}
	if h.Key != key {
		return nil, nil, fmt.Errorf("cache built with %+v, want %+v", h.Key, key)
	}

	if h.Chunk <= 0 {
		return nil, nil, &model.CacheIOError{Path: path, Op: "read", Err: fmt.Errorf("invalid chunk size %d", h.Chunk)}
	}
	d, err := New(h.Samples, h.Window, h.Width)
	if err != nil {
		return nil, nil, &model.CacheIOError{Path: path, Op: "read", Err: err}
	}
	if err := decodeChunks(dec, d.X, h.Chunk); err != nil {
		return nil, nil, &model.CacheIOError{Path: path, Op: "read", Err: fmt.Errorf("decode x: %w", err)}
	}
	if err := decodeChunks(dec, d.Y, h.Chunk); err != nil {
		return nil, nil, &model.CacheIOError{Path: path, Op: "read", Err: fmt.Errorf("decode y: %w", err)}
	}

	logger.Info("Loaded cached dataset",
		zap.String("build_id", h.BuildID),
		zap.Time("created_at", h.CreatedAt),
		zap.Int("samples", h.Samples),
		zap.Int("width", h.Width),
		zap.String("size", humanize.Bytes(d.Bytes())))

	return d, h.Labels, nil
}

func (c *Cache) save(path string, key Key, d *Dataset, labels []string, logger *zap.Logger) error {
	h := cacheHeader{
		Version:   cacheVersion,
		BuildID:   uuid.New().String(),
		CreatedAt: time.Now(),
		Key:       key,
		Samples:   d.Samples,
		Window:    d.Window,
		Width:     d.Width,
		Chunk:     cacheChunk,
		Labels:    labels,
	}

	if err := writeCache(path, &h, d); err != nil {
		return &model.CacheIOError{Path: path, Op: "write", Err: err}
	}

	logger.Info("Cached dataset",
		zap.String("build_id", h.BuildID),
		zap.Int("samples", d.Samples))
	return nil
}

func writeCache(path string, h *cacheHeader, d *Dataset) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	zw, err := zstd.NewWriter(tmp)
	if err != nil {
		return multierr.Append(err, tmp.Close())
	}

	enc := gob.NewEncoder(zw)
	err = enc.Encode(h)
	if err == nil {
		err = encodeChunks(enc, d.X, h.Chunk)
	}
	if err == nil {
		err = encodeChunks(enc, d.Y, h.Chunk)
	}
	err = multierr.Combine(err, zw.Close(), tmp.Close())
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func encodeChunks(enc *gob.Encoder, data []float32, chunk int) error {
	for off := 0; off < len(data); off += chunk {
		end := min(off+chunk, len(data))
		if err := enc.Encode(data[off:end]); err != nil {
			return err
		}
	}
	return nil
}

// decodeChunks fills data in place from the messages written by encodeChunks
func decodeChunks(dec *gob.Decoder, data []float32, chunk int) error {
	for off := 0; off < len(data); off += chunk {
		end := min(off+chunk, len(data))
		// gob decodes into part's backing array when the chunk fits its capacity
		part := data[off:end:end]
		if err := dec.Decode(&part); err != nil {
			return err
		}
		if len(part) != end-off {
			return fmt.Errorf("chunk at %d has %d floats, want %d", off, len(part), end-off)
		}
	}
	return nil
}
