package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codecomp-go/internal/config"
	"codecomp-go/internal/service/dataset"
	"codecomp-go/internal/service/units"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingTrainer struct {
	got *dataset.Dataset
	err error
}

func (r *recordingTrainer) Fit(_ context.Context, d *dataset.Dataset) error {
	r.got = d
	return r.err
}

type firstColumnPredictor struct{}

func (firstColumnPredictor) Predict(_ context.Context, x []float32, window, width int) ([]float32, error) {
	scores := make([]float32, width)
	for i := range scores {
		scores[i] = float32(width - i)
	}
	return scores, nil
}

func writeCorpus(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func pipelineConfig(mode units.Mode) config.PipelineConfig {
	cfg := config.Default().Pipeline
	cfg.Mode = string(mode)
	cfg.WindowSize = 4
	cfg.Shuffle = false
	return cfg
}

var idsCorpus = []string{
	`[ID_S, "getUserName", "(", ID_S, "userId", ")"]`,
	`[ID_S, "fmt", ".", ID_S, "Println", "(", ID_S, "userName", ")"]`,
	`this is not a context`,
}

func TestPrepare_IDs(t *testing.T) {
	p, err := New(pipelineConfig(units.ModeIDs), zap.NewNop())
	require.NoError(t, err)

	res, err := p.Prepare(context.Background(), writeCorpus(t, idsCorpus...))
	require.NoError(t, err)

	assert.Equal(t, []string{"get", "user", "name", "fmt", "println"}, res.Vocabulary.Labels())
	x, y := res.Dataset.Shape()
	assert.Equal(t, [3]int{3, 4, 5}, x)
	assert.Equal(t, [2]int{3, 5}, y)

	d := res.Dataset
	assert.Equal(t, []float32{1, 1, 1, 0, 0}, d.Row(0, 3))
	assert.Equal(t, []float32{0, 1, 0, 0, 0}, d.Target(0))
	assert.Equal(t, []float32{0, 0, 0, 0, 1}, d.Target(1))
	assert.Equal(t, []float32{0, 0, 0, 1, 0}, d.Row(2, 2))
	assert.Equal(t, []float32{0, 0.5, 0.5, 0, 0}, d.Target(2))
}

func TestPrepare_Unified(t *testing.T) {
	p, err := New(pipelineConfig(units.ModeUnified), zap.NewNop())
	require.NoError(t, err)

	res, err := p.Prepare(context.Background(), writeCorpus(t, idsCorpus...))
	require.NoError(t, err)
	assert.Nil(t, res.Vocabulary)
	assert.Equal(t, 80, res.Lexicon.Len())

	// 4 and 6 elements remain once the names are dropped
	assert.Equal(t, 2, res.Dataset.Samples)
}

func TestPrepare_ShuffleIsReproducible(t *testing.T) {
	cfg := pipelineConfig(units.ModeIDs)
	cfg.Shuffle = true
	input := writeCorpus(t, idsCorpus...)

	p, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	first, err := p.Prepare(context.Background(), input)
	require.NoError(t, err)
	second, err := p.Prepare(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, first.Dataset.X, second.Dataset.X)
	assert.Equal(t, first.Dataset.Y, second.Dataset.Y)
}

func TestPrepare_UsesCache(t *testing.T) {
	cfg := pipelineConfig(units.ModeIDs)
	cfg.Cache = true
	input := writeCorpus(t, idsCorpus...)

	p, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	built, err := p.Prepare(context.Background(), input)
	require.NoError(t, err)
	assert.FileExists(t, input+".dataset")

	require.NoError(t, os.Remove(input))
	cached, err := p.Prepare(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, built.Dataset.X, cached.Dataset.X)
	assert.Equal(t, built.Vocabulary.Labels(), cached.Vocabulary.Labels())

	// a different window needs the corpus again
	cfg.WindowSize = 8
	other, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	_, err = other.Prepare(context.Background(), input)
	assert.Error(t, err)
}

func TestPrepare_MaxLines(t *testing.T) {
	cfg := pipelineConfig(units.ModeIDs)
	cfg.MaxLines = 1
	lines := append([]string{}, idsCorpus[:2]...)
	lines = append(lines, `[ID_S, "readAll", ID_S, "closeFile"]`)

	p, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	res, err := p.Prepare(context.Background(), writeCorpus(t, lines...))
	require.NoError(t, err)

	// lines 0 and 1 are read, line 2 is past the limit
	assert.Equal(t, 3, res.Dataset.Samples)
	_, ok := res.Vocabulary.Index("read")
	assert.False(t, ok)
}

func TestTrain(t *testing.T) {
	p, err := New(pipelineConfig(units.ModeIDs), zap.NewNop())
	require.NoError(t, err)

	output := filepath.Join(t.TempDir(), "model")
	trainer := &recordingTrainer{}
	res, err := p.Train(context.Background(), writeCorpus(t, idsCorpus...), output, trainer)
	require.NoError(t, err)
	assert.Same(t, res.Dataset, trainer.got)
	assert.FileExists(t, output+".voc")

	s, err := p.Suggester(output, firstColumnPredictor{})
	require.NoError(t, err)
	got, err := s.Suggest(context.Background(), `[ID_S, "getUserName"]`)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, "get@1.000", got[0].String())
	assert.Equal(t, "user@0.800", got[1].String())
}

func TestTrain_TrainerError(t *testing.T) {
	p, err := New(pipelineConfig(units.ModeTokens), zap.NewNop())
	require.NoError(t, err)

	boom := errors.New("diverged")
	_, err = p.Train(context.Background(),
		writeCorpus(t, `["package", ID_S, ";", "import", "(", ID_LIT_STR, ")"]`),
		filepath.Join(t.TempDir(), "model"), &recordingTrainer{err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestSuggester_MissingVocabulary(t *testing.T) {
	p, err := New(pipelineConfig(units.ModeIDs), zap.NewNop())
	require.NoError(t, err)

	_, err = p.Suggester(filepath.Join(t.TempDir(), "model"), firstColumnPredictor{})
	assert.Error(t, err)
}

func TestNew_InvalidMode(t *testing.T) {
	_, err := New(config.PipelineConfig{Mode: "chars"}, zap.NewNop())
	assert.Error(t, err)
}
