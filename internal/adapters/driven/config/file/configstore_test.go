package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *ConfigStore {
	t.Helper()
	s, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestNewConfigStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "config")
	s, err := NewConfigStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, filepath.Join(dir, "config.toml"), s.Path())
}

func TestSetGet_RoundTrip(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.Set("ocr.engine", "remote"))
	require.NoError(t, s.Set("pipeline.chunk_size", 200))
	require.NoError(t, s.Set("query.min_similarity", 0.5))
	require.NoError(t, s.Set("pipeline.spell_correct", false))

	assert.Equal(t, "remote", s.GetString("ocr.engine"))
	assert.Equal(t, 200, s.GetInt("pipeline.chunk_size"))
	assert.Equal(t, 0.5, s.GetFloat("query.min_similarity"))
	assert.False(t, s.GetBool("pipeline.spell_correct"))
}

func TestLoad_PersistedValuesSurvive(t *testing.T) {
	dir := t.TempDir()
	s1, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, s1.Set("ocr.engine", "tesseract"))
	require.NoError(t, s1.Set("validation.accept_threshold", 0.7))

	s2, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "tesseract", s2.GetString("ocr.engine"))
	assert.Equal(t, 0.7, s2.GetFloat("validation.accept_threshold"))
}

func TestGet_MissingKey(t *testing.T) {
	s := newStore(t)

	_, ok := s.Get("no.such.key")
	assert.False(t, ok)
	assert.Empty(t, s.GetString("no.such.key"))
	assert.Zero(t, s.GetInt("no.such.key"))
	assert.Zero(t, s.GetFloat("no.such.key"))
	assert.False(t, s.GetBool("no.such.key"))
}

func TestSettings_Defaults(t *testing.T) {
	s := newStore(t)

	settings := s.Settings()

	assert.Equal(t, "tesseract", settings.OCR.Engine)
	assert.Equal(t, "hash", settings.Embedding.Provider)
	assert.Equal(t, 400, settings.Pipeline.ChunkSize)
	assert.Equal(t, 50, settings.Pipeline.ChunkOverlap)
	assert.True(t, settings.Pipeline.SpellCorrect)
	assert.Equal(t, 4, settings.Pipeline.Workers)
	assert.Equal(t, 5, settings.Query.TopK)
	assert.Equal(t, 0.3, settings.Query.MinSimilarity)
	assert.Equal(t, 0.4, settings.Thresholds.Review)
	assert.Equal(t, 0.6, settings.Thresholds.Accept)
	assert.Equal(t, 10000, settings.Thresholds.RoundNumberModulus)
	assert.False(t, settings.LLM.IsConfigured())
}

func TestSettings_Overrides(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Set("ocr.engine", "remote"))
	require.NoError(t, s.Set("embedding.provider", "ollama"))
	require.NoError(t, s.Set("pipeline.chunk_size", 250))
	require.NoError(t, s.Set("validation.round_number_modulus", 0))

	settings := s.Settings()

	assert.Equal(t, "remote", settings.OCR.Engine)
	assert.Equal(t, "ollama", settings.Embedding.Provider)
	assert.Equal(t, 250, settings.Pipeline.ChunkSize)
	// An explicit zero disables the round-number check rather than
	// falling back to the default.
	assert.Zero(t, settings.Thresholds.RoundNumberModulus)
}

func TestSettings_DataDirDefaultsToConfigDir(t *testing.T) {
	dir := t.TempDir()
	s, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, s.Settings().DataDir)
}
