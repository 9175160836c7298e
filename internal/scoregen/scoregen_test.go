package scoregen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaibhaw-/SealR/internal/sealr/detect"
)

func TestGenerate_Deterministic(t *testing.T) {
	cfg := Config{Seed: 42, Segments: 20, FlaggedRatio: 0.3, FlagThreshold: 0.5, Models: []string{"m1", "m2"}}

	a := Generate(cfg)
	b := Generate(cfg)

	require.Len(t, a, 20)
	assert.Equal(t, a, b)
}

func TestGenerate_ScoreBounds(t *testing.T) {
	cfg := Config{Seed: 7, Segments: 50, FlaggedRatio: 0.5, FlagThreshold: 0.5, Models: []string{"m"}}

	for _, e := range Generate(cfg) {
		assert.GreaterOrEqual(t, e.Score, 0.0)
		assert.LessOrEqual(t, e.Score, 1.0)
		assert.GreaterOrEqual(t, e.Confidence, 0.6)
		assert.Equal(t, "m", e.Model)
	}
}

func TestGenerate_AllClean(t *testing.T) {
	cfg := Config{Seed: 1, Segments: 30, FlaggedRatio: 0, FlagThreshold: 0.5, Models: []string{"m"}}

	for _, e := range Generate(cfg) {
		assert.LessOrEqual(t, e.Score, 0.5)
	}
}

func TestWrite_OutputParsesAsScoreFile(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Output:        filepath.Join(dir, "scores.json"),
		Seed:          9,
		Segments:      5,
		FlaggedRatio:  0.4,
		FlagThreshold: 0.5,
		Models:        []string{"synthetic_v1"},
	}

	entries := Generate(cfg)
	require.NoError(t, Write(cfg, entries))

	scores, err := detect.ParseScoresFile(cfg.Output)
	require.NoError(t, err)
	require.Len(t, scores, 5)
	for i, s := range scores {
		assert.Equal(t, i, s.SegmentID)
		assert.Contains(t, s.Metadata, "analyzed_at")
	}
	assert.True(t, detect.ValidateScores(scores))
}

func TestReadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: scores.json\nseed: 3\n"), 0o644))

	cfg, err := ReadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Segments)
	assert.Equal(t, 0.5, cfg.FlagThreshold)
	assert.Equal(t, []string{"synthetic_v1"}, cfg.Models)
}

func TestReadConfig_RejectsBadRatio(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: s.json\nflaggedRatio: 1.5\n"), 0o644))

	_, err := ReadConfig(path)
	assert.Error(t, err)
}
