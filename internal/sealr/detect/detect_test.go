package detect

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSegments(t *testing.T, n int) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		p := filepath.Join(dir, "segment_"+string(rune('a'+i))+".mp4")
		require.NoError(t, os.WriteFile(p, []byte("fake video bytes"), 0644))
		paths = append(paths, p)
	}
	return paths
}

func TestStaticDetector_OneResultPerPathInOrder(t *testing.T) {
	paths := writeSegments(t, 3)
	d := NewStaticDetector("static_v1", 0.1, 0.9)

	results, err := d.AnalyzeSegments(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, i, r.SegmentID)
		assert.Equal(t, 0.1, r.Score)
		assert.Equal(t, 0.9, r.Confidence)
		assert.Equal(t, "static_v1", r.Model)
	}
	assert.True(t, d.ValidateScoreFormat(results))
}

func TestStaticDetector_NeutralResultOnFailure(t *testing.T) {
	paths := writeSegments(t, 2)
	paths = append(paths, filepath.Join(t.TempDir(), "missing.mp4"))
	d := NewStaticDetector("static_v1", 0.1, 0.9)

	results, err := d.AnalyzeSegments(context.Background(), paths)
	require.NoError(t, err, "a per-segment failure must not abort the batch")
	require.Len(t, results, 3)

	assert.Equal(t, 0.1, results[0].Score)
	assert.Equal(t, 0.5, results[2].Score, "failed segment gets neutral score")
	assert.Equal(t, 0.0, results[2].Confidence)
	assert.Contains(t, results[2].Metadata, "error")
}

func TestBatchDetector_MatchesSingleSegmentResults(t *testing.T) {
	paths := writeSegments(t, 5)
	single := NewStaticDetector("static_v1", 0.2, 0.8)
	batched := NewBatchDetector(NewStaticDetector("static_v1", 0.2, 0.8), 2)

	want, err := single.AnalyzeSegments(context.Background(), paths)
	require.NoError(t, err)
	got, err := batched.AnalyzeSegments(context.Background(), paths)
	require.NoError(t, err)

	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].SegmentID, got[i].SegmentID)
		assert.Equal(t, want[i].Score, got[i].Score)
	}
}

func TestValidateScores(t *testing.T) {
	tests := []struct {
		name   string
		scores []Score
		want   bool
	}{
		{"empty", []Score{}, true},
		{"valid", []Score{{SegmentID: 0, Score: 0.3}, {SegmentID: 1, Score: 1.0}}, true},
		{"boundary_zero", []Score{{SegmentID: 0, Score: 0}}, true},
		{"negative_id", []Score{{SegmentID: -1, Score: 0.3}}, false},
		{"score_above_one", []Score{{SegmentID: 0, Score: 1.2}}, false},
		{"score_negative", []Score{{SegmentID: 0, Score: -0.1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateScores(tt.scores))
		})
	}
}

func TestParseScores(t *testing.T) {
	scores, err := ParseScores([]byte(`[
		{"segment_id": 0, "score": 0.05, "confidence": 0.95, "model": "detector_v2"},
		{"segment_id": 1, "score": 0.85, "model": "detector_v2",
		 "metadata": {"frames_analyzed": 300}, "analyzed_at": "2025/11/03 12:30:00"}
	]`))
	require.NoError(t, err)
	require.Len(t, scores, 2)

	assert.Equal(t, 0, scores[0].SegmentID)
	assert.Equal(t, 0.05, scores[0].Score)
	assert.Equal(t, 0.95, scores[0].Confidence)

	assert.Equal(t, 0.85, scores[1].Score)
	assert.Equal(t, 0.0, scores[1].Confidence)
	// Slashed timestamp normalized to RFC3339 UTC.
	assert.Equal(t, "2025-11-03T12:30:00Z", scores[1].Metadata["analyzed_at"])
}

func TestParseScores_Rejections(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not_an_array", `{"segment_id": 0, "score": 0.1}`},
		{"missing_segment_id", `[{"score": 0.1}]`},
		{"missing_score", `[{"segment_id": 0}]`},
		{"score_out_of_range", `[{"segment_id": 0, "score": 1.5}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScores([]byte(tt.body))
			assert.Error(t, err)
		})
	}
}

func TestParseScoresFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"segment_id": 0, "score": 0.4}]`), 0644))

	scores, err := ParseScoresFile(path)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 0.4, scores[0].Score)

	_, err = ParseScoresFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
