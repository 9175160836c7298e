// Package detect defines the capability interface between the signing
// pipeline and pluggable deepfake-detection models, plus the parsing and
// validation of externally supplied score files.
package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/araddon/dateparse"
)

// Score is one segment's detection result.
type Score struct {
	SegmentID  int                    `json:"segment_id"`
	Score      float64                `json:"score"`
	Confidence float64                `json:"confidence"`
	Model      string                 `json:"model,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// Detector scores video segments for synthetic manipulation.
//
// Implementations must return exactly one result per input path, in input
// order, with SegmentID set to the path's position. A failure to process
// one segment must yield a neutral low-confidence result for that segment
// rather than aborting the batch. Single-segment and batched
// implementations are interchangeable; the pipeline is agnostic to
// batching strategy.
type Detector interface {
	// AnalyzeSegments scores the given segment files.
	AnalyzeSegments(ctx context.Context, paths []string) ([]Score, error)
	// ValidateScoreFormat reports whether every entry carries a usable
	// segment id and an in-range score.
	ValidateScoreFormat(scores []Score) bool
}

// NeutralScore is the result substituted for a segment the detector could
// not process: maximally uncertain, zero confidence.
func NeutralScore(segmentID int, model string, reason error) Score {
	return Score{
		SegmentID:  segmentID,
		Score:      0.5,
		Confidence: 0,
		Model:      model,
		Metadata:   map[string]interface{}{"error": reason.Error()},
	}
}

// ValidateScores reports whether every entry has a non-negative segment id
// and a score in [0,1]. Shared by Detector implementations and by the
// pipeline's fail-fast check on caller-supplied scores.
func ValidateScores(scores []Score) bool {
	for _, s := range scores {
		if s.SegmentID < 0 {
			return false
		}
		if s.Score < 0 || s.Score > 1 {
			return false
		}
	}
	return true
}

// rawScore mirrors the wire format of external score files, where the
// required fields must be present, not merely zero-valued.
type rawScore struct {
	SegmentID  *int                   `json:"segment_id"`
	Score      *float64               `json:"score"`
	Confidence *float64               `json:"confidence"`
	Model      string                 `json:"model"`
	Metadata   map[string]interface{} `json:"metadata"`
	AnalyzedAt string                 `json:"analyzed_at"`
}

// ParseScoresFile reads a JSON array of score entries produced by an
// external detection pipeline. Every entry must carry at least segment_id
// and a score in [0,1]; anything else is a format error. An optional
// analyzed_at timestamp in any common format is normalized to RFC3339 UTC
// in the entry metadata.
func ParseScoresFile(path string) ([]Score, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scores: %w", err)
	}
	return ParseScores(b)
}

// ParseScores parses and validates score entries from raw JSON.
func ParseScores(b []byte) ([]Score, error) {
	var raw []rawScore
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode scores: %w", err)
	}

	scores := make([]Score, 0, len(raw))
	for i, r := range raw {
		if r.SegmentID == nil {
			return nil, fmt.Errorf("score entry %d: missing segment_id", i)
		}
		if r.Score == nil {
			return nil, fmt.Errorf("score entry %d: missing score", i)
		}
		if *r.Score < 0 || *r.Score > 1 {
			return nil, fmt.Errorf("score entry %d: score %v out of range [0,1]", i, *r.Score)
		}
		s := Score{
			SegmentID: *r.SegmentID,
			Score:     *r.Score,
			Model:     r.Model,
			Metadata:  r.Metadata,
		}
		if r.Confidence != nil {
			s.Confidence = *r.Confidence
		}
		if r.AnalyzedAt != "" {
			if s.Metadata == nil {
				s.Metadata = make(map[string]interface{})
			}
			s.Metadata["analyzed_at"] = normalizeTimestamp(r.AnalyzedAt)
		}
		scores = append(scores, s)
	}
	return scores, nil
}

// normalizeTimestamp tries to parse any timestamp string using dateparse.
// Returns RFC3339 UTC, or the input unchanged when unparseable.
func normalizeTimestamp(s string) string {
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return s
	}
	return t.UTC().Format(time.RFC3339)
}
