package manifest

import "sort"

// StatsFlagThreshold is the fixed score cutoff used by SegmentStatistics.
// It is a summary statistic only and deliberately independent of any
// verification-time threshold supplied by a caller.
const StatsFlagThreshold = 0.5

// SegmentStatistics summarizes the deepfake scores recorded in a manifest.
type SegmentStatistics struct {
	TotalSegments     int      `json:"total_segments"`
	SegmentsWithScore int      `json:"segments_with_deepfake_scores"`
	AverageScore      *float64 `json:"average_deepfake_score"`
	MinScore          *float64 `json:"min_deepfake_score,omitempty"`
	MaxScore          *float64 `json:"max_deepfake_score,omitempty"`
	FlaggedSegments   int      `json:"flagged_segments"`
	ModelsUsed        []string `json:"deepfake_models_used"`
}

// FlaggedSegment is the projection of a segment whose deepfake score
// exceeded a caller-supplied threshold.
type FlaggedSegment struct {
	SegmentID  int      `json:"segment_id"`
	Score      float64  `json:"deepfake_score"`
	Confidence *float64 `json:"confidence,omitempty"`
	Model      string   `json:"model,omitempty"`
	StartTime  float64  `json:"start_time"`
	EndTime    float64  `json:"end_time"`
	FilePath   string   `json:"file_path"`
}

// ScoreUpdate carries one segment's detection result for UpdateScores.
type ScoreUpdate struct {
	SegmentID  int                    `json:"segment_id"`
	Score      float64                `json:"score"`
	Model      string                 `json:"model,omitempty"`
	Confidence *float64               `json:"confidence,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// SegmentStatistics derives score statistics over all segments.
// Only segments with a non-nil score contribute to the score aggregates;
// the flagged count uses the fixed StatsFlagThreshold.
func (m *ChainManifest) SegmentStatistics() SegmentStatistics {
	stats := SegmentStatistics{
		TotalSegments: m.TotalSegments,
		ModelsUsed:    []string{},
	}

	models := make(map[string]struct{})
	var sum, minScore, maxScore float64

	for _, seg := range m.Segments {
		if seg.DeepfakeScore == nil {
			continue
		}
		score := *seg.DeepfakeScore
		if stats.SegmentsWithScore == 0 {
			minScore, maxScore = score, score
		} else {
			if score < minScore {
				minScore = score
			}
			if score > maxScore {
				maxScore = score
			}
		}
		stats.SegmentsWithScore++
		sum += score

		if score > StatsFlagThreshold {
			stats.FlaggedSegments++
		}
		if seg.DeepfakeModel != "" {
			models[seg.DeepfakeModel] = struct{}{}
		}
	}

	if stats.SegmentsWithScore > 0 {
		avg := sum / float64(stats.SegmentsWithScore)
		stats.AverageScore = &avg
		stats.MinScore = &minScore
		stats.MaxScore = &maxScore
	}

	for model := range models {
		stats.ModelsUsed = append(stats.ModelsUsed, model)
	}
	sort.Strings(stats.ModelsUsed)

	return stats
}

// FlaggedAbove returns every segment whose score is strictly greater than
// threshold, in chain order. Unscored segments are never flagged.
func (m *ChainManifest) FlaggedAbove(threshold float64) []FlaggedSegment {
	flagged := make([]FlaggedSegment, 0)
	for _, seg := range m.Segments {
		if seg.DeepfakeScore == nil || *seg.DeepfakeScore <= threshold {
			continue
		}
		flagged = append(flagged, FlaggedSegment{
			SegmentID:  seg.SegmentID,
			Score:      *seg.DeepfakeScore,
			Confidence: seg.DeepfakeConfidence,
			Model:      seg.DeepfakeModel,
			StartTime:  seg.StartTime,
			EndTime:    seg.EndTime,
			FilePath:   seg.FilePath,
		})
	}
	return flagged
}

// UpdateScores overwrites the deepfake fields of the segments named by the
// given entries. Entries referencing unknown segment ids are ignored, not
// an error. Hash-linkage fields are never touched, so score updates can
// never change MasterHash or the truth value of ValidateChain.
//
// Returns the number of segments updated.
func (m *ChainManifest) UpdateScores(entries []ScoreUpdate) int {
	byID := make(map[int]int, len(m.Segments))
	for i, seg := range m.Segments {
		byID[seg.SegmentID] = i
	}

	updated := 0
	for _, entry := range entries {
		i, ok := byID[entry.SegmentID]
		if !ok {
			continue
		}
		seg := &m.Segments[i]
		score := entry.Score
		seg.DeepfakeScore = &score
		seg.DeepfakeModel = entry.Model
		seg.DeepfakeConfidence = entry.Confidence
		seg.DeepfakeMetadata = entry.Metadata
		updated++
	}
	return updated
}
