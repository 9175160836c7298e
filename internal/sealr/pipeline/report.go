package pipeline

import "time"

// VerificationVersion identifies the verification process revision.
const VerificationVersion = "1.0"

// SegmentVerificationResult is the outcome for one segment of a
// verification pass. A failure verifying one segment is isolated here and
// never aborts the rest of the batch.
type SegmentVerificationResult struct {
	SegmentID       int      `json:"segment_id"`
	C2PAValid       bool     `json:"c2pa_valid"`
	HashValid       bool     `json:"hash_valid"`
	DeepfakeFlagged bool     `json:"deepfake_flagged"`
	DeepfakeScore   *float64 `json:"deepfake_score,omitempty"`
	ErrorMessage    string   `json:"error_message,omitempty"`
}

// VerificationReport is the ephemeral output of a verification pass over a
// segment chain. It is returned to the caller, not persisted.
//
// OverallAuthentic is a strict conjunction: the recomputed chain must be
// valid, every hash and every signature must check out, and no segment may
// be flagged. Per-segment detail stays available for consumers that want a
// more nuanced trust decision.
type VerificationReport struct {
	VideoID          string `json:"video_id"`
	OverallAuthentic bool   `json:"overall_authentic"`
	ChainValid       bool   `json:"chain_valid"`

	SegmentResults []SegmentVerificationResult `json:"segment_results"`

	TotalSegments        int `json:"total_segments"`
	ValidC2PASignatures  int `json:"valid_c2pa_signatures"`
	ValidHashes          int `json:"valid_hashes"`
	DeepfakeFlaggedCount int `json:"deepfake_flagged_count"`

	DeepfakeThreshold    float64  `json:"deepfake_threshold"`
	AverageDeepfakeScore *float64 `json:"average_deepfake_score,omitempty"`

	VerifiedAt          time.Time `json:"verified_at"`
	VerificationVersion string    `json:"verification_version"`
}

// Summary returns a condensed view of the report with success rates, for
// logging and console output.
func (r *VerificationReport) Summary() map[string]interface{} {
	c2paRate, hashRate, flaggedPct := 0.0, 0.0, 0.0
	if r.TotalSegments > 0 {
		c2paRate = float64(r.ValidC2PASignatures) / float64(r.TotalSegments)
		hashRate = float64(r.ValidHashes) / float64(r.TotalSegments)
		flaggedPct = float64(r.DeepfakeFlaggedCount) / float64(r.TotalSegments) * 100
	}
	return map[string]interface{}{
		"video_id":                    r.VideoID,
		"overall_authentic":           r.OverallAuthentic,
		"chain_valid":                 r.ChainValid,
		"segments_verified":           r.TotalSegments,
		"c2pa_success_rate":           c2paRate,
		"hash_success_rate":           hashRate,
		"deepfake_flagged_percentage": flaggedPct,
		"average_deepfake_score":      r.AverageDeepfakeScore,
		"verified_at":                 r.VerifiedAt.Format(time.RFC3339),
	}
}
