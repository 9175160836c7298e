package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// ProcessingVersion identifies the pipeline revision that produced a manifest.
const ProcessingVersion = "1.0"

// SegmentInfo describes one time-bounded slice of a source video.
//
// A segment is created once during signing and is immutable afterwards,
// with one exception: the deepfake_* fields may be overwritten later via
// ChainManifest.UpdateScores. The hash-linkage fields (FileHash,
// PreviousHash) never change after creation.
//
// Fields:
//   - SegmentID: sequential 0-based identifier; contiguous within a manifest
//   - StartTime/EndTime/Duration: segment timing in seconds
//   - FilePath: path to the signed segment artifact
//   - FileHash: hex SHA-256 of the signed segment file
//   - C2PASignature: opaque reference returned by the external signer
//   - PreviousHash: FileHash of the prior segment; empty iff SegmentID == 0
//   - DeepfakeScore/DeepfakeModel/DeepfakeConfidence/DeepfakeMetadata:
//     detection results, nil/empty until a detector has scored the segment
type SegmentInfo struct {
	SegmentID int     `json:"segment_id"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Duration  float64 `json:"duration"`
	FilePath  string  `json:"file_path"`
	FileHash  string  `json:"file_hash"`

	C2PASignature string `json:"c2pa_signature,omitempty"`
	PreviousHash  string `json:"previous_hash,omitempty"`

	DeepfakeScore      *float64               `json:"deepfake_score,omitempty"`
	DeepfakeModel      string                 `json:"deepfake_model,omitempty"`
	DeepfakeConfidence *float64               `json:"deepfake_confidence,omitempty"`
	DeepfakeMetadata   map[string]interface{} `json:"deepfake_metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Template is the C2PA manifest template handed to the external signer.
// It is embedded in the chain manifest verbatim so that an auditor can see
// exactly which signing configuration produced the segment artifacts.
type Template struct {
	Alg            string                   `json:"alg"`
	PrivateKey     string                   `json:"private_key"`
	SignCert       string                   `json:"sign_cert"`
	TAURL          string                   `json:"ta_url"`
	ClaimGenerator string                   `json:"claim_generator"`
	Assertions     []map[string]interface{} `json:"assertions"`
}

// ChainManifest is the ordered collection of signed segments plus the
// chain-level digest tying them together.
//
// MasterHash and ChainValid are derived values. ChainValid in particular is
// never to be trusted as stored truth: callers asserting validity must go
// through ValidateChain, which recomputes everything from the segment list.
type ChainManifest struct {
	VideoID          string  `json:"video_id"`
	OriginalFilename string  `json:"original_filename"`
	TotalSegments    int     `json:"total_segments"`
	SegmentDuration  float64 `json:"segment_duration"`
	TotalDuration    float64 `json:"total_duration"`

	MasterHash string `json:"master_hash"`
	ChainValid bool   `json:"chain_valid"`

	Segments []SegmentInfo `json:"segments"`

	C2PAManifestTemplate Template `json:"c2pa_manifest_template"`

	CreatedAt         time.Time `json:"created_at"`
	ProcessingVersion string    `json:"processing_version"`
}

// ComputeMasterHash returns the hex SHA-256 digest summarizing the full
// ordered chain.
//
// The digest is computed over "{segment_id}:{file_hash}:{previous_hash}"
// triples joined with "|". Neither ':' nor '|' can appear in a hex digest,
// so the encoding is unambiguous: any reorder, insertion, deletion or hash
// mutation produces a different digest.
func (m *ChainManifest) ComputeMasterHash() string {
	parts := make([]string, 0, len(m.Segments))
	for _, seg := range m.Segments {
		parts = append(parts, fmt.Sprintf("%d:%s:%s", seg.SegmentID, seg.FileHash, seg.PreviousHash))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// ValidateChain recomputes chain validity from the segment list.
//
// It returns false (never an error) when:
//   - the segment list is empty
//   - the recomputed master hash differs from the stored MasterHash
//   - segment 0 carries a previous hash
//   - any segment i>0 does not link to segments[i-1].FileHash
//
// Segment-id contiguity is a construction-time invariant and is
// intentionally not checked here.
func (m *ChainManifest) ValidateChain() bool {
	if len(m.Segments) == 0 {
		return false
	}

	if m.ComputeMasterHash() != m.MasterHash {
		return false
	}

	for i, seg := range m.Segments {
		if i == 0 {
			if seg.PreviousHash != "" {
				return false
			}
			continue
		}
		if seg.PreviousHash != m.Segments[i-1].FileHash {
			return false
		}
	}

	return true
}

// Seal computes and stores MasterHash and ChainValid from the current
// segment list. It is the only place those fields should be assigned.
func (m *ChainManifest) Seal() {
	m.MasterHash = m.ComputeMasterHash()
	m.ChainValid = m.ValidateChain()
}
