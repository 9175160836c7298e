package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vaibhaw-/SealR/internal/sealr/detect"
	"github.com/vaibhaw-/SealR/internal/sealr/logger"
	"github.com/vaibhaw-/SealR/internal/sealr/manifest"
)

// Segmenter splits a video into ordered, time-contiguous, independently
// decodable segment files of nominal duration seconds.
type Segmenter interface {
	Segment(ctx context.Context, video string, duration float64, dir string) ([]string, error)
}

// Prober reports the total duration of a source video in seconds.
type Prober interface {
	Duration(ctx context.Context, video string) (float64, error)
}

// Signer attaches a C2PA credential to a segment, writing the signed
// artifact to output, and returns an opaque signature reference.
type Signer interface {
	Sign(ctx context.Context, segment, manifestPath, output string) (string, error)
}

// Verifier reports whether a file carries a valid C2PA signature.
type Verifier interface {
	Verify(ctx context.Context, file string) (bool, error)
}

// Options configures an Authenticator. Segmenter, Prober, Signer and
// Verifier are required; Detector defaults to a StaticDetector and
// VerifyWorkers to 4.
type Options struct {
	TempDir   string
	OutputDir string

	Segmenter Segmenter
	Prober    Prober
	Signer    Signer
	Verifier  Verifier
	Detector  detect.Detector

	VerifyWorkers int
}

// Authenticator orchestrates the per-video pipeline: segmentation, signing,
// content hashing, chain linking and deepfake scoring on the way in, and
// hash/signature/score verification on the way out.
//
// The detector is an injected capability, so concurrent pipelines with
// distinct detectors can coexist in one process. One Authenticator must
// not run two pipelines for the same video id concurrently; the manifest
// is scoped to a single video id.
type Authenticator struct {
	tempDir   string
	outputDir string

	segmenter Segmenter
	prober    Prober
	signer    Signer
	verifier  Verifier
	detector  detect.Detector

	verifyWorkers int
}

// New builds an Authenticator and creates its working directories.
func New(opts Options) (*Authenticator, error) {
	if opts.Segmenter == nil || opts.Prober == nil || opts.Signer == nil || opts.Verifier == nil {
		return nil, fmt.Errorf("segmenter, prober, signer and verifier are required")
	}
	if opts.Detector == nil {
		opts.Detector = detect.NewStaticDetector("static", 0.1, 0.9)
	}
	if opts.VerifyWorkers < 1 {
		opts.VerifyWorkers = 4
	}
	for _, dir := range []string{opts.TempDir, opts.OutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return &Authenticator{
		tempDir:       opts.TempDir,
		outputDir:     opts.OutputDir,
		segmenter:     opts.Segmenter,
		prober:        opts.Prober,
		signer:        opts.Signer,
		verifier:      opts.Verifier,
		detector:      opts.Detector,
		verifyWorkers: opts.VerifyWorkers,
	}, nil
}

// ProcessAndSignVideo segments the video, signs each segment, links the
// hash chain and assembles the sealed manifest.
//
// When scores is nil the injected detector analyzes the segments;
// otherwise the supplied scores are format-checked up front and used as
// is. Any segmentation or signing failure aborts the whole run: no partial
// manifest is returned, signed outputs from the aborted run are removed,
// and per-segment working files are cleaned up on success or failure.
func (a *Authenticator) ProcessAndSignVideo(ctx context.Context, videoPath, videoID string,
	segmentDuration float64, tpl manifest.Template, scores []detect.Score) (*manifest.ChainManifest, []string, error) {

	log := logger.L()
	log.Infow("processing video", "video_id", videoID, "video", videoPath, "segment_duration", segmentDuration)

	// Validation happens before any external call.
	if tpl.ClaimGenerator == "" || tpl.Alg == "" {
		return nil, nil, fmt.Errorf("%w: alg and claim_generator are required", ErrInvalidTemplate)
	}
	if segmentDuration <= 0 {
		return nil, nil, fmt.Errorf("%w: segment duration must be positive", ErrInvalidTemplate)
	}
	if scores != nil && !a.detector.ValidateScoreFormat(scores) {
		return nil, nil, ErrInvalidScores
	}

	segDir := filepath.Join(a.tempDir, "segments_"+videoID)
	defer os.RemoveAll(segDir)

	segmentFiles, err := a.segmenter.Segment(ctx, videoPath, segmentDuration, segDir)
	if err != nil {
		return nil, nil, &ToolError{Tool: "segmenter", Err: err}
	}
	log.Debugw("segmentation done", "video_id", videoID, "segments", len(segmentFiles))

	totalDuration, err := a.prober.Duration(ctx, videoPath)
	if err != nil {
		return nil, nil, &ToolError{Tool: "prober", Err: err}
	}

	if scores == nil {
		log.Infow("running deepfake detection", "video_id", videoID, "segments", len(segmentFiles))
		scores, err = a.detector.AnalyzeSegments(ctx, segmentFiles)
		if err != nil {
			return nil, nil, &ToolError{Tool: "detector", Err: err}
		}
	} else {
		log.Infow("using provided deepfake scores", "video_id", videoID, "entries", len(scores))
	}
	scoreByID := make(map[int]detect.Score, len(scores))
	for _, s := range scores {
		scoreByID[s.SegmentID] = s
	}

	segments := make([]manifest.SegmentInfo, 0, len(segmentFiles))
	signedPaths := make([]string, 0, len(segmentFiles))
	previousHash := ""

	// The link-assignment sweep is strictly ordered: each segment's
	// previous_hash is the hash recorded for the one before it.
	for i, segmentFile := range segmentFiles {
		startTime := float64(i) * segmentDuration
		endTime := float64(i+1) * segmentDuration
		if endTime > totalDuration {
			endTime = totalDuration
		}

		manifestPath := filepath.Join(segDir, fmt.Sprintf("manifest_seg_%d.json", i))
		if err := writeSegmentManifest(manifestPath, tpl, i, filepath.Base(videoPath)); err != nil {
			removeAll(signedPaths)
			return nil, nil, err
		}

		signedPath := filepath.Join(a.outputDir, fmt.Sprintf("%s_signed_%04d.mp4", videoID, i))
		signature, err := a.signer.Sign(ctx, segmentFile, manifestPath, signedPath)
		if err != nil {
			removeAll(signedPaths)
			return nil, nil, &ToolError{Tool: "signer", Err: err}
		}

		// The recorded hash is taken over the signed artifact, the same
		// bytes a consumer will re-hash at verification time.
		fileHash, err := hashFile(signedPath)
		if err != nil {
			removeAll(append(signedPaths, signedPath))
			return nil, nil, fmt.Errorf("hash segment %d: %w", i, err)
		}

		info := manifest.SegmentInfo{
			SegmentID:     i,
			StartTime:     startTime,
			EndTime:       endTime,
			Duration:      endTime - startTime,
			FilePath:      signedPath,
			FileHash:      fileHash,
			C2PASignature: signature,
			PreviousHash:  previousHash,
			CreatedAt:     time.Now().UTC(),
		}
		if s, ok := scoreByID[i]; ok {
			score := s.Score
			confidence := s.Confidence
			info.DeepfakeScore = &score
			info.DeepfakeConfidence = &confidence
			info.DeepfakeModel = s.Model
			info.DeepfakeMetadata = s.Metadata
		}

		segments = append(segments, info)
		signedPaths = append(signedPaths, signedPath)
		previousHash = fileHash
	}

	m := &manifest.ChainManifest{
		VideoID:              videoID,
		OriginalFilename:     filepath.Base(videoPath),
		TotalSegments:        len(segments),
		SegmentDuration:      segmentDuration,
		TotalDuration:        totalDuration,
		Segments:             segments,
		C2PAManifestTemplate: tpl,
		CreatedAt:            time.Now().UTC(),
		ProcessingVersion:    manifest.ProcessingVersion,
	}
	m.Seal()

	log.Infow("video processed", "video_id", videoID, "segments", len(segments),
		"master_hash", m.MasterHash, "chain_valid", m.ChainValid)
	return m, signedPaths, nil
}

// VerifySegmentChain checks delivered segment files against a manifest.
//
// It requires exactly one file per manifest segment, in manifest order.
// Segments are verified independently with bounded concurrency; one
// segment's failure is recorded in its result and never cancels the rest.
// The final chain_valid recheck is a pure function over the manifest.
func (a *Authenticator) VerifySegmentChain(ctx context.Context, m *manifest.ChainManifest,
	segmentFiles []string, threshold float64) (*VerificationReport, error) {

	log := logger.L()
	if len(m.Segments) == 0 {
		return nil, ErrEmptyManifest
	}
	if len(segmentFiles) != len(m.Segments) {
		return nil, fmt.Errorf("%w: manifest has %d segments, got %d files",
			ErrSegmentCountMismatch, len(m.Segments), len(segmentFiles))
	}
	log.Infow("verifying segment chain", "video_id", m.VideoID,
		"segments", len(segmentFiles), "threshold", threshold)

	results := make([]SegmentVerificationResult, len(m.Segments))
	var wg sync.WaitGroup
	sem := make(chan struct{}, a.verifyWorkers)

	for i := range m.Segments {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = a.verifySegment(ctx, &m.Segments[i], segmentFiles[i], threshold)
		}(i)
	}
	wg.Wait()

	chainValid := m.ValidateChain()

	report := &VerificationReport{
		VideoID:             m.VideoID,
		ChainValid:          chainValid,
		SegmentResults:      results,
		TotalSegments:       len(results),
		DeepfakeThreshold:   threshold,
		VerifiedAt:          time.Now().UTC(),
		VerificationVersion: VerificationVersion,
	}

	var scoreSum float64
	scored := 0
	for _, r := range results {
		if r.C2PAValid {
			report.ValidC2PASignatures++
		}
		if r.HashValid {
			report.ValidHashes++
		}
		if r.DeepfakeFlagged {
			report.DeepfakeFlaggedCount++
		}
		if r.DeepfakeScore != nil {
			scoreSum += *r.DeepfakeScore
			scored++
		}
	}
	if scored > 0 {
		avg := scoreSum / float64(scored)
		report.AverageDeepfakeScore = &avg
	}

	report.OverallAuthentic = chainValid &&
		report.ValidHashes == report.TotalSegments &&
		report.ValidC2PASignatures == report.TotalSegments &&
		report.DeepfakeFlaggedCount == 0

	log.Infow("verification done", "video_id", m.VideoID,
		"overall_authentic", report.OverallAuthentic, "chain_valid", chainValid,
		"valid_hashes", report.ValidHashes, "flagged", report.DeepfakeFlaggedCount)
	return report, nil
}

func (a *Authenticator) verifySegment(ctx context.Context, seg *manifest.SegmentInfo,
	file string, threshold float64) SegmentVerificationResult {

	result := SegmentVerificationResult{
		SegmentID:     seg.SegmentID,
		DeepfakeScore: seg.DeepfakeScore,
	}
	if seg.DeepfakeScore != nil {
		result.DeepfakeFlagged = *seg.DeepfakeScore > threshold
	}

	actualHash, err := hashFile(file)
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("hash segment: %v", err)
		return result
	}
	result.HashValid = actualHash == seg.FileHash

	valid, err := a.verifier.Verify(ctx, file)
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("verify signature: %v", err)
		return result
	}
	result.C2PAValid = valid

	return result
}

// writeSegmentManifest derives the per-segment C2PA manifest from the
// template, carrying the segment id and source filename in a c2pa.actions
// assertion.
func writeSegmentManifest(path string, tpl manifest.Template, segmentID int, sourceFile string) error {
	tpl.Assertions = []map[string]interface{}{
		{
			"label": "c2pa.actions",
			"data": map[string]interface{}{
				"actions": []map[string]interface{}{
					{
						"action":        "c2pa.created",
						"softwareAgent": "SealR v" + manifest.ProcessingVersion,
						"parameters": map[string]interface{}{
							"segment_id":   segmentID,
							"segment_file": sourceFile,
						},
					},
				},
			},
		},
	}
	b, err := json.MarshalIndent(tpl, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal segment manifest: %w", err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("write segment manifest: %w", err)
	}
	return nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func removeAll(paths []string) {
	for _, p := range paths {
		os.Remove(p)
	}
}
