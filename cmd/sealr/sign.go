package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vaibhaw-/SealR/internal/sealr/c2pa"
	"github.com/vaibhaw-/SealR/internal/sealr/config"
	"github.com/vaibhaw-/SealR/internal/sealr/detect"
	"github.com/vaibhaw-/SealR/internal/sealr/logger"
	"github.com/vaibhaw-/SealR/internal/sealr/manifest"
)

var (
	signFlagVideo     string
	signFlagVideoID   string
	signFlagTemplate  string
	signFlagDuration  float64
	signFlagScores    string
	signFlagManifest  string
	signFlagAttest    bool
	signFlagAttestKey string
)

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Segment a video, sign each segment and build the hash-chain manifest",
	RunE:  runSign,
}

func init() {
	signCmd.Flags().StringVar(&signFlagVideo, "video", "", "input video file (required)")
	signCmd.Flags().StringVar(&signFlagVideoID, "video-id", "", "video identifier (default: random uuid)")
	signCmd.Flags().StringVar(&signFlagTemplate, "template", "", "C2PA manifest template JSON file (required)")
	signCmd.Flags().Float64Var(&signFlagDuration, "segment-duration", 0, "segment duration in seconds (default from config)")
	signCmd.Flags().StringVar(&signFlagScores, "scores", "", "pre-computed deepfake scores JSON file (optional)")
	signCmd.Flags().StringVar(&signFlagManifest, "output-manifest", "", "manifest output path (default <output_dir>/manifest_<video_id>.json)")
	signCmd.Flags().BoolVar(&signFlagAttest, "attest", false, "write a signed chain attestation next to the manifest")
	signCmd.Flags().StringVar(&signFlagAttestKey, "attest-key", "", "attestation private key PEM path (default from config)")

	signCmd.MarkFlagRequired("video")
	signCmd.MarkFlagRequired("template")
}

func runSign(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	log := logger.L()

	videoID := signFlagVideoID
	if videoID == "" {
		videoID = uuid.NewString()
	}
	segmentDuration := signFlagDuration
	if segmentDuration == 0 {
		segmentDuration = cfg.Pipeline.SegmentDuration
	}

	tpl, err := loadTemplate(signFlagTemplate)
	if err != nil {
		return err
	}

	var scores []detect.Score
	if signFlagScores != "" {
		scores, err = detect.ParseScoresFile(signFlagScores)
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Tools.ToolTimeout)
	defer cancel()

	certs := c2pa.CertProvider{Binary: cfg.Tools.CertGen, CertDir: cfg.Dirs.CertDir}
	if err := certs.Ensure(ctx, cfg.Signing.PrivateKeyPath, cfg.Signing.SignCertPath); err != nil {
		return err
	}
	// The signer reads the key material named in the per-segment manifest.
	tpl.PrivateKey = cfg.Signing.PrivateKeyPath
	tpl.SignCert = cfg.Signing.SignCertPath

	auth, err := buildAuthenticator(cfg)
	if err != nil {
		return err
	}

	m, signedPaths, err := auth.ProcessAndSignVideo(ctx, signFlagVideo, videoID, segmentDuration, tpl, scores)
	if err != nil {
		return err
	}

	manifestPath := signFlagManifest
	if manifestPath == "" {
		manifestPath = filepath.Join(cfg.Dirs.OutputDir, fmt.Sprintf("manifest_%s.json", videoID))
	}
	if err := manifest.Save(manifestPath, m); err != nil {
		return err
	}
	log.Infow("manifest saved", "path", manifestPath, "video_id", videoID)

	if signFlagAttest {
		key := signFlagAttestKey
		if key == "" {
			key = cfg.Signing.AttestPrivateKeyPath
		}
		attPath, err := manifest.WriteAttestation(filepath.Dir(manifestPath), m, key)
		if err != nil {
			return err
		}
		log.Infow("attestation written", "path", attPath)
	}

	return printJSON(map[string]interface{}{
		"video_id":        videoID,
		"manifest_path":   manifestPath,
		"total_segments":  m.TotalSegments,
		"master_hash":     m.MasterHash,
		"chain_valid":     m.ChainValid,
		"signed_segments": signedPaths,
		"statistics":      m.SegmentStatistics(),
	})
}
