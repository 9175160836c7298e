package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vaibhaw-/SealR/internal/sealr/config"
	"github.com/vaibhaw-/SealR/internal/sealr/logger"
	"github.com/vaibhaw-/SealR/internal/sealr/manifest"
)

var (
	verifyFlagManifest    string
	verifyFlagSegments    []string
	verifyFlagThreshold   float64
	verifyFlagAttestation string
	verifyFlagAttestKey   string
	verifyFlagSummary     bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify delivered segments against a chain manifest",
	RunE:  runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyFlagManifest, "manifest", "", "chain manifest JSON file (required)")
	verifyCmd.Flags().StringSliceVar(&verifyFlagSegments, "segments", nil, "signed segment files, in manifest order (required)")
	verifyCmd.Flags().Float64Var(&verifyFlagThreshold, "threshold", -1, "deepfake flag threshold (default from config)")
	verifyCmd.Flags().StringVar(&verifyFlagAttestation, "attestation", "", "signed attestation file to check (optional)")
	verifyCmd.Flags().StringVar(&verifyFlagAttestKey, "attest-pub", "", "attestation public key PEM path (default from config)")
	verifyCmd.Flags().BoolVar(&verifyFlagSummary, "summary", false, "print the compact report summary instead of the full report")

	verifyCmd.MarkFlagRequired("manifest")
	verifyCmd.MarkFlagRequired("segments")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	log := logger.L()

	m, err := manifest.Load(verifyFlagManifest)
	if err != nil {
		return err
	}

	threshold := verifyFlagThreshold
	if threshold < 0 {
		threshold = cfg.Detection.Threshold
	}

	// Segment files are matched to manifest entries positionally, so the
	// flag order is the manifest order and must be preserved as given.
	files := append([]string(nil), verifyFlagSegments...)

	auth, err := buildAuthenticator(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Tools.ToolTimeout)
	defer cancel()

	report, err := auth.VerifySegmentChain(ctx, m, files, threshold)
	if err != nil {
		return err
	}

	if verifyFlagAttestation != "" {
		pub := verifyFlagAttestKey
		if pub == "" {
			pub = cfg.Signing.AttestPublicKeyPath
		}
		ok, err := manifest.VerifyAttestation(verifyFlagAttestation, pub, m.MasterHash)
		if err != nil {
			return fmt.Errorf("check attestation: %w", err)
		}
		log.Infow("attestation checked", "path", verifyFlagAttestation, "valid", ok)
		if !ok {
			report.OverallAuthentic = false
		}
	}

	log.Infow("verification complete",
		"video_id", report.VideoID,
		"overall_authentic", report.OverallAuthentic,
		"chain_valid", report.ChainValid,
		"flagged", report.DeepfakeFlaggedCount)

	if verifyFlagSummary {
		return printJSON(report.Summary())
	}
	return printJSON(report)
}
