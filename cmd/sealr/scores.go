package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vaibhaw-/SealR/internal/sealr/config"
	"github.com/vaibhaw-/SealR/internal/sealr/detect"
	"github.com/vaibhaw-/SealR/internal/sealr/logger"
	"github.com/vaibhaw-/SealR/internal/sealr/manifest"
)

var (
	scoresFlagManifest string
	scoresFlagScores   string
	scoresFlagOutput   string
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Apply deepfake detection scores to an existing manifest",
	RunE:  runScores,
}

func init() {
	scoresCmd.Flags().StringVar(&scoresFlagManifest, "manifest", "", "chain manifest JSON file (required)")
	scoresCmd.Flags().StringVar(&scoresFlagScores, "scores", "", "detection scores JSON file (required)")
	scoresCmd.Flags().StringVar(&scoresFlagOutput, "output", "", "output manifest path (default <manifest>_updated.json)")

	scoresCmd.MarkFlagRequired("manifest")
	scoresCmd.MarkFlagRequired("scores")
}

func runScores(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	log := logger.L()

	m, err := manifest.Load(scoresFlagManifest)
	if err != nil {
		return err
	}

	parsed, err := detect.ParseScoresFile(scoresFlagScores)
	if err != nil {
		return err
	}

	entries := make([]manifest.ScoreUpdate, 0, len(parsed))
	for _, s := range parsed {
		conf := s.Confidence
		entries = append(entries, manifest.ScoreUpdate{
			SegmentID:  s.SegmentID,
			Score:      s.Score,
			Model:      s.Model,
			Confidence: &conf,
			Metadata:   s.Metadata,
		})
	}

	updated := m.UpdateScores(entries)
	log.Infow("scores applied",
		"manifest", scoresFlagManifest,
		"entries", len(entries),
		"updated", updated,
		"skipped", len(entries)-updated)

	// The input manifest is never overwritten; updates always land in a
	// fresh file.
	outPath := scoresFlagOutput
	if outPath == "" {
		ext := filepath.Ext(scoresFlagManifest)
		outPath = strings.TrimSuffix(scoresFlagManifest, ext) + "_updated" + ext
	}
	if err := manifest.Save(outPath, m); err != nil {
		return err
	}

	flagged := m.FlaggedAbove(cfg.Detection.Threshold)
	if len(flagged) > 0 {
		log.Infow("segments flagged", "count", len(flagged), "threshold", cfg.Detection.Threshold)
	}

	return printJSON(map[string]interface{}{
		"manifest_path":    outPath,
		"segments_updated": updated,
		"chain_valid":      m.ValidateChain(),
		"flagged_segments": flagged,
		"statistics":       m.SegmentStatistics(),
	})
}
