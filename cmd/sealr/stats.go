package main

import (
	"github.com/spf13/cobra"

	"github.com/vaibhaw-/SealR/internal/sealr/manifest"
)

var statsFlagManifest string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print chain validity and score statistics for a manifest",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsFlagManifest, "manifest", "", "chain manifest JSON file (required)")
	statsCmd.MarkFlagRequired("manifest")
}

func runStats(cmd *cobra.Command, args []string) error {
	m, err := manifest.Load(statsFlagManifest)
	if err != nil {
		return err
	}
	return printJSON(map[string]interface{}{
		"video_id":           m.VideoID,
		"total_segments":     m.TotalSegments,
		"master_hash":        m.MasterHash,
		"chain_valid":        m.ValidateChain(),
		"processing_version": m.ProcessingVersion,
		"created_at":         m.CreatedAt,
		"statistics":         m.SegmentStatistics(),
	})
}
