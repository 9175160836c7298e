// Package scoregen generates synthetic deepfake score fixtures for testing
// the signing and verification pipeline without a real detection model.
package scoregen

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"gopkg.in/yaml.v3"
)

// Config describes the fixture generation parsed from YAML.
type Config struct {
	Output        string   `yaml:"output"`
	Seed          uint64   `yaml:"seed"`
	Segments      int      `yaml:"segments"`
	FlaggedRatio  float64  `yaml:"flaggedRatio"`
	FlagThreshold float64  `yaml:"flagThreshold"`
	Models        []string `yaml:"models"`
}

// Entry is one generated score record, in the wire format the sealr CLI
// accepts for --scores files.
type Entry struct {
	SegmentID  int                    `json:"segment_id"`
	Score      float64                `json:"score"`
	Confidence float64                `json:"confidence"`
	Model      string                 `json:"model"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	AnalyzedAt string                 `json:"analyzed_at"`
}

// ReadConfig parses the YAML fixture config and applies defaults.
func ReadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Segments <= 0 {
		cfg.Segments = 10
	}
	if cfg.FlagThreshold <= 0 {
		cfg.FlagThreshold = 0.5
	}
	if cfg.FlaggedRatio < 0 || cfg.FlaggedRatio > 1 {
		return cfg, fmt.Errorf("flaggedRatio %v out of range [0,1]", cfg.FlaggedRatio)
	}
	if len(cfg.Models) == 0 {
		cfg.Models = []string{"synthetic_v1"}
	}
	return cfg, nil
}

// Generate produces one score entry per segment id. Roughly flaggedRatio of
// the entries score above flagThreshold, the rest below it. Deterministic
// for a fixed seed.
func Generate(cfg Config) []Entry {
	gofakeit.Seed(cfg.Seed)

	entries := make([]Entry, 0, cfg.Segments)
	for i := 0; i < cfg.Segments; i++ {
		flagged := gofakeit.Float64Range(0, 1) < cfg.FlaggedRatio

		var score float64
		if flagged {
			score = gofakeit.Float64Range(cfg.FlagThreshold, 1)
		} else {
			score = gofakeit.Float64Range(0, cfg.FlagThreshold)
		}

		entries = append(entries, Entry{
			SegmentID:  i,
			Score:      score,
			Confidence: gofakeit.Float64Range(0.6, 1),
			Model:      cfg.Models[gofakeit.Number(0, len(cfg.Models)-1)],
			Metadata: map[string]interface{}{
				"frames_analyzed": gofakeit.Number(120, 600),
				"detector_host":   gofakeit.AppName(),
			},
			AnalyzedAt: time.Now().UTC().Format(time.RFC3339),
		})
	}
	return entries
}

// Write serializes the entries as a JSON array to cfg.Output.
func Write(cfg Config, entries []Entry) error {
	f, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encode scores: %w", err)
	}
	return f.Sync()
}
