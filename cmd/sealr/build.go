package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/vaibhaw-/SealR/internal/sealr/c2pa"
	"github.com/vaibhaw-/SealR/internal/sealr/config"
	"github.com/vaibhaw-/SealR/internal/sealr/detect"
	"github.com/vaibhaw-/SealR/internal/sealr/manifest"
	"github.com/vaibhaw-/SealR/internal/sealr/media"
	"github.com/vaibhaw-/SealR/internal/sealr/pipeline"
)

// buildAuthenticator wires the exec-backed collaborators from config.
func buildAuthenticator(cfg *config.Config) (*pipeline.Authenticator, error) {
	tools := media.Tools{FFmpeg: cfg.Tools.FFmpeg, FFprobe: cfg.Tools.FFprobe}
	signerTool := c2pa.Tool{Binary: cfg.Tools.C2PATool}

	return pipeline.New(pipeline.Options{
		TempDir:       cfg.Dirs.TempDir,
		OutputDir:     cfg.Dirs.OutputDir,
		Segmenter:     tools,
		Prober:        tools,
		Signer:        signerTool,
		Verifier:      signerTool,
		Detector:      detect.NewStaticDetector(cfg.Detection.Model, 0.1, 0.9),
		VerifyWorkers: cfg.Pipeline.VerifyWorkers,
	})
}

// loadTemplate reads and decodes a C2PA manifest template JSON file.
func loadTemplate(path string) (manifest.Template, error) {
	var tpl manifest.Template
	b, err := os.ReadFile(path)
	if err != nil {
		return tpl, fmt.Errorf("read template: %w", err)
	}
	if err := json.Unmarshal(b, &tpl); err != nil {
		return tpl, fmt.Errorf("decode template: %w", err)
	}
	return tpl, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
