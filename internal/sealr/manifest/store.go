package manifest

import (
	"encoding/json"
	"fmt"
	"os"
)

// Save writes the manifest atomically using a temp file + rename.
//
// Either the previous file survives intact or the new manifest is
// completely written; a crash mid-write never leaves a partial manifest.
// Score updates are expected to be saved to a new path rather than
// overwriting the original in place.
func Save(path string, m *ChainManifest) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp manifest: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(m); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode manifest: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp manifest: %w", err)
	}

	return os.Rename(tmp, path)
}

// Load reads a manifest back from disk. The round trip through Save/Load
// is lossless: every field compares equal to the original.
func Load(path string) (*ChainManifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	var m ChainManifest
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}
