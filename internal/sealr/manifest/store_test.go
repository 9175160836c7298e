package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest_vid-test.json")

	m := newTestManifest(3)
	m.CreatedAt = time.Date(2025, 11, 3, 12, 30, 0, 0, time.UTC)
	for i := range m.Segments {
		m.Segments[i].CreatedAt = m.CreatedAt
	}
	m.C2PAManifestTemplate = Template{
		Alg:            "es256k",
		PrivateKey:     "es256k_private.pem",
		SignCert:       "es256k_cert.pem",
		TAURL:          "http://timestamp.digicert.com",
		ClaimGenerator: "SealR",
		Assertions:     []map[string]interface{}{{"label": "c2pa.actions"}},
	}
	m.UpdateScores([]ScoreUpdate{
		{SegmentID: 1, Score: 0.42, Model: "detector_v2", Confidence: fp(0.8),
			Metadata: map[string]interface{}{"resolution": "1920x1080"}},
	})

	require.NoError(t, Save(path, m))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, m, got, "save/load must be field-for-field lossless")
	assert.True(t, got.ValidateChain())
}

func TestSave_AtomicNoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	require.NoError(t, Save(path, newTestManifest(1)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "manifest.json", entries[0].Name())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}
