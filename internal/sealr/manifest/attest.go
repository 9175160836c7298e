package manifest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Attestation captures the chain head of a sealed manifest.
//
// An attestation is a signed snapshot of {video_id, master_hash,
// total_segments} taken when the manifest was produced. It lets a consumer
// who trusts the attestation key detect a wholesale manifest swap, which
// the in-manifest chain alone cannot (a forger who rewrites every segment
// hash can also rewrite the master hash).
type Attestation struct {
	VideoID       string    `json:"video_id"`
	MasterHash    string    `json:"master_hash"`
	TotalSegments int       `json:"total_segments"`
	CreatedAt     time.Time `json:"created_at"`
}

// SignedAttestation wraps an attestation with a detached base64 ECDSA
// signature over its canonical form.
type SignedAttestation struct {
	Attestation Attestation `json:"attestation"`
	Signature   string      `json:"signature"`
}

// WriteAttestation signs the manifest's chain head and writes a sidecar
// JSON file into dir; returns the path written.
func WriteAttestation(dir string, m *ChainManifest, privateKeyPath string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("attestation dir required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}

	at := Attestation{
		VideoID:       m.VideoID,
		MasterHash:    m.MasterHash,
		TotalSegments: m.TotalSegments,
		CreatedAt:     time.Now().UTC(),
	}
	canon, err := canonicalizeAttestation(at)
	if err != nil {
		return "", err
	}

	sig, err := signMessageECDSA(privateKeyPath, []byte(canon))
	if err != nil {
		return "", err
	}

	sa := SignedAttestation{Attestation: at, Signature: base64.StdEncoding.EncodeToString(sig)}
	b, err := json.Marshal(sa)
	if err != nil {
		return "", fmt.Errorf("marshal attestation: %w", err)
	}

	name := fmt.Sprintf("attestation-%s.json", m.VideoID)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b, 0644); err != nil {
		return "", fmt.Errorf("write attestation: %w", err)
	}
	return path, nil
}

// VerifyAttestation checks a signed attestation file against an expected
// master hash. A head mismatch returns (false, nil); signature problems
// with the key material surface as errors.
func VerifyAttestation(path, publicKeyPath, expectedMasterHash string) (bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read attestation: %w", err)
	}
	var sa SignedAttestation
	if err := json.Unmarshal(b, &sa); err != nil {
		return false, fmt.Errorf("unmarshal attestation: %w", err)
	}
	if sa.Attestation.MasterHash != expectedMasterHash {
		return false, nil
	}
	canon, err := canonicalizeAttestation(sa.Attestation)
	if err != nil {
		return false, err
	}
	sig, err := base64.StdEncoding.DecodeString(sa.Signature)
	if err != nil {
		return false, fmt.Errorf("decode signature: %w", err)
	}
	return verifyMessageECDSA(publicKeyPath, []byte(canon), sig)
}

func canonicalizeAttestation(at Attestation) (string, error) {
	// Deterministic order: created_at, master_hash, total_segments, video_id
	// (json.Marshal of a map sorts keys).
	m := map[string]interface{}{
		"video_id":       at.VideoID,
		"master_hash":    at.MasterHash,
		"total_segments": at.TotalSegments,
		"created_at":     at.CreatedAt.UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func signMessageECDSA(privateKeyPath string, msg []byte) ([]byte, error) {
	keyBytes, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	block, _ := pem.Decode(keyBytes)
	if block == nil {
		return nil, fmt.Errorf("invalid PEM for private key")
	}
	var pk *ecdsa.PrivateKey
	if block.Type == "EC PRIVATE KEY" {
		pk, err = x509.ParseECPrivateKey(block.Bytes)
	} else {
		var key any
		key, err = x509.ParsePKCS8PrivateKey(block.Bytes)
		if err == nil {
			var ok bool
			pk, ok = key.(*ecdsa.PrivateKey)
			if !ok {
				return nil, fmt.Errorf("not an ECDSA private key")
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	if pk.Curve != elliptic.P256() {
		return nil, fmt.Errorf("unsupported curve: want P-256")
	}
	sum := sha256.Sum256(msg)
	return ecdsa.SignASN1(rand.Reader, pk, sum[:])
}

func verifyMessageECDSA(publicKeyPath string, msg []byte, sig []byte) (bool, error) {
	keyBytes, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return false, fmt.Errorf("read public key: %w", err)
	}
	block, _ := pem.Decode(keyBytes)
	if block == nil {
		return false, fmt.Errorf("invalid PEM for public key")
	}
	if block.Type != "PUBLIC KEY" && block.Type != "EC PUBLIC KEY" {
		return false, fmt.Errorf("unsupported public key type: %s", block.Type)
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return false, fmt.Errorf("parse public key: %w", err)
	}
	pub, ok := key.(*ecdsa.PublicKey)
	if !ok {
		return false, fmt.Errorf("not an ECDSA public key")
	}
	if pub.Curve != elliptic.P256() {
		return false, fmt.Errorf("unsupported curve: want P-256")
	}
	sum := sha256.Sum256(msg)
	return ecdsa.VerifyASN1(pub, sum[:], sig), nil
}
