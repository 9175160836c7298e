// Package c2pa wraps the external c2patool and certgen binaries that
// attach and check C2PA credentials on segment files. The C2PA manifest
// format itself is out of scope; the tool boundary is JSON in, opaque
// signature reference out.
package c2pa

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/vaibhaw-/SealR/internal/sealr/logger"
)

// Tool invokes c2patool for signing and signature inspection.
type Tool struct {
	// Binary is the c2patool path; empty means PATH lookup.
	Binary string
}

func (t Tool) binary() string {
	if t.Binary != "" {
		return t.Binary
	}
	return "c2patool"
}

// Sign embeds a C2PA manifest into segment, writing the signed artifact to
// output, and returns an opaque signature reference. A non-zero exit is a
// hard error carrying the tool's stderr.
func (t Tool) Sign(ctx context.Context, segment, manifestPath, output string) (string, error) {
	cmd := exec.CommandContext(ctx, t.binary(),
		segment,
		"--manifest", manifestPath,
		"--output", output,
		"-f",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("c2patool sign: %w\n%s", err, string(out))
	}
	return fmt.Sprintf("c2pa:%s", filepath.Base(output)), nil
}

// Verify reports whether file carries a valid C2PA signature. A non-zero
// exit means the file is unsigned or its credential does not check out;
// that is a false result, not an error. Only a failure to run the tool at
// all is an error.
func (t Tool) Verify(ctx context.Context, file string) (bool, error) {
	cmd := exec.CommandContext(ctx, t.binary(), "--certs", file)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, fmt.Errorf("c2patool verify: %w", err)
	}
	return true, nil
}

// CertProvider idempotently ensures a signing keypair and certificate
// exist, generating them with certgen when missing.
type CertProvider struct {
	// Binary is the certgen path; empty means PATH lookup.
	Binary  string
	CertDir string
}

func (p CertProvider) binary() string {
	if p.Binary != "" {
		return p.Binary
	}
	return "certgen"
}

// Ensure creates keyPath and certPath under CertDir if either is missing.
// certgen occasionally emits empty files; those are removed and generation
// retried once.
func (p CertProvider) Ensure(ctx context.Context, keyPath, certPath string) error {
	log := logger.L()
	if fileNonEmpty(keyPath) && fileNonEmpty(certPath) {
		return nil
	}
	if err := os.MkdirAll(p.CertDir, 0755); err != nil {
		return fmt.Errorf("mkdir certs: %w", err)
	}

	if err := p.generate(ctx); err != nil {
		return err
	}

	if !fileNonEmpty(keyPath) || !fileNonEmpty(certPath) {
		log.Warnw("certificate files missing or empty, regenerating",
			"key", keyPath, "cert", certPath)
		os.Remove(keyPath)
		os.Remove(certPath)
		if err := p.generate(ctx); err != nil {
			return err
		}
		if !fileNonEmpty(keyPath) || !fileNonEmpty(certPath) {
			return fmt.Errorf("certgen: certificate files not created")
		}
	}

	log.Infow("certificates ready", "key", keyPath, "cert", certPath)
	return nil
}

func (p CertProvider) generate(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, p.binary())
	cmd.Dir = p.CertDir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("certgen: %w\n%s", err, string(out))
	}
	return nil
}

func fileNonEmpty(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}
