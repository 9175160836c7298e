package pipeline

import (
	"errors"
	"fmt"
)

// Validation errors are rejected before any external tool is invoked.
var (
	ErrInvalidScores        = errors.New("invalid deepfake scores format")
	ErrInvalidTemplate      = errors.New("invalid manifest template")
	ErrSegmentCountMismatch = errors.New("segment count mismatch")
	ErrEmptyManifest        = errors.New("manifest has no segments")
)

// ToolError wraps a failure from an external collaborator (segmenter,
// prober, signer, verifier, detector). The wrapped error carries the
// tool's diagnostic output so user-visible failures include it.
//
// Chain-integrity mismatches are never errors: they surface as
// chain_valid=false plus statistics in the manifest and report.
type ToolError struct {
	Tool string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }
