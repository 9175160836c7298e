// Package media wraps the external ffmpeg/ffprobe tools used to split a
// source video into segments and to probe its duration.
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/vaibhaw-/SealR/internal/sealr/logger"
)

// Tools names the external binaries. Zero values fall back to PATH lookup
// of the standard names.
type Tools struct {
	FFmpeg  string
	FFprobe string
}

func (t Tools) ffmpeg() string {
	if t.FFmpeg != "" {
		return t.FFmpeg
	}
	return "ffmpeg"
}

func (t Tools) ffprobe() string {
	if t.FFprobe != "" {
		return t.FFprobe
	}
	return "ffprobe"
}

// Segment splits video into time-contiguous, independently decodable
// segments of nominal duration seconds (the last may be shorter), writing
// segment_NNNN.mp4 files into dir. Streams are copied, not re-encoded.
// Returns the created files in time order.
func (t Tools) Segment(ctx context.Context, video string, duration float64, dir string) ([]string, error) {
	log := logger.L()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("mkdir segments: %w", err)
	}

	pattern := filepath.Join(dir, "segment_%04d.mp4")
	cmd := exec.CommandContext(ctx, t.ffmpeg(),
		"-i", video,
		"-c", "copy",
		"-f", "segment",
		"-segment_time", strconv.FormatFloat(duration, 'f', -1, 64),
		"-segment_format", "mp4",
		"-reset_timestamps", "1",
		"-y",
		pattern,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg segment: %w\n%s", err, string(out))
	}

	files, err := filepath.Glob(filepath.Join(dir, "segment_*.mp4"))
	if err != nil {
		return nil, fmt.Errorf("glob segments: %w", err)
	}
	sort.Strings(files)
	log.Infow("video segmented", "video", video, "segments", len(files), "dir", dir)
	return files, nil
}

type ffprobeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Duration  string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration returns the total duration of the source in seconds, preferring
// the container-level value and falling back to the first stream.
func (t Tools) Duration(ctx context.Context, video string) (float64, error) {
	cmd := exec.CommandContext(ctx, t.ffprobe(),
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		video,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(output, &parsed); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}

	if parsed.Format.Duration != "" {
		d, err := strconv.ParseFloat(parsed.Format.Duration, 64)
		if err == nil {
			return d, nil
		}
	}
	for _, s := range parsed.Streams {
		if s.Duration == "" {
			continue
		}
		if d, err := strconv.ParseFloat(s.Duration, 64); err == nil {
			return d, nil
		}
	}
	return 0, fmt.Errorf("ffprobe: no duration in output for %s", video)
}
