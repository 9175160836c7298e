package detect

import (
	"context"
	"os"
)

// StaticDetector scores every readable segment with a fixed value. It is
// the default detector when no model is wired in: a stand-in that keeps
// the pipeline exercising the full scoring path, and a convenient fake for
// tests. Unreadable segments get a neutral result.
type StaticDetector struct {
	Model      string
	Score      float64
	Confidence float64
}

// NewStaticDetector returns a detector reporting the given fixed score.
func NewStaticDetector(model string, score, confidence float64) *StaticDetector {
	return &StaticDetector{Model: model, Score: score, Confidence: confidence}
}

func (d *StaticDetector) AnalyzeSegments(ctx context.Context, paths []string) ([]Score, error) {
	results := make([]Score, 0, len(paths))
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			results = append(results, NeutralScore(i, d.Model, err))
			continue
		}
		results = append(results, Score{
			SegmentID:  i,
			Score:      d.Score,
			Confidence: d.Confidence,
			Model:      d.Model,
			Metadata: map[string]interface{}{
				"file_size_bytes": info.Size(),
			},
		})
	}
	return results, nil
}

func (d *StaticDetector) ValidateScoreFormat(scores []Score) bool {
	return ValidateScores(scores)
}

// BatchDetector wraps another detector and feeds it fixed-size batches,
// renumbering results to global segment ids. Some models are more
// efficient over several segments at once; from the pipeline's point of
// view the two strategies are indistinguishable.
type BatchDetector struct {
	Inner     Detector
	BatchSize int
}

func NewBatchDetector(inner Detector, batchSize int) *BatchDetector {
	if batchSize < 1 {
		batchSize = 1
	}
	return &BatchDetector{Inner: inner, BatchSize: batchSize}
}

func (d *BatchDetector) AnalyzeSegments(ctx context.Context, paths []string) ([]Score, error) {
	all := make([]Score, 0, len(paths))
	for start := 0; start < len(paths); start += d.BatchSize {
		end := start + d.BatchSize
		if end > len(paths) {
			end = len(paths)
		}
		batch, err := d.Inner.AnalyzeSegments(ctx, paths[start:end])
		if err != nil {
			return nil, err
		}
		for _, s := range batch {
			s.SegmentID += start
			all = append(all, s)
		}
	}
	return all, nil
}

func (d *BatchDetector) ValidateScoreFormat(scores []Score) bool {
	return ValidateScores(scores)
}
