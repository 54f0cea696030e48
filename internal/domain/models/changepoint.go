package models

import "time"

// Model families for change point detection.
const (
	ModelMean         = "mean"
	ModelMeanVariance = "mean_variance"
)

// DetectionConfig configures one change point inference run. Seed makes
// the sampler reproducible; Budget bounds wall-clock time, after which
// the best estimate so far is returned.
type DetectionConfig struct {
	NumChangePoints  int
	Model            string
	MinSegmentLength int
	Draws            int
	Warmup           int
	Chains           int
	Seed             int64
	Budget           time.Duration
}

// ChangePointEstimate is one detected shift, read-only once produced.
type ChangePointEstimate struct {
	Index      int
	Date       time.Time
	MeanBefore float64
	MeanAfter  float64
	Delta      float64
	Confidence float64
}

// DetectionResult carries the estimates plus every recovered warning.
// A degenerate (flat or NaN-producing) series yields no estimates and a
// warning instead of an error.
type DetectionResult struct {
	ChangePoints []ChangePointEstimate
	Warnings     []string
}

// AnalysisReport is the full analysis output served to callers:
// detected change points, per-event impacts, and recovered warnings.
type AnalysisReport struct {
	ChangePoints []ChangePointEstimate
	Impacts      []EventImpact
	Warnings     []string
	ComputedAt   time.Time
}
