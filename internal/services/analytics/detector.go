package analytics

import (
	"context"
	"sort"
	"time"

	"OilPulse/internal/domain/models"
	domsvc "OilPulse/internal/domain/service"
	"OilPulse/pkg/logger"
)

// Detector infers change points in a return series with a Gibbs sampler
// over (switch point, segment means). Multiple change points are found
// by binary segmentation: split at the most confident switch point,
// then recurse into the resulting segments.
type Detector struct {
	log *logger.Logger
}

// NewDetector creates the change point detector.
func NewDetector(log *logger.Logger) *Detector {
	return &Detector{log: log}
}

var _ domsvc.ChangePointDetector = (*Detector)(nil)

type segment struct {
	from, to int
}

// Detect runs the inference and returns ordered estimates. A series too
// short for the requested segmentation fails with InsufficientDataError;
// a degenerate series recovers into an empty zero-confidence result with
// a warning.
func (d *Detector) Detect(ctx context.Context, returns *models.ReturnSeries, cfg models.DetectionConfig) (*models.DetectionResult, error) {
	cfg = withDefaults(cfg)
	n := returns.Len()
	required := (cfg.NumChangePoints + 1) * cfg.MinSegmentLength
	if n < required {
		return nil, &InsufficientDataError{N: n, Required: required}
	}

	var deadline time.Time
	if cfg.Budget > 0 {
		deadline = time.Now().Add(cfg.Budget)
	}
	params := samplerParams{
		draws:    cfg.Draws,
		warmup:   cfg.Warmup,
		chains:   cfg.Chains,
		seed:     cfg.Seed,
		minSeg:   cfg.MinSegmentLength,
		model:    cfg.Model,
		deadline: deadline,
	}

	started := time.Now()
	result := &models.DetectionResult{}
	segs := []segment{{0, n}}

	for len(result.ChangePoints) < cfg.NumChangePoints {
		bestSeg := -1
		var bestEst splitEstimate
		for i, sg := range segs {
			if sg.to-sg.from < 2*cfg.MinSegmentLength {
				continue
			}
			// Each segment gets its own deterministic seed so results
			// do not depend on evaluation order.
			p := params
			p.seed = cfg.Seed + int64(sg.from)*1_000_003
			est, err := sampleSplit(ctx, returns.Slice(sg.from, sg.to).Values, p)
			if err != nil {
				if _, ok := err.(*NumericDegeneracyError); ok {
					result.Warnings = append(result.Warnings, err.Error())
					continue
				}
				return nil, err
			}
			if bestSeg < 0 || est.confidence > bestEst.confidence {
				bestSeg = i
				bestEst = est
			}
		}
		if bestSeg < 0 {
			break
		}

		sg := segs[bestSeg]
		idx := sg.from + bestEst.tau
		result.ChangePoints = append(result.ChangePoints, models.ChangePointEstimate{
			Index:      idx,
			Date:       returns.Dates[idx],
			MeanBefore: bestEst.muBefore,
			MeanAfter:  bestEst.muAfter,
			Delta:      bestEst.muAfter - bestEst.muBefore,
			Confidence: bestEst.confidence,
		})
		segs = append(segs[:bestSeg], append([]segment{{sg.from, idx}, {idx, sg.to}}, segs[bestSeg+1:]...)...)
	}

	sort.Slice(result.ChangePoints, func(i, j int) bool {
		return result.ChangePoints[i].Index < result.ChangePoints[j].Index
	})

	if d.log != nil {
		d.log.Info("change point detection complete",
			logger.Int("observations", n),
			logger.Int("requested", cfg.NumChangePoints),
			logger.Int("found", len(result.ChangePoints)),
			logger.Duration("elapsed", time.Since(started)),
		)
	}
	return result, nil
}

func withDefaults(cfg models.DetectionConfig) models.DetectionConfig {
	if cfg.NumChangePoints <= 0 {
		cfg.NumChangePoints = 1
	}
	if cfg.Model == "" {
		cfg.Model = models.ModelMean
	}
	if cfg.MinSegmentLength < 2 {
		cfg.MinSegmentLength = 2
	}
	if cfg.Draws <= 0 {
		cfg.Draws = 1000
	}
	if cfg.Warmup <= 0 {
		cfg.Warmup = cfg.Draws / 2
	}
	if cfg.Chains <= 0 {
		cfg.Chains = 2
	}
	return cfg
}
