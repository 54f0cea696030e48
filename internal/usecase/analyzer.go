package usecase

import (
	"context"
	"fmt"
	"time"

	"OilPulse/internal/domain/models"
	domrepo "OilPulse/internal/domain/repository"
	domsvc "OilPulse/internal/domain/service"
	"OilPulse/pkg/cache"
	"OilPulse/pkg/config"
	"OilPulse/pkg/logger"
)

// Analyzer owns the loaded series and event catalog and orchestrates
// detection and correlation. Detection results are cached keyed by a
// content hash of (series identity, configuration), so repeated queries
// with the same knobs never recompute.
type Analyzer struct {
	detector   domsvc.ChangePointDetector
	correlator domsvc.EventCorrelator
	prices     domrepo.PriceStore
	events     domrepo.EventStore
	cache      cache.Service
	metrics    domrepo.Metrics
	cfg        *config.Config
	log        *logger.Logger

	series     *models.Series
	returns    *models.ReturnSeries
	catalog    []models.Event
	seriesHash string
}

// NewAnalyzer creates the analysis orchestrator. Call Init before use.
func NewAnalyzer(
	detector domsvc.ChangePointDetector,
	correlator domsvc.EventCorrelator,
	prices domrepo.PriceStore,
	events domrepo.EventStore,
	cacheSvc cache.Service,
	metrics domrepo.Metrics,
	cfg *config.Config,
	log *logger.Logger,
) *Analyzer {
	return &Analyzer{
		detector:   detector,
		correlator: correlator,
		prices:     prices,
		events:     events,
		cache:      cacheSvc,
		metrics:    metrics,
		cfg:        cfg,
		log:        log,
	}
}

// Init loads the series and event catalog once at process start. Both
// are immutable afterwards; the series content hash anchors cache keys.
func (a *Analyzer) Init(ctx context.Context) error {
	series, err := a.prices.Load(ctx, a.cfg.Data.Symbol)
	if err != nil {
		return fmt.Errorf("load series: %w", err)
	}
	returns, err := series.LogReturns()
	if err != nil {
		return fmt.Errorf("derive returns: %w", err)
	}
	catalog, err := a.events.Load(ctx)
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}

	a.series = series
	a.returns = returns
	a.catalog = catalog
	a.seriesHash = seriesFingerprint(series)

	if a.log != nil {
		a.log.Info("analyzer initialized",
			logger.String("symbol", series.Symbol),
			logger.Int("prices", len(series.Points)),
			logger.Int("returns", returns.Len()),
			logger.Int("events", len(catalog)),
		)
	}
	return nil
}

// Series returns the loaded price series (read-only).
func (a *Analyzer) Series() *models.Series { return a.series }

// Events returns the loaded event catalog (read-only).
func (a *Analyzer) Events() []models.Event { return a.catalog }

// ChangePoints runs (or returns the cached) change point detection for
// the requested configuration.
func (a *Analyzer) ChangePoints(ctx context.Context, req models.ChangePointsRequest) (*models.DetectionResult, error) {
	cfg := a.detectionConfig(req.NumChangePoints, req.Model, req.MinSegmentLength, req.Draws, req.Seed)
	key := a.cacheKey(cfg)

	var cached models.DetectionResult
	if err := a.cache.Get(ctx, key, &cached); err == nil {
		a.metrics.RecordCacheLookup("hit")
		return &cached, nil
	} else if err != cache.ErrCacheMiss && a.log != nil {
		a.log.Warn("analysis cache read failed", logger.Error(err))
	}
	a.metrics.RecordCacheLookup("miss")

	start := time.Now()
	res, err := a.detector.Detect(ctx, a.returns, cfg)
	if err != nil {
		a.metrics.RecordAnalysis("error")
		return nil, err
	}
	outcome := "ok"
	if len(res.ChangePoints) == 0 {
		outcome = "degenerate"
	}
	a.metrics.RecordAnalysis(outcome)
	a.metrics.RecordLatency("detect", time.Since(start).Seconds())

	if err := a.cache.Set(ctx, key, res, a.cfg.Analysis.CacheTTL); err != nil && a.log != nil {
		a.log.Warn("analysis cache write failed", logger.Error(err))
	}
	return res, nil
}

// Analyze runs detection plus event correlation and assembles the full
// report. Correlation warnings ride alongside detection warnings.
func (a *Analyzer) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisReport, error) {
	res, err := a.ChangePoints(ctx, models.ChangePointsRequest{
		NumChangePoints:  req.NumChangePoints,
		Model:            req.Model,
		MinSegmentLength: req.MinSegmentLength,
		Draws:            req.Draws,
		Seed:             req.Seed,
	})
	if err != nil {
		return nil, err
	}

	lag := req.LagWindowDays
	if lag <= 0 {
		lag = a.cfg.Correlation.LagWindowDays
	}
	window := req.PriceWindowDays
	if window <= 0 {
		window = a.cfg.Correlation.PriceWindowDays
	}

	impacts, warnings, err := a.correlator.Correlate(ctx, res.ChangePoints, a.catalog, a.series, lag, window)
	if err != nil {
		a.metrics.RecordError("correlate")
		return nil, err
	}

	report := &models.AnalysisReport{
		ChangePoints: res.ChangePoints,
		Impacts:      impacts,
		Warnings:     append(append([]string{}, res.Warnings...), warnings...),
		ComputedAt:   time.Now().UTC(),
	}
	return report, nil
}

// detectionConfig merges request overrides onto configured defaults.
func (a *Analyzer) detectionConfig(k int, model string, minSeg, draws int, seed int64) models.DetectionConfig {
	cfg := models.DetectionConfig{
		NumChangePoints:  k,
		Model:            model,
		MinSegmentLength: minSeg,
		Draws:            a.cfg.Analysis.Draws,
		Warmup:           a.cfg.Analysis.Warmup,
		Chains:           a.cfg.Analysis.Chains,
		Seed:             a.cfg.Analysis.Seed,
		Budget:           a.cfg.Analysis.Budget,
	}
	if cfg.NumChangePoints <= 0 {
		cfg.NumChangePoints = 1
	}
	if cfg.Model == "" {
		cfg.Model = models.ModelMean
	}
	if cfg.MinSegmentLength < 2 {
		cfg.MinSegmentLength = a.cfg.Analysis.MinSegmentLength
	}
	if draws > 0 {
		cfg.Draws = draws
		cfg.Warmup = draws / 2
	}
	if seed > 0 {
		cfg.Seed = seed
	}
	return cfg
}

func (a *Analyzer) cacheKey(cfg models.DetectionConfig) string {
	content := fmt.Sprintf("%s|k=%d|model=%s|minseg=%d|draws=%d|warmup=%d|chains=%d|seed=%d",
		a.seriesHash, cfg.NumChangePoints, cfg.Model, cfg.MinSegmentLength,
		cfg.Draws, cfg.Warmup, cfg.Chains, cfg.Seed)
	return cache.GenerateKey("analysis", cache.ContentHash(content))
}

// seriesFingerprint hashes the full series content once at load time.
func seriesFingerprint(s *models.Series) string {
	buf := make([]byte, 0, len(s.Points)*24)
	buf = append(buf, s.Symbol...)
	for _, p := range s.Points {
		buf = append(buf, fmt.Sprintf("|%d:%.8f", p.Date.Unix(), p.Price)...)
	}
	return cache.ContentHash(string(buf))
}
