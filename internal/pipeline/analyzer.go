// Package pipeline turns raw transactions into a lifestyle diagnosis
// report: preparation, fixed-expense detection, feature encoding,
// clustering, forecasting and report assembly.
package pipeline

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/theirongolddev/spendvibe/internal/category"
	"github.com/theirongolddev/spendvibe/internal/cluster"
	"github.com/theirongolddev/spendvibe/internal/config"
	"github.com/theirongolddev/spendvibe/internal/forecast"
	"github.com/theirongolddev/spendvibe/internal/model"
	"github.com/theirongolddev/spendvibe/internal/textfeat"
)

// indexCacheSize bounds the number of distinct hierarchies kept built.
const indexCacheSize = 16

// Request is one analysis job.
type Request struct {
	UserID string
	// Months is the lookback the transactions were selected with; 0 means
	// all time and the window is derived from the data.
	Months       int
	Transactions []model.RawTransaction
	// Categories is the hierarchy snapshot the transactions resolve against.
	Categories []model.Category
}

// Analyzer runs the analysis pipeline. It holds no per-run state and is
// safe for concurrent use as long as its collaborators are.
type Analyzer struct {
	Config     config.Config
	Clusterer  cluster.Clusterer
	Weighter   textfeat.TextWeighter
	Forecaster *forecast.Forecaster
	Labeler    cluster.Labeler

	log   zerolog.Logger
	cache *category.Cache
	now   func() time.Time
	newID func() string
}

// New returns an Analyzer with the default collaborators for cfg.
func New(cfg config.Config, log zerolog.Logger) *Analyzer {
	km := cluster.NewKMeans(cfg.Analysis.Seed)
	km.NInit = cfg.Analysis.NInit
	km.MaxIter = cfg.Analysis.MaxIter

	cache, err := category.NewCache(indexCacheSize)
	if err != nil {
		log.Warn().Err(err).Msg("category cache disabled")
	}

	return &Analyzer{
		Config:     cfg,
		Clusterer:  km,
		Weighter:   textfeat.NewTFIDF(),
		Forecaster: forecast.New(cfg.Recommend.TrendBand),
		Labeler:    cluster.Labeler{ImpulseAmount: cfg.Analysis.ImpulseAmount},
		log:        log,
		cache:      cache,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Index resolves a hierarchy snapshot under the configured policy. Indexes
// are shared across calls with the same hierarchy.
func (a *Analyzer) Index(cats []model.Category) *category.Index {
	if a.cache == nil {
		return category.Build(cats, a.Config.Categories)
	}
	return a.cache.Index(cats, a.Config.Categories)
}

// Close releases the index cache.
func (a *Analyzer) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
}

// Analyze runs the full pipeline for req. It always returns a report;
// failures are carried in Report.Error and Report.Err.
func (a *Analyzer) Analyze(req Request) *model.Report {
	log := a.log.With().Str("user", req.UserID).Logger()

	r := &model.Report{
		ID:          a.newID(),
		UserID:      req.UserID,
		GeneratedAt: a.now().UTC(),
	}

	idx := a.Index(req.Categories)

	txns := Prepare(req.Transactions, idx)
	log.Debug().Int("raw", len(req.Transactions)).Int("prepared", len(txns)).Msg("prepared transactions")
	if len(txns) == 0 {
		log.Info().Msg("no spending transactions to analyze")
		r.Fail(ErrNoData)
		return r
	}

	profiles := DetectFixed(txns, idx, a.Config.Fixed)

	fm, err := Encode(txns, a.Weighter, a.Config.Analysis.TextFeatures, log)
	if err != nil {
		if errors.Is(err, ErrInsufficientSamples) {
			log.Info().Int("transactions", len(txns)).Msg("too few transactions to cluster")
			r.Fail(ErrInsufficientSamples)
		} else {
			log.Error().Err(err).Msg("encoding features")
			r.Fail(err)
		}
		return r
	}

	k, err := clusterTransactions(txns, fm, a.Clusterer, a.Config.Analysis.MaxClusters)
	if err != nil {
		log.Error().Err(err).Msg("clustering failed")
		r.Fail(err)
		return r
	}
	clusters := summarizeClusters(txns, a.Labeler)

	fc := a.Forecaster.Predict(txns)
	if fc.Status == model.ForecastError {
		log.Warn().Str("error", fc.Error).Msg("forecast degraded")
	}

	assemble(assembly{
		txns:     txns,
		profiles: profiles,
		clusters: clusters,
		k:        k,
		forecast: fc,
		months:   req.Months,
		cfg:      a.Config,
	}, r)

	log.Info().
		Int("transactions", r.TotalAnalyzed).
		Int("clusters", k).
		Str("vibe", r.Diagnosis.Vibe).
		Str("forecast", fc.Status).
		Msg("analysis complete")

	return r
}
