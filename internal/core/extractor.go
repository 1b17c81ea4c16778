package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/crewsheet/constants"
	"github.com/joseph-ayodele/crewsheet/internal/cache"
	"github.com/joseph-ayodele/crewsheet/internal/common"
	"github.com/joseph-ayodele/crewsheet/internal/core/classify"
	"github.com/joseph-ayodele/crewsheet/internal/core/component"
	"github.com/joseph-ayodele/crewsheet/internal/core/fields"
	"github.com/joseph-ayodele/crewsheet/internal/core/patterns"
	"github.com/joseph-ayodele/crewsheet/internal/core/scoring"
	"github.com/joseph-ayodele/crewsheet/internal/core/strategy"
	"github.com/joseph-ayodele/crewsheet/internal/core/textnorm"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
	"github.com/joseph-ayodele/crewsheet/internal/llm"
)

// Recorder receives one call per finished extraction and per cache lookup.
type Recorder interface {
	ObserveExtraction(res *entity.ExtractionResult)
	ObserveCache(hit bool)
}

type nopRecorder struct{}

func (nopRecorder) ObserveExtraction(*entity.ExtractionResult) {}
func (nopRecorder) ObserveCache(bool)                          {}

// Config carries the tunables of the pipeline.
type Config struct {
	MinTextLength int
	CacheTTL      time.Duration
	Thresholds    strategy.Thresholds
	Weights       scoring.Weights
	Patterns      patterns.Config
	PhoneStyle    fields.PhoneStyle
}

func DefaultConfig() Config {
	return Config{
		MinTextLength: 10,
		CacheTTL:      time.Hour,
		Thresholds:    strategy.DefaultThresholds(),
		Weights:       scoring.DefaultWeights(),
	}
}

// ConfigFrom maps the application config onto the pipeline config.
func ConfigFrom(c *common.Config) Config {
	e := c.Extraction
	return Config{
		MinTextLength: e.MinTextLength,
		CacheTTL:      c.Cache.TTL,
		Thresholds:    strategy.Thresholds{High: e.HighConfidence, Medium: e.MediumConfidence, Low: e.LowConfidence},
		Weights:       scoring.Weights{Source: e.SourceWeight, Validation: e.ValidationWeight, Completeness: e.CompletenessWt},
		Patterns: patterns.Config{
			Timeout:  e.PatternTimeout,
			MatchCap: e.PatternMatchCap,
			Workers:  e.PatternWorkers,
		},
		PhoneStyle: fields.ParsePhoneStyle(e.PhoneStyle),
	}
}

// Extractor runs the full pipeline: normalize, classify, select, extract,
// merge, score.
type Extractor struct {
	logger     *slog.Logger
	cfg        Config
	classifier *classify.Classifier
	selector   *strategy.Selector
	scorer     *scoring.Scorer
	cache      cache.Cache
	recorder   Recorder
}

type Option func(*Extractor)

func WithCache(c cache.Cache) Option {
	return func(e *Extractor) {
		if c != nil {
			e.cache = c
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(e *Extractor) {
		if r != nil {
			e.recorder = r
		}
	}
}

// NewExtractor wires the pipeline. enhancer may be nil; AI modes then
// degrade to pattern-only.
func NewExtractor(logger *slog.Logger, cfg Config, enhancer llm.Enhancer, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MinTextLength <= 0 {
		cfg.MinTextLength = 10
	}
	cleaner := fields.NewCleaner(cfg.PhoneStyle)
	bank := patterns.NewExtractor(logger, cleaner, cfg.Patterns)
	components := component.NewExtractor(logger, cleaner)

	e := &Extractor{
		logger:     logger,
		cfg:        cfg,
		classifier: classify.New(logger),
		selector:   strategy.NewSelector(logger, cfg.Thresholds, bank, components, enhancer, cleaner),
		scorer:     scoring.NewScorer(cfg.Weights),
		cache:      cache.Noop{},
		recorder:   nopRecorder{},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Analyze classifies text without extracting.
func (e *Extractor) Analyze(text, fileName string) entity.DocumentAnalysis {
	return e.classifier.Analyze(textnorm.NormalizeWith(text, textnorm.Options{PreserveTabs: true}), fileName)
}

// Extract never returns an error: problems are reported through a failure
// result, and a deadline produces a partial success.
func (e *Extractor) Extract(ctx context.Context, text string, opts entity.Options) *entity.ExtractionResult {
	start := time.Now()
	ctx, _ = common.EnsureRequestID(ctx)
	logger := common.LoggerFrom(ctx, e.logger)
	opts = opts.WithDefaults()

	res := e.extract(ctx, logger, text, opts, start)
	e.recorder.ObserveExtraction(res)
	if !res.Success {
		logger.Warn("extract.failed", "err", res.Error, "elapsed_ms", time.Since(start).Milliseconds())
	}
	return res
}

func (e *Extractor) extract(ctx context.Context, logger *slog.Logger, text string, opts entity.Options, start time.Time) *entity.ExtractionResult {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return entity.NewSuccessResult(nil, entity.Metadata{
			ProcessingTime: time.Since(start),
			Notes:          []string{"empty input"},
		})
	}
	if len(trimmed) < e.cfg.MinTextLength {
		return entity.NewFailureResult(
			fmt.Sprintf("text too short: %d characters, need at least %d", len(trimmed), e.cfg.MinTextLength),
			entity.Metadata{TextLength: len(text), ProcessingTime: time.Since(start)},
		)
	}
	if err := validateOptions(opts); err != nil {
		return entity.NewFailureResult(err.Error(), entity.Metadata{TextLength: len(text), ProcessingTime: time.Since(start)})
	}

	key := cache.Key(text, opts)
	if cached, err := e.cache.Get(ctx, key); err == nil {
		e.recorder.ObserveCache(true)
		meta := cached.Metadata
		meta.CacheHit = true
		meta.ProcessingTime = time.Since(start)
		logger.Debug("extract.cache.hit", "contacts", len(cached.Contacts))
		return entity.NewSuccessResult(cached.Contacts, meta)
	} else if !errors.Is(err, common.ErrCacheMiss) {
		logger.Warn("extract.cache.get_failed", "err", err)
	}
	e.recorder.ObserveCache(false)

	ctx, cancel := context.WithTimeout(ctx, opts.MaxProcessingTime)
	defer cancel()

	normalized := textnorm.NormalizeWith(text, textnorm.Options{PreserveTabs: true})
	analysis := e.classifier.Analyze(normalized, opts.FileName)
	plan := e.selector.Select(analysis, opts)
	logger.Info("extract.strategy.selected",
		"strategy", plan.Primary, "mode", plan.Mode,
		"doc_type", analysis.Type, "analysis_confidence", analysis.Confidence,
		"structure", analysis.Structure, "reason", plan.Reason,
	)

	out, used, mode, err := e.run(ctx, logger, plan, analysis, normalized, opts)
	meta := entity.Metadata{
		Strategy:     used,
		Mode:         mode,
		DocumentType: analysis.Type,
		Confidence:   analysis.Confidence,
		TextLength:   len(text),
		PatternsUsed: out.PatternsUsed,
		AIUsed:       out.AIUsed,
		AIError:      out.AIError,
		Truncated:    out.Truncated,
		Rejected:     out.Rejected,
		Notes:        out.Notes,
	}
	if err != nil {
		meta.ProcessingTime = time.Since(start)
		return entity.NewFailureResult("extraction failed: "+err.Error(), meta)
	}

	contacts, total := e.scorer.Finalize(out.Contacts, opts.RolePreferences, opts.MaxContacts)
	if total > len(contacts) {
		meta.Notes = append(meta.Notes, fmt.Sprintf("limited to %d of %d contacts", len(contacts), total))
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		meta.Truncated = true
		meta.Notes = append(meta.Notes, "processing deadline reached; results are partial")
	}
	meta.ProcessingTime = time.Since(start)

	res := entity.NewSuccessResult(contacts, meta)
	if !meta.Truncated && meta.AIError == "" {
		if err := e.cache.Set(context.WithoutCancel(ctx), key, res, e.cfg.CacheTTL); err != nil {
			logger.Warn("extract.cache.set_failed", "err", err)
		}
	}

	logger.Info("extract.done",
		"strategy", used, "mode", mode, "contacts", len(contacts),
		"ai_used", meta.AIUsed, "truncated", meta.Truncated,
		"elapsed_ms", meta.ProcessingTime.Milliseconds(),
	)
	return res
}

// run tries the primary strategy, then the fallbacks. Once an AI strategy
// fails, later AI strategies are skipped.
func (e *Extractor) run(
	ctx context.Context,
	logger *slog.Logger,
	plan strategy.Plan,
	analysis entity.DocumentAnalysis,
	text string,
	opts entity.Options,
) (strategy.Outcome, constants.Strategy, constants.Mode, error) {
	kinds := append([]constants.Strategy{plan.Primary}, plan.Fallbacks...)
	var (
		aiErr   string
		lastErr error
	)
	for i, kind := range kinds {
		if aiErr != "" && strategy.NeedsAI(kind) {
			continue
		}
		mode := plan.Mode
		if i > 0 {
			mode = fallbackMode(kind)
		}
		st, err := e.selector.Dispatch(kind, mode, analysis, opts)
		if err != nil {
			lastErr = err
			continue
		}

		out, err := st.Extract(ctx, text, opts)
		if err != nil {
			logger.Warn("extract.strategy.failed", "strategy", kind, "err", err)
			lastErr = err
			if strategy.NeedsAI(kind) {
				aiErr = err.Error()
				if out.AIError != "" {
					aiErr = out.AIError
				}
			}
			continue
		}
		if out.AIError == "" {
			out.AIError = aiErr
		}
		if i > 0 {
			out.Notes = append(out.Notes, fmt.Sprintf("fell back from %s to %s", plan.Primary, kind))
		}
		return out, kind, mode, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no strategy available")
	}
	return strategy.Outcome{AIError: aiErr}, plan.Primary, plan.Mode, lastErr
}

func fallbackMode(kind constants.Strategy) constants.Mode {
	switch kind {
	case constants.StrategyAIOnly:
		return constants.ModeAIOnly
	case constants.StrategyHybrid:
		return constants.ModeAIValidation
	}
	return constants.ModePatternOnly
}

func validateOptions(o entity.Options) error {
	names := make([]string, 0, len(constants.AllStrategies))
	for _, s := range constants.AllStrategies {
		names = append(names, string(s))
	}
	v := common.NewValidator().
		Field("max_contacts", o.MaxContacts, common.Range(1, 100000)).
		Field("preferred_strategy", string(o.PreferredStrategy), common.OneOf(names...))
	if v.HasErrors() {
		return common.NewAppError("INVALID_OPTIONS", v.ErrorMessage(), common.ErrInvalidInput)
	}
	return nil
}
