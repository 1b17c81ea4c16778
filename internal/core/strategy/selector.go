package strategy

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/joseph-ayodele/crewsheet/constants"
	"github.com/joseph-ayodele/crewsheet/internal/common"
	"github.com/joseph-ayodele/crewsheet/internal/core/component"
	"github.com/joseph-ayodele/crewsheet/internal/core/fields"
	"github.com/joseph-ayodele/crewsheet/internal/core/patterns"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
	"github.com/joseph-ayodele/crewsheet/internal/llm"
)

// tieWindow is how close two confidences must be before cost and speed
// decide the order.
const tieWindow = 0.05

// Thresholds are the confidence bands used to pick a mode.
type Thresholds struct {
	High   float64
	Medium float64
	Low    float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{High: 0.8, Medium: 0.6, Low: 0.4}
}

// Plan is the selector's decision for one document.
type Plan struct {
	Mode      constants.Mode
	Primary   constants.Strategy
	Fallbacks []constants.Strategy
	Ranked    []entity.StrategyDescriptor
	Reason    string
}

// Selector picks a mode and strategy from the document analysis and builds
// the strategy values that run it.
type Selector struct {
	logger     *slog.Logger
	thresholds Thresholds
	pattern    Pattern
	component  Component
	enhancer   llm.Enhancer
	cleaner    *fields.Cleaner
}

func NewSelector(
	logger *slog.Logger,
	thresholds Thresholds,
	bank *patterns.Extractor,
	components *component.Extractor,
	enhancer llm.Enhancer,
	cleaner *fields.Cleaner,
) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	if thresholds == (Thresholds{}) {
		thresholds = DefaultThresholds()
	}
	if cleaner == nil {
		cleaner = fields.NewCleaner(fields.PhoneE164)
	}
	return &Selector{
		logger:     logger,
		thresholds: thresholds,
		pattern:    Pattern{Bank: bank, Components: components},
		component:  Component{Components: components},
		enhancer:   enhancer,
		cleaner:    cleaner,
	}
}

// AIAvailable reports whether the enhancer can be called under opts.
func (s *Selector) AIAvailable(opts entity.Options) bool {
	return !opts.DisableAI && s.enhancer != nil && s.enhancer.Available()
}

// ModeFor maps analysis confidence onto a mode band.
func (s *Selector) ModeFor(a entity.DocumentAnalysis) constants.Mode {
	t := s.thresholds
	switch {
	case a.Confidence >= t.High && a.Complexity == constants.ComplexityLow:
		return constants.ModePatternOnly
	case a.Confidence >= t.Medium:
		return constants.ModeAIValidation
	case a.Confidence >= t.Low:
		return constants.ModeAIEnhancement
	}
	return constants.ModeAIOnly
}

// Select decides the mode, primary strategy and fallback order. AI modes
// degrade to pattern-only when no enhancer is usable.
func (s *Selector) Select(a entity.DocumentAnalysis, opts entity.Options) Plan {
	aiOK := s.AIAvailable(opts)
	plan := Plan{Mode: s.ModeFor(a)}

	switch plan.Mode {
	case constants.ModePatternOnly:
		plan.Primary = constants.StrategyPattern
		plan.Reason = "high confidence, low complexity"
	case constants.ModeAIValidation, constants.ModeAIEnhancement:
		plan.Primary = constants.StrategyHybrid
		plan.Reason = "confidence band " + string(plan.Mode)
	default:
		plan.Primary = constants.StrategyAIOnly
		plan.Reason = "low classification confidence"
	}

	if opts.PreferredStrategy != "" {
		plan.Primary = opts.PreferredStrategy
		plan.Mode = modeForPreferred(opts.PreferredStrategy, plan.Mode)
		plan.Reason = "preferred strategy"
	}

	if !aiOK && NeedsAI(plan.Primary) {
		plan.Primary = constants.StrategyPattern
		plan.Mode = constants.ModePatternOnly
		plan.Reason = "ai unavailable"
	}

	plan.Ranked = Rank(s.Describe(a, opts))
	for _, d := range plan.Ranked {
		if d.Available && d.Name != plan.Primary {
			plan.Fallbacks = append(plan.Fallbacks, d.Name)
		}
	}

	s.logger.Debug("strategy.select",
		"doc_type", a.Type, "analysis_confidence", a.Confidence,
		"mode", plan.Mode, "strategy", plan.Primary, "fallbacks", plan.Fallbacks,
		"reason", plan.Reason,
	)
	return plan
}

func modeForPreferred(kind constants.Strategy, band constants.Mode) constants.Mode {
	switch kind {
	case constants.StrategyAIOnly:
		return constants.ModeAIOnly
	case constants.StrategyHybrid:
		if band == constants.ModeAIEnhancement {
			return band
		}
		return constants.ModeAIValidation
	}
	return constants.ModePatternOnly
}

// NeedsAI reports whether kind calls the enhancer.
func NeedsAI(kind constants.Strategy) bool {
	return kind == constants.StrategyAIOnly || kind == constants.StrategyHybrid
}

// Dispatch builds the strategy for kind. Every constants.Strategy value has a case.
func (s *Selector) Dispatch(kind constants.Strategy, mode constants.Mode, a entity.DocumentAnalysis, opts entity.Options) (Strategy, error) {
	var enhancer llm.Enhancer
	if !opts.DisableAI {
		enhancer = s.enhancer
	}
	switch kind {
	case constants.StrategyPattern:
		return s.pattern, nil
	case constants.StrategyComponent:
		return s.component, nil
	case constants.StrategyAIOnly:
		return AIOnly{
			Enhancer:     enhancer,
			Cleaner:      s.cleaner,
			DocumentType: a.Type,
			Logger:       s.logger,
		}, nil
	case constants.StrategyHybrid:
		if mode != constants.ModeAIEnhancement {
			mode = constants.ModeAIValidation
		}
		return Hybrid{
			Pattern:      s.pattern,
			Enhancer:     enhancer,
			Cleaner:      s.cleaner,
			Mode:         mode,
			DocumentType: a.Type,
			Logger:       s.logger,
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown strategy %q", common.ErrInvalidInput, kind)
}

// Describe returns a descriptor for every strategy in constants.AllStrategies.
func (s *Selector) Describe(a entity.DocumentAnalysis, opts entity.Options) []entity.StrategyDescriptor {
	out := make([]entity.StrategyDescriptor, 0, len(constants.AllStrategies))
	for _, kind := range constants.AllStrategies {
		st, err := s.Dispatch(kind, s.ModeFor(a), a, opts)
		if err != nil {
			continue
		}
		out = append(out, Describe(st, a))
	}
	return out
}

// Describe reports st's confidence for a together with its static cost and speed.
func Describe(st Strategy, a entity.DocumentAnalysis) entity.StrategyDescriptor {
	d := entity.StrategyDescriptor{
		Name:       st.Kind(),
		Confidence: math.Round(st.Confidence(a)*1000) / 1000,
		Available:  st.IsAvailable(),
		Cost:       constants.CostFree,
		Speed:      constants.SpeedFast,
	}
	if NeedsAI(d.Name) {
		d.Cost = constants.CostVariable
		d.Speed = constants.SpeedMedium
	}
	return d
}

// Rank orders descriptors: available before unavailable, then by
// confidence, except that within tieWindow of the best remaining
// confidence a free strategy beats a paid one and a fast one beats a
// slower one.
func Rank(descs []entity.StrategyDescriptor) []entity.StrategyDescriptor {
	rest := make([]entity.StrategyDescriptor, len(descs))
	copy(rest, descs)
	out := make([]entity.StrategyDescriptor, 0, len(descs))

	for len(rest) > 0 {
		best := 0
		for i := 1; i < len(rest); i++ {
			if rest[i].Available != rest[best].Available {
				if rest[i].Available {
					best = i
				}
				continue
			}
			if rest[i].Confidence > rest[best].Confidence {
				best = i
			}
		}
		top := rest[best]
		pick := best
		for i, d := range rest {
			if d.Available != top.Available || top.Confidence-d.Confidence > tieWindow {
				continue
			}
			if cheaper(d, rest[pick]) {
				pick = i
			}
		}
		out = append(out, rest[pick])
		rest = append(rest[:pick], rest[pick+1:]...)
	}
	return out
}

// cheaper reports whether a should win a near-tie against b.
func cheaper(a, b entity.StrategyDescriptor) bool {
	if a.Cost != b.Cost {
		return a.Cost == constants.CostFree
	}
	if a.Speed != b.Speed {
		return a.Speed == constants.SpeedFast
	}
	return a.Confidence > b.Confidence
}
