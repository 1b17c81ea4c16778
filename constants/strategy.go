package constants

import (
	"fmt"
	"strings"
)

// Strategy names one extraction implementation. The set is closed; dispatch
// over it lives in internal/core/strategy.
type Strategy string

const (
	StrategyPattern   Strategy = "pattern"
	StrategyComponent Strategy = "component"
	StrategyAIOnly    Strategy = "ai_only"
	StrategyHybrid    Strategy = "hybrid"
)

// AllStrategies is in tie-break order: free and fast first.
var AllStrategies = []Strategy{StrategyPattern, StrategyComponent, StrategyHybrid, StrategyAIOnly}

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyPattern:
		return StrategyPattern, nil
	case StrategyComponent:
		return StrategyComponent, nil
	case StrategyAIOnly, "ai", "ai-only":
		return StrategyAIOnly, nil
	case StrategyHybrid:
		return StrategyHybrid, nil
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

// Mode is the confidence band the selector landed in.
type Mode string

const (
	ModePatternOnly   Mode = "pattern_only"
	ModeAIValidation  Mode = "ai_validation"
	ModeAIEnhancement Mode = "ai_enhancement"
	ModeAIOnly        Mode = "ai_only"
)

type Cost string

const (
	CostFree     Cost = "free"
	CostVariable Cost = "variable"
)

type Speed string

const (
	SpeedFast   Speed = "fast"
	SpeedMedium Speed = "medium"
)

// Source records which stage produced a contact.
type Source string

const (
	SourcePattern      Source = "pattern"
	SourceComponent    Source = "component"
	SourceAI           Source = "ai"
	SourceAIEnhanced   Source = "ai_enhanced"
	SourceAIDiscovered Source = "ai_discovered"
	SourceMerged       Source = "merged"
)
