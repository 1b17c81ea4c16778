package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/crewsheet/constants"
	"github.com/joseph-ayodele/crewsheet/internal/common"
	"github.com/joseph-ayodele/crewsheet/internal/core/component"
	"github.com/joseph-ayodele/crewsheet/internal/core/fields"
	"github.com/joseph-ayodele/crewsheet/internal/core/merge"
	"github.com/joseph-ayodele/crewsheet/internal/core/patterns"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
	"github.com/joseph-ayodele/crewsheet/internal/llm"
)

// Outcome is one strategy run, before dedup and final scoring.
type Outcome struct {
	Contacts     []entity.Contact
	PatternsUsed []string
	Rejected     int
	Truncated    bool
	AIUsed       bool
	AIError      string
	Notes        []string
}

// Strategy is one way of turning text into contacts.
type Strategy interface {
	Kind() constants.Strategy
	Extract(ctx context.Context, text string, opts entity.Options) (Outcome, error)
	Confidence(a entity.DocumentAnalysis) float64
	IsAvailable() bool
}

// Pattern runs the pattern bank, then the component extractor over the
// lines no pattern claimed.
type Pattern struct {
	Bank       *patterns.Extractor
	Components *component.Extractor
}

func (Pattern) Kind() constants.Strategy { return constants.StrategyPattern }
func (Pattern) IsAvailable() bool        { return true }

func (p Pattern) Confidence(a entity.DocumentAnalysis) float64 {
	if a.Structure == constants.StructureUnstructured {
		return clamp(a.Confidence - 0.2)
	}
	return clamp(a.Confidence + 0.1)
}

func (p Pattern) Extract(ctx context.Context, text string, _ entity.Options) (Outcome, error) {
	pr := p.Bank.Extract(ctx, text)
	cr := p.Components.ExtractSkipping(ctx, text, pr.IsClaimed)

	out := Outcome{
		Contacts:     make([]entity.Contact, 0, len(pr.Contacts)+len(cr.Contacts)),
		PatternsUsed: pr.PatternsUsed,
		Rejected:     pr.Rejected + cr.Rejected,
		Truncated:    pr.Truncated || cr.Truncated,
	}
	out.Contacts = append(out.Contacts, pr.Contacts...)
	out.Contacts = append(out.Contacts, cr.Contacts...)
	if len(cr.Contacts) > 0 {
		out.PatternsUsed = append(out.PatternsUsed, string(constants.StrategyComponent))
	}
	if len(pr.Failed) > 0 {
		out.Notes = append(out.Notes, "patterns failed: "+strings.Join(pr.Failed, ","))
	}
	if out.Truncated {
		out.Notes = append(out.Notes, "pattern extraction stopped early; results are partial")
	}
	return out, nil
}

// Component runs only the line-by-line component extractor.
type Component struct {
	Components *component.Extractor
}

func (Component) Kind() constants.Strategy { return constants.StrategyComponent }
func (Component) IsAvailable() bool        { return true }

func (Component) Confidence(a entity.DocumentAnalysis) float64 {
	if a.Structure == constants.StructureUnstructured {
		return clamp(0.9*a.Confidence + 0.1)
	}
	return clamp(0.9 * a.Confidence)
}

func (c Component) Extract(ctx context.Context, text string, _ entity.Options) (Outcome, error) {
	r := c.Components.Extract(ctx, text)
	out := Outcome{Contacts: r.Contacts, Rejected: r.Rejected, Truncated: r.Truncated}
	if len(r.Contacts) > 0 {
		out.PatternsUsed = []string{string(constants.StrategyComponent)}
	}
	return out, nil
}

// AIOnly hands the whole document to the enhancer.
type AIOnly struct {
	Enhancer     llm.Enhancer
	Cleaner      *fields.Cleaner
	DocumentType constants.DocumentType
	Logger       *slog.Logger
}

func (AIOnly) Kind() constants.Strategy { return constants.StrategyAIOnly }

func (s AIOnly) IsAvailable() bool {
	return s.Enhancer != nil && s.Enhancer.Available()
}

func (AIOnly) Confidence(a entity.DocumentAnalysis) float64 {
	return clamp(0.6 + 0.3*(1-a.Confidence))
}

func (s AIOnly) Extract(ctx context.Context, text string, opts entity.Options) (Outcome, error) {
	if !s.IsAvailable() {
		return Outcome{}, common.ErrAIUnavailable
	}
	resp, _, err := s.Enhancer.Enhance(ctx, llm.EnhanceRequest{
		Text:         text,
		FileName:     opts.FileName,
		DocumentType: s.DocumentType,
		Mode:         constants.ModeAIOnly,
	})
	if err != nil {
		return Outcome{AIError: err.Error()}, fmt.Errorf("ai extract: %w", err)
	}
	contacts, rejected := cleanAll(s.Cleaner, resp.ToContacts(constants.SourceAI))
	return Outcome{Contacts: contacts, Rejected: rejected, AIUsed: true}, nil
}

// Hybrid runs Pattern, then lets the enhancer validate or extend the
// result. An AI failure leaves the pattern output untouched.
type Hybrid struct {
	Pattern      Pattern
	Enhancer     llm.Enhancer
	Cleaner      *fields.Cleaner
	Mode         constants.Mode
	DocumentType constants.DocumentType
	Logger       *slog.Logger
}

func (Hybrid) Kind() constants.Strategy { return constants.StrategyHybrid }

func (h Hybrid) IsAvailable() bool {
	return h.Enhancer != nil && h.Enhancer.Available()
}

func (h Hybrid) Confidence(a entity.DocumentAnalysis) float64 {
	ai := AIOnly{}.Confidence(a)
	return clamp((h.Pattern.Confidence(a)+ai)/2 + 0.1)
}

func (h Hybrid) Extract(ctx context.Context, text string, opts entity.Options) (Outcome, error) {
	out, err := h.Pattern.Extract(ctx, text, opts)
	if err != nil {
		return out, err
	}
	if !h.IsAvailable() {
		out.AIError = common.ErrAIUnavailable.Error()
		return out, nil
	}

	logger := common.LoggerFrom(ctx, h.Logger)
	resp, _, err := h.Enhancer.Enhance(ctx, llm.EnhanceRequest{
		Text:         text,
		FileName:     opts.FileName,
		DocumentType: h.DocumentType,
		Mode:         h.Mode,
		Candidates:   out.Contacts,
	})
	if err != nil {
		logger.Warn("strategy.hybrid.ai_failed", "mode", h.Mode, "err", err)
		out.AIError = err.Error()
		out.Notes = append(out.Notes, "ai enhancement failed; using pattern results")
		return out, nil
	}

	aiContacts, rejected := cleanAll(h.Cleaner, resp.ToContacts(constants.SourceAI))
	merged, st := merge.Merge(out.Contacts, aiContacts)
	out.Contacts = merged
	out.Rejected += rejected
	out.AIUsed = true
	out.Notes = append(out.Notes, fmt.Sprintf("ai %s: enhanced=%d discovered=%d", h.Mode, st.Enhanced, st.Discovered))
	logger.Debug("strategy.hybrid.merged", "enhanced", st.Enhanced, "discovered", st.Discovered, "rejected", rejected)
	return out, nil
}

// cleanAll runs the shared cleaners and validators over AI output so it
// looks exactly like pattern output.
func cleanAll(cleaner *fields.Cleaner, contacts []entity.Contact) ([]entity.Contact, int) {
	if cleaner == nil {
		cleaner = fields.NewCleaner(fields.PhoneE164)
	}
	kept := contacts[:0]
	rejected := 0
	for _, c := range contacts {
		cleaner.Clean(&c)
		if ok, _ := fields.Validate(c); !ok {
			rejected++
			continue
		}
		kept = append(kept, c)
	}
	return kept, rejected
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
