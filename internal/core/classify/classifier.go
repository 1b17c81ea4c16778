package classify

import (
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/crewsheet/constants"
	"github.com/joseph-ayodele/crewsheet/internal/core/fields"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
)

const (
	keywordWeight = 0.6
	patternWeight = 0.4

	defaultConfidence = 0.5
	maxEstimate       = 100

	tabularShare    = 0.3
	csvShare        = 0.3
	structuredShare = 0.2
)

var (
	reTime      = regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}\s*(?:am|pm)?\b`)
	reRoleColon = regexp.MustCompile(`(?im)^\s*(?:photographer|stylist|mua|hmua|producer|director|assistant|model|talent|digitech|gaffer)\s*:`)
	reUpperCol  = regexp.MustCompile(`(?m)^[A-Z][A-Z &/]{2,}:`)
	reWeekday   = regexp.MustCompile(`(?i)\b(?:mon|tues?|wed(?:nes)?|thu(?:rs)?|fri|sat(?:ur)?|sun)(?:day)?\b`)
	reDate      = regexp.MustCompile(`\b\d{1,2}/\d{1,2}(?:/\d{2,4})?\b`)
	reExtension = regexp.MustCompile(`(?i)\bext\.?\s*\d+`)
	reHeight    = regexp.MustCompile(`(?i)\bheight\b|\b\d'\s?\d{1,2}"`)
	reAgency    = regexp.MustCompile(`(?i)\b(?:agency|agent|booker)\s*:`)
	reSize      = regexp.MustCompile(`(?i)\b(?:size|dress|shoe|waist|bust)\s*:?\s*\d`)
	reHospital  = regexp.MustCompile(`(?i)nearest\s+hospital`)
	reNamePair  = regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z][a-z]+\b`)
)

type profile struct {
	docType    constants.DocumentType
	keywords   []string
	patterns   []*regexp.Regexp
	multiplier float64
}

var profiles = []profile{
	{
		docType:    constants.DocCallSheet,
		keywords:   []string{"call sheet", "call time", "crew call", "location", "shoot", "weather", "sunrise", "sunset", "hospital", "parking", "wrap", "lunch"},
		patterns:   []*regexp.Regexp{reTime, reRoleColon, reHospital, fields.PhoneRegexp},
		multiplier: 1.0,
	},
	{
		docType:    constants.DocCrewList,
		keywords:   []string{"crew", "crew list", "department", "position", "role", "photographer", "stylist", "assistant", "gaffer", "grip"},
		patterns:   []*regexp.Regexp{reUpperCol, reRoleColon, fields.PhoneRegexp, fields.EmailRegexp},
		multiplier: 0.95,
	},
	{
		docType:    constants.DocContactDirectory,
		keywords:   []string{"directory", "contacts", "contact list", "phone", "email", "address", "company", "mobile"},
		patterns:   []*regexp.Regexp{fields.EmailRegexp, fields.PhoneRegexp, reExtension},
		multiplier: 0.9,
	},
	{
		docType:    constants.DocTalentSheet,
		keywords:   []string{"talent", "model", "agency", "agent", "casting", "measurements", "height", "wardrobe"},
		patterns:   []*regexp.Regexp{reHeight, reAgency, reSize},
		multiplier: 0.85,
	},
	{
		docType:    constants.DocSchedule,
		keywords:   []string{"schedule", "agenda", "itinerary", "timeline", "break", "lunch", "wrap", "day 1"},
		patterns:   []*regexp.Regexp{reTime, reWeekday, reDate},
		multiplier: 0.7,
	},
}

// Classifier scores a document against the known document types.
type Classifier struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{logger: logger}
}

// Analyze never fails; text with no signal yields unknown/0.5/medium.
func (c *Classifier) Analyze(text, fileName string) entity.DocumentAnalysis {
	lines := nonEmptyLines(text)
	structure := detectStructure(lines)
	estimate := estimateContacts(text)

	analysis := entity.DocumentAnalysis{
		Type:                  constants.DocUnknown,
		Confidence:            defaultConfidence,
		Complexity:            constants.ComplexityMedium,
		Structure:             structure,
		EstimatedContactCount: estimate,
		Sections:              detectSections(lines),
		Scores:                make(map[string]float64, len(profiles)),
	}

	lower := strings.ToLower(text)
	hint := strings.ToLower(strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName)))
	hint = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(hint)

	best, bestScore := -1, 0.0
	for i, p := range profiles {
		s := p.score(text, lower, hint)
		analysis.Scores[string(p.docType)] = s
		if s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		c.logger.Debug("classify.unknown", "lines", len(lines), "structure", structure)
		return analysis
	}

	analysis.Type = profiles[best].docType
	analysis.Confidence = clamp(bestScore * profiles[best].multiplier)
	analysis.Complexity = complexity(len(text), len(lines), estimate)

	c.logger.Debug("classify.done",
		"type", analysis.Type,
		"confidence", analysis.Confidence,
		"structure", structure,
		"complexity", analysis.Complexity,
		"estimated_contacts", estimate,
	)
	return analysis
}

// score is keyword coverage×0.6 plus pattern coverage×0.4. A keyword
// counts when it appears in the text or the file name.
func (p profile) score(text, lower, hint string) float64 {
	kw := 0
	for _, k := range p.keywords {
		if strings.Contains(lower, k) || (hint != "" && strings.Contains(hint, k)) {
			kw++
		}
	}
	pat := 0
	for _, re := range p.patterns {
		if re.MatchString(text) {
			pat++
		}
	}
	return float64(kw)/float64(len(p.keywords))*keywordWeight +
		float64(pat)/float64(len(p.patterns))*patternWeight
}

func detectStructure(lines []string) constants.Structure {
	if len(lines) == 0 {
		return constants.StructureUnstructured
	}
	var tabs, csv, colons int
	for _, l := range lines {
		if strings.Contains(l, "\t") || strings.Count(l, "|") >= 3 {
			tabs++
		}
		if strings.Count(l, ",") >= 2 && !strings.Contains(l, ":") {
			csv++
		}
		if strings.Contains(l, ":") {
			colons++
		}
	}
	n := float64(len(lines))
	switch {
	case float64(tabs)/n > tabularShare:
		return constants.StructureTabular
	case float64(csv)/n > csvShare:
		return constants.StructureCSVLike
	case float64(colons)/n > structuredShare:
		return constants.StructureStructured
	}
	return constants.StructureUnstructured
}

// estimateContacts is max(phones, emails, capitalized name pairs), capped.
func estimateContacts(text string) int {
	n := max(
		len(fields.PhoneRegexp.FindAllStringIndex(text, maxEstimate)),
		len(fields.EmailRegexp.FindAllStringIndex(text, maxEstimate)),
		len(reNamePair.FindAllStringIndex(text, maxEstimate)),
	)
	return min(n, maxEstimate)
}

func complexity(chars, lines, contacts int) constants.Complexity {
	switch {
	case chars < 1000 && lines < 20 && contacts < 10:
		return constants.ComplexityLow
	case chars > 10000 || lines > 100 || contacts > 50:
		return constants.ComplexityHigh
	}
	return constants.ComplexityMedium
}

// detectSections returns upper-case header lines in document order.
func detectSections(lines []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, l := range lines {
		head := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(l), ":"))
		if len(head) < 3 || len(head) > 40 || len(strings.Fields(head)) > 4 {
			continue
		}
		if strings.ContainsAny(head, "0123456789@|\t:") || strings.ToUpper(head) != head || strings.ToLower(head) == head {
			continue
		}
		if _, ok := seen[head]; ok {
			continue
		}
		seen[head] = struct{}{}
		out = append(out, head)
	}
	return out
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
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
