package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/joseph-ayodele/crewsheet/constants"
	"github.com/joseph-ayodele/crewsheet/internal/core/fields"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
)

// Weights blend the final confidence.
type Weights struct {
	Source       float64
	Validation   float64
	Completeness float64
}

func DefaultWeights() Weights {
	return Weights{Source: 0.4, Validation: 0.3, Completeness: 0.2}
}

var sourceBonus = map[constants.Source]float64{
	constants.SourceAIEnhanced:   0.1,
	constants.SourceMerged:       0.1,
	constants.SourceAIDiscovered: 0.05,
}

// Scorer is the final pass: dedup, blend, sort, truncate.
type Scorer struct {
	weights Weights
}

func NewScorer(w Weights) *Scorer {
	if w == (Weights{}) {
		w = DefaultWeights()
	}
	return &Scorer{weights: w}
}

// Finalize dedups, rescoring every survivor, and returns the contacts in
// output order, truncated to maxContacts when it is positive. total is the
// count before truncation.
func (s *Scorer) Finalize(contacts []entity.Contact, rolePrefs []string, maxContacts int) (out []entity.Contact, total int) {
	out = Dedup(contacts)
	total = len(out)
	for i := range out {
		out[i].Confidence = s.Blend(out[i])
	}
	Sort(out, rolePrefs)
	if maxContacts > 0 && len(out) > maxContacts {
		out = out[:maxContacts]
	}
	return out, total
}

// Dedup keeps one record per dedup key, in order of first appearance.
// Duplicates fill each other's empty fields and keep the max confidence;
// a group mixing sources is tagged merged.
func Dedup(contacts []entity.Contact) []entity.Contact {
	out := make([]entity.Contact, 0, len(contacts))
	index := make(map[string]int, len(contacts))
	for _, c := range contacts {
		key := c.DedupKey()
		i, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, c)
			continue
		}
		src := out[i].Source
		out[i].MergeFrom(c)
		if c.Source != src {
			out[i].Source = constants.SourceMerged
		}
	}
	return out
}

// Blend is source×w1 + validation×w2 + completeness×w3 + source bonus, in [0,1].
func (s *Scorer) Blend(c entity.Contact) float64 {
	v := s.weights.Source*c.Confidence +
		s.weights.Validation*fields.ValidationScore(c) +
		s.weights.Completeness*Completeness(c) +
		sourceBonus[c.Source]
	v = math.Max(0, math.Min(1, v))
	return math.Round(v*1000) / 1000
}

// Completeness is the filled share of name, role (other than CONTACT),
// email, phone and company.
func Completeness(c entity.Contact) float64 {
	filled := 0
	for _, f := range []string{c.Name, c.Email, c.Phone, c.Company} {
		if strings.TrimSpace(f) != "" {
			filled++
		}
	}
	if c.Role != "" && c.Role != string(constants.RoleContact) {
		filled++
	}
	return float64(filled) / 5
}

// Sort orders by role preference, role priority, descending confidence,
// then name.
func Sort(contacts []entity.Contact, rolePrefs []string) {
	prefs := make(map[string]int, len(rolePrefs))
	for i, r := range rolePrefs {
		role, _ := constants.CanonicalizeRole(r)
		if _, dup := prefs[string(role)]; !dup {
			prefs[string(role)] = i - len(rolePrefs)
		}
	}
	rank := func(role string) int {
		if p, ok := prefs[role]; ok {
			return p
		}
		return constants.RolePriority(role)
	}
	sort.SliceStable(contacts, func(i, j int) bool {
		a, b := contacts[i], contacts[j]
		if ra, rb := rank(a.Role), rank(b.Role); ra != rb {
			return ra < rb
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return a.Name < b.Name
	})
}
