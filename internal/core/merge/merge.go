package merge

import (
	"strings"

	"github.com/joseph-ayodele/crewsheet/constants"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
)

// Stats counts what a merge did.
type Stats struct {
	Enhanced   int
	Discovered int
}

// Merge folds cleaned AI contacts into the pattern-derived list. A pattern
// record matched by dedup key (or, failing that, by a unique name with no
// conflicting phone or email) gets the AI's non-empty fields and becomes
// ai_enhanced; an unmatched AI record is appended as ai_discovered.
// Inputs are not modified.
func Merge(base, ai []entity.Contact) ([]entity.Contact, Stats) {
	out := make([]entity.Contact, len(base), len(base)+len(ai))
	copy(out, base)

	byKey := make(map[string]int, len(out))
	byName := make(map[string][]int, len(out))
	for i := range out {
		if out[i].Source == "" {
			out[i].Source = constants.SourcePattern
		}
		byKey[out[i].DedupKey()] = i
		name := nameKey(out[i].Name)
		byName[name] = append(byName[name], i)
	}

	var st Stats
	for _, c := range ai {
		idx, ok := byKey[c.DedupKey()]
		if !ok {
			idx, ok = matchByName(out, byName[nameKey(c.Name)], c)
		}
		if ok {
			overlay(&out[idx], c)
			st.Enhanced++
			continue
		}
		c.Source = constants.SourceAIDiscovered
		byKey[c.DedupKey()] = len(out)
		name := nameKey(c.Name)
		byName[name] = append(byName[name], len(out))
		out = append(out, c)
		st.Discovered++
	}
	return out, st
}

func matchByName(out []entity.Contact, idxs []int, c entity.Contact) (int, bool) {
	if len(idxs) != 1 {
		return 0, false
	}
	p := out[idxs[0]]
	if c.Phone != "" && p.Phone != "" && entity.DigitsOnly(c.Phone) != entity.DigitsOnly(p.Phone) {
		return 0, false
	}
	if c.Email != "" && p.Email != "" && !strings.EqualFold(c.Email, p.Email) {
		return 0, false
	}
	return idxs[0], true
}

func overlay(dst *entity.Contact, src entity.Contact) {
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.Role != "" && src.Role != string(constants.RoleContact) {
		dst.Role = src.Role
	}
	if src.Email != "" {
		dst.Email = src.Email
	}
	if src.Phone != "" {
		dst.Phone = src.Phone
	}
	if src.Company != "" {
		dst.Company = src.Company
	}
	if src.Confidence > dst.Confidence {
		dst.Confidence = src.Confidence
	}
	dst.Source = constants.SourceAIEnhanced
}

func nameKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
