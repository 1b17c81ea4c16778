package constants

import (
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
)

type Role string

const (
	RoleProducer          Role = "PRODUCER"
	RoleExecutiveProducer Role = "EXECUTIVE PRODUCER"
	RoleDirector          Role = "DIRECTOR"
	RolePhotographer      Role = "PHOTOGRAPHER"
	RoleVideographer      Role = "VIDEOGRAPHER"
	RoleDP                Role = "DIRECTOR OF PHOTOGRAPHY"
	RoleCreativeDirector  Role = "CREATIVE DIRECTOR"
	RoleArtDirector       Role = "ART DIRECTOR"
	RoleStylist           Role = "STYLIST"
	RoleWardrobeStylist   Role = "WARDROBE STYLIST"
	RolePropStylist       Role = "PROP STYLIST"
	RoleSetDesigner       Role = "SET DESIGNER"
	RoleMUA               Role = "MUA"
	RoleHUA               Role = "HUA"
	RoleHMUA              Role = "HMUA"
	RoleManicurist        Role = "MANICURIST"
	RoleModel             Role = "MODEL"
	RoleTalent            Role = "TALENT"
	RoleAgent             Role = "AGENT"
	RoleCasting           Role = "CASTING"
	RoleClient            Role = "CLIENT"
	RoleGaffer            Role = "GAFFER"
	RoleGrip              Role = "GRIP"
	RoleDigitech          Role = "DIGITECH"
	RoleRetoucher         Role = "RETOUCHER"
	RoleProductionAsst    Role = "PRODUCTION ASSISTANT"
	RoleFirstAssistant    Role = "FIRST ASSISTANT"
	RoleAssistant         Role = "ASSISTANT"
	RoleContact           Role = "CONTACT"
)

var knownRoles = []Role{
	RoleProducer, RoleExecutiveProducer, RoleDirector, RolePhotographer, RoleVideographer,
	RoleDP, RoleCreativeDirector, RoleArtDirector, RoleStylist, RoleWardrobeStylist,
	RolePropStylist, RoleSetDesigner, RoleMUA, RoleHUA, RoleHMUA, RoleManicurist,
	RoleModel, RoleTalent, RoleAgent, RoleCasting, RoleClient, RoleGaffer, RoleGrip,
	RoleDigitech, RoleRetoucher, RoleProductionAsst, RoleFirstAssistant, RoleAssistant,
}

// KnownRoles returns the canonical role vocabulary.
func KnownRoles() []Role {
	return slices.Clone(knownRoles)
}

// rolePriority is the output ordering; unlisted roles sort after ASSISTANT and before CONTACT.
var rolePriority = []Role{
	RoleProducer,
	RoleDirector,
	RolePhotographer,
	RoleCreativeDirector,
	RoleStylist,
	RoleMUA,
	RoleModel,
	RoleTalent,
	RoleAssistant,
}

var roleSynonyms = map[string]Role{
	"MAKEUP ARTIST":           RoleMUA,
	"MAKE-UP ARTIST":          RoleMUA,
	"MAKE UP ARTIST":          RoleMUA,
	"MAKEUP":                  RoleMUA,
	"MAKE-UP":                 RoleMUA,
	"MAKE UP":                 RoleMUA,
	"MU":                      RoleMUA,
	"M.U.A.":                  RoleMUA,
	"HAIR":                    RoleHUA,
	"HAIR STYLIST":            RoleHUA,
	"HAIRSTYLIST":             RoleHUA,
	"HAIR ARTIST":             RoleHUA,
	"HAIR AND MAKEUP":         RoleHMUA,
	"HAIR & MAKEUP":           RoleHMUA,
	"HAIR/MAKEUP":             RoleHMUA,
	"HAIR & MAKE-UP":          RoleHMUA,
	"HAIR AND MAKE-UP":        RoleHMUA,
	"HAIR MAKEUP":             RoleHMUA,
	"HMU":                     RoleHMUA,
	"H&MU":                    RoleHMUA,
	"H/MU":                    RoleHMUA,
	"PHOTO GRAPHER":           RolePhotographer,
	"PHOTOG":                  RolePhotographer,
	"PHOTO":                   RolePhotographer,
	"DP":                      RoleDP,
	"D.P.":                    RoleDP,
	"DOP":                     RoleDP,
	"CINEMATOGRAPHER":         RoleDP,
	"EP":                      RoleExecutiveProducer,
	"EXEC PRODUCER":           RoleExecutiveProducer,
	"EXEC. PRODUCER":          RoleExecutiveProducer,
	"CD":                      RoleCreativeDirector,
	"CREATIVE":                RoleCreativeDirector,
	"PA":                      RoleProductionAsst,
	"P.A.":                    RoleProductionAsst,
	"WARDROBE":                RoleWardrobeStylist,
	"FASHION STYLIST":         RoleStylist,
	"PROPS":                   RolePropStylist,
	"PROP":                    RolePropStylist,
	"SET DESIGN":              RoleSetDesigner,
	"NAILS":                   RoleManicurist,
	"NAIL ARTIST":             RoleManicurist,
	"1ST ASSISTANT":           RoleFirstAssistant,
	"1ST ASST":                RoleFirstAssistant,
	"FIRST ASST":              RoleFirstAssistant,
	"ASST":                    RoleAssistant,
	"DIGI TECH":               RoleDigitech,
	"DIGITAL TECH":            RoleDigitech,
	"DIGITAL TECHNICIAN":      RoleDigitech,
	"RETOUCH":                 RoleRetoucher,
	"CASTING DIRECTOR":        RoleCasting,
	"MODELS":                  RoleModel,
	"PRODUCERS":               RoleProducer,
	"LINE PRODUCER":           RoleProducer,
	"PHOTOGRAPHY DIRECTOR":    RoleDP,
	"DIRECTOR OF PHOTOGRAPHY": RoleDP,
}

var synonymKeys = slices.Sorted(maps.Keys(roleSynonyms))

var reRoleSpace = regexp.MustCompile(`\s+`)

// CanonicalizeRole maps free text to the canonical upper-case role.
// The bool reports whether the result is a known role; unknown input is
// returned upper-cased and trimmed.
func CanonicalizeRole(input string) (Role, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(input))
	normalized = reRoleSpace.ReplaceAllString(normalized, " ")
	normalized = strings.Trim(normalized, " :-–")
	if normalized == "" {
		return RoleContact, false
	}

	if role, ok := roleSynonyms[normalized]; ok {
		return role, true
	}
	for _, role := range knownRoles {
		if normalized == string(role) {
			return role, true
		}
	}
	if normalized == string(RoleContact) {
		return RoleContact, false
	}

	// OCR typos on longer words ("PHOTOGRAPHR", "STYLLIST") are one edit away.
	if len(normalized) >= 7 {
		for _, role := range knownRoles {
			if len(role) >= 7 && levenshtein.ComputeDistance(normalized, string(role)) <= 1 {
				return role, true
			}
		}
	}
	return Role(normalized), false
}

// IsKnownRole reports whether role equals or contains a known role word.
func IsKnownRole(role string) bool {
	if _, ok := CanonicalizeRole(role); ok {
		return true
	}
	return ContainsKnownRole(role) != ""
}

// ContainsKnownRole returns the longest known role found as whole words inside s.
func ContainsKnownRole(s string) Role {
	upper := " " + reRoleSpace.ReplaceAllString(strings.ToUpper(s), " ") + " "
	var best Role
	for _, role := range knownRoles {
		if len(role) <= len(best) {
			continue
		}
		if containsWord(upper, string(role)) {
			best = role
		}
	}
	for _, syn := range synonymKeys {
		role := roleSynonyms[syn]
		// two-letter abbreviations are too noisy for substring search
		if len(syn) < 4 || len(syn) <= len(best) {
			continue
		}
		if containsWord(upper, syn) {
			best = role
		}
	}
	return best
}

func containsWord(padded, word string) bool {
	idx := strings.Index(padded, word)
	for idx >= 0 {
		before := padded[idx-1]
		end := idx + len(word)
		if end < len(padded) && !isWordByte(before) && !isWordByte(padded[end]) {
			return true
		}
		next := strings.Index(padded[idx+1:], word)
		if next < 0 {
			break
		}
		idx += next + 1
	}
	return false
}

func isWordByte(b byte) bool {
	return b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// RolePriority returns the sort rank of a role; lower sorts first.
func RolePriority(role string) int {
	upper := strings.ToUpper(strings.TrimSpace(role))
	for i, r := range rolePriority {
		if upper == string(r) {
			return i
		}
	}
	if upper == "" || upper == string(RoleContact) {
		return len(rolePriority) + 1
	}
	if upper == string(RoleHMUA) || upper == string(RoleHUA) {
		return RolePriority(string(RoleMUA))
	}
	// EXECUTIVE PRODUCER ranks with PRODUCER, PHOTO ASSISTANT with ASSISTANT.
	best, bestLen := len(rolePriority), 0
	padded := " " + upper + " "
	for i, r := range rolePriority {
		if len(r) > bestLen && containsWord(padded, string(r)) {
			best, bestLen = i, len(r)
		}
	}
	return best
}

// RoleKeywords lists the lower-case single-word role vocabulary used for
// letter-spacing repair and document classification.
func RoleKeywords() []string {
	seen := map[string]struct{}{}
	var out []string
	add := func(s string) {
		for _, w := range strings.Fields(strings.ToLower(s)) {
			if len(w) < 5 {
				continue
			}
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	for _, r := range knownRoles {
		add(string(r))
	}
	add("makeup stylist wardrobe hairstylist")
	return out
}
