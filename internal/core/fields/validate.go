package fields

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/crewsheet/constants"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
)

// Rejection reasons, in the order the rules are applied.
const (
	RejectNameTooShort   = "name_too_short"
	RejectNameTooLong    = "name_too_long"
	RejectNameNotPerson  = "name_not_person"
	RejectNoContact      = "no_contact_method"
	RejectShortToken     = "single_short_token"
	RejectInvalidEmail   = "invalid_email"
	RejectAddressRole    = "address_role"
	minPhoneDigitsStrict = 10
)

var (
	reStreetSuffix = regexp.MustCompile(`(?i)\b(?:street|st|avenue|ave|av|boulevard|blvd|road|rd|lane|ln|drive|dr|suite|ste|floor|fl|apt|unit|way|place|pl|court|ct|parkway|pkwy|highway|hwy|terrace|plaza|square|sq)\b\.?`)
	reHouseNumber  = regexp.MustCompile(`^\s*#?\d{1,6}[A-Za-z]?\b`)
	reZip          = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)
	reStreetWord   = regexp.MustCompile(`(?i)^(?:street|st|avenue|ave|boulevard|blvd|road|rd|lane|ln|drive|dr|suite|ste|way|place|pl|court|ct|parkway|pkwy|highway|hwy|terrace|plaza|square|sq)\.?$`)
	reCityState    = regexp.MustCompile(`,\s*[A-Za-z][A-Za-z .]{2,}\s+([A-Z]{2})(?:\s+\d{5})?\s*$`)
	reCityTokens   = regexp.MustCompile(`(?i)\b(?:brooklyn|manhattan|queens|bronx|new york|nyc|los angeles|hollywood)\b`)
)

var usStates = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {}, "DE": {}, "FL": {}, "GA": {},
	"HI": {}, "ID": {}, "IL": {}, "IN": {}, "IA": {}, "KS": {}, "KY": {}, "LA": {}, "ME": {}, "MD": {},
	"MA": {}, "MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {}, "NE": {}, "NV": {}, "NH": {}, "NJ": {},
	"NM": {}, "NY": {}, "NC": {}, "ND": {}, "OH": {}, "OK": {}, "OR": {}, "PA": {}, "RI": {}, "SC": {},
	"SD": {}, "TN": {}, "TX": {}, "UT": {}, "VT": {}, "VA": {}, "WA": {}, "WV": {}, "WI": {}, "WY": {},
	"DC": {},
}

// headerWords are call-sheet labels that get mistaken for names.
var headerWords = map[string]struct{}{
	"call": {}, "time": {}, "sheet": {}, "location": {}, "locations": {}, "date": {}, "weather": {},
	"parking": {}, "notes": {}, "note": {}, "crew": {}, "talent": {}, "production": {}, "schedule": {},
	"lunch": {}, "breakfast": {}, "wrap": {}, "contact": {}, "contacts": {}, "phone": {}, "email": {},
	"name": {}, "role": {}, "position": {}, "department": {}, "agency": {}, "client": {}, "address": {},
	"hospital": {}, "nearest": {}, "sunrise": {}, "sunset": {}, "mobile": {}, "cell": {}, "office": {},
	"shoot": {}, "day": {}, "total": {}, "page": {}, "studio": {}, "set": {}, "general": {}, "info": {},
	"details": {}, "tel": {}, "fax": {}, "website": {}, "company": {}, "team": {}, "list": {},
}

// IsStreetAddress reports whether s carries a zip code or a numbered street.
func IsStreetAddress(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if reZip.MatchString(s) {
		return true
	}
	return reHouseNumber.MatchString(s) && reStreetSuffix.MatchString(s)
}

// IsAddressLike widens IsStreetAddress with "City, ST" endings and
// well-known city names. It is only applied to roles; names such as
// "Brooklyn" are legitimate first names.
func IsAddressLike(s string) bool {
	if IsStreetAddress(s) {
		return true
	}
	if reCityTokens.MatchString(s) {
		return true
	}
	if m := reCityState.FindStringSubmatch(strings.TrimSpace(s)); m != nil {
		_, ok := usStates[m[1]]
		return ok
	}
	return false
}

// IsHeaderLike reports whether every word of s is a document label or a role word.
func IsHeaderLike(s string) bool {
	words := strings.Fields(strings.ToLower(s))
	if len(words) == 0 {
		return false
	}
	if _, known := constants.CanonicalizeRole(s); known {
		return true
	}
	for _, w := range words {
		w = strings.Trim(w, ".-'")
		if _, ok := headerWords[w]; ok {
			continue
		}
		if constants.ContainsKnownRole(w) != "" {
			continue
		}
		return false
	}
	return true
}

// looksLikeStreet catches names such as "Greene Ave" that end in a street suffix.
func looksLikeStreet(name string) bool {
	words := strings.Fields(name)
	return len(words) >= 2 && reStreetWord.MatchString(words[len(words)-1])
}

// Validate applies the rejection rules in order; the first failing rule
// wins. Rejection is silent filtering, so callers get a reason, not an error.
func Validate(c entity.Contact) (bool, string) {
	name := strings.TrimSpace(c.Name)
	if len(name) < 2 {
		return false, RejectNameTooShort
	}
	if len(name) > maxNameLen {
		return false, RejectNameTooLong
	}
	if IsHeaderLike(name) || looksLikeStreet(name) || IsStreetAddress(name) {
		return false, RejectNameNotPerson
	}
	hasPhone := len(entity.DigitsOnly(c.Phone)) >= minPhoneDigitsStrict
	hasEmail := strings.Contains(c.Email, "@")
	if !hasPhone && !hasEmail {
		return false, RejectNoContact
	}
	if !strings.Contains(name, " ") && len(name) < 4 && !hasEmail {
		return false, RejectShortToken
	}
	if hasEmail && !reEmail.MatchString(c.Email) {
		return false, RejectInvalidEmail
	}
	if IsAddressLike(c.Role) {
		return false, RejectAddressRole
	}
	return true, ""
}

// ValidationScore is the share of checks a contact passes, used by the scorer.
func ValidationScore(c entity.Contact) float64 {
	checks, passed := 1, 0
	if n := len(strings.TrimSpace(c.Name)); n >= 2 && n <= maxNameLen && !IsHeaderLike(c.Name) {
		passed++
	}
	if c.Email != "" {
		checks++
		if reEmail.MatchString(c.Email) {
			passed++
		}
	}
	if c.Phone != "" {
		checks++
		if len(entity.DigitsOnly(c.Phone)) >= minPhoneDigitsStrict {
			passed++
		}
	}
	if c.Role != "" && c.Role != string(constants.RoleContact) {
		checks++
		if constants.IsKnownRole(c.Role) {
			passed++
		}
	}
	return float64(passed) / float64(checks)
}

// IsValidEmail reports whether s matches the email grammar.
func IsValidEmail(s string) bool {
	return reEmail.MatchString(s)
}
