package fields

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/joseph-ayodele/crewsheet/constants"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
)

const (
	maxNameLen  = 100
	maxEmailLen = 100
	minDigits   = 7
)

var (
	reSpaces            = regexp.MustCompile(`\s+`)
	reNameDisallowed    = regexp.MustCompile(`[^A-Za-z\s\-'.]`)
	reCompanyDisallowed = regexp.MustCompile(`[^A-Za-z0-9\s\-.&]`)
	reEmail             = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._%+-]*@[A-Za-z0-9][A-Za-z0-9.-]*\.[A-Za-z]{2,}$`)
	rePhoneExtension    = regexp.MustCompile(`(?i)\s*(?:ext\.?|extension|x|#)\s*\d{1,5}\s*$`)
	rePhoneDisallowed   = regexp.MustCompile(`[^0-9+()\-. ]`)
	reNumeric           = regexp.MustCompile(`^[\d\s.\-/#]+$`)
)

// PhoneStyle selects how cleaned phone numbers are rendered.
type PhoneStyle int

const (
	// PhoneE164 renders +19175551234.
	PhoneE164 PhoneStyle = iota
	// PhoneNational renders (917) 555-1234 and +1 (917) 555-1234.
	PhoneNational
)

func ParsePhoneStyle(s string) PhoneStyle {
	if strings.EqualFold(strings.TrimSpace(s), "national") {
		return PhoneNational
	}
	return PhoneE164
}

// CleanName trims, folds accents, drops characters outside letters,
// whitespace, hyphen, apostrophe and period, and title-cases.
func CleanName(s string) string {
	s = foldAccents(s)
	s = reNameDisallowed.ReplaceAllString(s, " ")
	s = collapse(s)
	s = strings.Trim(s, " -'.")
	if s == "" {
		return ""
	}
	// a Caser is stateful; one per call
	return cases.Title(language.English).String(strings.ToLower(s))
}

// CleanRole upper-cases and canonicalizes through the synonym table.
// Purely numeric roles are rejected.
func CleanRole(s string) string {
	s = collapse(s)
	s = strings.Trim(s, " :-|/,")
	if s == "" || reNumeric.MatchString(s) {
		return ""
	}
	role, _ := constants.CanonicalizeRole(s)
	return string(role)
}

// CleanEmail lower-cases and returns "" unless the full grammar matches.
func CleanEmail(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.ToLower(s), "mailto:")
	s = strings.Trim(s, " <>()[],;:.'\"")
	if s == "" || len(s) > maxEmailLen || !reEmail.MatchString(s) {
		return ""
	}
	return s
}

// CleanPhone formats 10-digit numbers as (XXX) XXX-XXXX and 11-digit
// numbers with a leading 1 as +1 (XXX) XXX-XXXX. Other lengths are kept as
// a best-effort cleaned string. Fewer than 7 digits yields "".
func CleanPhone(s string) string {
	s = stripExtension(s)
	digits := entity.DigitsOnly(s)
	if len(digits) < minDigits {
		return ""
	}
	switch {
	case len(digits) == 10:
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
	case len(digits) == 11 && digits[0] == '1':
		return "+1 (" + digits[1:4] + ") " + digits[4:7] + "-" + digits[7:]
	}
	cleaned := collapse(rePhoneDisallowed.ReplaceAllString(s, ""))
	return strings.Trim(cleaned, " -.")
}

// FormatE164 renders a phone as +<country><number>. US numbers without a
// country code get +1.
func FormatE164(s string) string {
	s = stripExtension(s)
	digits := entity.DigitsOnly(s)
	hasPlus := strings.HasPrefix(strings.TrimSpace(s), "+")
	switch {
	case len(digits) < minDigits:
		return ""
	case len(digits) == 10 && !hasPlus:
		return "+1" + digits
	case len(digits) == 11 && digits[0] == '1':
		return "+" + digits
	case hasPlus && len(digits) <= 15:
		return "+" + digits
	}
	return digits
}

// CleanCompany trims and keeps alphanumerics, whitespace and -.&.
func CleanCompany(s string) string {
	s = foldAccents(s)
	s = reCompanyDisallowed.ReplaceAllString(s, "")
	s = collapse(s)
	return strings.Trim(s, " -.")
}

func stripExtension(s string) string {
	return rePhoneExtension.ReplaceAllString(strings.TrimSpace(s), "")
}

func collapse(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Cleaner applies every field cleaner to a contact. All extractors share
// one so output looks the same regardless of strategy.
type Cleaner struct {
	PhoneStyle PhoneStyle
}

func NewCleaner(style PhoneStyle) *Cleaner {
	return &Cleaner{PhoneStyle: style}
}

// Phone renders a raw phone in the configured style.
func (c *Cleaner) Phone(s string) string {
	if c.PhoneStyle == PhoneNational {
		return CleanPhone(s)
	}
	return FormatE164(s)
}

// Clean normalizes c in place.
func (c *Cleaner) Clean(ct *entity.Contact) {
	ct.Name = CleanName(ct.Name)
	ct.Role = CleanRole(ct.Role)
	if ct.Role == "" {
		ct.Role = string(constants.RoleContact)
	}
	ct.Email = CleanEmail(ct.Email)
	ct.Phone = c.Phone(ct.Phone)
	ct.Company = CleanCompany(ct.Company)
	ct.Section = collapse(ct.Section)
	if ct.Confidence < 0 {
		ct.Confidence = 0
	}
	if ct.Confidence > 1 {
		ct.Confidence = 1
	}
}
