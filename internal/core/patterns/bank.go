package patterns

import (
	"regexp"
	"strings"
	"sync"

	"github.com/joseph-ayodele/crewsheet/internal/core/fields"
)

// Pattern is one composite line pattern. Named groups (role, name, phone,
// email, company) map captures to contact fields.
type Pattern struct {
	Name       string
	Confidence float64
	re         *regexp.Regexp
	groups     map[string]int
}

type template struct {
	name       string
	confidence float64
	expr       string
}

var expander = strings.NewReplacer(
	"{ROLE}", `(?P<role>[A-Za-z0-9][A-Za-z0-9 &/.'\-]{1,40}?)`,
	"{NAME}", `(?P<name>[A-Z][A-Za-z'.\-]*(?:[ ]+[A-Z][A-Za-z'.\-]*){0,3})`,
	"{PHONE}", `(?P<phone>`+fields.PhoneExpr+`)`,
	"{EMAIL}", `(?P<email>`+fields.EmailExpr+`)`,
	"{COMPANY}", `(?P<company>[A-Za-z0-9][A-Za-z0-9 &.'\-]{1,60}?)`,
	"{SEP}", `[ ]*[/|][ ]*`,
	"{END}", `[ \t]*$`,
)

// templates in priority order: the most specific layouts first.
var templates = []template{
	{"table_pipe", 0.95, `^\|?[ \t]*{ROLE}[ \t]*\|[ \t]*{NAME}[ \t]*\|[ \t]*(?:{EMAIL})?[ \t]*\|[ \t]*(?:{PHONE})?[ \t]*\|?{END}`},
	{"tab_name_role_email_phone", 0.9, `^{NAME}[ ]*\t+[ ]*{ROLE}[ ]*\t+[ ]*(?:{EMAIL}[ ]*)?(?:\t+[ ]*{PHONE})?{END}`},
	{"tab_role_name_phone_email", 0.9, `^{ROLE}[ ]*\t+[ ]*{NAME}[ ]*\t+[ ]*(?:{PHONE}[ ]*)?(?:\t+[ ]*{EMAIL})?{END}`},
	{"role_name_company_phone", 0.85, `^{ROLE}[ ]*:[ ]*{NAME}{SEP}{COMPANY}{SEP}{PHONE}(?:{SEP}{EMAIL})?{END}`},
	{"role_name_phone_email", 0.85, `^{ROLE}[ ]*:[ ]*{NAME}{SEP}{PHONE}{SEP}{EMAIL}{END}`},
	{"role_name_email_phone", 0.85, `^{ROLE}[ ]*:[ ]*{NAME}{SEP}{EMAIL}{SEP}{PHONE}{END}`},
	{"role_name_phone", 0.8, `^{ROLE}[ ]*:[ ]*{NAME}{SEP}{PHONE}{END}`},
	{"role_name_email", 0.8, `^{ROLE}[ ]*:[ ]*{NAME}{SEP}{EMAIL}{END}`},
	{"csv", 0.75, `^{NAME}[ ]*,[ ]*{ROLE}[ ]*,[ ]*(?:{EMAIL})?[ ]*,[ ]*(?:{PHONE})?{END}`},
	{"role_dash_name_phone", 0.7, `^{ROLE}[ ]+-[ ]+{NAME}[ ]*[-,/]?[ ]*{PHONE}{END}`},
	{"name_role_paren_phone", 0.65, `^{NAME}[ ]*\([ ]*{ROLE}[ ]*\)[ ]*[-,:/]?[ ]*{PHONE}{END}`},
	{"name_phone", 0.4, `^{NAME}[ ]*[-,:/|]?[ ]*{PHONE}{END}`},
	{"name_email", 0.4, `^{NAME}[ ]*[-,:/|]?[ ]*{EMAIL}{END}`},
	{"loose", 0.3, `\b{NAME}[ \t,;:/|\-]{1,6}{PHONE}`},
}

var defaultBank = sync.OnceValue(func() []Pattern {
	bank := make([]Pattern, 0, len(templates))
	for _, t := range templates {
		bank = append(bank, compile(t))
	}
	return bank
})

// DefaultBank returns the compiled patterns in priority order.
func DefaultBank() []Pattern {
	return defaultBank()
}

func compile(t template) Pattern {
	re := regexp.MustCompile(`(?m)` + expander.Replace(t.expr))
	groups := make(map[string]int)
	for i, name := range re.SubexpNames() {
		if name != "" {
			groups[name] = i
		}
	}
	return Pattern{Name: t.name, Confidence: t.confidence, re: re, groups: groups}
}

// capture returns the text of a named group in one match, or "".
func (p Pattern) capture(text string, loc []int, group string) string {
	i, ok := p.groups[group]
	if !ok || loc[2*i] < 0 {
		return ""
	}
	return text[loc[2*i]:loc[2*i+1]]
}
