package component

import (
	"context"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/joseph-ayodele/crewsheet/constants"
	"github.com/joseph-ayodele/crewsheet/internal/core/fields"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
)

const (
	// methods on a following line attach to a name at most this many lines above
	maxAttachDistance = 2
	maxHeaderLen      = 40
	ctxCheckEvery     = 256
)

var (
	reRolePrefix = regexp.MustCompile(`^([^:]{2,50}):`)
	reCapRun     = regexp.MustCompile(`[A-Z][A-Za-z'.\-]*(?:[ ]+[A-Z][A-Za-z'.\-]*)*`)
	reSegmentSep = regexp.MustCompile(`\s+[-–]\s+|[/|\t,;(]`)
	reURL        = regexp.MustCompile(`(?i)\bhttps?://\S*`)
	reWebAddress = regexp.MustCompile(`(?i)^www\.|^[a-z0-9-]+(?:\.[a-z0-9-]+)+$`)
)

// Result is the output of one component pass.
type Result struct {
	Contacts  []entity.Contact
	Rejected  int
	Lines     int
	Truncated bool
}

// Extractor decomposes text line by line into role, name, phone and email
// components and assembles them into contacts.
type Extractor struct {
	logger  *slog.Logger
	cleaner *fields.Cleaner
}

func NewExtractor(logger *slog.Logger, cleaner *fields.Cleaner) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cleaner == nil {
		cleaner = fields.NewCleaner(fields.PhoneE164)
	}
	return &Extractor{logger: logger, cleaner: cleaner}
}

type line struct {
	number    int
	text      string
	hasColon  bool
	hasEmail  bool
	hasNumber bool
}

type group struct {
	first, last int
	role        string
	name        string
	phone       string
	email       string
	company     string
	section     string
}

func (g *group) hasMethod() bool {
	return g.phone != "" || g.email != ""
}

// Extract scans every line of text.
func (e *Extractor) Extract(ctx context.Context, text string) Result {
	return e.ExtractSkipping(ctx, text, nil)
}

// ExtractSkipping scans text but ignores the 1-based line numbers for
// which claimed returns true. Claimed lines also break proximity groups.
func (e *Extractor) ExtractSkipping(ctx context.Context, text string, claimed func(int) bool) Result {
	var res Result
	if strings.TrimSpace(text) == "" {
		return res
	}

	var (
		current  *group
		section  string
		roleHead string
		roleLine int
	)
	flush := func() {
		if current != nil {
			e.emit(current, &res)
			current = nil
		}
	}

	for i, raw := range strings.Split(text, "\n") {
		if i%ctxCheckEvery == 0 && ctx.Err() != nil {
			res.Truncated = true
			break
		}
		number := i + 1
		t := strings.TrimSpace(raw)
		if t == "" {
			continue
		}
		res.Lines++
		if claimed != nil && claimed(number) {
			flush()
			continue
		}
		if current != nil && number-current.last > maxAttachDistance {
			flush()
		}

		ln := scan(number, t)
		if !ln.hasEmail && !ln.hasNumber {
			if role, known := constants.CanonicalizeRole(strings.TrimRight(t, ":")); known {
				flush()
				roleHead, roleLine = string(role), number
				continue
			}
			if head, ok := headerText(t); ok && !isNameHeader(head) {
				flush()
				section = head
				continue
			}
		}

		g := decompose(ln)
		g.section = section
		switch {
		case g.name != "":
			flush()
			if g.role == "" && roleHead != "" && number-roleLine <= maxAttachDistance {
				g.role = roleHead
			}
			current = &g
		case g.hasMethod() && current != nil:
			attach(current, g)
		}
	}
	flush()

	e.logger.Debug("component.extract.done",
		"lines", res.Lines, "contacts", len(res.Contacts),
		"rejected", res.Rejected, "truncated", res.Truncated,
	)
	return res
}

func (e *Extractor) emit(g *group, res *Result) {
	if g.name == "" || !g.hasMethod() {
		return
	}
	c := entity.Contact{
		Name:       g.name,
		Role:       g.role,
		Email:      g.email,
		Phone:      g.phone,
		Company:    g.company,
		Section:    g.section,
		Confidence: score(g),
		Source:     constants.SourceComponent,
		LineNumber: g.first,
	}
	e.cleaner.Clean(&c)
	if ok, reason := fields.Validate(c); !ok {
		res.Rejected++
		e.logger.Debug("component.contact.rejected", "line", g.first, "reason", reason)
		return
	}
	res.Contacts = append(res.Contacts, c)
}

// score is the component confidence: 0.5 base, role +0.2 (+0.1 known),
// name +0.1 (+0.1 for two or more words), phone +0.1, email +0.1.
func score(g *group) float64 {
	conf := 0.5
	if g.role != "" {
		conf += 0.2
		if constants.IsKnownRole(g.role) {
			conf += 0.1
		}
	}
	if g.name != "" {
		conf += 0.1
		if len(strings.Fields(g.name)) >= 2 {
			conf += 0.1
		}
	}
	if g.phone != "" {
		conf += 0.1
	}
	if g.email != "" {
		conf += 0.1
	}
	return math.Min(conf, 1)
}

// attach fills the empty method fields of g from a name-less line.
func attach(g *group, from group) {
	used := false
	if g.phone == "" && from.phone != "" {
		g.phone = from.phone
		used = true
	}
	if g.email == "" && from.email != "" {
		g.email = from.email
		used = true
	}
	if g.company == "" && from.company != "" && used {
		g.company = from.company
	}
	if used {
		g.last = from.last
	}
}

func scan(number int, t string) line {
	ln := line{number: number, text: t}
	for _, r := range t {
		switch {
		case r == ':':
			ln.hasColon = true
		case r == '@':
			ln.hasEmail = true
		case r >= '0' && r <= '9':
			ln.hasNumber = true
		}
	}
	return ln
}

// decompose takes the first role, name, phone and email of a line.
func decompose(ln line) group {
	t := ln.text
	g := group{first: ln.number, last: ln.number}

	var spans [][2]int
	firstMethod := len(t)
	if ln.hasEmail {
		if loc := fields.EmailRegexp.FindStringIndex(t); loc != nil {
			g.email = t[loc[0]:loc[1]]
			spans = append(spans, [2]int{loc[0], loc[1]})
			firstMethod = loc[0]
		}
	}
	if ln.hasNumber {
		for _, loc := range fields.PhoneRegexp.FindAllStringIndex(t, 4) {
			if overlaps(loc[0], loc[1], spans) {
				continue
			}
			g.phone = t[loc[0]:loc[1]]
			spans = append(spans, [2]int{loc[0], loc[1]})
			firstMethod = min(firstMethod, loc[0])
			break
		}
	}
	masked := mask(t, spans)

	restStart := 0
	if ln.hasColon {
		if m := reRolePrefix.FindStringSubmatchIndex(t); m != nil && m[3] <= firstMethod {
			prefix := strings.TrimSpace(t[m[2]:m[3]])
			if hasLetter(prefix) {
				restStart = m[1]
				if !isLabel(prefix) {
					g.role = prefix
				}
			}
		}
	}

	nameEnd := -1
	if restStart > 0 {
		seg := masked[restStart:]
		cut := len(seg)
		if firstMethod >= restStart {
			cut = min(cut, firstMethod-restStart)
		}
		if loc := reSegmentSep.FindStringIndex(seg[:cut]); loc != nil {
			cut = loc[0]
		}
		cand := strings.Trim(seg[:cut], " -:.")
		if isNameCandidate(cand) {
			g.name = cand
			nameEnd = restStart + cut
		}
	}
	if g.name == "" {
		name, role, end := capitalizedName(masked[restStart:])
		if name != "" {
			g.name = name
			nameEnd = restStart + end
			if g.role == "" {
				g.role = role
			}
		}
	}

	if g.name != "" && g.role == "" {
		rest := strings.Replace(masked, g.name, " ", 1)
		if role := constants.ContainsKnownRole(rest); role != "" {
			g.role = string(role)
		}
	}
	if nameEnd >= 0 {
		g.company = companyAfter(masked[nameEnd:], g.role)
	}
	return g
}

// capitalizedName returns the first run of 2-4 capitalized words once
// role and label words are stripped from its edges. A single word is
// accepted when a role was stripped next to it ("MUA Jane").
func capitalizedName(s string) (name, role string, end int) {
	for _, loc := range reCapRun.FindAllStringIndex(s, -1) {
		words := strings.Fields(s[loc[0]:loc[1]])
		var stripped []string
		for len(words) > 0 && fields.IsHeaderLike(words[0]) {
			stripped = append(stripped, words[0])
			words = words[1:]
		}
		var tail []string
		for len(words) > 0 && fields.IsHeaderLike(words[len(words)-1]) {
			tail = append([]string{words[len(words)-1]}, tail...)
			words = words[:len(words)-1]
		}
		stripped = append(stripped, tail...)
		if len(words) > 4 {
			words = words[:4]
		}
		roleText := strings.Join(stripped, " ")
		foundRole := constants.ContainsKnownRole(roleText)
		if len(words) >= 2 || (len(words) == 1 && foundRole != "" && len(words[0]) > 1) {
			return strings.Join(words, " "), string(foundRole), loc[1]
		}
	}
	return "", "", -1
}

// companyAfter picks the first separated segment that is not a phone,
// email, web address, role or street address.
func companyAfter(s, role string) string {
	if !strings.ContainsAny(s, "/|\t") {
		return ""
	}
	s = reURL.ReplaceAllString(s, " ")
	for _, seg := range strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '|' || r == '\t' || r == ','
	}) {
		seg = strings.TrimSpace(strings.ReplaceAll(seg, "\x00", ""))
		if !hasLetter(seg) || fields.IsHeaderLike(seg) || fields.IsStreetAddress(seg) {
			continue
		}
		if strings.Contains(seg, "@") || reWebAddress.MatchString(seg) {
			continue
		}
		if role != "" && strings.EqualFold(seg, role) {
			continue
		}
		return seg
	}
	return ""
}

// headerText returns the trimmed text of an upper-case header line.
func headerText(t string) (string, bool) {
	head := strings.TrimSpace(strings.TrimRight(t, ":"))
	if head == "" || len(head) > maxHeaderLen || strings.ContainsAny(head, ":/|\t") {
		return "", false
	}
	if !hasLetter(head) || strings.ToUpper(head) != head {
		return "", false
	}
	return head, true
}

// isNameHeader reports whether an upper-case line is more likely a name
// ("JOHN DOE") than a section title.
func isNameHeader(head string) bool {
	words := strings.Fields(head)
	return len(words) >= 2 && len(words) <= 4 && !fields.IsHeaderLike(head)
}

// isLabel reports field labels such as "Email" or "Cell" that precede a
// colon without being a role.
func isLabel(prefix string) bool {
	return fields.IsHeaderLike(prefix) && !constants.IsKnownRole(prefix)
}

func isNameCandidate(s string) bool {
	if s == "" || len(s) > 100 {
		return false
	}
	first := []rune(s)[0]
	if !unicode.IsLetter(first) {
		return false
	}
	n := len(strings.Fields(s))
	return n >= 1 && n <= 6 && !fields.IsHeaderLike(s)
}

func hasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

func overlaps(start, end int, spans [][2]int) bool {
	for _, sp := range spans {
		if start < sp[1] && sp[0] < end {
			return true
		}
	}
	return false
}

// mask blanks phone and email spans with NUL bytes so name and company
// matching cannot reach into them while offsets stay aligned.
func mask(t string, spans [][2]int) string {
	if len(spans) == 0 {
		return t
	}
	b := []byte(t)
	for _, sp := range spans {
		for i := sp[0]; i < sp[1]; i++ {
			b[i] = 0
		}
	}
	return string(b)
}
