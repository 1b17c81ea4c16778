package textnorm

import (
	"regexp"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/joseph-ayodele/crewsheet/constants"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reSpaceTabs  = regexp.MustCompile(`[ \t\f\v\x{00A0}]+`)
	reMultiSpace = regexp.MustCompile(`[ \f\v\x{00A0}]+`)
	reTabRun     = regexp.MustCompile(` *\t[ \t]*`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
)

var punctuation = strings.NewReplacer(
	"‘", "'", "’", "'", "‚", "'", "‛", "'", "′", "'",
	"“", `"`, "”", `"`, "„", `"`, "‟", `"`, "″", `"`,
	"‐", "-", "‑", "-", "‒", "-", "–", "-", "—", "-", "―", "-", "−", "-",
	"…", "...", "•", "-", "·", "-",
	"\u200b", "", "\ufeff", "",
)

// Options controls whitespace handling.
type Options struct {
	// PreserveTabs keeps a single tab where the input had tabs so that
	// tab-delimited tables survive for structure detection and table patterns.
	PreserveTabs bool
}

// Normalize repairs OCR/PDF artifacts and collapses whitespace.
// It keeps line breaks and collapses 3+ newlines into one blank line.
func Normalize(s string) string {
	return NormalizeWith(s, Options{})
}

// NormalizeWith is Normalize with explicit options.
func NormalizeWith(s string, opts Options) string {
	if s == "" {
		return s
	}
	s = norm.NFC.String(s)
	s = reCRLF.ReplaceAllString(s, "\n")
	s = punctuation.Replace(s)
	s = collapseLetterSpacing(s)

	if opts.PreserveTabs {
		s = reMultiSpace.ReplaceAllString(s, " ")
		s = reTabRun.ReplaceAllString(s, "\t")
	} else {
		s = reSpaceTabs.ReplaceAllString(s, " ")
	}

	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.Trim(lines[i], " ")
		if !opts.PreserveTabs {
			continue
		}
		lines[i] = strings.TrimLeft(lines[i], "\t")
	}
	s = strings.Join(lines, "\n")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	return strings.Trim(s, "\n")
}

var (
	spacedOnce     sync.Once
	spacedKeywords []*regexp.Regexp
	spacedWords    []string
)

// collapseLetterSpacing turns "p h o t o g r a p h e r" back into
// "photographer" for the known role vocabulary.
func collapseLetterSpacing(s string) string {
	spacedOnce.Do(func() {
		for _, kw := range constants.RoleKeywords() {
			spacedKeywords = append(spacedKeywords, spacedPattern(kw))
			spacedWords = append(spacedWords, kw)
		}
	})
	if !hasSpacedLetters(s) {
		return s
	}
	for i, re := range spacedKeywords {
		word := spacedWords[i]
		s = re.ReplaceAllStringFunc(s, func(m string) string {
			if !strings.ContainsAny(m, " \t") {
				return m
			}
			return matchCase(strings.Join(strings.Fields(m), ""), word)
		})
	}
	return s
}

// spacedPattern builds \bp\s*h\s*o...\b for a keyword, case-insensitive.
func spacedPattern(word string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString(`(?i)\b`)
	for i, r := range word {
		if i > 0 {
			b.WriteString(`[ \t]*`)
		}
		b.WriteString(regexp.QuoteMeta(string(r)))
	}
	b.WriteString(`\b`)
	return regexp.MustCompile(b.String())
}

var reSpacedRun = regexp.MustCompile(`(?i)\b[a-z][ \t]+[a-z][ \t]+[a-z][ \t]+[a-z]\b`)

func hasSpacedLetters(s string) bool {
	return reSpacedRun.MatchString(s)
}

// matchCase keeps the casing style of the original letters.
func matchCase(collapsed, word string) string {
	if strings.ToUpper(collapsed) == collapsed {
		return strings.ToUpper(word)
	}
	if strings.ToLower(collapsed) == collapsed {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}

// Lines splits normalized text into lines without trailing blanks.
func Lines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
