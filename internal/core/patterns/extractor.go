package patterns

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/crewsheet/constants"
	"github.com/joseph-ayodele/crewsheet/internal/core/fields"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
)

const (
	DefaultTimeout    = 15 * time.Second
	DefaultMatchCap   = 500
	DefaultMaxResults = 1000
	DefaultWorkers    = 4
)

// Config bounds one pattern-set run.
type Config struct {
	Timeout    time.Duration
	MatchCap   int
	MaxResults int
	Workers    int
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MatchCap <= 0 {
		c.MatchCap = DefaultMatchCap
	}
	if c.MaxResults <= 0 {
		c.MaxResults = DefaultMaxResults
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	return c
}

// Result of one pattern-set run. Claimed holds the 1-based lines that
// produced an accepted contact.
type Result struct {
	Contacts     []entity.Contact
	PatternsUsed []string
	Failed       []string
	Rejected     int
	Truncated    bool
	Claimed      map[int]struct{}
}

// IsClaimed reports whether a pattern already owns line n.
func (r Result) IsClaimed(n int) bool {
	_, ok := r.Claimed[n]
	return ok
}

type candidate struct {
	contact entity.Contact
	line    int
}

type patternRun struct {
	candidates []candidate
	rejected   int
	hitCap     bool
	skipped    bool
	failed     bool
}

// Extractor runs the pattern bank over a document.
type Extractor struct {
	logger  *slog.Logger
	cleaner *fields.Cleaner
	bank    []Pattern
	cfg     Config
}

func NewExtractor(logger *slog.Logger, cleaner *fields.Cleaner, cfg Config) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cleaner == nil {
		cleaner = fields.NewCleaner(fields.PhoneE164)
	}
	return &Extractor{
		logger:  logger,
		cleaner: cleaner,
		bank:    DefaultBank(),
		cfg:     cfg.withDefaults(),
	}
}

// Extract runs every pattern (concurrently, bounded by Workers) and merges
// the matches in priority order: a line claimed by a higher-priority
// pattern is ignored by lower ones, and the first record per dedup key wins.
// Hitting the timeout or the output cap is a soft cutoff.
func (e *Extractor) Extract(ctx context.Context, text string) Result {
	res := Result{Claimed: make(map[int]struct{})}
	if strings.TrimSpace(text) == "" {
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	starts := lineStarts(text)
	runs := make([]patternRun, len(e.bank))

	var g errgroup.Group
	g.SetLimit(e.cfg.Workers)
	for i := range e.bank {
		g.Go(func() error {
			if ctx.Err() != nil {
				runs[i].skipped = true
				return nil
			}
			runs[i] = e.runPattern(e.bank[i], text, starts)
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]struct{})
	for i, run := range runs {
		p := e.bank[i]
		if run.failed {
			res.Failed = append(res.Failed, p.Name)
			continue
		}
		if run.skipped || run.hitCap {
			res.Truncated = true
		}
		res.Rejected += run.rejected
		used := false
		for _, cand := range run.candidates {
			if res.IsClaimed(cand.line) {
				continue
			}
			key := cand.contact.DedupKey()
			if _, dup := seen[key]; dup {
				res.Claimed[cand.line] = struct{}{}
				continue
			}
			if len(res.Contacts) >= e.cfg.MaxResults {
				res.Truncated = true
				break
			}
			seen[key] = struct{}{}
			res.Claimed[cand.line] = struct{}{}
			res.Contacts = append(res.Contacts, cand.contact)
			used = true
		}
		if used {
			res.PatternsUsed = append(res.PatternsUsed, p.Name)
		}
	}

	e.logger.Debug("patterns.extract.done",
		"contacts", len(res.Contacts),
		"patterns_used", len(res.PatternsUsed),
		"rejected", res.Rejected,
		"truncated", res.Truncated,
	)
	return res
}

// runPattern matches one pattern; a panic is recovered and marks the run failed.
func (e *Extractor) runPattern(p Pattern, text string, starts []int) (run patternRun) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("patterns.pattern.panic", "pattern", p.Name, "err", fmt.Sprint(r))
			run = patternRun{failed: true}
		}
	}()

	matches := p.re.FindAllStringSubmatchIndex(text, e.cfg.MatchCap)
	run.hitCap = len(matches) >= e.cfg.MatchCap
	for _, loc := range matches {
		c := entity.Contact{
			Name:       p.capture(text, loc, "name"),
			Role:       p.capture(text, loc, "role"),
			Email:      p.capture(text, loc, "email"),
			Phone:      p.capture(text, loc, "phone"),
			Company:    p.capture(text, loc, "company"),
			Confidence: p.Confidence,
			Source:     constants.SourcePattern,
			LineNumber: lineOf(starts, loc[0]),
		}
		if c.Name == "" || (c.Phone == "" && c.Email == "") {
			continue
		}
		if c.Role == "" {
			lineText := text[loc[0]:loc[1]]
			if role := constants.ContainsKnownRole(strings.Replace(lineText, c.Name, " ", 1)); role != "" {
				c.Role = string(role)
			}
		}
		e.cleaner.Clean(&c)
		if ok, _ := fields.Validate(c); !ok {
			run.rejected++
			continue
		}
		run.candidates = append(run.candidates, candidate{contact: c, line: c.LineNumber})
	}
	return run
}

func lineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineOf maps a byte offset to its 1-based line number.
func lineOf(starts []int, offset int) int {
	return sort.Search(len(starts), func(i int) bool { return starts[i] > offset })
}
