package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/crewsheet/constants"
	"github.com/joseph-ayodele/crewsheet/internal/cache"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
	"github.com/joseph-ayodele/crewsheet/internal/llm"
)

type fakeEnhancer struct {
	mu    sync.Mutex
	resp  llm.EnhanceResponse
	err   error
	calls int
}

func (f *fakeEnhancer) Enhance(context.Context, llm.EnhanceRequest) (llm.EnhanceResponse, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.resp, nil, f.err
}

func (f *fakeEnhancer) Available() bool { return true }

type countingRecorder struct {
	extractions int
	hits        int
	misses      int
}

func (r *countingRecorder) ObserveExtraction(*entity.ExtractionResult) { r.extractions++ }
func (r *countingRecorder) ObserveCache(hit bool) {
	if hit {
		r.hits++
		return
	}
	r.misses++
}

const photographer = "PHOTOGRAPHER: John Doe / 917-555-1234"

var callSheet = strings.Join([]string{
	"CALL SHEET",
	"Spring Campaign - Day 1",
	"",
	"CREW",
	"PHOTOGRAPHER: John Doe / 917-555-1234",
	"STYLIST: Jane Smith / Acme Studio / 917-555-2222",
	"MUA: Kim Park / kim@park.com / 917-555-4444",
	"PRODUCER: Amy Lee / 917-555-3333 / amy@lee.com",
}, "\n")

func newExtractor(enhancer llm.Enhancer, opts ...Option) *Extractor {
	return NewExtractor(nil, DefaultConfig(), enhancer, opts...)
}

func TestExtract_EmptyInput(t *testing.T) {
	res := newExtractor(nil).Extract(context.Background(), "   \n ", entity.Options{})
	require.True(t, res.Success)
	assert.Empty(t, res.Contacts)
	assert.Empty(t, res.Error)
}

func TestExtract_TooShort(t *testing.T) {
	res := newExtractor(nil).Extract(context.Background(), "hi there", entity.Options{})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "too short")
	assert.Empty(t, res.Contacts)
}

func TestExtract_InvalidOptions(t *testing.T) {
	res := newExtractor(nil).Extract(context.Background(), photographer, entity.Options{PreferredStrategy: "telepathy"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "preferred_strategy")
}

func TestExtract_Photographer(t *testing.T) {
	res := newExtractor(nil).Extract(context.Background(), photographer, entity.Options{})
	require.True(t, res.Success)
	require.Len(t, res.Contacts, 1)

	c := res.Contacts[0]
	assert.Equal(t, "John Doe", c.Name)
	assert.Equal(t, "PHOTOGRAPHER", c.Role)
	assert.Equal(t, "+19175551234", c.Phone)
	assert.Greater(t, c.Confidence, 0.7)
	assert.Equal(t, constants.StrategyPattern, res.Metadata.Strategy)
	assert.False(t, res.Metadata.AIUsed)
	assert.Equal(t, len(photographer), res.Metadata.TextLength)
}

func TestExtract_CallSheet(t *testing.T) {
	res := newExtractor(nil).Extract(context.Background(), callSheet, entity.Options{FileName: "day1_callsheet.txt"})
	require.True(t, res.Success)
	require.Len(t, res.Contacts, 4)

	assert.Equal(t, constants.DocCallSheet, res.Metadata.DocumentType)
	assert.Equal(t, "Amy Lee", res.Contacts[0].Name, "producer sorts first")
	assert.Equal(t, "John Doe", res.Contacts[1].Name)
	for _, c := range res.Contacts {
		assert.GreaterOrEqual(t, c.Confidence, 0.0)
		assert.LessOrEqual(t, c.Confidence, 1.0)
		assert.True(t, c.HasContactMethod())
	}
}

func TestExtract_Idempotent(t *testing.T) {
	e := newExtractor(nil)
	a := e.Extract(context.Background(), callSheet, entity.Options{})
	b := e.Extract(context.Background(), callSheet, entity.Options{})
	assert.Equal(t, a.Contacts, b.Contacts)
	assert.Equal(t, a.Metadata.Strategy, b.Metadata.Strategy)
}

func TestExtract_MaxContactsAndRolePreferences(t *testing.T) {
	res := newExtractor(nil).Extract(context.Background(), callSheet, entity.Options{
		MaxContacts:     2,
		RolePreferences: []string{"makeup artist"},
	})
	require.True(t, res.Success)
	require.Len(t, res.Contacts, 2)
	assert.Equal(t, "Kim Park", res.Contacts[0].Name)
	assert.Contains(t, res.Metadata.Notes, "limited to 2 of 4 contacts")
}

func TestExtract_CacheHit(t *testing.T) {
	rec := &countingRecorder{}
	e := newExtractor(nil, WithCache(cache.NewMemory(time.Minute)), WithRecorder(rec))

	first := e.Extract(context.Background(), photographer, entity.Options{})
	second := e.Extract(context.Background(), photographer, entity.Options{})

	assert.False(t, first.Metadata.CacheHit)
	assert.True(t, second.Metadata.CacheHit)
	assert.Equal(t, first.Contacts, second.Contacts)
	assert.Equal(t, 2, rec.extractions)
	assert.Equal(t, 1, rec.hits)
	assert.Equal(t, 1, rec.misses)

	other := e.Extract(context.Background(), photographer, entity.Options{MaxContacts: 3})
	assert.False(t, other.Metadata.CacheHit)
}

func TestExtract_AIFailureNotCached(t *testing.T) {
	fake := &fakeEnhancer{err: errors.New("upstream 503")}
	e := newExtractor(fake, WithCache(cache.NewMemory(time.Minute)))
	opts := entity.Options{PreferredStrategy: constants.StrategyHybrid}

	first := e.Extract(context.Background(), callSheet, opts)
	require.True(t, first.Success)
	assert.Equal(t, "upstream 503", first.Metadata.AIError)

	second := e.Extract(context.Background(), callSheet, opts)
	assert.False(t, second.Metadata.CacheHit)
	assert.Equal(t, 2, fake.calls)
}

func TestExtract_HybridMergesAI(t *testing.T) {
	fake := &fakeEnhancer{resp: llm.EnhanceResponse{Contacts: []llm.ContactFields{
		{Name: "John Doe", Email: "john@doe.com", Confidence: 0.9},
		{Name: "Sam Reed", Role: "Gaffer", Phone: "917-555-7777"},
	}}}
	res := newExtractor(fake).Extract(context.Background(), callSheet, entity.Options{PreferredStrategy: constants.StrategyHybrid})
	require.True(t, res.Success)
	assert.Equal(t, 1, fake.calls)
	assert.True(t, res.Metadata.AIUsed)
	assert.Equal(t, constants.StrategyHybrid, res.Metadata.Strategy)
	require.Len(t, res.Contacts, 5)

	bySource := map[constants.Source]string{}
	for _, c := range res.Contacts {
		bySource[c.Source] = c.Name
	}
	assert.Equal(t, "John Doe", bySource[constants.SourceAIEnhanced])
	assert.Equal(t, "Sam Reed", bySource[constants.SourceAIDiscovered])
}

func TestExtract_HybridAIFailure(t *testing.T) {
	fake := &fakeEnhancer{err: errors.New("upstream 502")}
	res := newExtractor(fake).Extract(context.Background(), callSheet, entity.Options{PreferredStrategy: constants.StrategyHybrid})
	require.True(t, res.Success)
	assert.Len(t, res.Contacts, 4)
	assert.False(t, res.Metadata.AIUsed)
	assert.Equal(t, "upstream 502", res.Metadata.AIError)
}

func TestExtract_AIOnlyFallsBackToPattern(t *testing.T) {
	fake := &fakeEnhancer{err: errors.New("timeout")}
	res := newExtractor(fake).Extract(context.Background(), photographer, entity.Options{PreferredStrategy: constants.StrategyAIOnly})
	require.True(t, res.Success)
	require.Len(t, res.Contacts, 1)
	assert.Equal(t, constants.StrategyPattern, res.Metadata.Strategy)
	assert.Equal(t, constants.ModePatternOnly, res.Metadata.Mode)
	assert.Contains(t, res.Metadata.AIError, "timeout")
	assert.Contains(t, res.Metadata.Notes, "fell back from ai_only to pattern")
	assert.Equal(t, 1, fake.calls)
}

func TestExtract_DisableAI(t *testing.T) {
	fake := &fakeEnhancer{}
	res := newExtractor(fake).Extract(context.Background(), callSheet, entity.Options{
		PreferredStrategy: constants.StrategyHybrid,
		DisableAI:         true,
	})
	require.True(t, res.Success)
	assert.Zero(t, fake.calls)
	assert.Equal(t, constants.StrategyPattern, res.Metadata.Strategy)
}

func TestExtract_DeadlineGivesPartialSuccess(t *testing.T) {
	res := newExtractor(nil).Extract(context.Background(), callSheet, entity.Options{MaxProcessingTime: time.Nanosecond})
	require.True(t, res.Success)
	assert.True(t, res.Metadata.Truncated)
	assert.True(t, res.Partial())
}

func TestExtract_LargeInput(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 300; i++ {
		fmt.Fprintf(&b, "GRIP: Person%c Number%c / 917-555-%04d\n", 'A'+i%26, 'A'+(i/26)%26, i)
	}
	res := newExtractor(nil).Extract(context.Background(), b.String(), entity.Options{})
	require.True(t, res.Success)
	assert.NotEmpty(t, res.Contacts)
	assert.LessOrEqual(t, len(res.Contacts), entity.DefaultMaxContacts)
}
