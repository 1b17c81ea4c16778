package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/crewsheet/constants"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
)

func TestObserveExtraction(t *testing.T) {
	m := New()
	res := &entity.ExtractionResult{
		Success:  true,
		Contacts: make([]entity.Contact, 3),
		Metadata: entity.Metadata{
			Strategy:       constants.StrategyHybrid,
			ProcessingTime: 120 * time.Millisecond,
			AIUsed:         true,
		},
	}
	m.ObserveExtraction(res)
	m.ObserveExtraction(&entity.ExtractionResult{Success: false})
	m.ObserveExtraction(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.extractions.WithLabelValues("hybrid", "SUCCEEDED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.extractions.WithLabelValues("none", "FAILED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.aiCalls.WithLabelValues("ok")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestObserveCacheAndJobs(t *testing.T) {
	m := New()
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)
	m.ObserveJob(nil)
	m.ObserveJob(errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cache.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cache.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobs.WithLabelValues("error")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveCache(true)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `crewsheet_cache_lookups_total{result="hit"} 1`)
}
