package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/crewsheet/internal/cache"
	"github.com/joseph-ayodele/crewsheet/internal/common"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
	"github.com/joseph-ayodele/crewsheet/internal/metrics"
)

func testConfig() *common.Config {
	cfg := common.DefaultConfig()
	cfg.Database.DSN = "file:app_test?mode=memory&cache=shared"
	cfg.LLM.APIKey = ""
	return cfg
}

func TestBuild_PersistsRuns(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	a, err := Build(context.Background(), testConfig(), nil, Options{Metrics: metrics.New()})
	require.NoError(t, err)
	defer a.Close()

	out, err := a.Processor.ProcessText(context.Background(), "inline.txt", "PHOTOGRAPHER: John Doe / 917-555-1234", entity.Options{})
	require.NoError(t, err)
	require.Len(t, out.Result.Contacts, 1)

	run, err := a.Runs.GetRun(context.Background(), out.RunID)
	require.NoError(t, err)
	assert.Equal(t, 1, run.ContactCount)
	assert.IsType(t, &cache.Memory{}, a.Cache)
	assert.NotNil(t, a.Exporter)
}

func TestBuild_WithoutStore(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.Backend = "none"
	a, err := Build(context.Background(), cfg, nil, Options{WithoutStore: true})
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Runs)
	assert.Nil(t, a.Exporter)
	out, err := a.Processor.ProcessText(context.Background(), "inline.txt", "PHOTOGRAPHER: John Doe / 917-555-1234", entity.Options{})
	require.NoError(t, err)
	assert.True(t, out.Result.Success)
}

func TestBuild_BadDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Database.Driver = "oracle"
	_, err := Build(context.Background(), cfg, nil, Options{})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
