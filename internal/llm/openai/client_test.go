package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/crewsheet/constants"
	"github.com/joseph-ayodele/crewsheet/internal/common"
	"github.com/joseph-ayodele/crewsheet/internal/llm"
)

func chatReply(t *testing.T, content string) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"choices": []map[string]any{{"message": map[string]any{"content": content}}},
	})
	require.NoError(t, err)
	return b
}

func TestClientEnhance_OK(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write(chatReply(t, `{"contacts":[{"name":"Jane Smith","role":"STYLIST","email":"jane@x.com"}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL, Model: "m"}, nil)
	out, raw, err := c.Enhance(context.Background(), llm.EnhanceRequest{Text: "STYLIST: Jane Smith jane@x.com", Mode: constants.ModeAIOnly})
	require.NoError(t, err)
	require.Len(t, out.Contacts, 1)
	assert.Equal(t, "Jane Smith", out.Contacts[0].Name)
	assert.NotEmpty(t, raw)
	assert.Equal(t, "Bearer k", gotAuth)
	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "m", gotBody["model"])
}

func TestClientEnhance_SchemaViolation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(chatReply(t, `sorry, I cannot help`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	_, _, err := c.Enhance(context.Background(), llm.EnhanceRequest{Text: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrSchemaViolation))
}

func TestClientEnhance_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	_, _, err := c.Enhance(context.Background(), llm.EnhanceRequest{Text: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrAIUnavailable))
}

func TestClient_UnavailableWithoutKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	c := NewClient(Config{}, nil)
	assert.False(t, c.Available())

	_, _, err := c.Enhance(context.Background(), llm.EnhanceRequest{Text: "x"})
	assert.ErrorIs(t, err, common.ErrAIUnavailable)
}
