package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/crewsheet/internal/common"
	"github.com/joseph-ayodele/crewsheet/internal/llm"
)

// Enhance implements llm.Enhancer using text-only chat/completions with a
// JSON response format. The reply is validated against the contacts schema
// before it is returned.
func (c *Client) Enhance(ctx context.Context, req llm.EnhanceRequest) (llm.EnhanceResponse, []byte, error) {
	if !c.Available() {
		return llm.EnhanceResponse{}, nil, common.ErrAIUnavailable
	}
	ctx, rid := common.EnsureRequestID(ctx)
	start := time.Now()
	log := c.logger.With("req_id", rid)

	log.Info("llm.enhance.start",
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"mode", req.Mode,
		"text_len", len(req.Text),
		"candidates", len(req.Candidates),
	)

	schema := llm.BuildContactsJSONSchema()
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt(req)},
			{"role": "user", "content": llm.BuildUserPrompt(req, c.cfg.ExcerptChars) + "\n\nReturn ONLY JSON that matches the provided schema."},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, status, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, log, c.cfg.Retry)
	if err != nil {
		log.Error("llm.enhance.http_error",
			"status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.EnhanceResponse{}, raw, fmt.Errorf("%w: %v", common.ErrAIUnavailable, err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		log.Error("llm.enhance.decode_error",
			"error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.EnhanceResponse{}, raw, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		log.Error("llm.enhance.no_choices", "elapsed_ms", time.Since(start).Milliseconds())
		return llm.EnhanceResponse{}, raw, fmt.Errorf("no choices in openai response")
	}

	out, content, err := llm.DecodeContacts([]byte(cc.Choices[0].Message.Content), log)
	if err != nil {
		return llm.EnhanceResponse{}, content, err
	}

	log.Info("llm.enhance.ok",
		"contacts", len(out.Contacts),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, content, nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
