package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/belegwerk/invoice-extractor/internal/llm"
	"github.com/belegwerk/invoice-extractor/internal/template"
)

// Generate implements llm.TemplateGenerator using text-only chat/completions
// in JSON mode. The response is schema-validated before it is parsed, so a
// malformed document is an error here and never reaches the registry.
func (c *Client) Generate(ctx context.Context, req llm.GenerateRequest) (*template.Template, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.generate.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.InvoiceText),
		"issuer_hint", req.IssuerHint,
	)

	schema := template.BuildDocumentSchema()
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt()},
			{"role": "user", "content": llm.BuildUserPrompt(req) + "\n\nReturn ONLY JSON that matches the provided schema."},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, _, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Error("llm.generate.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.generate.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.generate.no_choices",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("no choices in openai response")
	}

	content := []byte(llm.StripCodeFences(cc.Choices[0].Message.Content))

	if err := template.ValidateDocument(content); err != nil {
		c.logger.Error("llm.generate.schema_validation_failed",
			"req_id", rid, "error", err, "content", string(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var tpl template.Template
	if err := json.Unmarshal(content, &tpl); err != nil {
		c.logger.Error("llm.generate.unmarshal_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("unmarshal template: %w", err)
	}
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	if err := tpl.Compile(); err != nil {
		c.logger.Error("llm.generate.bad_patterns",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("generated template has invalid patterns: %w", err)
	}

	c.logger.Info("llm.generate.ok",
		"req_id", rid,
		"issuer", tpl.Issuer,
		"keywords", len(tpl.Keywords),
		"fields", len(tpl.Fields),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &tpl, nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
