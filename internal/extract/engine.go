package extract

import (
	"context"
	"log/slog"
	"math"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/belegwerk/invoice-extractor/constants"
	"github.com/belegwerk/invoice-extractor/internal/llm"
	"github.com/belegwerk/invoice-extractor/internal/template"
)

// Engine is the extraction orchestrator: identify the issuer, select a
// template, run every declared field, score the result. Safe for concurrent
// use; the registry handles reload synchronization itself.
type Engine struct {
	registry  *template.Registry
	generator llm.TemplateGenerator
	finder    OrganizationFinder
	params    ScoringParams
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithGenerator wires the template-generation collaborator used when
// autoGenerate extraction finds no template.
func WithGenerator(g llm.TemplateGenerator) Option {
	return func(e *Engine) { e.generator = g }
}

// WithOrganizationFinder wires the named-entity collaborator used by issuer
// identification.
func WithOrganizationFinder(f OrganizationFinder) Option {
	return func(e *Engine) { e.finder = f }
}

// WithScoringParams overrides the default matcher weights.
func WithScoringParams(p ScoringParams) Option {
	return func(e *Engine) { e.params = p }
}

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func NewEngine(registry *template.Registry, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		params:   DefaultScoringParams(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs the full pipeline over raw invoice text. When no template
// matches and autoGenerate is set, the generation collaborator is asked for a
// new template, the registry is reloaded, and matching is retried exactly
// once. A renewed miss yields a zero-confidence result listing the known
// issuers; extraction never fails with an error.
func (e *Engine) Extract(ctx context.Context, text string, autoGenerate bool) *Result {
	reqID := uuid.NewString()
	start := time.Now()
	logger := e.logger.With("req_id", reqID)
	logger.Info("extract.start", "text_len", len(text), "auto_generate", autoGenerate)

	identified := (&identifier{
		finder:       e.finder,
		headFraction: e.params.HeadFraction,
		issuers:      e.issuerNames,
	}).identify(text)
	if identified != "" {
		logger.Debug("extract.issuer_identified", "issuer", identified)
	}

	m := &matcher{registry: e.registry, params: e.params, logger: logger}
	tpl := m.match(text, identified)

	if tpl == nil && autoGenerate && e.generator != nil {
		tpl = e.generateAndRematch(ctx, logger, m, text, identified)
	}

	if tpl == nil {
		logger.Info("extract.no_match",
			"identified_issuer", identified,
			"templates", e.registry.Len(),
			"elapsed_ms", time.Since(start).Milliseconds())
		return &Result{
			ExtractionMethod:   constants.MethodNone,
			IdentifiedIssuer:   identified,
			AvailableTemplates: e.registry.Issuers(),
			Confidence:         0.0,
		}
	}

	result := e.runTemplate(text, tpl)
	result.IdentifiedIssuer = identified
	result.Confidence = confidence(result)

	logger.Info("extract.ok",
		"template", tpl.Issuer,
		"confidence", result.Confidence,
		"elapsed_ms", time.Since(start).Milliseconds())
	return result
}

// generateAndRematch asks the collaborator for a new template, persists it,
// reloads the registry, and retries the match once. Generation failure is
// logged and swallowed; the caller falls through to the no-match result.
func (e *Engine) generateAndRematch(ctx context.Context, logger *slog.Logger, m *matcher, text, identified string) *template.Template {
	logger.Info("extract.generate.start", "issuer_hint", identified)
	tpl, err := e.generator.Generate(ctx, llm.GenerateRequest{InvoiceText: text, IssuerHint: identified})
	if err != nil {
		logger.Warn("extract.generate.failed", "error", err)
		return nil
	}
	if _, err := e.registry.Save(tpl); err != nil {
		logger.Warn("extract.generate.save_failed", "issuer", tpl.Issuer, "error", err)
		return nil
	}
	e.registry.Reload()
	logger.Info("extract.generate.ok", "issuer", tpl.Issuer)
	return m.match(text, identified)
}

// runTemplate drives every declared field through the pattern extractor.
func (e *Engine) runTemplate(text string, tpl *template.Template) *Result {
	layouts := tpl.DateLayouts()
	sep := tpl.DecimalSeparator()

	result := &Result{
		Issuer:           tpl.Issuer,
		ExtractionMethod: constants.MethodTemplate,
		TemplateUsed:     tpl.Issuer,
	}

	result.InvoiceNumber = extractField(text, tpl.FieldPattern(constants.FieldInvoiceNumber))
	result.InvoiceDate = extractDateField(text,
		[]*regexp.Regexp{tpl.FieldPattern(constants.FieldDate), tpl.FieldPattern(constants.FieldDateAlt)},
		layouts)
	result.DueDate = extractDateField(text,
		[]*regexp.Regexp{tpl.FieldPattern(constants.FieldDueDate)},
		layouts)

	// Only the main amount must be positive to count as extracted; the
	// other monetary fields may legitimately be zero.
	if d := extractAmountField(text, tpl.FieldPattern(constants.FieldAmount), sep); d != nil && d.IsPositive() {
		result.Amount = d
	}
	result.VAT = extractAmountField(text, tpl.FieldPattern(constants.FieldVAT), sep)
	result.ServiceCharges = extractAmountField(text, tpl.FieldPattern(constants.FieldServiceCharges), sep)
	result.AmountNoVAT = extractAmountField(text, tpl.FieldPattern(constants.FieldAmountNoVAT), sep)

	result.VATRate = extractField(text, tpl.FieldPattern(constants.FieldVATRate))
	result.Currency = extractField(text, tpl.FieldPattern(constants.FieldCurrency))
	result.BillingPeriod = extractField(text, tpl.FieldPattern(constants.FieldBillingPeriod))
	result.AccountNumber = extractField(text, tpl.FieldPattern(constants.FieldAccountNumber))

	result.LineItems = extractLineItems(text, tpl.LinePatterns())
	return result
}

func (e *Engine) issuerNames() []string {
	tpls := e.registry.Templates()
	names := make([]string, len(tpls))
	for i, tpl := range tpls {
		names[i] = tpl.Issuer
	}
	return names
}

// confidence weights identity and amount fields at 70% and enrichment fields
// at 30%, rounded to two decimals.
func confidence(r *Result) float64 {
	var required, optional float64
	if r.InvoiceNumber != "" {
		required++
	}
	if r.Issuer != "" {
		required++
	}
	if r.Amount != nil {
		required++
	}
	if r.InvoiceDate != "" {
		optional++
	}
	if r.DueDate != "" {
		optional++
	}
	if len(r.LineItems) > 0 {
		optional++
	}
	score := 0.7*(required/3) + 0.3*(optional/3)
	return math.Round(score*100) / 100
}
