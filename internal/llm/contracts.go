// Package llm defines the template-generation contract and its HTTP plumbing.
// The extraction core only depends on the TemplateGenerator interface; the
// openai subpackage provides the concrete client.
package llm

import (
	"context"

	"github.com/belegwerk/invoice-extractor/internal/template"
)

// GenerateRequest carries the invoice text a new template should be derived
// from, plus an optional issuer hint from the identifier.
type GenerateRequest struct {
	InvoiceText string
	IssuerHint  string
}

// TemplateGenerator produces a candidate template document for an unmatched
// invoice. Implementations must return only templates that pass validation;
// a document missing issuer, keywords, or fields is an error, not a result.
type TemplateGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (*template.Template, error)
}
