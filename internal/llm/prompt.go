package llm

import (
	"regexp"
	"strings"
)

// maxPromptText caps how much invoice text is sent to the model.
const maxPromptText = 4000

// BuildSystemPrompt composes the system message for template generation.
// The model is asked for JSON matching the template document schema, so the
// response can be validated mechanically before anything touches the registry.
func BuildSystemPrompt() string {
	parts := []string{
		"You are an expert at creating invoice extraction templates. Return ONLY JSON that matches the provided JSON Schema.",
		"A template has: 'issuer' (the company name), 'keywords' (literal strings identifying this company's invoices), 'fields' (logical field name to regex pattern), optional 'lines' and 'options'.",
		"Field names to use when present: invoice_number, date, date_alt, due_date, amount, vat, vat_rate, currency, billing_period, account_number, service_charges, amount_no_vat.",
		"Every field pattern must contain exactly one capture group around the value.",
		"Do not bake this invoice's concrete values into the patterns; they must match future invoices from the same company.",
		"For German invoices, match German labels (Rechnungsnummer, Rechnungsdatum, Gesamt) and set options.decimal_separator to ','.",
		"Set options.date_formats to Go time layouts (reference date 02.01.2006) when dates are not numeric DD.MM.YYYY.",
		"Never output null. If a field is not present on the invoice, omit it.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the invoice text and the optional issuer hint.
func BuildUserPrompt(req GenerateRequest) string {
	var b strings.Builder
	if hint := strings.TrimSpace(req.IssuerHint); hint != "" {
		b.WriteString("The company/issuer name is: ")
		b.WriteString(hint)
		b.WriteString("\n\n")
	}
	b.WriteString("INVOICE TEXT:\n")
	text := req.InvoiceText
	if len(text) > maxPromptText {
		b.WriteString(text[:maxPromptText])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	return b.String()
}

var (
	fenceOpenRe  = regexp.MustCompile("(?m)^```(?:json|ya?ml)?[ \t]*\n")
	fenceCloseRe = regexp.MustCompile("(?m)\n```[ \t]*$")
)

// StripCodeFences removes markdown code fences some models wrap their output
// in despite instructions.
func StripCodeFences(s string) string {
	s = fenceOpenRe.ReplaceAllString(s, "")
	s = fenceCloseRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
