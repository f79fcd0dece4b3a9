// Package extract drives a matched template over raw invoice text and
// assembles a typed result record with a confidence score.
package extract

import (
	"github.com/shopspring/decimal"

	"github.com/belegwerk/invoice-extractor/constants"
)

// Result is one extraction outcome. Absent string fields are empty, absent
// amounts are nil. A Result is built once per Extract call and never mutated
// after return.
type Result struct {
	Issuer        string `json:"issuer,omitempty"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
	// Dates are canonical DD.MM.YYYY strings.
	InvoiceDate string `json:"invoice_date,omitempty"`
	DueDate     string `json:"due_date,omitempty"`

	Amount         *decimal.Decimal `json:"amount,omitempty"`
	VAT            *decimal.Decimal `json:"vat,omitempty"`
	ServiceCharges *decimal.Decimal `json:"service_charges,omitempty"`
	AmountNoVAT    *decimal.Decimal `json:"amount_no_vat,omitempty"`

	VATRate       string `json:"vat_rate,omitempty"`
	Currency      string `json:"currency,omitempty"`
	BillingPeriod string `json:"billing_period,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`

	LineItems []string `json:"line_items,omitempty"`

	ExtractionMethod constants.ExtractionMethod `json:"extraction_method"`
	TemplateUsed     string                     `json:"template_used,omitempty"`
	IdentifiedIssuer string                     `json:"identified_issuer,omitempty"`
	// AvailableTemplates lists the registry's issuer keys when nothing
	// matched, as a diagnostic aid.
	AvailableTemplates []string `json:"available_templates,omitempty"`

	Confidence float64 `json:"confidence"`
}
