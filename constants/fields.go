package constants

// ExtractionMethod records how a result was produced.
type ExtractionMethod string

// Stable values (serialized into results, keep these exact strings).
const (
	MethodTemplate ExtractionMethod = "template" // a registry template governed the extraction
	MethodNone     ExtractionMethod = "none"     // no template matched; empty result
)

// Logical field names a template may declare under `fields`.
const (
	FieldInvoiceNumber  = "invoice_number"
	FieldDate           = "date"
	FieldDateAlt        = "date_alt"
	FieldDueDate        = "due_date"
	FieldAmount         = "amount"
	FieldVAT            = "vat"
	FieldVATRate        = "vat_rate"
	FieldCurrency       = "currency"
	FieldBillingPeriod  = "billing_period"
	FieldAccountNumber  = "account_number"
	FieldServiceCharges = "service_charges"
	FieldAmountNoVAT    = "amount_no_vat"
)

// MaxLineItems caps the line_items sequence in a result.
const MaxLineItems = 50
