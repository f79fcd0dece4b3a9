package template

import (
	"testing"

	"github.com/belegwerk/invoice-extractor/constants"
	"github.com/belegwerk/invoice-extractor/internal/numfmt"
)

func validTemplate() *Template {
	return &Template{
		Issuer:   "ACME GmbH",
		Keywords: []string{"acme", "rechnung"},
		Fields: map[string]string{
			constants.FieldInvoiceNumber: `Rechnungsnummer:\s*([A-Z0-9-]+)`,
			constants.FieldAmount:        `Gesamt:\s*([\d.,]+)`,
		},
	}
}

func TestTemplateValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Template)
		wantErr bool
	}{
		{"valid", func(*Template) {}, false},
		{"empty keywords allowed", func(tpl *Template) { tpl.Keywords = []string{} }, false},
		{"missing issuer", func(tpl *Template) { tpl.Issuer = "" }, true},
		{"missing keywords", func(tpl *Template) { tpl.Keywords = nil }, true},
		{"missing fields", func(tpl *Template) { tpl.Fields = nil }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := validTemplate()
			tt.mutate(tpl)
			err := tpl.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTemplateCompileRejectsBadPatterns(t *testing.T) {
	tpl := validTemplate()
	tpl.Fields[constants.FieldDate] = `Datum: ([0-9`
	if err := tpl.Compile(); err == nil {
		t.Fatal("expected error for unparsable pattern")
	}

	tpl = validTemplate()
	tpl.Fields[constants.FieldDate] = `Datum: \d+`
	if err := tpl.Compile(); err == nil {
		t.Fatal("expected error for pattern without capture group")
	}
}

func TestTemplateCompileFlags(t *testing.T) {
	tpl := validTemplate()
	tpl.Lines = []Line{{Description: `^(\d+ x .+?)\s+\d`}}
	if err := tpl.Compile(); err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	// Field patterns are case-insensitive and `.` spans newlines.
	re := tpl.FieldPattern(constants.FieldInvoiceNumber)
	if re == nil {
		t.Fatal("FieldPattern returned nil for declared field")
	}
	if m := re.FindStringSubmatch("RECHNUNGSNUMMER: AB-12"); m == nil || m[1] != "AB-12" {
		t.Fatalf("case-insensitive match failed, got %v", m)
	}
	if tpl.FieldPattern("no_such_field") != nil {
		t.Fatal("FieldPattern for undeclared field should be nil")
	}

	// Line patterns anchor per line.
	lines := tpl.LinePatterns()
	if len(lines) != 1 {
		t.Fatalf("LinePatterns() len = %d, want 1", len(lines))
	}
	if m := lines[0].FindStringSubmatch("header\n2 x Widget  19,99"); m == nil || m[1] != "2 x Widget" {
		t.Fatalf("multiline line match failed, got %v", m)
	}
}

func TestTemplateDefaults(t *testing.T) {
	tpl := validTemplate()
	if got := tpl.DateLayouts(); len(got) != len(DefaultDateLayouts) {
		t.Fatalf("DateLayouts() = %v, want defaults", got)
	}
	if tpl.DecimalSeparator() != numfmt.SeparatorDot {
		t.Fatalf("DecimalSeparator() = %q, want dot", tpl.DecimalSeparator())
	}

	tpl.Options = Options{DateFormats: []string{"02.01.2006"}, DecimalSeparator: ","}
	if got := tpl.DateLayouts(); len(got) != 1 || got[0] != "02.01.2006" {
		t.Fatalf("DateLayouts() = %v", got)
	}
	if tpl.DecimalSeparator() != numfmt.SeparatorComma {
		t.Fatalf("DecimalSeparator() = %q, want comma", tpl.DecimalSeparator())
	}
}
