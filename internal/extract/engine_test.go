package extract

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/belegwerk/invoice-extractor/constants"
	"github.com/belegwerk/invoice-extractor/internal/llm"
	"github.com/belegwerk/invoice-extractor/internal/template"
)

func TestEngine(t *testing.T) {
	// Disable logging during tests
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	RegisterFailHandler(Fail)
	RunSpecs(t, "Engine Suite")
}

// mockGenerator is a mock implementation of llm.TemplateGenerator
type mockGenerator struct {
	tpl   *template.Template
	err   error
	calls int
}

func (m *mockGenerator) Generate(_ context.Context, _ llm.GenerateRequest) (*template.Template, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.tpl, nil
}

const germanInvoice = `ACME GmbH
Musterstrasse 1, 12345 Berlin

Rechnungsnummer: AB-1234
Datum: 05.03.2024

Gesamt: 1.234,56 €
`

var _ = Describe("Engine", func() {
	var (
		dir    string
		engine *Engine
		gen    *mockGenerator
	)

	writeTemplate := func(name, content string) {
		Expect(os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)).To(Succeed())
	}

	newEngine := func(opts ...Option) *Engine {
		registry := template.NewRegistry(dir, slog.Default())
		return NewEngine(registry, opts...)
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		gen = &mockGenerator{}
	})

	Describe("Extract with a registered template", func() {
		BeforeEach(func() {
			writeTemplate("acme.yaml", `issuer: ACME GmbH
keywords: [ACME]
fields:
  invoice_number: 'Rechnungsnummer:\s*([A-Z0-9-]+)'
  date: 'Datum:\s*([\d.]+)'
  amount: 'Gesamt:\s*([\d.,]+)'
options:
  decimal_separator: ','
`)
			engine = newEngine()
		})

		It("extracts all declared fields", func() {
			result := engine.Extract(context.Background(), germanInvoice, false)

			Expect(result.ExtractionMethod).To(Equal(constants.MethodTemplate))
			Expect(result.TemplateUsed).To(Equal("ACME GmbH"))
			Expect(result.Issuer).To(Equal("ACME GmbH"))
			Expect(result.InvoiceNumber).To(Equal("AB-1234"))
			Expect(result.InvoiceDate).To(Equal("05.03.2024"))
			Expect(result.Amount).NotTo(BeNil())
			Expect(result.Amount.Equal(decimal.RequireFromString("1234.56"))).To(BeTrue())
			Expect(result.Confidence).To(BeNumerically(">=", 0.7))
		})

		It("reports the identified issuer", func() {
			result := engine.Extract(context.Background(), germanInvoice, false)
			Expect(result.IdentifiedIssuer).To(Equal("ACME GmbH"))
		})

		It("drops a non-positive main amount", func() {
			text := "ACME GmbH\nRechnungsnummer: AB-9\nGesamt: 0,00\n"
			result := engine.Extract(context.Background(), text, false)
			Expect(result.Amount).To(BeNil())
			Expect(result.Confidence).To(BeNumerically("<", 0.7))
		})
	})

	Describe("Extract with no matching template", func() {
		BeforeEach(func() {
			writeTemplate("acme.yaml", `issuer: ACME GmbH
keywords: [ACME]
fields:
  amount: 'Gesamt:\s*([\d.,]+)'
`)
			engine = newEngine()
		})

		It("returns a zero-confidence result listing known issuers", func() {
			result := engine.Extract(context.Background(), "unrelated text entirely", false)

			Expect(result.ExtractionMethod).To(Equal(constants.MethodNone))
			Expect(result.Confidence).To(Equal(0.0))
			Expect(result.TemplateUsed).To(BeEmpty())
			Expect(result.AvailableTemplates).To(Equal([]string{"acme gmbh"}))
		})
	})

	Describe("Extract with auto-generation", func() {
		BeforeEach(func() {
			gen.tpl = &template.Template{
				Issuer:   "Globex Corp",
				Keywords: []string{"globex"},
				Fields: map[string]string{
					constants.FieldInvoiceNumber: `Invoice No\.\s*(\S+)`,
					constants.FieldAmount:        `Total:\s*([\d.,]+)`,
				},
			}
			engine = newEngine(WithGenerator(gen))
		})

		It("generates a template, reloads, and retries the match once", func() {
			text := "Globex Corp\nInvoice No. GX-77\nTotal: 250.00\n"
			result := engine.Extract(context.Background(), text, true)

			Expect(gen.calls).To(Equal(1))
			Expect(result.ExtractionMethod).To(Equal(constants.MethodTemplate))
			Expect(result.TemplateUsed).To(Equal("Globex Corp"))
			Expect(result.InvoiceNumber).To(Equal("GX-77"))
			Expect(engine.registry.Len()).To(Equal(1))
		})

		It("does not call the generator when autoGenerate is off", func() {
			result := engine.Extract(context.Background(), "Globex Corp\nTotal: 1.00\n", false)
			Expect(gen.calls).To(Equal(0))
			Expect(result.ExtractionMethod).To(Equal(constants.MethodNone))
		})

		It("degrades to a no-match result when generation fails", func() {
			gen.err = errors.New("model unavailable")
			result := engine.Extract(context.Background(), "Globex Corp\nTotal: 1.00\n", true)

			Expect(gen.calls).To(Equal(1))
			Expect(result.ExtractionMethod).To(Equal(constants.MethodNone))
			Expect(result.Confidence).To(Equal(0.0))
		})
	})
})
