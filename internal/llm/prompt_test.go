package llm

import (
	"strings"
	"testing"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"issuer":"A"}`, `{"issuer":"A"}`},
		{"json fence", "```json\n{\"issuer\":\"A\"}\n```", `{"issuer":"A"}`},
		{"yaml fence", "```yaml\nissuer: A\n```", "issuer: A"},
		{"unlabeled fence", "```\n{\"issuer\":\"A\"}\n```", `{"issuer":"A"}`},
		{"surrounding whitespace", "  \n```json\n{}\n```\n ", "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFences(tt.in); got != tt.want {
				t.Errorf("StripCodeFences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildUserPrompt(t *testing.T) {
	p := BuildUserPrompt(GenerateRequest{InvoiceText: "Rechnung 1", IssuerHint: "ACME GmbH"})
	if !strings.Contains(p, "ACME GmbH") || !strings.Contains(p, "Rechnung 1") {
		t.Fatalf("prompt missing hint or text: %q", p)
	}

	long := strings.Repeat("x", maxPromptText+100)
	p = BuildUserPrompt(GenerateRequest{InvoiceText: long})
	if !strings.Contains(p, "truncated") {
		t.Fatal("long invoice text should be truncated")
	}
}
