package extract

import (
	"strings"
	"testing"
)

type stubFinder struct{ org string }

func (s stubFinder) FindOrganization(string) string { return s.org }

func newIdentifier(finder OrganizationFinder, issuers ...string) *identifier {
	return &identifier{
		finder:       finder,
		headFraction: 0.2,
		issuers:      func() []string { return issuers },
	}
}

func TestIdentifyLegalEntityLine(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			"letterhead line",
			"ACME GmbH\nMusterstrasse 1\n12345 Berlin\n",
			"ACME GmbH",
		},
		{
			"decorated line",
			"*** Globex Corp ***\nInvoice\n",
			"Globex Corp",
		},
		{
			"marker past line 5 ignored",
			"a\nb\nc\nd\ne\nACME GmbH\n",
			"",
		},
		{
			"invoice-prefixed line rejected",
			"Invoice for ACME GmbH\n",
			"",
		},
		{
			"too short rejected",
			"X AG\n",
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := newIdentifier(nil)
			if got := id.fromLegalEntityLine(tt.text); got != tt.want {
				t.Errorf("fromLegalEntityLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIdentifySenderLabel(t *testing.T) {
	id := newIdentifier(nil)
	text := "Some header\nFrom: Initech Solutions\nTo: Someone Else\n"
	if got := id.fromSenderLabel(text); got != "Initech Solutions" {
		t.Fatalf("fromSenderLabel() = %q", got)
	}
	if got := id.fromSenderLabel("no labels here"); got != "" {
		t.Fatalf("fromSenderLabel() = %q, want absent", got)
	}
}

func TestIdentifyStrategyOrder(t *testing.T) {
	// Finder would answer, but the letterhead strategy runs first.
	id := newIdentifier(stubFinder{org: "Finder Org"})
	if got := id.identify("ACME GmbH\nbody\n"); got != "ACME GmbH" {
		t.Fatalf("identify() = %q, want letterhead to win", got)
	}

	// No earlier strategy fires, finder answers.
	if got := id.identify("plain lowercase text\nnothing else\n"); got != "Finder Org" {
		t.Fatalf("identify() = %q, want finder result", got)
	}
}

func TestIdentifyFromRegistry(t *testing.T) {
	id := newIdentifier(nil, "Initech Solutions")

	text := "invoice issued on behalf of initech solutions\n" + strings.Repeat("body\n", 20)
	if got := id.fromRegistry(text); got != "Initech Solutions" {
		t.Fatalf("fromRegistry() = %q", got)
	}

	// The same name inside a recipient block must not count.
	recipient := "Bill To: Initech Solutions\n" + strings.Repeat("body\n", 20)
	if got := id.fromRegistry(recipient); got != "" {
		t.Fatalf("fromRegistry() = %q, want absent for recipient context", got)
	}

	// Name outside the head must not count.
	tail := strings.Repeat(strings.Repeat("x", 60)+"\n", 50) + "initech solutions\n"
	if got := id.fromRegistry(tail); got != "" {
		t.Fatalf("fromRegistry() = %q, want absent past head", got)
	}
}

func TestIdentifyNothing(t *testing.T) {
	id := newIdentifier(nil)
	if got := id.identify("lowercase text with no markers at all"); got != "" {
		t.Fatalf("identify() = %q, want absent", got)
	}
}
