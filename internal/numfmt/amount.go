// Package numfmt normalizes the numeric and date strings found in OCR'd
// invoice text. Invoices in the wild mix German grouping (1.234,56) and
// English grouping (1,234.56); callers either know the locale from a template
// option or let DetectAmount guess it from separator positions.
package numfmt

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Separator selects the numeric locale of an amount string.
type Separator string

const (
	// SeparatorDot is English style: `,` groups thousands, `.` is decimal.
	SeparatorDot Separator = "."
	// SeparatorComma is German style: `.` groups thousands, `,` is decimal.
	SeparatorComma Separator = ","
)

var spaceStripper = strings.NewReplacer(" ", "", " ", "")

// ParseAmount parses raw with an explicit decimal separator.
// Whitespace and non-breaking spaces are stripped first. Callers treating the
// result as a monetary amount must additionally require it to be positive;
// zero and negative values are extraction failures, not amounts.
func ParseAmount(raw string, sep Separator) (decimal.Decimal, error) {
	s := spaceStripper.Replace(strings.TrimSpace(raw))
	if s == "" {
		return decimal.Zero, fmt.Errorf("parse amount: empty input")
	}
	switch sep {
	case SeparatorComma:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	default:
		s = strings.ReplaceAll(s, ",", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	return d, nil
}

// DetectAmount parses raw without knowing the locale, deciding from the
// separators present. Mixed separators are resolved by position: comma after
// the last dot means German grouping, dot after the last comma means English.
// Inputs that fit neither shape fall back to comma→dot substitution over the
// digits that remain after stripping noise.
func DetectAmount(raw string) (decimal.Decimal, error) {
	s := spaceStripper.Replace(strings.TrimSpace(raw))
	if s == "" {
		return decimal.Zero, fmt.Errorf("parse amount: empty input")
	}

	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")

	switch {
	case dots == 0 && commas == 0:
		// plain integer
	case commas == 0:
		// dots only: a single dot is a decimal point, several are grouping
		if dots > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	case dots == 0:
		// commas only: a single comma is a German decimal, several are grouping
		if commas == 1 {
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.LastIndex(s, ",") > strings.LastIndex(s, "."):
		// 1.234,56
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case dots == 1:
		// 1,234.56
		s = strings.ReplaceAll(s, ",", "")
	default:
		s = stripToNumber(strings.ReplaceAll(s, ",", "."))
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	return d, nil
}

// stripToNumber drops everything except digits and the last dot.
func stripToNumber(s string) string {
	lastDot := strings.LastIndex(s, ".")
	var b strings.Builder
	for i, r := range s {
		if r >= '0' && r <= '9' || (r == '.' && i == lastDot) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
