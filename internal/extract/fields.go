package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/belegwerk/invoice-extractor/constants"
	"github.com/belegwerk/invoice-extractor/internal/numfmt"
)

// extractField applies one compiled field pattern and returns the first
// match's first capture group, trimmed. A nil pattern or an empty capture is
// absence, reported as "".
func extractField(text string, re *regexp.Regexp) string {
	if re == nil {
		return ""
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// extractDateField tries each pattern in order; the first capture is parsed
// against each declared layout in order and re-rendered canonically. When no
// layout fits, the capture falls through the generic normalizer, which keeps
// already-numeric dates usable.
func extractDateField(text string, res []*regexp.Regexp, layouts []string) string {
	for _, re := range res {
		raw := extractField(text, re)
		if raw == "" {
			continue
		}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.Format(numfmt.CanonicalDateLayout)
			}
		}
		return numfmt.NormalizeDate(raw)
	}
	return ""
}

// extractAmountField parses the captured string with the template's numeric
// locale. Parse failure is absence, never an error.
func extractAmountField(text string, re *regexp.Regexp, sep numfmt.Separator) *decimal.Decimal {
	raw := extractField(text, re)
	if raw == "" {
		return nil
	}
	d, err := numfmt.ParseAmount(raw, sep)
	if err != nil {
		return nil
	}
	return &d
}

// extractLineItems collects line-item descriptions across all line patterns,
// preferring the first capture group and falling back to the full match.
// Duplicates are dropped, order of first appearance is kept, and the list is
// capped at MaxLineItems.
func extractLineItems(text string, res []*regexp.Regexp) []string {
	var items []string
	seen := make(map[string]struct{})
	for _, re := range res {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			item := m[0]
			if len(m) > 1 && m[1] != "" {
				item = m[1]
			}
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			if _, dup := seen[item]; dup {
				continue
			}
			seen[item] = struct{}{}
			items = append(items, item)
			if len(items) == constants.MaxLineItems {
				return items
			}
		}
	}
	return items
}
