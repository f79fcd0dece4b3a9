package extract

import (
	"log/slog"
	"strings"

	"github.com/belegwerk/invoice-extractor/internal/template"
)

// ScoringParams are the matcher's tuned weights. They are empirical, not
// derived, so they stay configurable rather than baked in as constants.
type ScoringParams struct {
	// BaseScore is granted per keyword found anywhere in the text.
	BaseScore float64
	// TopBonus is added when the keyword appears in the document head.
	TopBonus float64
	// LabelBonus is added when the keyword sits near a sender label or
	// immediately precedes an invoice/bill token.
	LabelBonus float64
	// RecipientPenalty is applied (and bonuses skipped) when the keyword
	// appears inside a recipient-labeled block.
	RecipientPenalty float64
	// AcceptThreshold is the minimum normalized score a template needs.
	AcceptThreshold float64
	// HeadFraction is the share of the document counted as its head.
	HeadFraction float64
}

// DefaultScoringParams returns the tuned weights.
func DefaultScoringParams() ScoringParams {
	return ScoringParams{
		BaseScore:        1,
		TopBonus:         3,
		LabelBonus:       4,
		RecipientPenalty: -5,
		AcceptThreshold:  2.0,
		HeadFraction:     0.2,
	}
}

// candidate tracks one template's accumulated evidence during a pass.
type candidate struct {
	tpl     *template.Template
	score   float64
	matched int
}

// matcher selects the single template governing a document, or none.
type matcher struct {
	registry *template.Registry
	params   ScoringParams
	logger   *slog.Logger
}

// match resolves text to a template. An identified issuer short-circuits
// scoring when it lines up with a registry key in either direction; otherwise
// every keyworded template is scored and the best one is accepted only above
// the threshold.
func (m *matcher) match(text, identifiedIssuer string) *template.Template {
	if identifiedIssuer != "" {
		needle := strings.ToLower(identifiedIssuer)
		for _, key := range m.registry.Issuers() {
			if strings.Contains(needle, key) || strings.Contains(key, needle) {
				tpl, _ := m.registry.Lookup(key)
				m.logger.Debug("match.direct_hit", "issuer", tpl.Issuer, "identified", identifiedIssuer)
				return tpl
			}
		}
	}

	lowerText := strings.ToLower(text)
	head := strings.ToLower(documentHead(text, m.params.HeadFraction))

	var best *candidate
	var bestScore float64
	for _, tpl := range m.registry.Templates() {
		if len(tpl.Keywords) == 0 {
			continue
		}
		c := m.score(lowerText, head, tpl)
		if c.matched == 0 {
			continue
		}
		normalized := c.score * float64(c.matched) / float64(len(tpl.Keywords))
		m.logger.Debug("match.scored",
			"issuer", tpl.Issuer,
			"matched", c.matched,
			"keywords", len(tpl.Keywords),
			"normalized", normalized)
		// Strict comparison pins the tie-break to issuer sort order.
		if best == nil || normalized > bestScore {
			best = c
			bestScore = normalized
		}
	}

	if best == nil || bestScore < m.params.AcceptThreshold {
		return nil
	}
	m.logger.Debug("match.accepted", "issuer", best.tpl.Issuer, "score", bestScore)
	return best.tpl
}

// score accumulates one template's keyword evidence. A keyword seen inside a
// recipient block is counterevidence: the issuer's own name does not appear
// under "Bill To" unless the document was sent *to* them.
func (m *matcher) score(lowerText, head string, tpl *template.Template) *candidate {
	c := &candidate{tpl: tpl}
	for _, kw := range tpl.Keywords {
		needle := strings.ToLower(kw)
		if needle == "" || !strings.Contains(lowerText, needle) {
			continue
		}
		c.matched++
		c.score += m.params.BaseScore
		if inRecipientContext(lowerText, needle) {
			c.score += m.params.RecipientPenalty
			continue
		}
		if strings.Contains(head, needle) {
			c.score += m.params.TopBonus
		} else if nearSenderLabel(lowerText, needle) || precedesInvoiceToken(lowerText, needle) {
			c.score += m.params.LabelBonus
		}
	}
	return c
}
