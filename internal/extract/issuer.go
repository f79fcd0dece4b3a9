package extract

import (
	"regexp"
	"strings"
)

// OrganizationFinder locates an organization name in free text, typically a
// named-entity recognizer. Implementations return "" when nothing is found.
type OrganizationFinder interface {
	FindOrganization(text string) string
}

// legal-entity markers that flag a company line in an invoice head.
var legalEntityRe = regexp.MustCompile(`(?i)\b(?:GmbH|mbH|AG|KG|OHG|GbR|UG|SE|e\.V\.|Ltd|Inc|LLC|LLP|Corp|PLC|S\.A\.|B\.V\.|Co\.)\b`)

// capitalized token run after a sender label, 3-50 characters per token. The
// label is case-insensitive but the name must be capitalized, so the flag is
// scoped to the label group only.
var senderNameRe = regexp.MustCompile(`(?i:\b(?:from|issuer|issued\s*by|sender|von|absender|aussteller|rechnungssteller))\s*:?[ \t]*([A-ZÄÖÜ][\w&.ÄÖÜäöüß-]{2,49}(?:[ \t]+[A-ZÄÖÜ&][\w&.ÄÖÜäöüß-]*)*)`)

var decorativeRe = regexp.MustCompile(`[|_*#=~<>]+`)
var whitespaceRe = regexp.MustCompile(`\s+`)

// identifier guesses the issuing organization from raw text, independent of
// any template. Its result is advisory: it prioritizes template selection but
// extraction proceeds without it.
type identifier struct {
	finder       OrganizationFinder
	headFraction float64
	issuers      func() []string // registered display names, sorted
}

func (id *identifier) identify(text string) string {
	strategies := []func(string) string{
		id.fromLegalEntityLine,
		id.fromSenderLabel,
		id.fromFinder,
		id.fromRegistry,
	}
	for _, strategy := range strategies {
		if name := strategy(text); name != "" {
			return name
		}
	}
	return ""
}

// fromLegalEntityLine scans the first 5 lines for a legal-entity marker.
// Invoice heads usually open with the issuer's letterhead line.
func (id *identifier) fromLegalEntityLine(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}
	for _, line := range lines {
		if !legalEntityRe.MatchString(line) {
			continue
		}
		name := cleanCompanyLine(line)
		if len(name) < 5 || len(name) > 100 {
			continue
		}
		lower := strings.ToLower(name)
		if strings.HasPrefix(lower, "invoice") || strings.HasPrefix(lower, "rechnung") {
			continue
		}
		return name
	}
	return ""
}

// fromSenderLabel looks for an explicit from/sender label anywhere in the
// text followed by a capitalized name run.
func (id *identifier) fromSenderLabel(text string) string {
	m := senderNameRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	name := strings.TrimSpace(m[1])
	if len(name) < 5 || len(name) > 100 {
		return ""
	}
	return name
}

// fromFinder delegates to the named-entity collaborator over the head.
func (id *identifier) fromFinder(text string) string {
	if id.finder == nil {
		return ""
	}
	return strings.TrimSpace(id.finder.FindOrganization(documentHead(text, id.headFraction)))
}

// fromRegistry checks each registered issuer name for a verbatim appearance
// in the head that is not part of a recipient block.
func (id *identifier) fromRegistry(text string) string {
	head := strings.ToLower(documentHead(text, id.headFraction))
	lowerText := strings.ToLower(text)
	for _, name := range id.issuers() {
		needle := strings.ToLower(name)
		if !strings.Contains(head, needle) {
			continue
		}
		if inRecipientContext(lowerText, needle) {
			continue
		}
		return name
	}
	return ""
}

func cleanCompanyLine(line string) string {
	s := decorativeRe.ReplaceAllString(line, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.Trim(strings.TrimSpace(s), ".,;:")
}
