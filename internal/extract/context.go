package extract

import (
	"regexp"
	"strings"
)

// Label matchers shared by the issuer identifier and the keyword scorer.
// German and English invoices are in scope, so both vocabularies appear.
var (
	recipientLabelRe = regexp.MustCompile(`(?i)\b(?:bill(?:ed)?\s*to|invoice\s*to|ship\s*to|deliver\s*to|recipient|customer|kunde|rechnungsempf(?:ä|a)nger|empf(?:ä|a)nger|an:)`)
	senderLabelRe    = regexp.MustCompile(`(?i)\b(?:from|issuer|issued\s*by|sender|von|absender|aussteller|rechnungssteller)\s*:?`)
	invoiceTokenRe   = regexp.MustCompile(`(?i)(?:invoice|bill|rechnung)`)
)

// recipientWindow is how far after a recipient label an occurrence still
// counts as part of that label's block.
const recipientWindow = 120

// headFloor keeps the document head usable for very short texts.
const headFloor = 512

// documentHead returns the leading fraction of text, never less than
// headFloor characters (or the whole text when shorter).
func documentHead(text string, fraction float64) string {
	n := int(float64(len(text)) * fraction)
	if n < headFloor {
		n = headFloor
	}
	if n > len(text) {
		n = len(text)
	}
	return text[:n]
}

// inRecipientContext reports whether any occurrence of needle sits inside a
// recipient-labeled block: within recipientWindow characters after a
// "bill to"-style label. Both arguments are expected lowercased.
func inRecipientContext(lowerText, needle string) bool {
	labels := recipientLabelRe.FindAllStringIndex(lowerText, -1)
	if len(labels) == 0 {
		return false
	}
	from := 0
	for {
		i := strings.Index(lowerText[from:], needle)
		if i < 0 {
			return false
		}
		pos := from + i
		for _, lbl := range labels {
			if lbl[1] <= pos && pos-lbl[1] <= recipientWindow {
				return true
			}
		}
		from = pos + 1
	}
}

// nearSenderLabel reports whether some occurrence of needle follows closely
// after a "from"-style label.
func nearSenderLabel(lowerText, needle string) bool {
	labels := senderLabelRe.FindAllStringIndex(lowerText, -1)
	if len(labels) == 0 {
		return false
	}
	from := 0
	for {
		i := strings.Index(lowerText[from:], needle)
		if i < 0 {
			return false
		}
		pos := from + i
		for _, lbl := range labels {
			if lbl[1] <= pos && pos-lbl[1] <= recipientWindow {
				return true
			}
		}
		from = pos + 1
	}
}

// precedesInvoiceToken reports whether some occurrence of needle is followed,
// within a few characters, by an "invoice"/"bill" token.
func precedesInvoiceToken(lowerText, needle string) bool {
	from := 0
	for {
		i := strings.Index(lowerText[from:], needle)
		if i < 0 {
			return false
		}
		end := from + i + len(needle)
		stop := end + 24
		if stop > len(lowerText) {
			stop = len(lowerText)
		}
		if loc := invoiceTokenRe.FindStringIndex(lowerText[end:stop]); loc != nil && loc[0] <= 8 {
			return true
		}
		from = from + i + 1
	}
}
