// Package template defines the per-issuer extraction template documents and
// the registry that loads them from disk.
package template

import (
	"fmt"
	"regexp"

	"github.com/belegwerk/invoice-extractor/internal/common"
	"github.com/belegwerk/invoice-extractor/internal/numfmt"
)

// DefaultDateLayouts are tried when a template declares no date_formats.
var DefaultDateLayouts = []string{"January 2, 2006", "2 January 2006", "02.01.2006"}

// Line declares one line-item pattern. The description pattern's first
// capture group (or, absent a group, the whole match) becomes the item text.
type Line struct {
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Options carries per-template parsing configuration.
type Options struct {
	// DateFormats are Go time layouts tried in order against captured dates.
	DateFormats []string `yaml:"date_formats,omitempty" json:"date_formats,omitempty"`
	// DecimalSeparator is "." (English grouping) or "," (German grouping).
	DecimalSeparator string `yaml:"decimal_separator,omitempty" json:"decimal_separator,omitempty"`
}

// Template declares how to recognize and extract one issuer's invoices.
// Fields maps logical field names (constants.Field*) to regular-expression
// pattern specifications; each pattern must carry at least one capture group.
type Template struct {
	Issuer   string            `yaml:"issuer" json:"issuer"`
	Keywords []string          `yaml:"keywords" json:"keywords"`
	Fields   map[string]string `yaml:"fields" json:"fields"`
	Lines    []Line            `yaml:"lines,omitempty" json:"lines,omitempty"`
	Options  Options           `yaml:"options,omitempty" json:"options,omitempty"`

	fieldRes map[string]*regexp.Regexp
	lineRes  []*regexp.Regexp
}

// Validate enforces the document invariant: issuer, keywords, and fields must
// all be present. An empty (but declared) keyword list is allowed; such a
// template is simply never selected by keyword scoring.
func (t *Template) Validate() error {
	if t.Issuer == "" {
		return common.NewAppError("TEMPLATE_INVALID", "missing issuer", common.ErrValidation)
	}
	if t.Keywords == nil {
		return common.NewAppError("TEMPLATE_INVALID", "missing keywords", common.ErrValidation)
	}
	if t.Fields == nil {
		return common.NewAppError("TEMPLATE_INVALID", "missing fields", common.ErrValidation)
	}
	return nil
}

// Compile builds the field and line matchers. Patterns run case-insensitively
// with `.` matching newlines, so a specification may span lines. Compiling at
// load time means malformed patterns reject the document up front instead of
// silently producing absent fields per call.
func (t *Template) Compile() error {
	t.fieldRes = make(map[string]*regexp.Regexp, len(t.Fields))
	for name, pattern := range t.Fields {
		re, err := regexp.Compile("(?is)" + pattern)
		if err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		if re.NumSubexp() < 1 {
			return fmt.Errorf("field %q: pattern has no capture group", name)
		}
		t.fieldRes[name] = re
	}
	t.lineRes = t.lineRes[:0]
	for i, line := range t.Lines {
		if line.Description == "" {
			continue
		}
		re, err := regexp.Compile("(?im)" + line.Description)
		if err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
		t.lineRes = append(t.lineRes, re)
	}
	return nil
}

// FieldPattern returns the compiled matcher for a logical field name, or nil
// when the template does not declare it.
func (t *Template) FieldPattern(name string) *regexp.Regexp {
	return t.fieldRes[name]
}

// LinePatterns returns the compiled line-item matchers in declaration order.
func (t *Template) LinePatterns() []*regexp.Regexp {
	return t.lineRes
}

// DateLayouts returns the declared date formats, or the defaults.
func (t *Template) DateLayouts() []string {
	if len(t.Options.DateFormats) > 0 {
		return t.Options.DateFormats
	}
	return DefaultDateLayouts
}

// DecimalSeparator returns the declared numeric locale, defaulting to dot.
func (t *Template) DecimalSeparator() numfmt.Separator {
	if t.Options.DecimalSeparator == string(numfmt.SeparatorComma) {
		return numfmt.SeparatorComma
	}
	return numfmt.SeparatorDot
}
