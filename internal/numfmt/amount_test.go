package numfmt

import "testing"

func TestParseAmountExplicitSeparator(t *testing.T) {
	cases := []struct {
		raw  string
		sep  Separator
		want string
	}{
		{"1,234.56", SeparatorDot, "1234.56"},
		{"1.234,56", SeparatorComma, "1234.56"},
		{"10.000,00", SeparatorComma, "10000"},
		{"36.21", SeparatorDot, "36.21"},
		{"36,21", SeparatorComma, "36.21"},
		{"1 234,56", SeparatorComma, "1234.56"},
		{"1 234.56", SeparatorDot, "1234.56"},
		{"0,00", SeparatorComma, "0"},
	}
	for _, c := range cases {
		got, err := ParseAmount(c.raw, c.sep)
		if err != nil {
			t.Fatalf("ParseAmount(%q, %q): %v", c.raw, c.sep, err)
		}
		if got.String() != c.want {
			t.Fatalf("ParseAmount(%q, %q) = %s, want %s", c.raw, c.sep, got, c.want)
		}
	}
}

func TestParseAmountInvalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "abc", "12..34,,"} {
		if _, err := ParseAmount(raw, SeparatorComma); err == nil {
			t.Fatalf("ParseAmount(%q) expected error", raw)
		}
	}
}

func TestDetectAmount(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"1234", "1234"},
		{"1234.56", "1234.56"},
		{"1234,56", "1234.56"},
		{"1.234,56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"10.000.000", "10000000"},
		{"1,234,567", "1234567"},
		{"12.345.678,90", "12345678.9"},
	}
	for _, c := range cases {
		got, err := DetectAmount(c.raw)
		if err != nil {
			t.Fatalf("DetectAmount(%q): %v", c.raw, err)
		}
		if got.String() != c.want {
			t.Fatalf("DetectAmount(%q) = %s, want %s", c.raw, got, c.want)
		}
	}
}
