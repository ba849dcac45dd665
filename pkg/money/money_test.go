package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func TestCents(t *testing.T) {
	// Half away from zero on both signs
	cases := []struct{ in, out string }{
		{"2.344", "2.34"},
		{"2.345", "2.35"},
		{"2.355", "2.36"},
		{"-2.345", "-2.35"},
		{"42400", "42400.00"},
	}
	for _, c := range cases {
		got := Cents(mustDec(t, c.in)).StringFixed(2)
		if got != c.out {
			t.Fatalf("Cents(%s) got %s want %s", c.in, got, c.out)
		}
	}
}

func TestMinMaxClamp(t *testing.T) {
	a, b := FromInt(5), FromInt(9)
	if !Min(a, b).Equal(a) || !Max(a, b).Equal(b) {
		t.Fatalf("min/max mismatch")
	}

	floor, capRate := FromInt(0), FromInt(10)
	cases := []struct{ in, out string }{
		{"-3.5", "0"},
		{"6", "6"},
		{"12.25", "10"},
	}
	for _, c := range cases {
		got := Clamp(mustDec(t, c.in), floor, capRate)
		if !got.Equal(mustDec(t, c.out)) {
			t.Fatalf("Clamp(%s) got %s want %s", c.in, got, c.out)
		}
	}

	// inverted bounds resolve to the cap
	if got := Clamp(FromInt(5), FromInt(8), FromInt(3)); !got.Equal(FromInt(3)) {
		t.Fatalf("inverted clamp got %s", got)
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"12.5", "$12.50"},
		{"999.999", "$1,000.00"},
		{"42400", "$42,400.00"},
		{"1234567.891", "$1,234,567.89"},
		{"-2500.5", "-$2,500.50"},
		{"-0.001", "$0.00"},
	}
	for _, c := range cases {
		if got := Format(mustDec(t, c.in)); got != c.want {
			t.Fatalf("Format(%s) got %s want %s", c.in, got, c.want)
		}
	}

	if got := FormatWhole(FromInt(2000000)); got != "$2,000,000" {
		t.Fatalf("FormatWhole got %s", got)
	}
	if got := Percent(mustDec(t, "6")); got != "6.00%" {
		t.Fatalf("Percent got %s", got)
	}
}
