package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"0", 0, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{1, "0.01"},
		{15000, "150.00"},
		{-85000, "-850.00"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Fatalf("cents=%d expected %q, got %q", tc.cents, tc.want, got)
		}
	}
}

func TestPercent(t *testing.T) {
	cases := []struct {
		part, whole int64
		want        string
	}{
		{15000, 100000, "15"},
		{50000, 500000, "10"},
		{33333, 100000, "33.33"},
		{100, 30000, "0.33"},
		{0, 500000, "0"},
		{500, 0, "0"}, // zero denominator sentinel
	}
	for _, tc := range cases {
		got := Percent(Money{Cents: tc.part}, Money{Cents: tc.whole})
		if got.String() != tc.want {
			t.Fatalf("%d/%d expected %s, got %s", tc.part, tc.whole, tc.want, got)
		}
	}
}

func TestPercentFixedFormatting(t *testing.T) {
	got := Percent(Money{Cents: 15000}, Money{Cents: 100000}).StringFixed(2)
	if got != "15.00" {
		t.Fatalf("expected 15.00, got %s", got)
	}
}
