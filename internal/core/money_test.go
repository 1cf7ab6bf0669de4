package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12.34", 1234, true},
		{"-9.99", -999, true},
		{"1.3", 130, true},
		{"0", 0, true},
		{"10", 1000, true},
		{"-0.005", -1, true}, // half-up on the absolute value
		{"", 0, false},
		{"abc", 0, false},
		{"12,34", 0, false},
	}
	for i, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("case %d expected error", i)
			}
			continue
		}
		if got.Cents != tc.want {
			t.Fatalf("case %d expected %d cents, got %d", i, tc.want, got.Cents)
		}
	}
}

func TestMoneyString(t *testing.T) {
	if got := (Money{Cents: -999}).String(); got != "-9.99" {
		t.Fatalf("expected -9.99, got %q", got)
	}
	if got := (Money{Cents: 130}).String(); got != "1.30" {
		t.Fatalf("expected 1.30, got %q", got)
	}
}

func TestMoneyWithinTolerance(t *testing.T) {
	cases := []struct {
		a, b      int64
		tolerance float64
		want      bool
	}{
		{-999, -999, 0.5, true},
		{-999, -1400, 0.5, true},
		{-999, -1600, 0.5, false},
		{-999, 999, 0.5, false}, // sign flip is never consistent
		{0, 0, 0.5, true},
		{0, 100, 0.5, false},
	}
	for i, tc := range cases {
		got := (Money{Cents: tc.a}).WithinTolerance(Money{Cents: tc.b}, tc.tolerance)
		if got != tc.want {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, got)
		}
	}
}
