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
		{"50.00", 5000, true},
		{"75.50", 7550, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
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

func TestCentsFromMajor(t *testing.T) {
	cases := []struct {
		in  float64
		out int64
		ok  bool
	}{
		{50.00, 5000, true},
		{75.50, 7550, true},
		{10.10, 1010, true},
		{0.005, 1, true},
		{0, 0, false},
		{-3.5, 0, false},
	}
	for _, tc := range cases {
		got, err := CentsFromMajor(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%v expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%v expected error", tc.in)
		}
	}
}

func TestMajorFromCents(t *testing.T) {
	if got := MajorFromCents(7550); got != 75.50 {
		t.Fatalf("expected 75.50, got %v", got)
	}
	if got := MajorFromCents(0); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}
