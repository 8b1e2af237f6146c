package services

import (
	"errors"
	"testing"
)

func TestParseWeight(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"250", 250, false},
		{"40+60", 100, false},
		{" 40 + 60 + 5 ", 105, false},
		{"0", 0, false},
		{"", 0, true},
		{"  ", 0, true},
		{"40+", 0, true},
		{"+40", 0, true},
		{"-5", 0, true},
		{"40-5", 0, true},
		{"1.5", 0, true},
		{"abc", 0, true},
		{"99999999999999999999", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseWeight(tc.in)
		if tc.wantErr {
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("ParseWeight(%q): want ValidationError, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseWeight(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseWeight(%q): want=%d got=%d", tc.in, tc.want, got)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	if got := NormalizeName("  Куряче   Філе "); got != "куряче філе" {
		t.Fatalf("got %q", got)
	}
}
