package lang

import (
	"sort"
	"testing"
)

func TestIsValid(t *testing.T) {
	cases := []struct {
		code string
		want bool
	}{
		{"eng_Latn", true},
		{"sna_Latn", true},
		{"zho_Hans", true},
		{"", false},
		{"english", false},
		{"eng", false},
		{"xxx_Xxxx", false},
	}

	for _, tc := range cases {
		if got := IsValid(tc.code); got != tc.want {
			t.Errorf("IsValid(%q) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestFallbackIsSupported(t *testing.T) {
	if !IsValid(Fallback) {
		t.Errorf("fallback code %q must be in the supported table", Fallback)
	}
}

func TestName(t *testing.T) {
	if got := Name("eng_Latn"); got != "English" {
		t.Errorf("Name(eng_Latn) = %q, want English", got)
	}
	if got := Name("nope"); got != "" {
		t.Errorf("Name(nope) = %q, want empty", got)
	}
}

func TestCodesCoversTable(t *testing.T) {
	codes := Codes()
	if len(codes) == 0 {
		t.Fatal("Codes returned empty slice")
	}
	for _, code := range codes {
		if !IsValid(code) {
			t.Errorf("Codes returned unsupported code %q", code)
		}
	}
	if !sort.StringsAreSorted(codes) {
		t.Error("Codes must be sorted")
	}
}
