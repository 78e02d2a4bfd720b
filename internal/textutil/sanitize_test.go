package textutil_test

import (
	"testing"

	"mediathek/internal/textutil"
)

func TestNormalizeTitle(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Wanderung", "Wanderung"},
		{"umlauts kept", "Geburtstag Müller", "Geburtstag Müller"},
		{"sharp s kept", "Straßenfest", "Straßenfest"},
		{"whitespace collapsed", "Ausflug   an den  See", "Ausflug an den See"},
		{"disallowed dropped", "Sommer/2024: Ferien!", "Sommer2024 Ferien"},
		{"parens kept", "Zermatt (Sommer)", "Zermatt (Sommer)"},
		{"trimmed", "  Herbst  ", "Herbst"},
		{"empty", "   ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := textutil.NormalizeTitle(tc.input); got != tc.want {
				t.Fatalf("NormalizeTitle(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := textutil.SanitizeFileName("Ausflug an den See"); got != "Ausflug_an_den_See" {
		t.Fatalf("SanitizeFileName = %q", got)
	}
	if got := textutil.SanitizeFileName("Geburtstag  Müller "); got != "Geburtstag_Müller" {
		t.Fatalf("SanitizeFileName umlaut = %q", got)
	}
}

func TestSplitDatePrefix(t *testing.T) {
	cases := []struct {
		input    string
		date     string
		rest     string
		expectOK bool
	}{
		{"2024-05-03 Birthday", "2024-05-03", "Birthday", true},
		{"2024-05-03_Birthday", "2024-05-03", "Birthday", true},
		{"2024_05_03 Geburtstag", "2024-05-03", "Geburtstag", true},
		{"Birthday 2024", "", "Birthday 2024", false},
		{"2024-05-03Birthday", "", "2024-05-03Birthday", false},
		{"20XX-05-03 Fest", "", "20XX-05-03 Fest", false},
		{"", "", "", false},
	}
	for _, tc := range cases {
		date, rest, ok := textutil.SplitDatePrefix(tc.input)
		if ok != tc.expectOK || date != tc.date || rest != tc.rest {
			t.Fatalf("SplitDatePrefix(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tc.input, date, rest, ok, tc.date, tc.rest, tc.expectOK)
		}
	}
}
