package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// allowedTitleRune reports whether r may appear in a normalized title.
// The set intentionally includes the German umlauts and sharp s so family
// titles survive normalization unmangled.
func allowedTitleRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == ' ', r == '.', r == '-', r == '_', r == '(', r == ')':
		return true
	}
	switch r {
	case 'ä', 'ö', 'ü', 'Ä', 'Ö', 'Ü', 'ß':
		return true
	}
	return false
}

// NormalizeTitle produces the human-readable form of a mediaset title:
// Unicode NFC, disallowed runes dropped, runs of whitespace collapsed to a
// single space, trimmed.
func NormalizeTitle(value string) string {
	value = norm.NFC.String(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(value))
	lastSpace := false
	for _, r := range value {
		if unicode.IsSpace(r) {
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			lastSpace = true
			continue
		}
		if !allowedTitleRune(r) {
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return strings.TrimRight(b.String(), " ")
}

// SanitizeFileName converts a normalized title into its filesystem form:
// the same character set as NormalizeTitle, with whitespace runs collapsed
// to a single underscore.
func SanitizeFileName(value string) string {
	title := NormalizeTitle(value)
	if title == "" {
		return ""
	}
	return strings.ReplaceAll(title, " ", "_")
}

// HasDatePrefix reports whether value starts with a YYYY-MM-DD token
// followed by a space or underscore separator.
func HasDatePrefix(value string) bool {
	_, _, ok := SplitDatePrefix(value)
	return ok
}

// SplitDatePrefix splits a leading "YYYY-MM-DD " or "YYYY-MM-DD_" token off
// value. It returns the date token, the remainder, and whether a prefix was
// present. The date separators inside the token may be '-' or '_'.
func SplitDatePrefix(value string) (date string, rest string, ok bool) {
	value = strings.TrimSpace(value)
	if len(value) < 11 {
		return "", value, false
	}
	token := value[:10]
	sep := value[10]
	if sep != ' ' && sep != '_' {
		return "", value, false
	}
	if !isDateToken(token) {
		return "", value, false
	}
	// Canonicalize underscore-separated dates to ISO form.
	date = strings.ReplaceAll(token, "_", "-")
	rest = strings.TrimLeft(value[11:], " _")
	return date, rest, true
}

func isDateToken(token string) bool {
	if len(token) != 10 {
		return false
	}
	for i, r := range token {
		switch i {
		case 4, 7:
			if r != '-' && r != '_' {
				return false
			}
		default:
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
