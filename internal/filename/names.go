package filename

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Extension returns the extension of name including the dot, or "" for names without
// one (dotfiles included).
func Extension(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[i:]
	}
	return ""
}

// StripExtension removes the extension reported by Extension.
func StripExtension(name string) string {
	return strings.TrimSuffix(name, Extension(name))
}

// WithExtension sanitizes a user-edited name while keeping the original extension.
func WithExtension(edited, originalName string) string {
	ext := Extension(originalName)
	if ext != "" && strings.HasSuffix(strings.ToLower(edited), strings.ToLower(ext)) {
		edited = edited[:len(edited)-len(ext)]
	}
	base := Sanitize(edited)
	if base == "" {
		base = Sanitize(StripExtension(originalName))
	}
	return base + ext
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"2006.01.02",
	"20060102",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// NormalizeDate parses a handful of common layouts and returns YYYY-MM-DD, or "" when
// the value is not a recognizable date.
func NormalizeDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// EstimateTokens approximates token usage at four characters per token.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}

// TruncateToTokens cuts text to roughly maxTokens tokens, marking the cut with "...".
func TruncateToTokens(text string, maxTokens int) string {
	return TruncateRunes(text, maxTokens*4)
}

// TruncateRunes keeps the first max runes of text and appends "..." if anything was cut.
func TruncateRunes(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max]) + "..."
}
