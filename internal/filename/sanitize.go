// Package filename turns naming proposals into safe, unique filenames.
package filename

import "strings"

// MaxLength bounds every sanitized fragment.
const MaxLength = 120

// Sanitize lowercases candidate and reduces it to [a-z0-9-_.], with single dashes
// standing in for everything else. The result may be empty.
func Sanitize(candidate string) string {
	s := strings.TrimSpace(strings.ToLower(candidate))

	var b strings.Builder
	b.Grow(len(s))
	lastDash := false
	for _, r := range s {
		if isKept(r) {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}

	out := strings.Trim(b.String(), "-")
	if len(out) > MaxLength {
		out = strings.TrimRight(out[:MaxLength], "-")
	}
	return out
}

// isKept reports whether r survives sanitizing verbatim. Dashes are re-emitted by the
// collapsing logic instead.
func isKept(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '.'
}
