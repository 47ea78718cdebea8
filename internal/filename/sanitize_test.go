package filename

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "report", "report"},
		{"uppercase", "Quarterly Report", "quarterly-report"},
		{"surrounding space", "   padded name  ", "padded-name"},
		{"whitespace runs", "a \t\n b", "a-b"},
		{"unsafe chars", "Invoice #42 (final)!", "invoice-42-final"},
		{"dash runs", "a---b--c", "a-b-c"},
		{"leading trailing dashes", "--x--", "x"},
		{"keeps dots and underscores", "My_File.v2", "my_file.v2"},
		{"path separators", "../etc/passwd", "..-etc-passwd"},
		{"unicode", "Café Résumé", "caf-r-sum"},
		{"only unsafe", "@@@", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeTruncates(t *testing.T) {
	got := Sanitize(strings.Repeat("abc", 100))
	if len(got) != MaxLength {
		t.Fatalf("len = %d, want %d", len(got), MaxLength)
	}

	// A cut landing right after a dash must not leave it dangling.
	in := strings.Repeat("a", MaxLength-1) + " tail"
	got = Sanitize(in)
	if strings.HasSuffix(got, "-") {
		t.Errorf("truncated result ends with dash: %q", got)
	}
	if len(got) > MaxLength {
		t.Errorf("len = %d exceeds %d", len(got), MaxLength)
	}
}

func TestSanitizeProperties(t *testing.T) {
	inputs := []string{
		"",
		" ",
		"-",
		"Hello, World!",
		"2024-03-01 Board Meeting Notes.docx",
		"  ---weird___name...  ",
		"日本語のファイル名",
		"tab\tseparated\tvalues",
		strings.Repeat("x-", 200),
		strings.Repeat("Z ", 130),
		"emoji 🎉 party",
		"a/b\\c:d*e?f\"g<h>i|j",
	}

	for _, in := range inputs {
		out := Sanitize(in)

		if len(out) > MaxLength {
			t.Errorf("Sanitize(%q): len %d > %d", in, len(out), MaxLength)
		}
		for _, r := range out {
			if !isKept(r) && r != '-' {
				t.Errorf("Sanitize(%q) = %q contains %q", in, out, r)
			}
		}
		if strings.HasPrefix(out, "-") || strings.HasSuffix(out, "-") {
			t.Errorf("Sanitize(%q) = %q has edge dash", in, out)
		}
		if strings.Contains(out, "--") {
			t.Errorf("Sanitize(%q) = %q has dash run", in, out)
		}
		if again := Sanitize(out); again != out {
			t.Errorf("not idempotent: Sanitize(%q) = %q, then %q", in, out, again)
		}
	}
}
