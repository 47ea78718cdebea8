package analyzer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BerylCAtieno/file-renamer-api/internal/filename"
	"github.com/BerylCAtieno/file-renamer-api/internal/models"
)

var ErrNoJSONObject = errors.New("no JSON object in model output")

// ValidationError reports a proposal field that broke the output contract.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ParseProposal extracts the first JSON object from raw model output and checks it
// against the proposal contract. Loosely formatted dates are repaired; every other
// violation is an error.
func ParseProposal(raw string) (models.FilenameProposal, error) {
	var p models.FilenameProposal

	obj, err := extractJSONObject(raw)
	if err != nil {
		return p, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(obj), &fields); err != nil {
		return p, fmt.Errorf("failed to parse model output: %w", err)
	}

	if p.ProposedFilename, err = requiredString(fields, "proposed_filename"); err != nil {
		return p, err
	}
	p.ProposedFilename = strings.TrimSpace(p.ProposedFilename)
	if utf8.RuneCountInString(p.ProposedFilename) < models.MinProposedFilename {
		return p, &ValidationError{Field: "proposed_filename", Reason: fmt.Sprintf("shorter than %d characters", models.MinProposedFilename)}
	}

	if p.Confidence, err = requiredNumber(fields, "confidence"); err != nil {
		return p, err
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return p, &ValidationError{Field: "confidence", Reason: fmt.Sprintf("%v is outside [0, 1]", p.Confidence)}
	}

	doctype, err := requiredString(fields, "doctype")
	if err != nil {
		return p, err
	}
	p.DocType = models.DocType(strings.TrimSpace(doctype))
	if !p.DocType.Valid() {
		return p, &ValidationError{Field: "doctype", Reason: fmt.Sprintf("%q is not a known doctype", doctype)}
	}

	if p.Rationale, err = requiredString(fields, "rationale"); err != nil {
		return p, err
	}
	p.Rationale = strings.TrimSpace(p.Rationale)
	if utf8.RuneCountInString(p.Rationale) > models.MaxRationaleLength {
		return p, &ValidationError{Field: "rationale", Reason: fmt.Sprintf("longer than %d characters", models.MaxRationaleLength)}
	}

	for _, slot := range []struct {
		name string
		dst  **string
	}{
		{"date_iso", &p.DateISO},
		{"primary_entity", &p.PrimaryEntity},
		{"secondary_entity", &p.SecondaryEntity},
		{"topic", &p.Topic},
	} {
		if *slot.dst, err = nullableString(fields, slot.name); err != nil {
			return p, err
		}
	}
	p.DateISO = normalizeDateISO(p.DateISO)

	return p, nil
}

// extractJSONObject returns the first balanced top-level {...} in content. Braces
// inside JSON strings are ignored.
func extractJSONObject(content string) (string, error) {
	start, depth := -1, 0
	inString, escaped := false, false

	for i := 0; i < len(content); i++ {
		c := content[i]
		if start < 0 {
			if c == '{' {
				start, depth = i, 1
			}
			continue
		}
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[start : i+1], nil
			}
		}
	}
	return "", ErrNoJSONObject
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func requiredString(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := fields[name]
	if !ok {
		return "", &ValidationError{Field: name, Reason: "missing"}
	}
	if isNull(raw) {
		return "", &ValidationError{Field: name, Reason: "must not be null"}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &ValidationError{Field: name, Reason: "must be a string"}
	}
	return s, nil
}

func requiredNumber(fields map[string]json.RawMessage, name string) (float64, error) {
	raw, ok := fields[name]
	if !ok {
		return 0, &ValidationError{Field: name, Reason: "missing"}
	}
	if isNull(raw) {
		return 0, &ValidationError{Field: name, Reason: "must not be null"}
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, &ValidationError{Field: name, Reason: "must be a number"}
	}
	return f, nil
}

// nullableString requires the key and treats null and blank strings alike.
func nullableString(fields map[string]json.RawMessage, name string) (*string, error) {
	raw, ok := fields[name]
	if !ok {
		return nil, &ValidationError{Field: name, Reason: "missing"}
	}
	if isNull(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, &ValidationError{Field: name, Reason: "must be a string or null"}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	return &s, nil
}

func normalizeDateISO(date *string) *string {
	if date == nil {
		return nil
	}
	if _, err := time.Parse("2006-01-02", *date); err == nil {
		return date
	}
	if normalized := filename.NormalizeDate(*date); normalized != "" {
		return &normalized
	}
	return nil
}
