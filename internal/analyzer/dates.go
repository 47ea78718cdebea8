package analyzer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BerylCAtieno/file-renamer-api/internal/filename"
	"github.com/BerylCAtieno/file-renamer-api/internal/models"
)

const monthNames = `(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`

var (
	yearFirstDate = regexp.MustCompile(`(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})`)
	compactDate   = regexp.MustCompile(`(\d{4})(\d{2})(\d{2})`)
	yearLastDate  = regexp.MustCompile(`(\d{1,2})[-/.](\d{1,2})[-/.](\d{4})`)
	monthDayYear  = regexp.MustCompile(`(?i)\b` + monthNames + `\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
	dayMonthYear  = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+` + monthNames + `\.?,?\s+(\d{4})\b`)
)

// CorroborateDate nulls a date_iso that no date expression in evidence matches and
// removes it from proposed_filename. Metadata hints are not evidence.
func CorroborateDate(p models.FilenameProposal, evidence string) models.FilenameProposal {
	if p.DateISO == nil {
		return p
	}
	date := *p.DateISO
	if datesIn(evidence)[date] {
		return p
	}

	p.DateISO = nil
	name := p.ProposedFilename
	for _, form := range []string{date, strings.ReplaceAll(date, "-", "")} {
		name = strings.ReplaceAll(name, form, "")
	}
	if name != p.ProposedFilename {
		name = filename.Sanitize(name)
		if len(name) < models.MinProposedFilename {
			name = string(p.DocType)
		}
		p.ProposedFilename = name
	}
	return p
}

// datesIn collects every calendar date written in text, as YYYY-MM-DD. Ambiguous
// numeric dates such as 03/04/2024 contribute both readings.
func datesIn(text string) map[string]bool {
	found := make(map[string]bool)
	add := func(y, m, d string) {
		if iso, ok := isoDate(y, m, d); ok {
			found[iso] = true
		}
	}

	eachMatch(yearFirstDate, text, func(g []string) { add(g[1], g[2], g[3]) })
	eachMatch(compactDate, text, func(g []string) { add(g[1], g[2], g[3]) })
	eachMatch(yearLastDate, text, func(g []string) {
		add(g[3], g[1], g[2])
		add(g[3], g[2], g[1])
	})
	eachMatch(monthDayYear, text, func(g []string) { add(g[3], monthNumber(g[1]), g[2]) })
	eachMatch(dayMonthYear, text, func(g []string) { add(g[3], monthNumber(g[2]), g[1]) })
	return found
}

// eachMatch calls fn with the submatches of every match not embedded in a longer
// run of digits.
func eachMatch(re *regexp.Regexp, text string, fn func(groups []string)) {
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] > 0 && isDigit(text[loc[0]-1]) || loc[1] < len(text) && isDigit(text[loc[1]]) {
			continue
		}
		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = text[loc[2*i]:loc[2*i+1]]
			}
		}
		fn(groups)
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isoDate(year, month, day string) (string, bool) {
	y, err1 := strconv.Atoi(year)
	m, err2 := strconv.Atoi(month)
	d, err3 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || err3 != nil {
		return "", false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

var months = map[string]string{
	"jan": "1", "feb": "2", "mar": "3", "apr": "4", "may": "5", "jun": "6",
	"jul": "7", "aug": "8", "sep": "9", "oct": "10", "nov": "11", "dec": "12",
}

func monthNumber(name string) string {
	return months[strings.ToLower(name)[:3]]
}
