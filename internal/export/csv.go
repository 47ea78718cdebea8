// Package export renders a rename plan as a CSV map or a ZIP of renamed files.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/BerylCAtieno/file-renamer-api/internal/models"
)

var csvHeader = []string{"Original Name", "New Name", "Confidence", "Rationale"}

// WriteCSV writes the renaming map. Every cell is quoted, embedded quotes are doubled
// and rows are joined with "\n" without a trailing newline.
func WriteCSV(w io.Writer, items []models.ExportItem) error {
	rows := make([]string, 0, len(items)+1)
	rows = append(rows, csvRow(csvHeader))
	for _, item := range items {
		rows = append(rows, csvRow([]string{
			item.OriginalName,
			item.FinalName,
			fmt.Sprintf("%.2f", item.Confidence),
			item.Rationale,
		}))
	}

	_, err := io.WriteString(w, strings.Join(rows, "\n"))
	return err
}

func csvRow(cells []string) string {
	quoted := make([]string, len(cells))
	for i, c := range cells {
		quoted[i] = `"` + strings.ReplaceAll(c, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

// CSVFilename is the attachment name for a map generated at unix millisecond ms.
func CSVFilename(ms int64) string {
	return fmt.Sprintf("renaming-map-%d.csv", ms)
}
