package extractor

import (
	"bytes"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rwcarlsen/goexif/exif"

	"github.com/BerylCAtieno/file-renamer-api/internal/filename"
)

// DateCandidate derives a YYYY-MM-DD hint from embedded metadata, falling back to the
// client-reported modification time (Unix milliseconds). It returns "" when nothing is
// known. The value is only a hint for the model, never proof of a document date.
func DateCandidate(media Media, data []byte, lastModified *int64) string {
	var embedded string
	switch media.Category {
	case CategoryPDF:
		embedded = pdfCreationDate(data)
	case CategoryWord:
		if created, err := docxCreated(data); err == nil {
			embedded = filename.NormalizeDate(created)
		}
	case CategoryImage:
		embedded = exifDate(data)
	case CategoryText, CategoryAudio, CategoryOther:
	}
	if embedded != "" {
		return embedded
	}

	if lastModified != nil && *lastModified > 0 {
		return time.UnixMilli(*lastModified).UTC().Format("2006-01-02")
	}
	return ""
}

func pdfCreationDate(data []byte) (date string) {
	defer func() {
		if recover() != nil {
			date = ""
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return ""
	}
	if err := api.ValidateContext(ctx); err != nil {
		return ""
	}

	for _, raw := range []string{ctx.XRefTable.CreationDate, ctx.XRefTable.ModDate} {
		if d := parsePDFDate(raw); d != "" {
			return d
		}
	}
	return ""
}

// parsePDFDate reads the date part of a PDF date string such as D:20240301120000+01'00'.
func parsePDFDate(raw string) string {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "D:")
	if len(raw) < 8 {
		return ""
	}
	t, err := time.Parse("20060102", raw[:8])
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func exifDate(data []byte) (date string) {
	defer func() {
		if recover() != nil {
			date = ""
		}
	}()

	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	t, err := x.DateTime()
	if err != nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
