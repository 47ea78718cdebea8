// Package extractor turns raw file bytes into a bounded text snippet for the naming
// model. Failures never escape: they degrade to an empty string or a placeholder.
package extractor

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/BerylCAtieno/file-renamer-api/internal/utils"
)

const (
	// MaxSnippetChars is the hard cap on snippet length, in characters.
	MaxSnippetChars = 3000
	// MaxSnippetBytes stops strategies early once far more than the cap was read.
	MaxSnippetBytes  = 4 * MaxSnippetChars
	TruncationMarker = "..."
)

var extractionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fr_extractions_total",
		Help: "Content extractions by media category and outcome.",
	},
	[]string{"category", "outcome"},
)

type strategy func(data []byte) (string, error)

type Extractor struct {
	logger *utils.Logger
}

func New(logger *utils.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract returns the capped snippet for one file.
func (e *Extractor) Extract(ctx context.Context, data []byte, mimeType, fileName string) string {
	media := Detect(mimeType, fileName, head(data))
	return Cap(e.extract(ctx, media, data, fileName))
}

func (e *Extractor) extract(ctx context.Context, media Media, data []byte, fileName string) string {
	switch media.Category {
	case CategoryPDF:
		return e.run(ctx, media, extractPDF, data, fileName)
	case CategoryWord:
		return e.run(ctx, media, extractDOCX, data, fileName)
	case CategoryText:
		return e.run(ctx, media, extractText, data, fileName)
	case CategoryImage:
		extractionsTotal.WithLabelValues(media.Category.String(), "placeholder").Inc()
		return fmt.Sprintf("[Image file: %s, type: %s]", fileName, media.MimeType)
	case CategoryAudio:
		extractionsTotal.WithLabelValues(media.Category.String(), "placeholder").Inc()
		return fmt.Sprintf("[Audio file: %s, type: %s]", fileName, media.MimeType)
	case CategoryOther:
		extractionsTotal.WithLabelValues(media.Category.String(), "placeholder").Inc()
		return fmt.Sprintf("[File: %s, type: %s, size: %d bytes]", fileName, media.MimeType, len(data))
	}
	return ""
}

type strategyResult struct {
	text string
	err  error
}

// run executes a parsing strategy, bounded by ctx. Parser panics on malformed input
// are converted to errors.
func (e *Extractor) run(ctx context.Context, media Media, fn strategy, data []byte, fileName string) string {
	start := time.Now()
	done := make(chan strategyResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- strategyResult{err: fmt.Errorf("parser panic: %v", r)}
			}
		}()
		text, err := fn(data)
		done <- strategyResult{text: text, err: err}
	}()

	var res strategyResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res = strategyResult{err: ctx.Err()}
	}

	if res.err != nil {
		extractionsTotal.WithLabelValues(media.Category.String(), "failed").Inc()
		e.logger.Warn("Text extraction failed",
			"filename", fileName,
			"content_type", media.MimeType,
			"error", res.err)
		return ""
	}

	extractionsTotal.WithLabelValues(media.Category.String(), "ok").Inc()
	e.logger.Debug("Text extracted",
		"filename", fileName,
		"content_type", media.MimeType,
		"text_length", len(res.text),
		"duration_ms", time.Since(start).Milliseconds())
	return res.text
}

// Cap enforces MaxSnippetChars, appending TruncationMarker when text was cut.
func Cap(text string) string {
	if utf8.RuneCountInString(text) <= MaxSnippetChars {
		return text
	}
	runes := []rune(text)
	return string(runes[:MaxSnippetChars]) + TruncationMarker
}

// ErrorPlaceholder is emitted when a file could not be processed at all.
func ErrorPlaceholder(fileName string) string {
	return fmt.Sprintf("[Error processing file: %s]", fileName)
}

func head(data []byte) []byte {
	if len(data) > 512 {
		return data[:512]
	}
	return data
}
