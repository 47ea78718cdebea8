package extractor

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// Category is the closed set of extraction routes. Every switch over it lists all
// values; adding one means visiting each.
type Category int

const (
	CategoryOther Category = iota
	CategoryPDF
	CategoryWord
	CategoryText
	CategoryImage
	CategoryAudio
)

func (c Category) String() string {
	switch c {
	case CategoryPDF:
		return "pdf"
	case CategoryWord:
		return "word"
	case CategoryText:
		return "text"
	case CategoryImage:
		return "image"
	case CategoryAudio:
		return "audio"
	case CategoryOther:
		return "other"
	}
	return "unknown"
}

// Media is the resolved type of a file.
type Media struct {
	Category Category
	MimeType string
}

var wordTypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml":          true,
	"application/docx":   true,
	"application/x-docx": true,
	"application/msword": true,
}

var extensionTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".doc":  "application/msword",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".gif":  "image/gif",
	".heic": "image/heic",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".zip":  "application/zip",
}

// Detect resolves the media type of a file. The declared type wins when it is
// meaningful; otherwise the extension and then the leading bytes decide.
func Detect(declared, fileName string, head []byte) Media {
	mt := normalizeMimeType(declared)
	if mt == "" || mt == "application/octet-stream" {
		if byExt := TypeByExtension(fileName); byExt != "" {
			mt = byExt
		} else if len(head) > 0 {
			mt = normalizeMimeType(http.DetectContentType(head))
		}
	}
	if mt == "" {
		mt = "application/octet-stream"
	}
	return Media{Category: categorize(mt), MimeType: mt}
}

// TypeByExtension maps well-known extensions to MIME types.
func TypeByExtension(fileName string) string {
	return extensionTypes[strings.ToLower(filepath.Ext(fileName))]
}

// IsWordType reports whether contentType is a word-processing format.
func IsWordType(contentType string) bool {
	return wordTypes[normalizeMimeType(contentType)]
}

func categorize(mt string) Category {
	switch {
	case mt == "application/pdf":
		return CategoryPDF
	case wordTypes[mt]:
		return CategoryWord
	case strings.HasPrefix(mt, "text/"):
		return CategoryText
	case strings.HasPrefix(mt, "image/"):
		return CategoryImage
	case strings.HasPrefix(mt, "audio/"):
		return CategoryAudio
	default:
		return CategoryOther
	}
}

func normalizeMimeType(contentType string) string {
	contentType = strings.TrimSpace(strings.ToLower(contentType))
	if contentType == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	if i := strings.Index(contentType, ";"); i >= 0 {
		return strings.TrimSpace(contentType[:i])
	}
	return contentType
}
