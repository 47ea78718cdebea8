package export

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/BerylCAtieno/file-renamer-api/internal/filename"
	"github.com/BerylCAtieno/file-renamer-api/internal/utils"
)

const compressionLevel = 6

var archiveFilesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fr_archive_files_total",
		Help: "Files considered for ZIP archives by outcome.",
	},
	[]string{"outcome"},
)

// ArchiveEntry is one file to store under FinalName. Fetch supplies its bytes.
type ArchiveEntry struct {
	OriginalName string
	FinalName    string
	Fetch        func(ctx context.Context) ([]byte, error)
}

type Archiver struct {
	logger *utils.Logger
}

func NewArchiver(logger *utils.Logger) *Archiver {
	return &Archiver{logger: logger}
}

// Write streams a ZIP of entries to w. Entries whose bytes cannot be fetched are
// logged and left out; only failures writing to w are returned.
func (a *Archiver) Write(ctx context.Context, w io.Writer, entries []ArchiveEntry) (int, error) {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, compressionLevel)
	})

	names := entryNames(entries)
	modified := time.Now()
	written := 0

	for i, entry := range entries {
		data, err := entry.Fetch(ctx)
		if err != nil {
			archiveFilesTotal.WithLabelValues("skipped").Inc()
			a.logger.Warn("Skipping file in archive",
				"filename", entry.OriginalName,
				"final_name", entry.FinalName,
				"error", err)
			continue
		}

		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     names[i],
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return written, fmt.Errorf("failed to add %s to archive: %w", names[i], err)
		}
		if _, err := fw.Write(data); err != nil {
			return written, fmt.Errorf("failed to write %s to archive: %w", names[i], err)
		}

		archiveFilesTotal.WithLabelValues("added").Inc()
		written++
	}

	if err := zw.Close(); err != nil {
		return written, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return written, nil
}

// entryNames flattens path separators and versions repeated names so that every
// archive path is unique.
func entryNames(entries []ArchiveEntry) []string {
	flatten := strings.NewReplacer("/", "-", "\\", "-")

	named := make([]filename.NameEntry, len(entries))
	for i, e := range entries {
		name := strings.TrimSpace(flatten.Replace(e.FinalName))
		if name == "" || strings.Trim(name, ".") == "" {
			name = "file"
		}
		ext := filename.Extension(name)
		named[i] = filename.NameEntry{ID: fmt.Sprint(i), Name: strings.TrimSuffix(name, ext), Ext: ext}
	}

	resolved := filename.ResolveDuplicatesReserved(nil, named)
	names := make([]string, len(entries))
	for i := range entries {
		names[i] = resolved[fmt.Sprint(i)]
	}
	return names
}

// ZipFilename is the attachment name for an archive generated at unix millisecond ms.
func ZipFilename(ms int64) string {
	return fmt.Sprintf("renamed-files-%d.zip", ms)
}
