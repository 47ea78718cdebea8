package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/BerylCAtieno/file-renamer-api/internal/config"
	"github.com/BerylCAtieno/file-renamer-api/internal/models"
	"github.com/BerylCAtieno/file-renamer-api/internal/storage"
	"github.com/BerylCAtieno/file-renamer-api/internal/utils"
)

func newTestStaging(store storage.Storage) StagingService {
	cfg := &config.Config{MaxStagedSize: 1024, PresignExpiry: time.Minute}
	return NewStagingService(store, cfg, utils.NewNopLogger())
}

func TestPresignUploadValidation(t *testing.T) {
	svc := newTestStaging(storage.NewMemoryStorage())
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.StagedUploadRequest
		want int
	}{
		{"missing filename", models.StagedUploadRequest{ContentType: "application/pdf", Size: 10}, http.StatusBadRequest},
		{"unsupported type", models.StagedUploadRequest{Filename: "a.exe", ContentType: "application/x-msdownload", Size: 10}, http.StatusBadRequest},
		{"too large", models.StagedUploadRequest{Filename: "a.pdf", ContentType: "application/pdf", Size: 2048}, http.StatusBadRequest},
		{"backend cannot presign", models.StagedUploadRequest{Filename: "a.pdf", ContentType: "application/pdf", Size: 10}, http.StatusNotImplemented},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PresignUpload(ctx, tt.req)
			assertStatus(t, err, tt.want)
		})
	}
}

func TestStagingArchiveEntries(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	if err := store.Upload(ctx, "uploads/x/b.txt", []byte("staged"), "text/plain"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	svc := newTestStaging(store)

	entries, err := svc.ArchiveEntries([]models.ArchiveFile{
		{OriginalName: "a.txt", FinalName: "inline.txt", Data: dataURL("text/plain", []byte("inline"))},
		{OriginalName: "b.txt", FinalName: "staged.txt", BlobKey: "uploads/x/b.txt"},
		{OriginalName: "c.txt", FinalName: "broken.txt", Data: "not a data url"},
	})
	if err != nil {
		t.Fatalf("ArchiveEntries: %v", err)
	}

	if data, err := entries[0].Fetch(ctx); err != nil || string(data) != "inline" {
		t.Errorf("inline fetch = %q, %v", data, err)
	}
	if data, err := entries[1].Fetch(ctx); err != nil || string(data) != "staged" {
		t.Errorf("staged fetch = %q, %v", data, err)
	}
	if _, err := entries[2].Fetch(ctx); err == nil {
		t.Errorf("expected error for invalid data URL")
	}

	_, err = svc.ArchiveEntries(nil)
	assertStatus(t, err, http.StatusBadRequest)
}
