package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/BerylCAtieno/file-renamer-api/internal/config"
)

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	data := []byte("hello")
	if err := s.Upload(ctx, "a/b", data, "text/plain"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	data[0] = 'j'

	got, err := s.Download(ctx, "a/b")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("Download = %q, stored bytes must not alias the caller's", got)
	}

	if err := s.Delete(ctx, "a/b"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Download(ctx, "a/b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Download after delete: %v", err)
	}
	if err := s.Delete(ctx, "a/b"); err != nil {
		t.Errorf("deleting a missing key should succeed: %v", err)
	}

	if _, err := s.PresignPut(ctx, "k", "image/png", time.Minute); !errors.Is(err, ErrPresignUnsupported) {
		t.Errorf("PresignPut: %v", err)
	}
}

func TestObjectKey(t *testing.T) {
	a := ObjectKey("sessions/abc", "My Report (Final).PDF")
	b := ObjectKey("sessions/abc", "My Report (Final).PDF")

	if a == b {
		t.Errorf("keys must be unique")
	}
	if !strings.HasPrefix(a, "sessions/abc/") || !strings.HasSuffix(a, "/my-report-final-.pdf") {
		t.Errorf("ObjectKey = %q", a)
	}
	if k := ObjectKey("uploads", "???"); !strings.HasSuffix(k, "/file") {
		t.Errorf("ObjectKey fallback = %q", k)
	}
}

func TestNewMemoryBackend(t *testing.T) {
	s, err := New(context.Background(), &config.Config{StorageBackend: config.StorageMemory})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := s.(*MemoryStorage); !ok {
		t.Errorf("expected *MemoryStorage, got %T", s)
	}

	if _, err := New(context.Background(), &config.Config{StorageBackend: "ftp"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestIsUploadKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{ObjectKey(UploadScope, "a.pdf"), true},
		{"uploads/x/a.pdf", true},
		{"sessions/abc/x/a.pdf", false},
		{"uploads/../sessions/abc/a.pdf", false},
		{"uploadsx/a.pdf", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsUploadKey(tt.key); got != tt.want {
			t.Errorf("IsUploadKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
