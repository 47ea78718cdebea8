package services

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/BerylCAtieno/file-renamer-api/internal/analyzer"
	"github.com/BerylCAtieno/file-renamer-api/internal/db"
	"github.com/BerylCAtieno/file-renamer-api/internal/extractor"
	"github.com/BerylCAtieno/file-renamer-api/internal/repository"
	"github.com/BerylCAtieno/file-renamer-api/internal/storage"
	"github.com/BerylCAtieno/file-renamer-api/internal/utils"
)

const invoiceReply = `{"proposed_filename":"invoice-acme","confidence":0.9,"doctype":"invoice",` +
	`"date_iso":null,"primary_entity":"acme","secondary_entity":null,"topic":null,` +
	`"rationale":"Invoice header names ACME."}`

// stubModel answers every Generate call with reply and every Describe call with caption.
type stubModel struct {
	mu       sync.Mutex
	reply    string
	err      error
	caption  string
	prompts  []string
	captions int
}

func (m *stubModel) Generate(_ context.Context, _, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	return m.reply, m.err
}

func (m *stubModel) Describe(context.Context, []byte, string, string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.captions++
	return m.caption, nil
}

func (m *stubModel) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

func newTestPipeline(model analyzer.Model, store storage.Storage) *Pipeline {
	logger := utils.NewNopLogger()
	proposer := analyzer.NewProposer(model, logger, analyzer.ProposerConfig{Timeout: time.Second})
	captioner := analyzer.NewCaptioner(model, logger, 16, time.Minute, time.Second)
	return NewPipeline(extractor.New(logger), proposer, captioner, store, 2, logger)
}

func newTestSessionService(t *testing.T, model analyzer.Model, ttl time.Duration) (SessionService, *storage.MemoryStorage) {
	t.Helper()

	conn, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	store := storage.NewMemoryStorage()
	logger := utils.NewNopLogger()
	svc := NewSessionService(repository.NewRepository(conn), store, newTestPipeline(model, store), ttl, logger)
	return svc, store
}

func dataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func assertStatus(t *testing.T, err error, want int) {
	t.Helper()
	var appErr *utils.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error = %v, want AppError with status %d", err, want)
	}
	if appErr.StatusCode != want {
		t.Fatalf("status = %d, want %d (%v)", appErr.StatusCode, want, err)
	}
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
