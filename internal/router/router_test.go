package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/BerylCAtieno/file-renamer-api/internal/analyzer"
	"github.com/BerylCAtieno/file-renamer-api/internal/config"
	"github.com/BerylCAtieno/file-renamer-api/internal/db"
	"github.com/BerylCAtieno/file-renamer-api/internal/export"
	"github.com/BerylCAtieno/file-renamer-api/internal/extractor"
	"github.com/BerylCAtieno/file-renamer-api/internal/handlers"
	"github.com/BerylCAtieno/file-renamer-api/internal/repository"
	"github.com/BerylCAtieno/file-renamer-api/internal/services"
	"github.com/BerylCAtieno/file-renamer-api/internal/storage"
	"github.com/BerylCAtieno/file-renamer-api/internal/utils"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	conn, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	logger := utils.NewNopLogger()
	store := storage.NewMemoryStorage()
	model := analyzer.NewOpenRouterModel("http://127.0.0.1:0", "key", "model", logger)
	proposer := analyzer.NewProposer(model, logger, analyzer.ProposerConfig{Timeout: time.Second})
	captioner := analyzer.NewCaptioner(model, logger, 8, time.Minute, time.Second)
	pipeline := services.NewPipeline(extractor.New(logger), proposer, captioner, store, 1, logger)
	archiver := export.NewArchiver(logger)

	return NewRouter(
		handlers.NewRenameHandler(pipeline, services.NewStagingService(store, &config.Config{}, logger), archiver, 1<<20, logger),
		handlers.NewSessionHandler(services.NewSessionService(repository.NewRepository(conn), store, pipeline, time.Hour, logger), archiver, 1<<20, logger),
		logger,
	)
}

func TestRoutes(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/api/v1/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/v1/sessions/unknown", http.StatusNotFound},
		{http.MethodDelete, "/api/v1/sessions/unknown", http.StatusNotFound},
		{http.MethodGet, "/api/v1/sessions/unknown/export.csv", http.StatusNotFound},
		{http.MethodGet, "/api/v1/propose", http.StatusMethodNotAllowed},
		{http.MethodOptions, "/api/v1/propose", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHealthBody(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if !strings.Contains(rec.Body.String(), `"status":"healthy"`) {
		t.Errorf("body = %q", rec.Body.String())
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("CORS header missing")
	}
}
