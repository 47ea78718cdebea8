package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BerylCAtieno/file-renamer-api/internal/handlers"
	"github.com/BerylCAtieno/file-renamer-api/internal/middleware"
	"github.com/BerylCAtieno/file-renamer-api/internal/utils"
)

func NewRouter(renameHandler *handlers.RenameHandler, sessionHandler *handlers.SessionHandler, logger *utils.Logger) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.Recovery(logger))

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", renameHandler.Health).Methods(http.MethodGet)

	// Stateless endpoints
	api.HandleFunc("/blob/upload", renameHandler.BlobUpload).Methods(http.MethodPost)
	api.HandleFunc("/extract", renameHandler.Extract).Methods(http.MethodPost)
	api.HandleFunc("/propose", renameHandler.Propose).Methods(http.MethodPost)
	api.HandleFunc("/export-csv", renameHandler.ExportCSV).Methods(http.MethodPost)
	api.HandleFunc("/zip", renameHandler.Zip).Methods(http.MethodPost)

	// Session endpoints
	api.HandleFunc("/sessions", sessionHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", sessionHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/generate", sessionHandler.Generate).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/rerun", sessionHandler.Rerun).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/select-all", sessionHandler.ToggleSelectAll).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/entries/{fileId}", sessionHandler.UpdateEntry).Methods(http.MethodPatch)
	api.HandleFunc("/sessions/{id}/files/{fileId}", sessionHandler.RemoveFile).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/export.csv", sessionHandler.ExportCSV).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/archive.zip", sessionHandler.Archive).Methods(http.MethodGet)

	// CORS wraps the router so preflight requests are answered before route matching.
	return middleware.CORS()(r)
}
