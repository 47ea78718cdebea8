package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/BerylCAtieno/file-renamer-api/internal/export"
	"github.com/BerylCAtieno/file-renamer-api/internal/models"
	"github.com/BerylCAtieno/file-renamer-api/internal/services"
	"github.com/BerylCAtieno/file-renamer-api/internal/utils"
)

type SessionHandler struct {
	responder
	service       services.SessionService
	archiver      *export.Archiver
	maxUploadSize int64
}

func NewSessionHandler(service services.SessionService, archiver *export.Archiver, maxUploadSize int64, logger *utils.Logger) *SessionHandler {
	return &SessionHandler{
		responder:     responder{logger: logger},
		service:       service,
		archiver:      archiver,
		maxUploadSize: maxUploadSize,
	}
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	items, err := readBatch(w, r, h.maxUploadSize)
	if err != nil {
		h.respondError(w, err)
		return
	}

	session, err := h.service.Create(r.Context(), items)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, session)
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, session)
}

func (h *SessionHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if err := decodeJSON(r, &req, true); err != nil {
		h.respondError(w, err)
		return
	}

	session, err := h.service.Generate(r.Context(), mux.Vars(r)["id"], req.Instructions)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, session)
}

func (h *SessionHandler) Rerun(w http.ResponseWriter, r *http.Request) {
	var req models.RerunRequest
	if err := decodeJSON(r, &req, true); err != nil {
		h.respondError(w, err)
		return
	}

	session, err := h.service.Rerun(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, session)
}

func (h *SessionHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateEntryRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.respondError(w, err)
		return
	}

	vars := mux.Vars(r)
	entry, err := h.service.UpdateEntry(r.Context(), vars["id"], vars["fileId"], req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, entry)
}

func (h *SessionHandler) ToggleSelectAll(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.ToggleSelectAll(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, session)
}

func (h *SessionHandler) RemoveFile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.service.RemoveFile(r.Context(), vars["id"], vars["fileId"]); err != nil {
		h.respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ExportItems(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeCSV(h.responder, w, items)
}

func (h *SessionHandler) Archive(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ArchiveEntries(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeZip(h.responder, w, r, h.archiver, entries, export.ZipFilename(time.Now().UnixMilli()))
}
