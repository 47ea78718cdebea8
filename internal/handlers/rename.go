package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/BerylCAtieno/file-renamer-api/internal/export"
	"github.com/BerylCAtieno/file-renamer-api/internal/filename"
	"github.com/BerylCAtieno/file-renamer-api/internal/models"
	"github.com/BerylCAtieno/file-renamer-api/internal/services"
	"github.com/BerylCAtieno/file-renamer-api/internal/storage"
	"github.com/BerylCAtieno/file-renamer-api/internal/utils"
)

// RenameHandler serves the stateless endpoints: the client holds the batch and sends
// it back with every call.
type RenameHandler struct {
	responder
	pipeline      *services.Pipeline
	staging       services.StagingService
	archiver      *export.Archiver
	maxUploadSize int64
}

func NewRenameHandler(pipeline *services.Pipeline, staging services.StagingService, archiver *export.Archiver, maxUploadSize int64, logger *utils.Logger) *RenameHandler {
	return &RenameHandler{
		responder:     responder{logger: logger},
		pipeline:      pipeline,
		staging:       staging,
		archiver:      archiver,
		maxUploadSize: maxUploadSize,
	}
}

func (h *RenameHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *RenameHandler) BlobUpload(w http.ResponseWriter, r *http.Request) {
	var req models.StagedUploadRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.respondError(w, err)
		return
	}

	resp, err := h.staging.PresignUpload(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *RenameHandler) Extract(w http.ResponseWriter, r *http.Request) {
	items, err := readBatch(w, r, h.maxUploadSize)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.logger.Info("Extracting batch", "files", len(items))
	results := h.pipeline.ExtractBatch(r.Context(), items)

	h.respondJSON(w, http.StatusOK, models.ExtractResponse{Results: results})
}

func (h *RenameHandler) Propose(w http.ResponseWriter, r *http.Request) {
	var req models.ProposeRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.respondError(w, err)
		return
	}
	if len(req.Items) == 0 {
		h.respondError(w, utils.NewBadRequestError("No items provided"))
		return
	}
	for i, item := range req.Items {
		if strings.TrimSpace(item.OriginalName) == "" {
			h.respondError(w, utils.NewBadRequestError(fmt.Sprintf("items[%d].original_name is required", i)))
			return
		}
		if item.BlobKey != "" && !storage.IsUploadKey(item.BlobKey) {
			h.respondError(w, utils.NewBadRequestError(fmt.Sprintf("items[%d].blob_key is invalid", i)))
			return
		}
	}

	h.logger.Info("Proposing names", "files", len(req.Items), "has_instructions", req.Instructions != "")
	results := h.pipeline.ProposeBatch(r.Context(), req.Items, req.Instructions)

	h.respondJSON(w, http.StatusOK, models.ProposeResponse{Results: results})
}

func (h *RenameHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var req models.ExportRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.respondError(w, err)
		return
	}
	if len(req.Items) == 0 {
		h.respondError(w, utils.NewBadRequestError("No items provided"))
		return
	}

	writeCSV(h.responder, w, req.Items)
}

func (h *RenameHandler) Zip(w http.ResponseWriter, r *http.Request) {
	var req models.ArchiveRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.respondError(w, err)
		return
	}
	for i, f := range req.Files {
		if f.BlobKey != "" && !storage.IsUploadKey(f.BlobKey) {
			h.respondError(w, utils.NewBadRequestError(fmt.Sprintf("files[%d].blob_key is invalid", i)))
			return
		}
	}

	entries, err := h.staging.ArchiveEntries(req.Files)
	if err != nil {
		h.respondError(w, err)
		return
	}

	name := export.ZipFilename(time.Now().UnixMilli())
	if strings.TrimSpace(req.ZipName) != "" {
		name = filename.WithExtension(req.ZipName, name)
	}

	writeZip(h.responder, w, r, h.archiver, entries, name)
}

func writeCSV(h responder, w http.ResponseWriter, items []models.ExportItem) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, items); err != nil {
		h.respondError(w, utils.WrapInternal("Failed to generate CSV", err))
		return
	}
	h.respondAttachment(w, "text/csv; charset=utf-8", export.CSVFilename(time.Now().UnixMilli()), &buf)
}

func writeZip(h responder, w http.ResponseWriter, r *http.Request, archiver *export.Archiver, entries []export.ArchiveEntry, name string) {
	var buf bytes.Buffer
	written, err := archiver.Write(r.Context(), &buf, entries)
	if err != nil {
		h.respondError(w, utils.WrapInternal("Failed to generate ZIP file", err))
		return
	}

	h.logger.Info("Archive generated", "files", written, "requested", len(entries), "zip_name", name)
	h.respondAttachment(w, "application/zip", name, &buf)
}
