package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BerylCAtieno/file-renamer-api/internal/config"
	"github.com/BerylCAtieno/file-renamer-api/internal/export"
	"github.com/BerylCAtieno/file-renamer-api/internal/models"
	"github.com/BerylCAtieno/file-renamer-api/internal/storage"
	"github.com/BerylCAtieno/file-renamer-api/internal/utils"
)

var allowedStagedTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain":      true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/webp":      true,
	"audio/mpeg":      true,
	"audio/wav":       true,
	"application/zip": true,
}

// StagingService handles the stateless endpoints: presigned uploads and archive sources
// for files the client holds itself.
type StagingService interface {
	PresignUpload(ctx context.Context, req models.StagedUploadRequest) (*models.StagedUploadResponse, error)
	ArchiveEntries(files []models.ArchiveFile) ([]export.ArchiveEntry, error)
}

type stagingService struct {
	storage       storage.Storage
	maxStagedSize int64
	expiry        time.Duration
	logger        *utils.Logger
}

func NewStagingService(store storage.Storage, cfg *config.Config, logger *utils.Logger) StagingService {
	return &stagingService{
		storage:       store,
		maxStagedSize: cfg.MaxStagedSize,
		expiry:        cfg.PresignExpiry,
		logger:        logger,
	}
}

func (s *stagingService) PresignUpload(ctx context.Context, req models.StagedUploadRequest) (*models.StagedUploadResponse, error) {
	if strings.TrimSpace(req.Filename) == "" {
		return nil, utils.NewBadRequestError("filename is required")
	}

	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	if !allowedStagedTypes[contentType] {
		s.logger.Warn("Rejected staged upload", "content_type", req.ContentType, "filename", req.Filename)
		return nil, utils.NewBadRequestError(fmt.Sprintf("Unsupported file type '%s'", req.ContentType))
	}
	if req.Size < 0 || req.Size > s.maxStagedSize {
		return nil, utils.NewBadRequestError(fmt.Sprintf("File size must be at most %d bytes", s.maxStagedSize))
	}

	key := storage.ObjectKey(storage.UploadScope, req.Filename)
	url, err := s.storage.PresignPut(ctx, key, contentType, s.expiry)
	if errors.Is(err, storage.ErrPresignUnsupported) {
		return nil, utils.NewNotImplementedError("Staged uploads are not available on this server")
	}
	if err != nil {
		s.logger.Error("Failed to presign upload", "error", err, "filename", req.Filename)
		return nil, utils.WrapInternal("Failed to prepare upload", err)
	}

	return &models.StagedUploadResponse{
		Key:       key,
		UploadURL: url,
		ExpiresAt: time.Now().Add(s.expiry).UnixMilli(),
	}, nil
}

// ArchiveEntries turns request files into archive sources. Undecodable inline data is
// a per-file failure: the entry is kept and skipped when the archive is written.
func (s *stagingService) ArchiveEntries(files []models.ArchiveFile) ([]export.ArchiveEntry, error) {
	if len(files) == 0 {
		return nil, utils.NewBadRequestError("No files provided")
	}

	entries := make([]export.ArchiveEntry, len(files))
	for i, f := range files {
		entries[i] = export.ArchiveEntry{
			OriginalName: f.OriginalName,
			FinalName:    f.FinalName,
			Fetch:        s.source(f),
		}
	}
	return entries, nil
}

func (s *stagingService) source(f models.ArchiveFile) func(context.Context) ([]byte, error) {
	return func(ctx context.Context) ([]byte, error) {
		switch {
		case f.Data != "":
			data, _, err := utils.DecodeDataURL(f.Data)
			return data, err
		case f.BlobKey != "":
			return s.storage.Download(ctx, f.BlobKey)
		default:
			return nil, errors.New("no file data supplied")
		}
	}
}
