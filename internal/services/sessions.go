package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/BerylCAtieno/file-renamer-api/internal/export"
	"github.com/BerylCAtieno/file-renamer-api/internal/filename"
	"github.com/BerylCAtieno/file-renamer-api/internal/models"
	"github.com/BerylCAtieno/file-renamer-api/internal/repository"
	"github.com/BerylCAtieno/file-renamer-api/internal/storage"
	"github.com/BerylCAtieno/file-renamer-api/internal/utils"
)

// SessionService holds a batch of files and its rename plan for the length of a
// review session.
type SessionService interface {
	Create(ctx context.Context, items []models.ExtractItem) (*models.Session, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	Generate(ctx context.Context, id, instructions string) (*models.Session, error)
	Rerun(ctx context.Context, id string, req models.RerunRequest) (*models.Session, error)
	UpdateEntry(ctx context.Context, id, fileID string, req models.UpdateEntryRequest) (*models.RenamePlanEntry, error)
	ToggleSelectAll(ctx context.Context, id string) (*models.Session, error)
	RemoveFile(ctx context.Context, id, fileID string) error
	Delete(ctx context.Context, id string) error
	ExportItems(ctx context.Context, id string) ([]models.ExportItem, error)
	ArchiveEntries(ctx context.Context, id string) ([]export.ArchiveEntry, error)
	PurgeExpired(ctx context.Context) (int, error)
}

type sessionService struct {
	repo     repository.Repository
	storage  storage.Storage
	pipeline *Pipeline
	ttl      time.Duration
	logger   *utils.Logger
}

func NewSessionService(repo repository.Repository, store storage.Storage, pipeline *Pipeline, ttl time.Duration, logger *utils.Logger) SessionService {
	return &sessionService{
		repo:     repo,
		storage:  store,
		pipeline: pipeline,
		ttl:      ttl,
		logger:   logger,
	}
}

func (s *sessionService) Create(ctx context.Context, items []models.ExtractItem) (*models.Session, error) {
	if len(items) == 0 {
		return nil, utils.NewBadRequestError("No files provided")
	}

	sessionID := uuid.NewString()
	now := time.Now().UTC()
	session := &models.Session{
		ID:        sessionID,
		CreatedAt: now,
		UpdatedAt: now,
		Files:     make([]models.FileDescriptor, 0, len(items)),
		Plan:      []models.RenamePlanEntry{},
	}

	var uploaded []string
	for i, item := range items {
		key := item.BlobKey
		size := item.SizeBytes
		if key == "" {
			key = storage.ObjectKey("sessions/"+sessionID, item.OriginalName)
			if err := s.storage.Upload(ctx, key, item.Data, item.MimeType); err != nil {
				s.logger.Error("Failed to stage file", "error", err, "filename", item.OriginalName, "session_id", sessionID)
				s.deleteObjects(ctx, uploaded)
				return nil, utils.WrapInternal("Failed to store files", err)
			}
			uploaded = append(uploaded, key)
			size = int64(len(item.Data))
		}

		session.Files = append(session.Files, models.FileDescriptor{
			ID:           utils.GenerateID(),
			SessionID:    sessionID,
			Position:     i,
			OriginalName: item.OriginalName,
			MimeType:     item.MimeType,
			SizeBytes:    size,
			ContentKey:   key,
			LastModified: item.LastModified,
			CreatedAt:    now,
		})
	}

	if err := s.repo.CreateSession(ctx, session, now.Add(s.ttl)); err != nil {
		s.logger.Error("Failed to save session", "error", err, "session_id", sessionID)
		s.deleteObjects(ctx, uploaded)
		return nil, utils.WrapInternal("Failed to create session", err)
	}

	s.logger.Info("Session created", "session_id", sessionID, "files", len(session.Files))
	return session, nil
}

func (s *sessionService) Get(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.repo.GetSession(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewNotFoundError("Session not found")
	}
	if err != nil {
		s.logger.Error("Failed to load session", "error", err, "session_id", id)
		return nil, utils.WrapInternal("Failed to load session", err)
	}
	return session, nil
}

// Generate replaces the plan with fresh proposals for every file. All entries start
// included and unedited.
func (s *sessionService) Generate(ctx context.Context, id, instructions string) (*models.Session, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(session.Files) == 0 {
		return nil, utils.NewBadRequestError("Session has no files")
	}

	snippets := s.pipeline.ExtractBatch(ctx, extractItems(session.Files))
	results := s.pipeline.ProposeBatch(ctx, proposeItems(session.Files, snippets), instructions)

	now := time.Now().UTC()
	entries := make([]models.RenamePlanEntry, len(results))
	for i, r := range results {
		entries[i] = models.RenamePlanEntry{
			FileID:        r.ID,
			OriginalName:  session.Files[i].OriginalName,
			Proposal:      r.Proposal,
			BuiltFilename: r.BuiltFilename,
			FinalName:     r.FinalName,
			Included:      true,
			UpdatedAt:     now,
		}
	}

	if err := s.repo.SaveSnippets(ctx, id, snippets); err != nil {
		return nil, s.internal("Failed to save snippets", err, id)
	}
	if err := s.repo.ReplacePlan(ctx, id, entries); err != nil {
		return nil, s.internal("Failed to save plan", err, id)
	}
	if err := s.repo.UpdateSession(ctx, id, instructions, estimateTokens(snippets), now.Add(s.ttl)); err != nil {
		return nil, s.internal("Failed to update session", err, id)
	}

	s.logger.Info("Plan generated", "session_id", id, "files", len(entries))
	return s.Get(ctx, id)
}

// Rerun regenerates a subset of the plan. Entries outside the subset are untouched;
// the subset is resolved against their final names. Re-run entries lose their edited
// flag and keep their included flag.
func (s *sessionService) Rerun(ctx context.Context, id string, req models.RerunRequest) (*models.Session, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(session.Plan) == 0 {
		return nil, utils.NewBadRequestError("Generate a plan before re-running")
	}

	selected, err := selectEntries(session.Plan, req.FileIDs)
	if err != nil {
		return nil, err
	}

	files := make(map[string]models.FileDescriptor, len(session.Files))
	for _, f := range session.Files {
		files[f.ID] = f
	}

	var subset []models.FileDescriptor
	var reserved []string
	byID := make(map[string]models.RenamePlanEntry, len(session.Plan))
	for _, e := range session.Plan {
		byID[e.FileID] = e
		if selected[e.FileID] {
			subset = append(subset, files[e.FileID])
		} else {
			reserved = append(reserved, e.FinalName)
		}
	}

	snippets := s.pipeline.ExtractBatch(ctx, extractItems(subset))
	results := s.pipeline.ProposeSubset(ctx, proposeItems(subset, snippets), req.Instructions, reserved)

	now := time.Now().UTC()
	entries := make([]models.RenamePlanEntry, len(results))
	for i, r := range results {
		entry := byID[r.ID]
		entry.Proposal = r.Proposal
		entry.BuiltFilename = r.BuiltFilename
		entry.FinalName = r.FinalName
		entry.Edited = false
		entry.UpdatedAt = now
		entries[i] = entry
	}

	if err := s.repo.SaveSnippets(ctx, id, snippets); err != nil {
		return nil, s.internal("Failed to save snippets", err, id)
	}
	if err := s.repo.UpsertPlanEntries(ctx, id, entries); err != nil {
		return nil, s.internal("Failed to save plan", err, id)
	}

	all, err := s.repo.ListSnippets(ctx, id)
	if err != nil {
		return nil, s.internal("Failed to load snippets", err, id)
	}
	if err := s.repo.UpdateSession(ctx, id, req.Instructions, estimateTokens(all), now.Add(s.ttl)); err != nil {
		return nil, s.internal("Failed to update session", err, id)
	}

	s.logger.Info("Plan re-run", "session_id", id, "files", len(entries))
	return s.Get(ctx, id)
}

func (s *sessionService) UpdateEntry(ctx context.Context, id, fileID string, req models.UpdateEntryRequest) (*models.RenamePlanEntry, error) {
	if req.FinalName == nil && req.Included == nil {
		return nil, utils.NewBadRequestError("Nothing to update")
	}

	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	entry, ok := findEntry(session.Plan, fileID)
	if !ok {
		return nil, utils.NewNotFoundError("Plan entry not found")
	}

	if req.FinalName != nil {
		entry.FinalName = filename.WithExtension(*req.FinalName, entry.OriginalName)
		entry.Edited = true
	}
	if req.Included != nil {
		entry.Included = *req.Included
	}
	entry.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpsertPlanEntries(ctx, id, []models.RenamePlanEntry{entry}); err != nil {
		return nil, s.internal("Failed to update plan entry", err, id)
	}
	s.touch(ctx, session)

	return &entry, nil
}

// ToggleSelectAll excludes every entry when all are included, otherwise includes all.
func (s *sessionService) ToggleSelectAll(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(session.Plan) == 0 {
		return nil, utils.NewBadRequestError("Session has no plan")
	}

	allIncluded := true
	for _, e := range session.Plan {
		if !e.Included {
			allIncluded = false
			break
		}
	}

	if err := s.repo.SetAllIncluded(ctx, id, !allIncluded); err != nil {
		return nil, s.internal("Failed to update selection", err, id)
	}
	s.touch(ctx, session)

	return s.Get(ctx, id)
}

func (s *sessionService) RemoveFile(ctx context.Context, id, fileID string) error {
	session, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	f, err := s.repo.DeleteFile(ctx, id, fileID)
	if errors.Is(err, repository.ErrNotFound) {
		return utils.NewNotFoundError("File not found")
	}
	if err != nil {
		return s.internal("Failed to remove file", err, id)
	}

	s.deleteObjects(ctx, []string{f.ContentKey})
	s.touch(ctx, session)
	return nil
}

func (s *sessionService) Delete(ctx context.Context, id string) error {
	keys, err := s.repo.ContentKeys(ctx, id)
	if err != nil {
		return s.internal("Failed to load session files", err, id)
	}

	err = s.repo.DeleteSession(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return utils.NewNotFoundError("Session not found")
	}
	if err != nil {
		return s.internal("Failed to delete session", err, id)
	}

	s.deleteObjects(ctx, keys)
	s.logger.Info("Session cleared", "session_id", id, "files", len(keys))
	return nil
}

// ExportItems lists the included entries for the renaming map.
func (s *sessionService) ExportItems(ctx context.Context, id string) ([]models.ExportItem, error) {
	entries, err := s.includedEntries(ctx, id)
	if err != nil {
		return nil, err
	}

	items := make([]models.ExportItem, len(entries))
	for i, e := range entries {
		items[i] = models.ExportItem{
			OriginalName: e.OriginalName,
			FinalName:    e.FinalName,
			Confidence:   e.Proposal.Confidence,
			Rationale:    e.Proposal.Rationale,
		}
	}
	return items, nil
}

// ArchiveEntries lists the included files with their staged bytes as sources.
func (s *sessionService) ArchiveEntries(ctx context.Context, id string) ([]export.ArchiveEntry, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := included(session)
	if err != nil {
		return nil, err
	}

	keys := make(map[string]string, len(session.Files))
	for _, f := range session.Files {
		keys[f.ID] = f.ContentKey
	}

	out := make([]export.ArchiveEntry, len(entries))
	for i, e := range entries {
		key := keys[e.FileID]
		out[i] = export.ArchiveEntry{
			OriginalName: e.OriginalName,
			FinalName:    e.FinalName,
			Fetch: func(ctx context.Context) ([]byte, error) {
				return s.storage.Download(ctx, key)
			},
		}
	}
	return out, nil
}

// PurgeExpired deletes expired sessions and their staged bytes.
func (s *sessionService) PurgeExpired(ctx context.Context) (int, error) {
	ids, err := s.repo.ExpiredSessions(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to list expired sessions: %w", err)
	}

	purged := 0
	for _, id := range ids {
		keys, err := s.repo.ContentKeys(ctx, id)
		if err != nil {
			s.logger.Error("Failed to list expired session files", "error", err, "session_id", id)
			continue
		}
		if err := s.repo.DeleteSession(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("Failed to purge session", "error", err, "session_id", id)
			continue
		}
		s.deleteObjects(ctx, keys)
		purged++
	}

	if purged > 0 {
		s.logger.Info("Expired sessions purged", "count", purged)
	}
	return purged, nil
}

// RunJanitor purges expired sessions every interval until ctx is done.
func RunJanitor(ctx context.Context, sessions SessionService, interval time.Duration, logger *utils.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := sessions.PurgeExpired(ctx); err != nil {
				logger.Error("Session janitor failed", "error", err)
			}
		}
	}
}

func (s *sessionService) includedEntries(ctx context.Context, id string) ([]models.RenamePlanEntry, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return included(session)
}

func included(session *models.Session) ([]models.RenamePlanEntry, error) {
	var entries []models.RenamePlanEntry
	for _, e := range session.Plan {
		if e.Included {
			entries = append(entries, e)
		}
	}
	if len(entries) == 0 {
		return nil, utils.NewBadRequestError("No files selected")
	}
	return entries, nil
}

// touch extends the session's lifetime after user activity.
func (s *sessionService) touch(ctx context.Context, session *models.Session) {
	expiresAt := time.Now().Add(s.ttl)
	if err := s.repo.UpdateSession(ctx, session.ID, session.Instructions, session.EstimatedTokens, expiresAt); err != nil {
		s.logger.Warn("Failed to extend session", "error", err, "session_id", session.ID)
	}
}

func (s *sessionService) deleteObjects(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Warn("Failed to delete staged file", "error", err, "key", key)
		}
	}
}

func (s *sessionService) internal(message string, err error, sessionID string) error {
	s.logger.Error(message, "error", err, "session_id", sessionID)
	return utils.WrapInternal(message, err)
}

func selectEntries(plan []models.RenamePlanEntry, fileIDs []string) (map[string]bool, error) {
	selected := make(map[string]bool)
	if len(fileIDs) == 0 {
		for _, e := range plan {
			if e.Included {
				selected[e.FileID] = true
			}
		}
	} else {
		known := make(map[string]bool, len(plan))
		for _, e := range plan {
			known[e.FileID] = true
		}
		for _, id := range fileIDs {
			if !known[id] {
				return nil, utils.NewBadRequestError(fmt.Sprintf("Unknown file id %q", id))
			}
			selected[id] = true
		}
	}

	if len(selected) == 0 {
		return nil, utils.NewBadRequestError("No files selected")
	}
	return selected, nil
}

func findEntry(plan []models.RenamePlanEntry, fileID string) (models.RenamePlanEntry, bool) {
	for _, e := range plan {
		if e.FileID == fileID {
			return e, true
		}
	}
	return models.RenamePlanEntry{}, false
}

func extractItems(files []models.FileDescriptor) []models.ExtractItem {
	items := make([]models.ExtractItem, len(files))
	for i, f := range files {
		items[i] = models.ExtractItem{
			ID:           f.ID,
			OriginalName: f.OriginalName,
			MimeType:     f.MimeType,
			SizeBytes:    f.SizeBytes,
			BlobKey:      f.ContentKey,
			LastModified: f.LastModified,
		}
	}
	return items
}

func proposeItems(files []models.FileDescriptor, snippets []models.ExtractedSnippet) []models.ProposeItem {
	items := make([]models.ProposeItem, len(files))
	for i, f := range files {
		items[i] = models.ProposeItem{
			ID:            f.ID,
			OriginalName:  f.OriginalName,
			MimeType:      f.MimeType,
			Snippet:       snippets[i].Text,
			DateCandidate: snippets[i].DateCandidate,
			BlobKey:       f.ContentKey,
		}
	}
	return items
}

func estimateTokens(snippets []models.ExtractedSnippet) int {
	total := 0
	for _, s := range snippets {
		total += filename.EstimateTokens(s.Text)
	}
	return total
}
