package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BerylCAtieno/file-renamer-api/internal/db"
	"github.com/BerylCAtieno/file-renamer-api/internal/models"
)

func newTestRepository(t *testing.T) Repository {
	t.Helper()

	conn, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return NewRepository(conn)
}

func seedSession(t *testing.T, repo Repository, id string, expiresAt time.Time) *models.Session {
	t.Helper()

	now := time.Now().UTC()
	lm := int64(1709251200000)
	session := &models.Session{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		Files: []models.FileDescriptor{
			{ID: id + "-b", SessionID: id, Position: 1, OriginalName: "b.txt", MimeType: "text/plain", SizeBytes: 2, ContentKey: "k/b", CreatedAt: now},
			{ID: id + "-a", SessionID: id, Position: 0, OriginalName: "a.pdf", MimeType: "application/pdf", SizeBytes: 10, ContentKey: "k/a", LastModified: &lm, CreatedAt: now},
		},
	}
	if err := repo.CreateSession(context.Background(), session, expiresAt); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	return session
}

func entry(fileID, finalName string) models.RenamePlanEntry {
	topic := "budget"
	return models.RenamePlanEntry{
		FileID:        fileID,
		Proposal:      models.FilenameProposal{ProposedFilename: "report-budget", Confidence: 0.8, DocType: models.DocTypeReport, Topic: &topic, Rationale: "r"},
		BuiltFilename: "report-budget",
		FinalName:     finalName,
		Included:      true,
	}
}

func TestCreateAndGetSession(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	seedSession(t, repo, "s1", time.Now().Add(time.Hour))

	got, err := repo.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if len(got.Files) != 2 || got.Files[0].OriginalName != "a.pdf" {
		t.Fatalf("files not ordered by position: %+v", got.Files)
	}
	if got.Files[0].LastModified == nil || *got.Files[0].LastModified != 1709251200000 {
		t.Errorf("last_modified not round-tripped")
	}
	if got.Files[1].LastModified != nil {
		t.Errorf("expected null last_modified")
	}
	if len(got.Plan) != 0 {
		t.Errorf("new session should have no plan")
	}

	if _, err := repo.GetSession(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSession(missing) = %v", err)
	}
}

func TestExpiredSessionsReadAsMissing(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	seedSession(t, repo, "old", time.Now().Add(-time.Minute))
	seedSession(t, repo, "new", time.Now().Add(time.Hour))

	if _, err := repo.GetSession(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired session should read as missing, got %v", err)
	}

	ids, err := repo.ExpiredSessions(ctx, time.Now())
	if err != nil {
		t.Fatalf("ExpiredSessions: %v", err)
	}
	if len(ids) != 1 || ids[0] != "old" {
		t.Errorf("ExpiredSessions = %v", ids)
	}

	keys, err := repo.ContentKeys(ctx, "old")
	if err != nil || len(keys) != 2 || keys[0] != "k/a" {
		t.Errorf("ContentKeys = %v, %v", keys, err)
	}

	if err := repo.DeleteSession(ctx, "old"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if keys, _ := repo.ContentKeys(ctx, "old"); len(keys) != 0 {
		t.Errorf("files should cascade with the session")
	}
	if err := repo.DeleteSession(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete = %v", err)
	}
}

func TestPlanLifecycle(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	seedSession(t, repo, "s1", time.Now().Add(time.Hour))

	if err := repo.ReplacePlan(ctx, "s1", []models.RenamePlanEntry{entry("s1-b", "report-budget-v2.txt"), entry("s1-a", "report-budget.pdf")}); err != nil {
		t.Fatalf("ReplacePlan: %v", err)
	}

	edited := entry("s1-b", "my-notes.txt")
	edited.Edited = true
	edited.Included = false
	if err := repo.UpsertPlanEntries(ctx, "s1", []models.RenamePlanEntry{edited}); err != nil {
		t.Fatalf("UpsertPlanEntries: %v", err)
	}

	got, err := repo.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if len(got.Plan) != 2 {
		t.Fatalf("plan size = %d", len(got.Plan))
	}
	a, b := got.Plan[0], got.Plan[1]
	if a.FileID != "s1-a" || a.OriginalName != "a.pdf" || a.FinalName != "report-budget.pdf" {
		t.Errorf("unexpected first entry %+v", a)
	}
	if a.Proposal.Topic == nil || *a.Proposal.Topic != "budget" || a.Proposal.DateISO != nil {
		t.Errorf("proposal not round-tripped: %+v", a.Proposal)
	}
	if b.FinalName != "my-notes.txt" || !b.Edited || b.Included {
		t.Errorf("upsert not applied: %+v", b)
	}

	if err := repo.SetAllIncluded(ctx, "s1", true); err != nil {
		t.Fatalf("SetAllIncluded: %v", err)
	}
	got, _ = repo.GetSession(ctx, "s1")
	for _, e := range got.Plan {
		if !e.Included {
			t.Errorf("entry %s not included", e.FileID)
		}
	}

	if err := repo.ReplacePlan(ctx, "s1", []models.RenamePlanEntry{entry("s1-a", "x.pdf")}); err != nil {
		t.Fatalf("ReplacePlan: %v", err)
	}
	got, _ = repo.GetSession(ctx, "s1")
	if len(got.Plan) != 1 {
		t.Errorf("ReplacePlan should drop old entries, got %d", len(got.Plan))
	}
}

func TestDeleteFileCascades(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	seedSession(t, repo, "s1", time.Now().Add(time.Hour))

	if err := repo.ReplacePlan(ctx, "s1", []models.RenamePlanEntry{entry("s1-a", "a.pdf"), entry("s1-b", "b.txt")}); err != nil {
		t.Fatalf("ReplacePlan: %v", err)
	}
	if err := repo.SaveSnippets(ctx, "s1", []models.ExtractedSnippet{{FileID: "s1-a", Text: "hello"}, {FileID: "s1-b", Text: "bye"}}); err != nil {
		t.Fatalf("SaveSnippets: %v", err)
	}

	f, err := repo.DeleteFile(ctx, "s1", "s1-a")
	if err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if f.ContentKey != "k/a" {
		t.Errorf("ContentKey = %q", f.ContentKey)
	}

	got, _ := repo.GetSession(ctx, "s1")
	if len(got.Files) != 1 || len(got.Plan) != 1 || got.Plan[0].FileID != "s1-b" {
		t.Errorf("file removal did not cascade: %+v", got)
	}
	snippets, _ := repo.ListSnippets(ctx, "s1")
	if len(snippets) != 1 || snippets[0].Text != "bye" {
		t.Errorf("snippets = %+v", snippets)
	}

	if _, err := repo.DeleteFile(ctx, "s1", "s1-a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteFile = %v", err)
	}
	if _, err := repo.DeleteFile(ctx, "other", "s1-b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteFile across sessions = %v", err)
	}
}

func TestSaveSnippetsUpserts(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	seedSession(t, repo, "s1", time.Now().Add(time.Hour))

	_ = repo.SaveSnippets(ctx, "s1", []models.ExtractedSnippet{{FileID: "s1-b", Text: "old"}})
	if err := repo.SaveSnippets(ctx, "s1", []models.ExtractedSnippet{{FileID: "s1-b", Text: "new", DateCandidate: "2024-03-01"}, {FileID: "s1-a", Text: "pdf"}}); err != nil {
		t.Fatalf("SaveSnippets: %v", err)
	}

	snippets, err := repo.ListSnippets(ctx, "s1")
	if err != nil {
		t.Fatalf("ListSnippets: %v", err)
	}
	if len(snippets) != 2 || snippets[0].FileID != "s1-a" || snippets[1].Text != "new" || snippets[1].DateCandidate != "2024-03-01" {
		t.Errorf("snippets = %+v", snippets)
	}
}
