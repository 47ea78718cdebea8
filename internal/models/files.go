package models

import (
	"time"
)

// FileDescriptor is one user-submitted file. ContentKey points at the staged bytes in
// blob storage; descriptors are never mutated after ingestion.
type FileDescriptor struct {
	ID           string    `json:"id" db:"id"`
	SessionID    string    `json:"session_id" db:"session_id"`
	Position     int       `json:"position" db:"position"`
	OriginalName string    `json:"original_name" db:"original_name"`
	MimeType     string    `json:"mime_type" db:"mime_type"`
	SizeBytes    int64     `json:"size_bytes" db:"size_bytes"`
	ContentKey   string    `json:"content_key" db:"content_key"`
	LastModified *int64    `json:"last_modified,omitempty" db:"last_modified"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type ExtractedSnippet struct {
	FileID        string `json:"id"`
	Text          string `json:"snippet"`
	DateCandidate string `json:"date_candidate,omitempty"`
}

// RenamePlanEntry is the per-file decision shown to the user for review.
type RenamePlanEntry struct {
	FileID        string           `json:"file_id"`
	OriginalName  string           `json:"original_name"`
	Proposal      FilenameProposal `json:"proposal"`
	BuiltFilename string           `json:"built_filename"`
	FinalName     string           `json:"final_name"`
	Included      bool             `json:"included"`
	Edited        bool             `json:"edited"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

type Session struct {
	ID              string            `json:"id"`
	Instructions    string            `json:"instructions,omitempty"`
	EstimatedTokens int               `json:"estimated_tokens"`
	Files           []FileDescriptor  `json:"files"`
	Plan            []RenamePlanEntry `json:"plan"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}
