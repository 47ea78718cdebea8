package models

// ExtractItem is one entry of an extraction batch. Exactly one of Data or BlobKey is set.
type ExtractItem struct {
	ID           string
	OriginalName string
	MimeType     string
	SizeBytes    int64
	Data         []byte
	BlobKey      string
	LastModified *int64
}

type ExtractResponse struct {
	Results []ExtractedSnippet `json:"results"`
}

type ProposeItem struct {
	ID            string `json:"id"`
	OriginalName  string `json:"original_name"`
	MimeType      string `json:"mime_type"`
	Snippet       string `json:"snippet"`
	DateCandidate string `json:"date_candidate,omitempty"`
	// ImageData is a data URL (data:<mime>;base64,...) for inline images.
	ImageData string `json:"image_data,omitempty"`
	BlobKey   string `json:"blob_key,omitempty"`
}

type ProposeRequest struct {
	Items        []ProposeItem `json:"items"`
	Instructions string        `json:"instructions,omitempty"`
}

type ProposeResult struct {
	ID            string           `json:"id"`
	Proposal      FilenameProposal `json:"proposal"`
	BuiltFilename string           `json:"built_filename"`
	FinalName     string           `json:"final_name"`
}

type ProposeResponse struct {
	Results []ProposeResult `json:"results"`
}

type ExportItem struct {
	OriginalName string  `json:"original_name"`
	FinalName    string  `json:"final_name"`
	Confidence   float64 `json:"confidence"`
	Rationale    string  `json:"rationale"`
}

type ExportRequest struct {
	Items []ExportItem `json:"items"`
}

// ArchiveFile is one entry of a ZIP request. Exactly one of Data or BlobKey is set.
type ArchiveFile struct {
	OriginalName string `json:"original_name"`
	FinalName    string `json:"final_name"`
	Data         string `json:"data,omitempty"`
	BlobKey      string `json:"blob_key,omitempty"`
}

type ArchiveRequest struct {
	Files   []ArchiveFile `json:"files"`
	ZipName string        `json:"zip_name,omitempty"`
}

type StagedUploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type StagedUploadResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
	ExpiresAt int64  `json:"expires_at"`
}

type GenerateRequest struct {
	Instructions string `json:"instructions,omitempty"`
}

type RerunRequest struct {
	Instructions string   `json:"instructions,omitempty"`
	FileIDs      []string `json:"file_ids,omitempty"`
}

type UpdateEntryRequest struct {
	FinalName *string `json:"final_name,omitempty"`
	Included  *bool   `json:"included,omitempty"`
}
