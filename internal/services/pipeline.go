package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/BerylCAtieno/file-renamer-api/internal/analyzer"
	"github.com/BerylCAtieno/file-renamer-api/internal/extractor"
	"github.com/BerylCAtieno/file-renamer-api/internal/filename"
	"github.com/BerylCAtieno/file-renamer-api/internal/models"
	"github.com/BerylCAtieno/file-renamer-api/internal/storage"
	"github.com/BerylCAtieno/file-renamer-api/internal/utils"
)

var errNoImage = errors.New("no image bytes supplied")

// Pipeline runs extraction and proposal over batches. Per-file failures degrade to
// placeholders or fallback proposals; a batch always yields one result per input.
type Pipeline struct {
	extractor   *extractor.Extractor
	proposer    *analyzer.Proposer
	captioner   *analyzer.Captioner
	storage     storage.Storage
	concurrency int
	logger      *utils.Logger
}

func NewPipeline(ext *extractor.Extractor, proposer *analyzer.Proposer, captioner *analyzer.Captioner, store storage.Storage, concurrency int, logger *utils.Logger) *Pipeline {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pipeline{
		extractor:   ext,
		proposer:    proposer,
		captioner:   captioner,
		storage:     store,
		concurrency: concurrency,
		logger:      logger,
	}
}

// ExtractBatch returns one snippet per item, in item order.
func (p *Pipeline) ExtractBatch(ctx context.Context, items []models.ExtractItem) []models.ExtractedSnippet {
	results := make([]models.ExtractedSnippet, len(items))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, item := range items {
		g.Go(func() error {
			results[i] = p.extractOne(ctx, item)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (p *Pipeline) extractOne(ctx context.Context, item models.ExtractItem) models.ExtractedSnippet {
	data, err := p.fetch(ctx, item.Data, item.BlobKey)
	if err != nil {
		p.logger.Warn("Failed to fetch file for extraction",
			"file_id", item.ID,
			"filename", item.OriginalName,
			"error", err)
		return models.ExtractedSnippet{FileID: item.ID, Text: extractor.ErrorPlaceholder(item.OriginalName)}
	}

	media := extractor.Detect(item.MimeType, item.OriginalName, data)
	return models.ExtractedSnippet{
		FileID:        item.ID,
		Text:          p.extractor.Extract(ctx, data, media.MimeType, item.OriginalName),
		DateCandidate: extractor.DateCandidate(media, data, item.LastModified),
	}
}

// ProposeAll generates one proposal per item, in item order. Images are captioned
// first and the caption replaces the snippet.
func (p *Pipeline) ProposeAll(ctx context.Context, items []models.ProposeItem, instructions string) []models.FilenameProposal {
	proposals := make([]models.FilenameProposal, len(items))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, item := range items {
		g.Go(func() error {
			proposals[i] = p.proposeOne(ctx, item, instructions)
			return nil
		})
	}
	_ = g.Wait()

	return proposals
}

// ProposeBatch proposes, builds and resolves duplicates once over the batch in
// submission order.
func (p *Pipeline) ProposeBatch(ctx context.Context, items []models.ProposeItem, instructions string) []models.ProposeResult {
	proposals := p.ProposeAll(ctx, items, instructions)
	return assemble(items, proposals, func(entries []filename.NameEntry) map[string]string {
		return filename.ResolveDuplicates(entries)
	})
}

// ProposeSubset is ProposeBatch for a partial re-run: names in reserved belong to
// entries outside the subset and are never reassigned.
func (p *Pipeline) ProposeSubset(ctx context.Context, items []models.ProposeItem, instructions string, reserved []string) []models.ProposeResult {
	proposals := p.ProposeAll(ctx, items, instructions)
	return assemble(items, proposals, func(entries []filename.NameEntry) map[string]string {
		return filename.ResolveDuplicatesReserved(reserved, entries)
	})
}

func (p *Pipeline) proposeOne(ctx context.Context, item models.ProposeItem, instructions string) models.FilenameProposal {
	snippet := item.Snippet

	media := extractor.Detect(item.MimeType, item.OriginalName, nil)
	if media.Category == extractor.CategoryImage {
		image, mimeType, err := p.imageFor(ctx, item, media.MimeType)
		switch {
		case err == nil:
			snippet = p.captioner.Caption(ctx, image, mimeType)
		case !errors.Is(err, errNoImage):
			p.logger.Warn("Failed to load image for captioning",
				"file_id", item.ID,
				"filename", item.OriginalName,
				"error", err)
		}
	}

	var hints []string
	if item.DateCandidate != "" {
		hints = []string{item.DateCandidate}
	}

	return p.proposer.Propose(ctx, analyzer.ProposeInput{
		OriginalName:   item.OriginalName,
		MimeType:       media.MimeType,
		Snippet:        snippet,
		DateCandidates: hints,
		Instructions:   instructions,
	})
}

func (p *Pipeline) imageFor(ctx context.Context, item models.ProposeItem, mimeType string) ([]byte, string, error) {
	if item.ImageData != "" {
		data, declared, err := utils.DecodeDataURL(item.ImageData)
		if err != nil {
			return nil, "", err
		}
		if declared != "" {
			mimeType = declared
		}
		return data, mimeType, nil
	}
	if item.BlobKey != "" {
		data, err := p.storage.Download(ctx, item.BlobKey)
		if err != nil {
			return nil, "", err
		}
		return data, mimeType, nil
	}
	return nil, "", errNoImage
}

func (p *Pipeline) fetch(ctx context.Context, data []byte, blobKey string) ([]byte, error) {
	if blobKey == "" {
		return data, nil
	}
	b, err := p.storage.Download(ctx, blobKey)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", blobKey, err)
	}
	return b, nil
}

// assemble builds each filename and resolves the batch in submission order. Entries
// are keyed by position so repeated client IDs cannot merge.
func assemble(items []models.ProposeItem, proposals []models.FilenameProposal, resolve func([]filename.NameEntry) map[string]string) []models.ProposeResult {
	built := make([]string, len(items))
	entries := make([]filename.NameEntry, len(items))
	for i, item := range items {
		built[i] = builtName(proposals[i], item.OriginalName)
		entries[i] = filename.NameEntry{
			ID:   strconv.Itoa(i),
			Name: built[i],
			Ext:  filename.Extension(item.OriginalName),
		}
	}

	final := resolve(entries)

	results := make([]models.ProposeResult, len(items))
	for i, item := range items {
		results[i] = models.ProposeResult{
			ID:            item.ID,
			Proposal:      proposals[i],
			BuiltFilename: built[i],
			FinalName:     final[strconv.Itoa(i)],
		}
	}
	return results
}

// builtName never returns an empty base, even for proposals that sanitize to nothing.
func builtName(p models.FilenameProposal, originalName string) string {
	if name := filename.Build(p); name != "" {
		return name
	}
	if name := filename.Sanitize(filename.StripExtension(originalName)); name != "" {
		return name
	}
	return "file"
}
