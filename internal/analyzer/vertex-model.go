package analyzer

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"

	"github.com/BerylCAtieno/file-renamer-api/internal/utils"
)

// VertexModel calls Gemini through Vertex AI.
type VertexModel struct {
	client    *genai.Client
	modelName string
	logger    *utils.Logger
}

func NewVertexModel(ctx context.Context, projectID, region, modelName, credentialsFile string, logger *utils.Logger) (*VertexModel, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexModel: projectID and region cannot be empty")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := genai.NewClient(ctx, projectID, region, opts...)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	return &VertexModel{client: client, modelName: modelName, logger: logger}, nil
}

// Generate asks for JSON output; the system prompt carries the schema.
func (m *VertexModel) Generate(ctx context.Context, system, prompt string) (string, error) {
	model := m.client.GenerativeModel(m.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.2),
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}
	return m.responseText(resp)
}

func (m *VertexModel) Describe(ctx context.Context, image []byte, mimeType, instruction string) (string, error) {
	model := m.client.GenerativeModel(m.modelName)

	resp, err := model.GenerateContent(ctx, genai.Blob{MIMEType: mimeType, Data: image}, genai.Text(instruction))
	if err != nil {
		return "", fmt.Errorf("failed to describe image with gemini: %w", err)
	}
	return m.responseText(resp)
}

func (m *VertexModel) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}

func (m *VertexModel) responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	var text strings.Builder
	var textParts int
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
			textParts++
		}
	}

	if textParts == 0 {
		return "", fmt.Errorf("no text parts in gemini response")
	}
	if textParts > 1 {
		m.logger.Debug("Gemini response text parts concatenated", "parts", textParts)
	}
	return strings.TrimSpace(text.String()), nil
}
