package analyzer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/BerylCAtieno/file-renamer-api/internal/utils"
)

const (
	DefaultOpenRouterURL = "https://openrouter.ai/api/v1/chat/completions"
	openRouterReferer    = "https://github.com/BerylCAtieno/file-renamer-api"
)

// OpenRouterModel calls the OpenRouter chat completions endpoint.
type OpenRouterModel struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client

	logger *utils.Logger
}

type OpenRouterRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// Message content is either a string or a list of ContentPart for vision calls.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

type OpenRouterResponse struct {
	Choices []Choice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

type Choice struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
}

func NewOpenRouterModel(baseURL, apiKey, model string, logger *utils.Logger) *OpenRouterModel {
	if baseURL == "" {
		baseURL = DefaultOpenRouterURL
	}
	return &OpenRouterModel{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Model:      model,
		HTTPClient: &http.Client{},
		logger:     logger,
	}
}

func (m *OpenRouterModel) Generate(ctx context.Context, system, prompt string) (string, error) {
	return m.complete(ctx, []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: prompt},
	})
}

// Describe sends the image inline as a base64 data URL.
func (m *OpenRouterModel) Describe(ctx context.Context, image []byte, mimeType, instruction string) (string, error) {
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)
	return m.complete(ctx, []Message{
		{
			Role: "user",
			Content: []ContentPart{
				{Type: "text", Text: instruction},
				{Type: "image_url", ImageURL: &ImageURL{URL: dataURL}},
			},
		},
	})
}

func (m *OpenRouterModel) complete(ctx context.Context, messages []Message) (string, error) {
	if m.Model == "" {
		return "", fmt.Errorf("openrouter: model is required")
	}

	jsonData, err := json.Marshal(OpenRouterRequest{Model: m.Model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.BaseURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", openRouterReferer)
	if m.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.APIKey)
	}

	resp, err := m.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		m.logger.Error("OpenRouter API error", "status", resp.StatusCode, "body", string(body))
		return "", fmt.Errorf("OpenRouter API returned status %d", resp.StatusCode)
	}

	var openRouterResp OpenRouterResponse
	if err := json.Unmarshal(body, &openRouterResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if openRouterResp.Error != nil {
		return "", fmt.Errorf("OpenRouter API error: %s", openRouterResp.Error.Message)
	}

	if len(openRouterResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return openRouterResp.Choices[0].Message.Content, nil
}

func (m *OpenRouterModel) httpClient() *http.Client {
	if m.HTTPClient != nil {
		return m.HTTPClient
	}
	return http.DefaultClient
}
