package analyzer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/BerylCAtieno/file-renamer-api/internal/utils"
)

type roundTrip func(*http.Request) *http.Response

func (rt roundTrip) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt(req), nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func newTestOpenRouter(rt roundTrip) *OpenRouterModel {
	m := NewOpenRouterModel("https://api.test/v1/chat/completions", "secret", "test/model", utils.NewNopLogger())
	m.HTTPClient = &http.Client{Transport: rt}
	return m
}

func TestOpenRouterGenerate(t *testing.T) {
	m := newTestOpenRouter(func(req *http.Request) *http.Response {
		if got := req.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body.Model != "test/model" || len(body.Messages) != 2 {
			t.Fatalf("unexpected request: %+v", body)
		}
		if body.Messages[0].Role != "system" || body.Messages[1].Content != "name this" {
			t.Errorf("unexpected messages: %+v", body.Messages)
		}

		return jsonResponse(http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"{\"ok\":true}"}}]}`)
	})

	out, err := m.Generate(context.Background(), "system prompt", "name this")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != `{"ok":true}` {
		t.Errorf("unexpected output %q", out)
	}
}

func TestOpenRouterDescribeSendsDataURL(t *testing.T) {
	m := newTestOpenRouter(func(req *http.Request) *http.Response {
		raw, _ := io.ReadAll(req.Body)
		var body struct {
			Messages []struct {
				Content []ContentPart `json:"content"`
			} `json:"messages"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		parts := body.Messages[0].Content
		if len(parts) != 2 || parts[0].Type != "text" || parts[1].ImageURL == nil {
			t.Fatalf("unexpected parts: %+v", parts)
		}
		if parts[1].ImageURL.URL != "data:image/png;base64,aGk=" {
			t.Errorf("image url = %q", parts[1].ImageURL.URL)
		}
		return jsonResponse(http.StatusOK, `{"choices":[{"message":{"content":"a chart"}}]}`)
	})

	out, err := m.Describe(context.Background(), []byte("hi"), "image/png", "describe")
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if out != "a chart" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestOpenRouterErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"api error", http.StatusOK, `{"error":{"message":"bad key","code":401}}`},
		{"status", http.StatusTooManyRequests, `{}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"garbage", http.StatusOK, `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestOpenRouter(func(req *http.Request) *http.Response {
				return jsonResponse(tt.status, tt.body)
			})
			if _, err := m.Generate(context.Background(), "s", "p"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestOpenRouterFeedsProposer(t *testing.T) {
	m := newTestOpenRouter(func(req *http.Request) *http.Response {
		content := `{\"proposed_filename\":\"resume-jane-doe\",\"confidence\":0.88,\"doctype\":\"resume\",\"date_iso\":null,\"primary_entity\":\"Jane Doe\",\"secondary_entity\":null,\"topic\":null,\"rationale\":\"CV of Jane Doe.\"}`
		return jsonResponse(http.StatusOK, `{"choices":[{"message":{"content":"`+content+`"}}]}`)
	})

	p := NewProposer(m, utils.NewNopLogger(), ProposerConfig{}).Propose(context.Background(), ProposeInput{
		OriginalName: "cv.docx",
		Snippet:      "Jane Doe\nSoftware Engineer",
	})
	if p.ProposedFilename != "resume-jane-doe" || p.DocType != "resume" {
		t.Errorf("unexpected proposal %+v", p)
	}
}
