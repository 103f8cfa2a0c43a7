// Package gemini implements llm.Generator on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/yungbote/sprout-backend/internal/platform/llm"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
)

const defaultModel = "gemini-2.5-flash"

type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint; tests point it at a local server.
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	client *genai.Client
	model  string
	log    *logger.Logger
}

func NewClient(ctx context.Context, cfg Config, log *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing AI_API_KEY")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimRight(base, "/") + "/"}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Client{
		client: client,
		model:  model,
		log:    log.With("client", "GeminiClient"),
	}, nil
}

func (c *Client) Provider() string { return "gemini" }

func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.User)}
	for _, img := range req.Images {
		parts = append(parts, genai.NewPartFromBytes(img.Bytes, img.MimeType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{}
	if strings.TrimSpace(req.System) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		if isAuthError(err) {
			return "", fmt.Errorf("%w: %v", llm.ErrUpstreamAuth, err)
		}
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

func isAuthError(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return isAuthCode(apiErr.Code, apiErr.Status)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return isAuthCode(apiErrPtr.Code, apiErrPtr.Status)
	}
	return false
}

func isAuthCode(code int, status string) bool {
	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		return true
	}
	switch strings.ToUpper(status) {
	case "UNAUTHENTICATED", "PERMISSION_DENIED":
		return true
	}
	return false
}
