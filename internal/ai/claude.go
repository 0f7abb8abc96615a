package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/nhle/taskboard/internal/credential"
)

const (
	defaultModel     = "claude-sonnet-4-5-20250929"
	defaultMaxTokens = 1024
	defaultBaseURL   = "https://api.anthropic.com"
	messagesPath     = "/v1/messages"
	apiVersion       = "2023-06-01"

	// APIKeyEnv is checked before the keyring.
	APIKeyEnv = "ANTHROPIC_API_KEY"
	// APIKeyCredential is the keyring entry holding the Claude API key.
	APIKeyCredential = "claude-api-key"
)

// ClaudeConfig configures a ClaudeSummarizer. Zero values select defaults.
type ClaudeConfig struct {
	APIKey     string
	Model      string
	MaxTokens  int
	BaseURL    string
	HTTPClient *http.Client
}

// ClaudeSummarizer summarizes open tasks with the Claude Messages API.
type ClaudeSummarizer struct {
	apiKey    string
	model     string
	maxTokens int
	endpoint  string
	client    *http.Client
}

// NewClaudeSummarizer creates a summarizer with the given configuration.
func NewClaudeSummarizer(cfg ClaudeConfig) *ClaudeSummarizer {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}

	return &ClaudeSummarizer{
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		endpoint:  strings.TrimRight(cfg.BaseURL, "/") + messagesPath,
		client:    cfg.HTTPClient,
	}
}

// Summarize sends the open tasks to Claude and returns its text reply.
func (c *ClaudeSummarizer) Summarize(ctx context.Context, req SummaryRequest) (SummaryResponse, error) {
	resp, err := c.callAPI(ctx, buildPrompt(req))
	if err != nil {
		return SummaryResponse{}, err
	}

	var textParts []string
	for _, block := range resp.Content {
		if block.Type == "text" {
			textParts = append(textParts, block.Text)
		}
	}
	summary := strings.TrimSpace(strings.Join(textParts, ""))
	if summary == "" {
		return SummaryResponse{}, errors.New("empty summary in API response")
	}
	return SummaryResponse{Summary: summary}, nil
}

// callAPI makes a single request to the Claude Messages API.
func (c *ClaudeSummarizer) callAPI(ctx context.Context, prompt string) (*apiResponse, error) {
	reqBody := apiRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []apiMessage{
			{
				Role:    "user",
				Content: []apiContentBlock{{Type: "text", Text: prompt}},
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &result, nil
}

// buildPrompt renders the open tasks into the summarization prompt.
func buildPrompt(req SummaryRequest) string {
	var sb strings.Builder

	sb.WriteString("You are a task management assistant. ")
	sb.WriteString("Please summarize the following list of open tasks, ")
	sb.WriteString("so that the user can quickly understand what's important.\n\n")

	sb.WriteString("Open Tasks:\n")
	for _, t := range req.OpenTasks {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", t.Name, t.Description))
	}

	return sb.String()
}

// LookupAPIKey returns the Claude API key from the environment, falling back
// to the system keyring. It returns "" when neither has one.
func LookupAPIKey() string {
	return lookupAPIKey(os.Getenv, credential.Get)
}

func lookupAPIKey(getenv func(string) string, keyring func(string) (string, error)) string {
	if key := strings.TrimSpace(getenv(APIKeyEnv)); key != "" {
		return key
	}
	key, err := keyring(APIKeyCredential)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(key)
}

// --- Claude API types ---

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system,omitempty"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string            `json:"role"`
	Content []apiContentBlock `json:"content"`
}

type apiContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type apiResponse struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Role       string            `json:"role"`
	Content    []apiContentBlock `json:"content"`
	Model      string            `json:"model"`
	StopReason string            `json:"stop_reason"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
