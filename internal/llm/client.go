package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"study-plan-service/internal/config"
)

// Client talks to an OpenAI-compatible chat completions endpoint (Ollama,
// vLLM, OpenAI itself). All study-aid generation goes through it.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

type ChatCompletionRequest struct {
	Model       string                  `json:"model"`
	Messages    []ChatCompletionMessage `json:"messages"`
	Stream      bool                    `json:"stream"`
	Temperature *float64                `json:"temperature,omitempty"`
	MaxTokens   *int                    `json:"max_tokens,omitempty"`
}

type ChatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message ChatCompletionMessage `json:"message"`
	} `json:"choices"`
}

func NewClient(cfg config.LLMConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second // generation can be slow on local models
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}
}

func (c *Client) IsConnected() bool {
	resp, err := http.Get(c.baseURL + "/models")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == 200
}

// Complete sends one system+user exchange and returns the assistant text.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	request := ChatCompletionRequest{
		Model: c.model,
		Messages: []ChatCompletionMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream: false,
	}

	response, err := c.sendChatRequest(ctx, request)
	if err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}
	return StripReasoning(response.Choices[0].Message.Content), nil
}

func (c *Client) sendChatRequest(ctx context.Context, request ChatCompletionRequest) (*ChatCompletionResponse, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" && c.apiKey != "none" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	if resp.StatusCode != 200 {
		log.Printf("LLM API error (status %d): %.300s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("LLM API error (status %d)", resp.StatusCode)
	}

	var response ChatCompletionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// StripReasoning removes <think>...</think> blocks that reasoning models
// prepend to their answers.
func StripReasoning(content string) string {
	for {
		start := strings.Index(content, "<think>")
		if start == -1 {
			break
		}
		end := strings.Index(content, "</think>")
		if end == -1 {
			content = content[:start]
			break
		}
		content = content[:start] + content[end+len("</think>"):]
	}
	return strings.TrimSpace(content)
}

// ExtractJSON pulls the first JSON object or array out of a model reply,
// tolerating markdown code fences and surrounding prose.
func ExtractJSON(content string) (string, error) {
	content = StripReasoning(content)

	if fenced := betweenFences(content); fenced != "" {
		content = fenced
	}

	objStart := strings.Index(content, "{")
	arrStart := strings.Index(content, "[")
	start, closer := objStart, "}"
	if arrStart != -1 && (objStart == -1 || arrStart < objStart) {
		start, closer = arrStart, "]"
	}
	if start == -1 {
		return "", fmt.Errorf("no JSON found in LLM response")
	}

	end := strings.LastIndex(content, closer)
	if end <= start {
		return "", fmt.Errorf("unterminated JSON in LLM response")
	}
	return content[start : end+1], nil
}

func betweenFences(content string) string {
	start := strings.Index(content, "```")
	if start == -1 {
		return ""
	}
	rest := content[start+3:]
	if nl := strings.Index(rest, "\n"); nl != -1 && nl < 10 {
		rest = rest[nl+1:] // drop the language tag line
	}
	end := strings.Index(rest, "```")
	if end == -1 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}
