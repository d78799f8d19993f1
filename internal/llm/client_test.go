package llm

import (
	"testing"
	"time"

	"study-plan-service/internal/config"
)

func TestNewClientTimeout(t *testing.T) {
	c := NewClient(config.LLMConfig{Timeout: 30 * time.Second})
	if c.httpClient.Timeout != 30*time.Second {
		t.Errorf("configured timeout ignored: got %v", c.httpClient.Timeout)
	}

	c = NewClient(config.LLMConfig{})
	if c.httpClient.Timeout != 120*time.Second {
		t.Errorf("zero timeout should fall back to 120s, got %v", c.httpClient.Timeout)
	}
}

func TestStripReasoning(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "no reasoning block",
			content: `{"summary": "ok"}`,
			want:    `{"summary": "ok"}`,
		},
		{
			name:    "think block before answer",
			content: "<think>let me reason about this</think>\n{\"summary\": \"ok\"}",
			want:    `{"summary": "ok"}`,
		},
		{
			name:    "unterminated think block",
			content: "prefix <think>never closed",
			want:    "prefix",
		},
		{
			name:    "multiple think blocks",
			content: "<think>a</think>x<think>b</think>y",
			want:    "xy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripReasoning(tt.content); got != tt.want {
				t.Errorf("StripReasoning() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{
			name:    "bare object",
			content: `{"a": 1}`,
			want:    `{"a": 1}`,
		},
		{
			name:    "bare array",
			content: `[{"a": 1}, {"a": 2}]`,
			want:    `[{"a": 1}, {"a": 2}]`,
		},
		{
			name:    "object with surrounding prose",
			content: "Aqui está o resumo:\n{\"a\": 1}\nEspero que ajude!",
			want:    `{"a": 1}`,
		},
		{
			name:    "fenced json block",
			content: "```json\n{\"a\": 1}\n```",
			want:    `{"a": 1}`,
		},
		{
			name:    "fenced without language tag",
			content: "```\n[1, 2]\n```",
			want:    "[1, 2]",
		},
		{
			name:    "array before object picks array",
			content: `[{"q": "x"}] trailing {"ignored": true}`,
			want:    `[{"q": "x"}]`,
		},
		{
			name:    "no json at all",
			content: "desculpe, não consigo ajudar",
			wantErr: true,
		},
		{
			name:    "reasoning then json",
			content: "<think>plan</think>{\"a\": 1}",
			want:    `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ExtractJSON() expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractJSON() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}
