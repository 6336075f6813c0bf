package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// chatClient implements the OpenAI-style chat-completions wire shape shared
// by ZhipuAI, SiliconFlow and OpenAI-compatible intranet servers. Each
// adapter embeds one and contributes only its endpoint and defaults.
type chatClient struct {
	engineID     string
	baseURL      string
	apiKey       string
	defaultModel string
	capability   Capability
	client       *http.Client
}

func newChatClient(engineID, baseURL, apiKey, defaultModel string, capability Capability, timeouts Timeouts) *chatClient {
	if timeouts.Translate <= 0 {
		timeouts.Translate = DefaultTimeouts.Translate
	}
	return &chatClient{
		engineID:     engineID,
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		defaultModel: defaultModel,
		capability:   capability,
		client:       &http.Client{Timeout: timeouts.Translate},
	}
}

func (c *chatClient) ID() string             { return c.engineID }
func (c *chatClient) Capability() Capability { return c.capability }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

func (c *chatClient) Translate(ctx context.Context, model string, req Request) (string, error) {
	if model == "" {
		model = c.defaultModel
	}

	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    BuildMessages(c.capability, req),
		Temperature: 0.2,
		MaxTokens:   4096,
	})
	if err != nil {
		return "", NewError(c.engineID, MalformedResponse, fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", NewError(c.engineID, ConnectionFailure, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", NewError(c.engineID, categorizeTransport(err), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", NewError(c.engineID, ConnectionFailure, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		// Error payload shapes differ per backend; pull whatever message
		// field exists instead of binding a struct per vendor.
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = gjson.GetBytes(raw, "message").String()
		}
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return "", NewError(c.engineID, categorizeStatus(resp.StatusCode),
			fmt.Errorf("status %d: %s", resp.StatusCode, msg))
	}

	content := gjson.GetBytes(raw, "choices.0.message.content")
	if !content.Exists() || strings.TrimSpace(content.String()) == "" {
		return "", NewError(c.engineID, MalformedResponse, fmt.Errorf("no completion in response"))
	}
	return content.String(), nil
}

// Probe lists models as a cheap reachability and auth check.
func (c *chatClient) Probe(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return NewError(c.engineID, ConnectionFailure, err)
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	probeClient := &http.Client{Timeout: 5 * time.Second}
	resp, err := probeClient.Do(httpReq)
	if err != nil {
		return NewError(c.engineID, categorizeTransport(err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return NewError(c.engineID, categorizeStatus(resp.StatusCode),
			fmt.Errorf("probe returned status %d", resp.StatusCode))
	}
	return nil
}
