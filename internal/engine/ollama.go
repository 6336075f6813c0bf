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
)

const (
	ollamaDefaultBaseURL = "http://localhost:11434"
	ollamaDefaultModel   = "qwen2.5:7b"
)

// Ollama wraps a locally hosted Ollama server. Local models paraphrase
// marker tokens too often to trust, so glossary terms are substituted
// directly before the call.
type Ollama struct {
	baseURL      string
	defaultModel string
	client       *http.Client
}

func NewOllama(baseURL, model string, timeouts Timeouts) *Ollama {
	if baseURL == "" {
		baseURL = ollamaDefaultBaseURL
	}
	if model == "" {
		model = ollamaDefaultModel
	}
	if timeouts.Translate <= 0 {
		timeouts.Translate = DefaultTimeouts.Translate
	}
	return &Ollama{
		baseURL:      strings.TrimRight(baseURL, "/"),
		defaultModel: model,
		client:       &http.Client{Timeout: timeouts.Translate},
	}
}

func (s *Ollama) ID() string             { return "ollama" }
func (s *Ollama) Capability() Capability { return DirectReplace }

func (s *Ollama) Translate(ctx context.Context, model string, req Request) (string, error) {
	if model == "" {
		model = s.defaultModel
	}

	body, err := json.Marshal(map[string]any{
		"model":    model,
		"messages": BuildMessages(DirectReplace, req),
		"stream":   false,
		"options":  map[string]any{"temperature": 0.2},
	})
	if err != nil {
		return "", NewError(s.ID(), MalformedResponse, fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", NewError(s.ID(), ConnectionFailure, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", NewError(s.ID(), categorizeTransport(err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", NewError(s.ID(), categorizeStatus(resp.StatusCode),
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
	}

	var ollamaResp struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return "", NewError(s.ID(), MalformedResponse, fmt.Errorf("decode response: %w", err))
	}
	if strings.TrimSpace(ollamaResp.Message.Content) == "" {
		return "", NewError(s.ID(), MalformedResponse, fmt.Errorf("empty completion"))
	}
	return ollamaResp.Message.Content, nil
}

func (s *Ollama) Probe(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", nil)
	if err != nil {
		return NewError(s.ID(), ConnectionFailure, err)
	}

	probeClient := &http.Client{Timeout: 5 * time.Second}
	resp, err := probeClient.Do(httpReq)
	if err != nil {
		return NewError(s.ID(), categorizeTransport(err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return NewError(s.ID(), categorizeStatus(resp.StatusCode),
			fmt.Errorf("probe returned status %d", resp.StatusCode))
	}
	return nil
}
