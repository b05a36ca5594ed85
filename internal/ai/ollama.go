package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultModel = "llama3.2:3b"

// Ollama is a Classifier backed by a local Ollama server.
type Ollama struct {
	host       string
	model      string
	httpClient *http.Client
}

// NewOllama creates an Ollama classifier. Empty host and model fall back
// to the local default server and a small on-device model.
func NewOllama(host, model string) *Ollama {
	if host == "" {
		host = "http://localhost:11434"
	}
	if model == "" {
		model = defaultModel
	}
	return &Ollama{
		host:  strings.TrimRight(host, "/"),
		model: model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Open verifies the server is reachable, pulls the model if missing
// (reporting download progress), and returns a fresh session.
func (o *Ollama) Open(ctx context.Context, progress chan<- ProgressEvent) (Session, error) {
	if !o.isHealthy(ctx) {
		return nil, fmt.Errorf("%w: ollama not reachable at %s", ErrUnavailable, o.host)
	}

	if !o.hasModel(ctx) {
		if err := o.pullModel(ctx, progress); err != nil {
			return nil, fmt.Errorf("download model %s: %w", o.model, err)
		}
	}

	emit(progress, ProgressEvent{Phase: PhaseLoad})
	return &ollamaSession{client: o}, nil
}

// isHealthy checks if the Ollama server is reachable.
func (o *Ollama) isHealthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.host+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// hasModel checks whether the configured model is already present.
func (o *Ollama) hasModel(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.host+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return false
	}
	for _, m := range tags.Models {
		if m.Name == o.model {
			return true
		}
	}
	return false
}

// pullModel streams /api/pull, forwarding byte counters as download events.
func (o *Ollama) pullModel(ctx context.Context, progress chan<- ProgressEvent) error {
	body, err := json.Marshal(map[string]any{"model": o.model})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.host+"/api/pull", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	// The pull stream can outlive the client timeout for large models.
	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pull: status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var line struct {
			Status    string `json:"status"`
			Completed int64  `json:"completed"`
			Total     int64  `json:"total"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			continue
		}
		if line.Total > 0 {
			emit(progress, ProgressEvent{
				Phase:     PhaseDownload,
				Completed: line.Completed,
				Total:     line.Total,
			})
		}
	}
	return scanner.Err()
}

// ollamaSession issues single-shot generate calls against the server.
type ollamaSession struct {
	client *Ollama
	closed bool
}

// generateRequest is the request body for Ollama's /api/generate endpoint.
type generateRequest struct {
	Model  string     `json:"model"`
	Prompt string     `json:"prompt"`
	Format jsonSchema `json:"format"`
	Stream bool       `json:"stream"`
}

// generateResponse is the response from Ollama's /api/generate endpoint.
type generateResponse struct {
	Response string `json:"response"`
}

func (s *ollamaSession) Classify(ctx context.Context, req Request) (*Result, error) {
	if s.closed {
		return nil, fmt.Errorf("classify: session closed")
	}

	body, err := json.Marshal(generateRequest{
		Model:  s.client.model,
		Prompt: buildPrompt(req),
		Format: classificationSchema(req.Categories),
		Stream: false,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.client.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama generate request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama generate: status %d: %s", resp.StatusCode, string(respBody))
	}

	var gen generateResponse
	if err := json.Unmarshal(respBody, &gen); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if gen.Response == "" {
		return nil, ErrInvalidResponse
	}

	var result Result
	if err := json.Unmarshal([]byte(gen.Response), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &result, nil
}

func (s *ollamaSession) Close() error {
	s.closed = true
	return nil
}

// emit sends an event without blocking; a full or nil channel drops it.
func emit(ch chan<- ProgressEvent, ev ProgressEvent) {
	if ch == nil {
		return
	}
	select {
	case ch <- ev:
	default:
	}
}
