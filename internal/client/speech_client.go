package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/storyreel/api/internal/config"
)

// SpeechService defines the interface for the text-to-speech microservice.
type SpeechService interface {
	Synthesize(ctx context.Context, req *SynthesizeRequest) (*SynthesizeResponse, error)
	HealthCheck(ctx context.Context) error
}

// SpeechClient implements SpeechService against the TTS HTTP API.
type SpeechClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	voice      string
}

// SynthesizeRequest represents the request for speech synthesis
type SynthesizeRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

// SynthesizeResponse represents the synthesized audio asset
type SynthesizeResponse struct {
	AudioURL string  `json:"audio_url"`
	Duration float64 `json:"duration"`
	Voice    string  `json:"voice,omitempty"`
}

// NewSpeechClient creates a new speech synthesis client
func NewSpeechClient(cfg *config.SpeechConfig) *SpeechClient {
	return &SpeechClient{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		baseURL: cfg.ServiceURL,
		apiKey:  cfg.APIKey,
		voice:   cfg.Voice,
	}
}

// Synthesize renders narration text to an audio asset
func (c *SpeechClient) Synthesize(ctx context.Context, req *SynthesizeRequest) (*SynthesizeResponse, error) {
	if req.Voice == "" {
		req.Voice = c.voice
	}
	var result SynthesizeResponse
	if err := c.post(ctx, "/synthesize", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// HealthCheck checks if the speech service is available
func (c *SpeechClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("speech service unhealthy: status %d", resp.StatusCode)
	}

	return nil
}

// post sends a POST request with JSON body and parses the response
func (c *SpeechClient) post(ctx context.Context, endpoint string, body interface{}, result interface{}) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("speech service error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

// IsConfigured returns true if the client has valid configuration
func (c *SpeechClient) IsConfigured() bool {
	return c.baseURL != "" && c.apiKey != ""
}
