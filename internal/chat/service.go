package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrEmptyMessage is returned when the user message is blank.
	ErrEmptyMessage = errors.New("message must not be empty")
	// ErrUpstreamUnavailable is returned on transport-level failure reaching the graph.
	ErrUpstreamUnavailable = errors.New("chat graph is unavailable")
	// ErrMalformedResponse is returned when the graph reply lacks textual content.
	ErrMalformedResponse = errors.New("chat graph returned no usable reply")
)

// Service relays user messages to the conversational graph's invocation endpoint.
type Service struct {
	client   *http.Client
	graphURL string
}

// Option configures the Service during construction.
type Option func(*Service)

// WithGraphURL overrides the base URL of the graph invocation endpoint.
func WithGraphURL(baseURL string) Option {
	return func(s *Service) {
		s.graphURL = strings.TrimRight(baseURL, "/")
	}
}

// NewService constructs a Service.
func NewService(client *http.Client, opts ...Option) *Service {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	svc := &Service{client: client}

	for _, opt := range opts {
		opt(svc)
	}

	return svc
}

type invokeRequest struct {
	Messages []string `json:"messages"`
}

type invokeResponse struct {
	Messages []struct {
		Content string `json:"content"`
	} `json:"messages"`
}

// SendMessage forwards the message to the graph with a single-element history
// and returns the content of the final reply message verbatim.
func (s *Service) SendMessage(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}

	body, err := json.Marshal(invokeRequest{Messages: []string{text}})
	if err != nil {
		return "", fmt.Errorf("encode graph request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.graphURL+"/invoke", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create graph request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var payload invokeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if len(payload.Messages) == 0 {
		return "", ErrMalformedResponse
	}

	reply := payload.Messages[len(payload.Messages)-1].Content
	if reply == "" {
		return "", ErrMalformedResponse
	}

	return reply, nil
}
