// Package assistant wraps the external driving-test chat endpoint. It is
// a thin request/response client: one POST per question, no retries, no
// backoff. The endpoint is a remote collaborator that may fail or be
// slow; callers bound it with a context.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Message is one turn of conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the payload the chat endpoint expects.
type Request struct {
	Question            string    `json:"question"`
	ConversationHistory []Message `json:"conversationHistory"`
}

// Source cites a document chunk backing an answer.
type Source struct {
	DocumentTitle string `json:"document_title"`
	Category      string `json:"category"`
	Topic         string `json:"topic"`
	ChunkID       string `json:"chunk_id"`
}

// Response is the endpoint's answer. Type is one of mto_answer,
// general_answer, or error; Confidence, when present, is high, medium,
// or low.
type Response struct {
	Content    string   `json:"content"`
	Type       string   `json:"type"`
	Confidence string   `json:"confidence,omitempty"`
	Sources    []Source `json:"sources,omitempty"`
}

// Client talks to one chat endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// New builds a client with the given request timeout.
func New(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

// Ask sends one question with its history and returns the answer.
func (c *Client) Ask(ctx context.Context, req Request) (Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("encode assistant request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build assistant request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("assistant request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, fmt.Errorf("assistant endpoint returned %s", resp.Status)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Response{}, fmt.Errorf("decode assistant response: %w", err)
	}
	return out, nil
}
