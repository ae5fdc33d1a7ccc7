// ABOUTME: HTTP client for the conversation service API with JWT bearer auth
// ABOUTME: Implements the controller's Service interface over JSON + SSE endpoints

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/weftworks/weft/internal/auth"
	"github.com/weftworks/weft/internal/convo"
	"github.com/weftworks/weft/internal/message"
	"github.com/weftworks/weft/internal/toolcall"
)

// Client talks to the conversation service over HTTP. It implements
// convo.Service; streaming endpoints return SSE bodies decoded lazily.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  auth.TokenSource
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Streaming requests
// must not carry a client-level timeout; use context deadlines instead.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a client for the service at baseURL. Pass nil logger for
// default; tokens may be auth.StaticSource("") when the deployment is
// unauthenticated.
func New(baseURL string, tokens auth.TokenSource, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		tokens:  tokens,
		logger:  logger.With("component", "client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// startConversationRequest is the JSON body for POST /api/conversations.
type startConversationRequest struct {
	Title string `json:"title,omitempty"`
}

type startConversationResponse struct {
	ID string `json:"id"`
}

// StartConversation creates a conversation and returns its ID.
func (c *Client) StartConversation(ctx context.Context, title string) (string, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/api/conversations",
		startConversationRequest{Title: title})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out startConversationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("service returned no conversation id")
	}
	return out.ID, nil
}

// wireMessage is the service's message representation.
type wireMessage struct {
	ID          string           `json:"id"`
	Role        string           `json:"role"`
	Content     string           `json:"content"`
	Created     time.Time        `json:"created"`
	IsEdited    bool             `json:"is_edited,omitempty"`
	Attachments []wireAttachment `json:"attachments,omitempty"`
}

type wireAttachment struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MediaType string `json:"media_type,omitempty"`
	URI       string `json:"uri,omitempty"`
	Size      int64  `json:"size,omitempty"`
}

type historyResponse struct {
	Messages []wireMessage `json:"messages"`
}

// FetchHistory returns the conversation's full ordered message list.
func (c *Client) FetchHistory(ctx context.Context, conversationID string) ([]message.Message, error) {
	resp, err := c.doJSON(ctx, http.MethodGet,
		"/api/conversations/"+conversationID+"/messages", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out historyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	msgs := make([]message.Message, 0, len(out.Messages))
	for _, w := range out.Messages {
		msgs = append(msgs, fromWire(w))
	}
	return msgs, nil
}

// DeleteLastTurn asks the service to remove the most recent turn.
// 404 means there was nothing to delete; 409 means the server is
// mid-stream and refuses.
func (c *Client) DeleteLastTurn(ctx context.Context, conversationID string) (convo.UndoOutcome, error) {
	req, err := c.newRequest(ctx, http.MethodDelete,
		"/api/conversations/"+conversationID+"/turns/last", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("deleting last turn: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return convo.UndoDeleted, nil
	case http.StatusNotFound:
		return convo.UndoNone, nil
	case http.StatusConflict:
		return convo.UndoConflict, nil
	default:
		return "", c.responseError(resp)
	}
}

// streamMessageRequest is the JSON body for streaming a new message.
type streamMessageRequest struct {
	Content     string           `json:"content"`
	Attachments []wireAttachment `json:"attachments,omitempty"`
	Context     string           `json:"context,omitempty"`
}

// StreamMessage posts a message and returns the server event stream for
// the turn.
func (c *Client) StreamMessage(ctx context.Context, req convo.StreamRequest) (convo.EventStream, error) {
	body := streamMessageRequest{
		Content: req.Content,
		Context: req.Context,
	}
	for _, a := range req.Attachments {
		body.Attachments = append(body.Attachments, toWireAttachment(a))
	}
	return c.openStream(ctx,
		"/api/conversations/"+req.ConversationID+"/messages", body)
}

// toolResultsRequest is the JSON body for submitting tool results.
type toolResultsRequest struct {
	Results []toolcall.Result `json:"results"`
	Resume  bool              `json:"resume"`
}

// SubmitToolResults submits collected tool results. With resume=true the
// service re-opens the event stream for the remainder of the turn;
// otherwise the returned stream ends immediately.
func (c *Client) SubmitToolResults(ctx context.Context, conversationID string, results []toolcall.Result, resume bool) (convo.EventStream, error) {
	body := toolResultsRequest{Results: results, Resume: resume}
	if body.Results == nil {
		body.Results = []toolcall.Result{}
	}
	return c.openStream(ctx,
		"/api/conversations/"+conversationID+"/tool-results", body)
}

// newRequest builds a request with the bearer token attached when one is
// configured. A missing token is not an error here; the server decides
// whether auth is required.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.tokens != nil {
		if token, err := c.tokens.Token(); err == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// doJSON performs a JSON request and returns the response on 2xx. Any
// other status is classified via the auth error parser.
func (c *Client) doJSON(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, c.responseError(resp)
	}
	return resp, nil
}

// responseError reads the (already non-2xx) response body and classifies
// it. Structured 401/503 payloads become *auth.Error.
func (c *Client) responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	err := auth.ParseHTTPError(resp.StatusCode, body)
	c.logger.Debug("request failed",
		"status", resp.StatusCode,
		"error", err,
	)
	return err
}

func fromWire(w wireMessage) message.Message {
	m := message.Message{
		ID:       w.ID,
		Role:     message.Role(w.Role),
		Content:  w.Content,
		Created:  w.Created,
		IsEdited: w.IsEdited,
	}
	for _, a := range w.Attachments {
		m.Attachments = append(m.Attachments, message.Attachment{
			ID:        a.ID,
			Name:      a.Name,
			MediaType: a.MediaType,
			URI:       a.URI,
			Size:      a.Size,
		})
	}
	return m
}

func toWireAttachment(a message.Attachment) wireAttachment {
	return wireAttachment{
		ID:        a.ID,
		Name:      a.Name,
		MediaType: a.MediaType,
		URI:       a.URI,
		Size:      a.Size,
	}
}
