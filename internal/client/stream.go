// ABOUTME: SSE stream transport: opens a streaming endpoint and wraps the body in a decoder
// ABOUTME: Closing the stream closes the response body and tears down the connection

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/weftworks/weft/internal/convo"
	"github.com/weftworks/weft/internal/stream"
)

// sseStream adapts an open SSE response body to convo.EventStream.
type sseStream struct {
	body    io.ReadCloser
	decoder *stream.Decoder
}

func (s *sseStream) Next(ctx context.Context) (stream.Event, error) {
	return s.decoder.Next(ctx)
}

func (s *sseStream) Close() error {
	return s.body.Close()
}

// openStream POSTs a JSON body to an SSE endpoint and returns the open
// event stream. The caller owns the stream and must Close it.
func (c *Client) openStream(ctx context.Context, path string, body any) (convo.EventStream, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("opening stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, c.responseError(resp)
	}

	return &sseStream{
		body:    resp.Body,
		decoder: stream.NewDecoder(resp.Body, c.logger),
	}, nil
}
