// ABOUTME: End-to-end tests driving the real HTTP client and controller against the scripted server
// ABOUTME: Covers the full turn cycle, tool-call suspension, undo, and bearer auth

package main

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftworks/weft/internal/auth"
	"github.com/weftworks/weft/internal/client"
	"github.com/weftworks/weft/internal/config"
	"github.com/weftworks/weft/internal/convo"
	"github.com/weftworks/weft/internal/message"
	"github.com/weftworks/weft/internal/toolcall"
)

func newTestStack(t *testing.T, cfg *config.Config, token string) *convo.Controller {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
		cfg.Chat.TokenDelay = 0
	}
	srv := httptest.NewServer(newServer(cfg, nil).routes())
	t.Cleanup(srv.Close)

	svc := client.New(srv.URL, auth.StaticSource(token), nil)
	return convo.New(svc, convo.Config{ProjectID: "e2e"}, nil)
}

func TestEndToEnd_FullTurn(t *testing.T) {
	cfg := config.Default()
	cfg.Chat.TokenDelay = 0
	cfg.Chat.Replies = []string{"canned answer one", "canned answer two"}
	c := newTestStack(t, cfg, "")

	require.NoError(t, c.Send(context.Background(), "hello"))

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, message.RoleUser, msgs[0].Role)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, "canned answer one", msgs[1].Content)
	assert.False(t, message.IsTempID(msgs[0].ID), "reconciliation replaced temp IDs")

	require.NoError(t, c.Send(context.Background(), "again"))
	msgs = c.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "canned answer two", msgs[3].Content)
	assert.Len(t, c.Turns(), 2)
}

func TestEndToEnd_ToolCallRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Chat.TokenDelay = 0
	cfg.Chat.ToolTrigger = "what time"
	c := newTestStack(t, cfg, "")

	c.RegisterTool("local_time", func(ctx context.Context, call toolcall.Call) (string, error) {
		return "3:04 PM", nil
	})

	require.NoError(t, c.Send(context.Background(), "what time is it?"))

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[1].Content, "3:04 PM")
	assert.Equal(t, convo.PhaseIdle, c.Phase())
}

func TestEndToEnd_Undo(t *testing.T) {
	c := newTestStack(t, nil, "")

	require.NoError(t, c.Send(context.Background(), "first"))
	require.NoError(t, c.Send(context.Background(), "second"))
	require.Len(t, c.Turns(), 2)

	require.NoError(t, c.Undo(context.Background()))
	require.Len(t, c.Turns(), 1)
	assert.Equal(t, "first", c.Turns()[0].User.Content)

	// Second undo empties the conversation; a third finds nothing.
	require.NoError(t, c.Undo(context.Background()))
	assert.Empty(t, c.Turns())
	require.NoError(t, c.Undo(context.Background()))
}

func TestEndToEnd_RejectsBadToken(t *testing.T) {
	cfg := config.Default()
	cfg.Chat.TokenDelay = 0
	cfg.Auth.Token = "right-token"
	c := newTestStack(t, cfg, "wrong-token")

	err := c.Send(context.Background(), "hello")
	require.Error(t, err)

	var authErr *auth.Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, auth.CodeInvalid, authErr.Code)
	assert.Empty(t, c.Messages(), "optimistic append rolled back")
}

func TestEndToEnd_AcceptsGoodToken(t *testing.T) {
	cfg := config.Default()
	cfg.Chat.TokenDelay = 0
	cfg.Auth.Token = "right-token"
	c := newTestStack(t, cfg, "right-token")

	require.NoError(t, c.Send(context.Background(), "hello"))
	require.Len(t, c.Messages(), 2)
}
