// ABOUTME: Scripted conversation server: in-memory store plus SSE streaming handlers
// ABOUTME: Replies cycle through configured canned text; a trigger substring scripts a tool call

package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/weftworks/weft/internal/config"
	"github.com/weftworks/weft/internal/message"
	"github.com/weftworks/weft/internal/toolcall"
)

const defaultReply = "This is a scripted reply from weft-chatd. Everything is working."

// conversation is one in-memory conversation.
type conversation struct {
	id       string
	messages []message.Message
	// pendingCallID is non-empty while a scripted tool call awaits results.
	pendingCallID string
}

// server holds all conversations and the scripted reply state.
type server struct {
	cfg    *config.Config
	logger *slog.Logger

	mu       sync.Mutex
	convos   map[string]*conversation
	replyIdx int
}

func newServer(cfg *config.Config, logger *slog.Logger) *server {
	if logger == nil {
		logger = slog.Default()
	}
	return &server{
		cfg:    cfg,
		logger: logger.With("component", "chatd"),
		convos: make(map[string]*conversation),
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/conversations", s.handleStartConversation)
	mux.HandleFunc("GET /api/conversations/{id}/messages", s.handleGetMessages)
	mux.HandleFunc("DELETE /api/conversations/{id}/turns/last", s.handleDeleteLastTurn)
	mux.HandleFunc("POST /api/conversations/{id}/messages", s.handleStreamMessage)
	mux.HandleFunc("POST /api/conversations/{id}/tool-results", s.handleToolResults)
	return s.requireAuth(mux)
}

// requireAuth enforces the configured bearer token. No token configured
// means the server is open.
func (s *server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Auth.Token == "" {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			writeAuthError(w, "required", "authentication required")
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		if token != s.cfg.Auth.Token {
			writeAuthError(w, "invalid", "token rejected")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeAuthError(w http.ResponseWriter, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": msg},
	})
}

func (s *server) handleStartConversation(w http.ResponseWriter, r *http.Request) {
	conv := &conversation{id: uuid.New().String()}

	s.mu.Lock()
	s.convos[conv.id] = conv
	s.mu.Unlock()

	s.logger.Info("conversation started", "conversation_id", conv.id)
	writeJSON(w, http.StatusOK, map[string]string{"id": conv.id})
}

func (s *server) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	conv, ok := s.lookup(r.PathValue("id"))
	if !ok {
		http.Error(w, "conversation not found", http.StatusNotFound)
		return
	}

	s.mu.Lock()
	msgs := make([]message.Message, len(conv.messages))
	copy(msgs, conv.messages)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (s *server) handleDeleteLastTurn(w http.ResponseWriter, r *http.Request) {
	conv, ok := s.lookup(r.PathValue("id"))
	if !ok {
		http.Error(w, "conversation not found", http.StatusNotFound)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if conv.pendingCallID != "" {
		http.Error(w, "turn in progress", http.StatusConflict)
		return
	}

	// Find the last user message; the turn starts there.
	start := -1
	for i := len(conv.messages) - 1; i >= 0; i-- {
		if conv.messages[i].Role == message.RoleUser {
			start = i
			break
		}
	}
	if start < 0 {
		http.Error(w, "nothing to delete", http.StatusNotFound)
		return
	}

	conv.messages = conv.messages[:start]
	s.logger.Info("turn deleted", "conversation_id", conv.id, "remaining", len(conv.messages))
	w.WriteHeader(http.StatusOK)
}

// streamMessageRequest is the inbound message body.
type streamMessageRequest struct {
	Content     string               `json:"content"`
	Attachments []message.Attachment `json:"attachments"`
	Context     string               `json:"context"`
}

func (s *server) handleStreamMessage(w http.ResponseWriter, r *http.Request) {
	conv, ok := s.lookup(r.PathValue("id"))
	if !ok {
		http.Error(w, "conversation not found", http.StatusNotFound)
		return
	}

	var req streamMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		http.Error(w, "content required", http.StatusBadRequest)
		return
	}

	userMsg := message.Message{
		ID:          uuid.New().String(),
		Role:        message.RoleUser,
		Content:     req.Content,
		Created:     time.Now(),
		Attachments: req.Attachments,
	}

	s.mu.Lock()
	conv.messages = append(conv.messages, userMsg)
	s.mu.Unlock()

	sse, ok := newSSEWriter(w)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	trigger := s.cfg.Chat.ToolTrigger
	if trigger != "" && strings.Contains(strings.ToLower(req.Content), strings.ToLower(trigger)) {
		s.suspendWithToolCall(conv, sse)
		return
	}

	s.streamReply(r, conv, sse)
}

// suspendWithToolCall emits a scripted external_tool_call and leaves the
// conversation waiting for results.
func (s *server) suspendWithToolCall(conv *conversation, sse *sseWriter) {
	callID := uuid.New().String()

	s.mu.Lock()
	conv.pendingCallID = callID
	s.mu.Unlock()

	s.logger.Info("scripted tool call", "conversation_id", conv.id, "call_id", callID)
	sse.event("external_tool_call", map[string]any{
		"calls": []map[string]any{{
			"id": callID,
			"function": map[string]any{
				"name":      "local_time",
				"arguments": map[string]any{},
			},
		}},
	})
}

// streamReply streams the next canned reply token by token, appends the
// assistant message, and completes the turn.
func (s *server) streamReply(r *http.Request, conv *conversation, sse *sseWriter) {
	reply := s.nextReply()

	for _, word := range strings.SplitAfter(reply, " ") {
		select {
		case <-r.Context().Done():
			s.logger.Debug("client disconnected mid-stream", "conversation_id", conv.id)
			return
		case <-time.After(s.cfg.Chat.TokenDelay):
		}
		sse.event("token", map[string]string{"contentDelta": word})
	}

	assistantMsg := message.Message{
		ID:      uuid.New().String(),
		Role:    message.RoleAssistant,
		Content: reply,
		Created: time.Now(),
	}

	s.mu.Lock()
	conv.messages = append(conv.messages, assistantMsg)
	s.mu.Unlock()

	sse.event("message", map[string]string{"content": reply})
	sse.event("complete", map[string]any{})
}

// toolResultsRequest is the inbound tool results body.
type toolResultsRequest struct {
	Results []toolcall.Result `json:"results"`
	Resume  bool              `json:"resume"`
}

func (s *server) handleToolResults(w http.ResponseWriter, r *http.Request) {
	conv, ok := s.lookup(r.PathValue("id"))
	if !ok {
		http.Error(w, "conversation not found", http.StatusNotFound)
		return
	}

	var req toolResultsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	pending := conv.pendingCallID
	conv.pendingCallID = ""
	s.mu.Unlock()

	if pending == "" {
		http.Error(w, "no pending tool call", http.StatusConflict)
		return
	}

	sse, ok := newSSEWriter(w)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	if !req.Resume {
		sse.event("complete", map[string]any{})
		return
	}

	reply := "Tool results received."
	if len(req.Results) > 0 && req.Results[0].Content != "" {
		reply = fmt.Sprintf("The tool reported: %s", req.Results[0].Content)
	}

	for _, word := range strings.SplitAfter(reply, " ") {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(s.cfg.Chat.TokenDelay):
		}
		sse.event("token", map[string]string{"contentDelta": word})
	}

	assistantMsg := message.Message{
		ID:      uuid.New().String(),
		Role:    message.RoleAssistant,
		Content: reply,
		Created: time.Now(),
	}

	s.mu.Lock()
	conv.messages = append(conv.messages, assistantMsg)
	s.mu.Unlock()

	sse.event("complete", map[string]any{})
}

func (s *server) lookup(id string) (*conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convos[id]
	return conv, ok
}

func (s *server) nextReply() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.cfg.Chat.Replies) == 0 {
		return defaultReply
	}
	reply := s.cfg.Chat.Replies[s.replyIdx%len(s.cfg.Chat.Replies)]
	s.replyIdx++
	return reply
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// sseWriter writes server-sent events and flushes after each one.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newSSEWriter(w http.ResponseWriter) (*sseWriter, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	return &sseWriter{w: w, flusher: flusher}, true
}

func (s *sseWriter) event(eventType string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", eventType, payload)
	s.flusher.Flush()
}
