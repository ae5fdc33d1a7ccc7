// ABOUTME: Named tool handler registry for externally-executed tool calls
// ABOUTME: Plain name->handler map; coverage enforcement lives in the Coordinator

package toolcall

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// Call is one tool invocation requested by the server.
type Call struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// Result is the client-produced answer for one call. Content is the raw
// string submitted back to the service (handlers typically return JSON).
type Result struct {
	ToolCallID string `json:"toolCallId"`
	Name       string `json:"name"`
	Content    string `json:"content"`
}

// Handler executes one tool call. Handlers may block; they run
// sequentially in call order. A returned error is converted into an
// error-payload result for that call only.
type Handler func(ctx context.Context, call Call) (string, error)

// Registry maps tool names to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds or replaces the handler for a tool name.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Unregister removes a tool handler.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, name)
}

// Lookup returns the handler for name, if registered.
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
