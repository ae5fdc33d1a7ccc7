// ABOUTME: Coordinator executes a requested tool-call batch against the registry
// ABOUTME: All-or-nothing coverage check, sequential execution, per-call error payloads

package toolcall

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// ErrHandlerMissing is returned when at least one requested tool has no
// registered handler. No handler executes in that case: partial tool
// execution would leave the turn in an inconsistent state.
type ErrHandlerMissing struct {
	Missing []string
}

func (e *ErrHandlerMissing) Error() string {
	return fmt.Sprintf("no handler registered for tool(s): %s", strings.Join(e.Missing, ", "))
}

// Coordinator validates handler coverage and runs tool-call batches.
type Coordinator struct {
	registry *Registry
	logger   *slog.Logger
}

// NewCoordinator creates a coordinator over the given registry.
// Pass nil logger for default.
func NewCoordinator(registry *Registry, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		registry: registry,
		logger:   logger.With("component", "toolcall"),
	}
}

// Execute runs every call in order and returns one result per call.
//
// Coverage is all-or-nothing: if any requested tool lacks a handler,
// Execute returns *ErrHandlerMissing and nothing runs. A handler that
// fails produces a synthesized error result for its call; sibling calls
// still execute and the batch still returns len(calls) results.
func (c *Coordinator) Execute(ctx context.Context, calls []Call) ([]Result, error) {
	if len(calls) == 0 {
		return nil, nil
	}

	var missing []string
	for _, call := range calls {
		if _, ok := c.registry.Lookup(call.Name); !ok {
			missing = append(missing, call.Name)
		}
	}
	if len(missing) > 0 {
		return nil, &ErrHandlerMissing{Missing: missing}
	}

	results := make([]Result, 0, len(calls))
	for _, call := range calls {
		handler, _ := c.registry.Lookup(call.Name)

		content, err := handler(ctx, call)
		if err != nil {
			c.logger.Warn("tool handler failed",
				"tool", call.Name,
				"tool_call_id", call.ID,
				"error", err)
			content = errorPayload(err)
		} else {
			c.logger.Debug("tool handler completed",
				"tool", call.Name,
				"tool_call_id", call.ID)
		}

		results = append(results, Result{
			ToolCallID: call.ID,
			Name:       call.Name,
			Content:    content,
		})
	}

	return results, nil
}

// errorPayload encodes a handler failure as the JSON content submitted
// for that single call.
func errorPayload(err error) string {
	data, marshalErr := json.Marshal(map[string]string{"error": err.Error()})
	if marshalErr != nil {
		return `{"error":"tool handler failed"}`
	}
	return string(data)
}
