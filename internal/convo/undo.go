// ABOUTME: Undo, restart, and clear operations
// ABOUTME: Undo asks the service to delete the last turn; restart resets the session in place

package convo

import (
	"context"
	"errors"

	"github.com/weftworks/weft/internal/notify"
)

// Undo requests deletion of the last turn. Silently a no-op while a turn
// is in flight, in command mode (nothing persisted to delete), or before
// any session exists. A "conflict" outcome means the server is mid-stream
// and cannot safely undo; it is surfaced as ErrUndoConflict plus an
// undo-error notification.
func (c *Controller) Undo(ctx context.Context) error {
	c.mu.Lock()
	if c.phase != PhaseIdle || c.commandMode || c.session == nil {
		c.mu.Unlock()
		return nil
	}
	conversationID := c.session.ConversationID
	c.mu.Unlock()

	outcome, err := c.svc.DeleteLastTurn(ctx, conversationID)
	if err != nil {
		c.surfaceFailure(err)
		return err
	}

	switch outcome {
	case UndoDeleted:
		if err := c.reconcile(ctx); err != nil {
			c.surfaceFailure(err)
			return err
		}
		c.publish(notify.KindUndoComplete, nil)
		return nil

	case UndoNone:
		return nil

	case UndoConflict:
		c.publish(notify.KindUndoError, notify.ErrorInfo{Message: ErrUndoConflict.Error()})
		return ErrUndoConflict

	default:
		err := errors.New("unknown undo outcome: " + string(outcome))
		c.surfaceFailure(err)
		return err
	}
}

// Restart discards the session, context snapshot, all messages, and any
// recorded auth error, and resets turn navigation to follow the latest
// turn. Silently a no-op while a turn is in flight.
func (c *Controller) Restart() {
	c.mu.Lock()
	if c.phase != PhaseIdle {
		c.mu.Unlock()
		return
	}
	c.session = nil
	c.messages = nil
	c.messageOverride = nil
	c.pendingCalls = nil
	c.lastAuthErr = nil
	c.activeTurnIndex = 0
	c.streamingMessageID = ""
	c.mu.Unlock()

	c.publish(notify.KindRestart, nil)
}

// ClearConversation is an alias for Restart kept for the public control
// surface.
func (c *Controller) ClearConversation() {
	c.Restart()
}
