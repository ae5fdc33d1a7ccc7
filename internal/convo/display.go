// ABOUTME: Display cursor operations: display mode, turn navigation, collapse, command mode
// ABOUTME: Pure configuration changes; never touch message or session data

package convo

import (
	"github.com/weftworks/weft/internal/notify"
	"github.com/weftworks/weft/internal/turns"
)

// SetDisplayMode switches between full-history and single-turn display.
// A configuration change only; visible turns re-resolve on the next read.
func (c *Controller) SetDisplayMode(mode turns.DisplayMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.displayMode = mode
}

// DisplayMode returns the active display mode.
func (c *Controller) DisplayMode() turns.DisplayMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.displayMode
}

// SetCommandMode toggles stateless operation: every send starts a fresh
// session, context capture recurs per message, and undo has nothing to
// delete.
func (c *Controller) SetCommandMode(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commandMode = enabled
}

// CommandMode reports whether command mode is enabled.
func (c *Controller) CommandMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandMode
}

// GoToTurn pins navigation to the 1-based turn k. A no-op — no state
// change, no notification — when k is out of range or the display mode is
// not last-turn. Successful navigation emits turn-navigation and, when
// more turns exist than are displayed, turns-hidden.
func (c *Controller) GoToTurn(k int) {
	c.mu.Lock()
	if c.displayMode != turns.ModeLastTurn {
		c.mu.Unlock()
		return
	}
	total := len(turns.Group(c.messages))
	if k < 1 || k > total {
		c.mu.Unlock()
		return
	}
	c.activeTurnIndex = k
	c.mu.Unlock()

	c.publish(notify.KindTurnNavigation, notify.TurnNavigation{
		TurnIndex:  k,
		TotalTurns: total,
	})
	if total > 1 {
		c.publish(notify.KindTurnsHidden, notify.TurnsHidden{
			TotalTurns:         total,
			DisplayedTurnIndex: k,
			HiddenTurns:        total - 1,
		})
	}
}

// GoToNextTurn navigates one turn forward.
func (c *Controller) GoToNextTurn() {
	nav := c.Nav()
	if nav.CanGoNext {
		c.GoToTurn(nav.Current + 1)
	}
}

// GoToPreviousTurn navigates one turn back.
func (c *Controller) GoToPreviousTurn() {
	nav := c.Nav()
	if nav.CanGoPrev {
		c.GoToTurn(nav.Current - 1)
	}
}

// GoToFirstTurn jumps to turn 1.
func (c *Controller) GoToFirstTurn() {
	nav := c.Nav()
	if nav.CanGoFirst {
		c.GoToTurn(1)
	}
}

// GoToLastTurn resumes tracking the latest turn.
func (c *Controller) GoToLastTurn() {
	c.mu.Lock()
	if c.displayMode != turns.ModeLastTurn {
		c.mu.Unlock()
		return
	}
	total := len(turns.Group(c.messages))
	c.activeTurnIndex = 0
	c.mu.Unlock()

	if total > 0 {
		c.publish(notify.KindTurnNavigation, notify.TurnNavigation{
			TurnIndex:  total,
			TotalTurns: total,
		})
	}
}

// SetCollapsible configures whether the conversation can collapse at all.
// Disabling it while collapsed expands immediately.
func (c *Controller) SetCollapsible(enabled bool) {
	c.mu.Lock()
	c.collapsible = enabled
	wasCollapsed := c.collapsed
	if !enabled {
		c.collapsed = false
	}
	c.mu.Unlock()

	if !enabled && wasCollapsed {
		c.publish(notify.KindExpanded, nil)
	}
}

// Collapse hides the conversation. No-op unless collapsible.
func (c *Controller) Collapse() {
	c.mu.Lock()
	if !c.collapsible || c.collapsed {
		c.mu.Unlock()
		return
	}
	c.collapsed = true
	c.mu.Unlock()

	c.publish(notify.KindCollapsed, nil)
}

// Expand shows the conversation.
func (c *Controller) Expand() {
	c.mu.Lock()
	if !c.collapsed {
		c.mu.Unlock()
		return
	}
	c.collapsed = false
	c.mu.Unlock()

	c.publish(notify.KindExpanded, nil)
}

// ToggleCollapse flips the collapsed state.
func (c *Controller) ToggleCollapse() {
	c.mu.Lock()
	collapsed := c.collapsed
	c.mu.Unlock()

	if collapsed {
		c.Expand()
	} else {
		c.Collapse()
	}
}

// IsCollapsed reports the collapse state.
func (c *Controller) IsCollapsed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.collapsed
}
