// ABOUTME: Tests for display cursor operations: navigation, modes, collapse
// ABOUTME: Covers out-of-range no-ops, latest-follow, hidden-turn payloads

package convo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftworks/weft/internal/message"
	"github.com/weftworks/weft/internal/notify"
	"github.com/weftworks/weft/internal/turns"
)

// seedHistory installs a fixed message list of n complete turns.
func seedHistory(c *Controller, n int) {
	var msgs []message.Message
	for i := 0; i < n; i++ {
		msgs = append(msgs,
			serverMsg(uid("u", i), message.RoleUser, "question"),
			serverMsg(uid("a", i), message.RoleAssistant, "answer"),
		)
	}
	c.mu.Lock()
	c.messages = msgs
	c.mu.Unlock()
}

func uid(prefix string, i int) string {
	return prefix + "-" + string(rune('0'+i))
}

func TestGoToTurn_OutOfRangeIsSilentNoOp(t *testing.T) {
	c, ch := newTestController(t, &mockService{})
	seedHistory(c, 3)
	c.SetDisplayMode(turns.ModeLastTurn)

	for _, k := range []int{0, -1, 4, 100} {
		c.GoToTurn(k)
	}

	assert.Empty(t, collect(ch), "out-of-range navigation emits nothing")
	assert.Equal(t, 3, c.Nav().Current, "cursor still follows the latest turn")
}

func TestGoToTurn_IgnoredInFullMode(t *testing.T) {
	c, ch := newTestController(t, &mockService{})
	seedHistory(c, 3)

	c.GoToTurn(1)

	assert.Empty(t, collect(ch))
	assert.Len(t, c.VisibleTurns(), 3, "full mode always shows everything")
}

func TestGoToTurn_EmitsNavigationAndHiddenTurns(t *testing.T) {
	c, ch := newTestController(t, &mockService{})
	seedHistory(c, 3)
	c.SetDisplayMode(turns.ModeLastTurn)

	c.GoToTurn(2)

	visible := c.VisibleTurns()
	require.Len(t, visible, 1)

	ns := collect(ch)
	require.Len(t, ns, 2)
	assert.Equal(t, notify.KindTurnNavigation, ns[0].Kind)
	navPayload := ns[0].Payload.(notify.TurnNavigation)
	assert.Equal(t, 2, navPayload.TurnIndex)
	assert.Equal(t, 3, navPayload.TotalTurns)

	assert.Equal(t, notify.KindTurnsHidden, ns[1].Kind)
	hidden := ns[1].Payload.(notify.TurnsHidden)
	assert.Equal(t, 3, hidden.TotalTurns)
	assert.Equal(t, 2, hidden.DisplayedTurnIndex)
	assert.Equal(t, 2, hidden.HiddenTurns)
}

func TestGoToTurn_SingleTurnSkipsHiddenNotification(t *testing.T) {
	c, ch := newTestController(t, &mockService{})
	seedHistory(c, 1)
	c.SetDisplayMode(turns.ModeLastTurn)

	c.GoToTurn(1)

	kinds := kindsOf(collect(ch))
	assert.Equal(t, []notify.Kind{notify.KindTurnNavigation}, kinds)
}

func TestNavigation_StepAndJump(t *testing.T) {
	c, _ := newTestController(t, &mockService{})
	seedHistory(c, 4)
	c.SetDisplayMode(turns.ModeLastTurn)

	// Latest-follow: reports turn 4 of 4, next disabled.
	nav := c.Nav()
	assert.Equal(t, 4, nav.Current)
	assert.False(t, nav.CanGoNext)
	assert.True(t, nav.CanGoPrev)

	c.GoToPreviousTurn()
	assert.Equal(t, 3, c.Nav().Current)

	c.GoToFirstTurn()
	nav = c.Nav()
	assert.Equal(t, 1, nav.Current)
	assert.False(t, nav.CanGoPrev)
	assert.False(t, nav.CanGoFirst)

	c.GoToPreviousTurn() // at the edge: no movement
	assert.Equal(t, 1, c.Nav().Current)

	c.GoToNextTurn()
	assert.Equal(t, 2, c.Nav().Current)

	c.GoToLastTurn()
	nav = c.Nav()
	assert.Equal(t, 4, nav.Current)
	assert.False(t, nav.CanGoLast)
}

func TestGoToLastTurn_ResumesFollowingNewTurns(t *testing.T) {
	c, _ := newTestController(t, &mockService{})
	seedHistory(c, 2)
	c.SetDisplayMode(turns.ModeLastTurn)

	c.GoToTurn(1)
	require.Equal(t, 1, c.Nav().Current)

	c.GoToLastTurn()
	assert.Equal(t, 2, c.Nav().Current)

	// A new turn arrives; the cursor follows without another navigation.
	seedHistory(c, 3)
	assert.Equal(t, 3, c.Nav().Current)
	visible := c.VisibleTurns()
	require.Len(t, visible, 1)
}

func TestCollapse_RequiresCollapsible(t *testing.T) {
	c, ch := newTestController(t, &mockService{})

	c.Collapse()
	assert.False(t, c.IsCollapsed())
	assert.Empty(t, collect(ch))

	c.SetCollapsible(true)
	c.Collapse()
	assert.True(t, c.IsCollapsed())

	c.Collapse() // already collapsed: no duplicate notification
	kinds := kindsOf(collect(ch))
	assert.Equal(t, []notify.Kind{notify.KindCollapsed}, kinds)
}

func TestCollapse_DisablingCollapsibleExpands(t *testing.T) {
	c, ch := newTestController(t, &mockService{})
	c.SetCollapsible(true)
	c.Collapse()
	collect(ch)

	c.SetCollapsible(false)
	assert.False(t, c.IsCollapsed())

	kinds := kindsOf(collect(ch))
	assert.Equal(t, []notify.Kind{notify.KindExpanded}, kinds)
}

func TestToggleCollapse(t *testing.T) {
	c, ch := newTestController(t, &mockService{})
	c.SetCollapsible(true)

	c.ToggleCollapse()
	assert.True(t, c.IsCollapsed())
	c.ToggleCollapse()
	assert.False(t, c.IsCollapsed())

	kinds := kindsOf(collect(ch))
	assert.Equal(t, []notify.Kind{notify.KindCollapsed, notify.KindExpanded}, kinds)
}

func TestCommandMode_Toggle(t *testing.T) {
	c, _ := newTestController(t, &mockService{})
	assert.False(t, c.CommandMode())
	c.SetCommandMode(true)
	assert.True(t, c.CommandMode())
}
