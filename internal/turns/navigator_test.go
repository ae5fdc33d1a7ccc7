// ABOUTME: Tests for visible-turn resolution and navigation state
// ABOUTME: Verifies full/last-turn modes, fallback behavior, and button enablement

package turns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftworks/weft/internal/message"
)

func threeTurns() []Turn {
	var msgs []message.Message
	for _, q := range []string{"q1", "q2", "q3"} {
		msgs = append(msgs,
			msg(message.RoleUser, q),
			msg(message.RoleAssistant, "a-"+q),
		)
	}
	return Group(msgs)
}

func TestResolveVisible_FullModeReturnsAll(t *testing.T) {
	all := threeTurns()
	got := ResolveVisible(all, ModeFull, 2)
	assert.Len(t, got, 3)
}

func TestResolveVisible_LastTurnFollowsLatest(t *testing.T) {
	all := threeTurns()
	// activeIndex 0 means "track latest".
	got := ResolveVisible(all, ModeLastTurn, 0)
	require.Len(t, got, 1)
	assert.Equal(t, "q3", got[0].User.Content)
}

func TestResolveVisible_LastTurnPinned(t *testing.T) {
	all := threeTurns()
	got := ResolveVisible(all, ModeLastTurn, 2)
	require.Len(t, got, 1)
	assert.Equal(t, "q2", got[0].User.Content)
}

func TestResolveVisible_OutOfRangeFallsBackToLast(t *testing.T) {
	all := threeTurns()
	for _, idx := range []int{-1, 4, 99} {
		got := ResolveVisible(all, ModeLastTurn, idx)
		require.Len(t, got, 1)
		assert.Equal(t, "q3", got[0].User.Content)
	}
}

func TestResolveVisible_EmptyTurns(t *testing.T) {
	assert.Empty(t, ResolveVisible(nil, ModeLastTurn, 0))
	assert.Empty(t, ResolveVisible(nil, ModeFull, 0))
}

func TestNav_MiddleTurn(t *testing.T) {
	all := threeTurns()
	nav := Nav(all, ModeLastTurn, 2)
	assert.Equal(t, 2, nav.Current)
	assert.Equal(t, 3, nav.Total)
	assert.True(t, nav.CanGoFirst)
	assert.True(t, nav.CanGoPrev)
	assert.True(t, nav.CanGoNext)
	assert.True(t, nav.CanGoLast)
}

func TestNav_Boundaries(t *testing.T) {
	all := threeTurns()

	first := Nav(all, ModeLastTurn, 1)
	assert.False(t, first.CanGoFirst)
	assert.False(t, first.CanGoPrev)
	assert.True(t, first.CanGoNext)

	last := Nav(all, ModeLastTurn, 0) // follow latest
	assert.Equal(t, 3, last.Current)
	assert.True(t, last.CanGoPrev)
	assert.False(t, last.CanGoNext)
	assert.False(t, last.CanGoLast)
}

func TestNav_FullModeDisablesAll(t *testing.T) {
	all := threeTurns()
	nav := Nav(all, ModeFull, 2)
	assert.Equal(t, 3, nav.Total)
	assert.False(t, nav.CanGoPrev)
	assert.False(t, nav.CanGoNext)
}

func TestNav_Empty(t *testing.T) {
	nav := Nav(nil, ModeLastTurn, 0)
	assert.Zero(t, nav.Current)
	assert.Zero(t, nav.Total)
	assert.False(t, nav.CanGoPrev)
}
