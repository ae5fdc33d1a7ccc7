// ABOUTME: Turn navigation resolution for the display cursor
// ABOUTME: Pure functions: which turns are visible, and which nav moves are legal

package turns

// DisplayMode selects how many turns are rendered at once.
type DisplayMode string

const (
	// ModeFull shows the entire history.
	ModeFull DisplayMode = "full"
	// ModeLastTurn shows exactly one turn at a time.
	ModeLastTurn DisplayMode = "last-turn"
)

// ResolveVisible computes the turns the presentation layer should render.
// activeIndex is 1-based; 0 means "track the latest turn". In last-turn
// mode an out-of-range index falls back to the last turn.
func ResolveVisible(all []Turn, mode DisplayMode, activeIndex int) []Turn {
	if mode != ModeLastTurn {
		return all
	}
	if len(all) == 0 {
		return nil
	}
	idx := activeIndex
	if idx < 1 || idx > len(all) {
		idx = len(all)
	}
	return all[idx-1 : idx]
}

// NavState reports the current position and which navigation moves are
// enabled, for driving prev/next button state.
type NavState struct {
	Current int // 1-based index of the displayed turn; 0 when no turns
	Total   int

	CanGoFirst bool
	CanGoPrev  bool
	CanGoNext  bool
	CanGoLast  bool
}

// Nav computes the navigation state for the given cursor. Outside
// last-turn mode all moves are disabled: there is nothing to page.
func Nav(all []Turn, mode DisplayMode, activeIndex int) NavState {
	total := len(all)
	if total == 0 || mode != ModeLastTurn {
		return NavState{Total: total}
	}
	current := activeIndex
	if current < 1 || current > total {
		current = total
	}
	return NavState{
		Current:    current,
		Total:      total,
		CanGoFirst: current > 1,
		CanGoPrev:  current > 1,
		CanGoNext:  current < total,
		CanGoLast:  current < total,
	}
}
