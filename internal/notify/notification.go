// ABOUTME: Outward notification kinds and payloads produced by the controller
// ABOUTME: One kind per handled stream event plus lifecycle and navigation kinds

package notify

// Kind identifies an outward notification.
type Kind string

const (
	// Stream event re-emissions, in arrival order.
	KindToken            Kind = "token"
	KindAssistantMessage Kind = "assistant-message"
	KindMessage          Kind = "message"
	KindError            Kind = "error"
	KindComplete         Kind = "complete"
	KindCancelled        Kind = "cancelled"

	// Lifecycle.
	KindStreamStart  Kind = "stream-start"
	KindToolCall     Kind = "tool-call"
	KindAuthError    Kind = "auth-error"
	KindUndoComplete Kind = "undo-complete"
	KindUndoError    Kind = "undo-error"
	KindRestart      Kind = "restart"

	// Display.
	KindTurnNavigation Kind = "turn-navigation"
	KindTurnsHidden    Kind = "turns-hidden"
	KindCollapsed      Kind = "collapsed"
	KindExpanded       Kind = "expanded"
)

// Notification is one outward event. Payload holds the kind-specific
// struct below, or the raw stream event data for re-emitted kinds.
type Notification struct {
	Kind    Kind
	Payload any
}

// TurnNavigation is the payload of KindTurnNavigation.
type TurnNavigation struct {
	TurnIndex  int `json:"turnIndex"`
	TotalTurns int `json:"totalTurns"`
}

// TurnsHidden is the payload of KindTurnsHidden, emitted when more turns
// exist than are currently displayed.
type TurnsHidden struct {
	TotalTurns         int `json:"totalTurns"`
	DisplayedTurnIndex int `json:"displayedTurnIndex"`
	HiddenTurns        int `json:"hiddenTurns"`
}

// AuthError is the payload of KindAuthError.
type AuthError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RequiresAuth bool   `json:"requiresAuth"`
}

// ErrorInfo is the payload of KindError and KindUndoError.
type ErrorInfo struct {
	Message string `json:"message"`
}
