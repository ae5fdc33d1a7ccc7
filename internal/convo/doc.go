// Package convo implements the conversation orchestrator: the top-level
// state machine that owns the message list and session, drives
// send/undo/restart flows against the conversation service, interprets
// the server event stream, and coordinates tool-call suspensions.
//
// # State model
//
// The controller moves through explicit phases:
//
//	Idle -> Sending -> Streaming -> [ToolCallPending -> ToolCallExecuting -> Resuming -> Streaming]* -> Idle
//
// A second send cannot begin while a turn is in flight; the guard is the
// phase itself, not a lock, because the model is cooperative. The mutex
// only protects snapshot readers on other goroutines.
//
// # Optimistic sends
//
// Send appends a temporary user message and an empty assistant
// placeholder before the network call resolves, so hosts can render the
// turn immediately. If the call fails, both are removed and any consumed
// pending attachments return to the queue. After the turn completes the
// whole list is replaced by a history fetch — server truth wins — with a
// single documented override: content from a `message` event replaces the
// last assistant message.
//
// # Notifications
//
// Every handled stream event is re-emitted outward after internal state
// mutation, in arrival order, via the notify.Emitter returned by
// Notifier(). Hosts render from notifications plus snapshot readers
// (Messages, VisibleTurns, Nav) and route all mutations back through
// controller operations.
package convo
