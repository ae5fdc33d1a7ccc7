// Package stream decodes the server-sent event stream produced by the
// conversation service into typed events.
//
// # Wire format
//
// The service emits classic SSE frames:
//
//	event: token
//	data: {"contentDelta":"Hel"}
//
//	event: complete
//	data: {}
//
// A blank line terminates each frame. Unknown event types pass through
// untouched so the orchestrator can re-emit them outward; frames whose
// data is not valid JSON are dropped silently. That resilience policy is
// deliberate: during an active turn it is better to miss one update than
// to abort the whole stream.
package stream
