// Package turns derives turn groupings from the flat message list and
// resolves which turns are visible under the active display mode.
//
// Turns are recomputed on demand, never stored. The invariant is simple:
// turn count equals the count of user messages, and turns are 1-indexed
// for navigation. Grouping and resolution are pure functions so they can
// be tested without a live controller.
package turns
