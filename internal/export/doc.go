// Package export renders conversation transcripts for saving outside
// the session. Export is explicit and user-invoked; nothing here
// persists state on its own.
package export
