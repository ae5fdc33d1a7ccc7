// Package toolcall implements the client side of the tool-call suspension
// protocol: the server suspends a streaming turn, hands the client a batch
// of named calls, and resumes once results are submitted.
//
// The Registry is a plain name-to-handler map. The Coordinator owns the
// policy: either every requested tool has a handler and the whole batch
// runs, or none of it does. A single failing handler never aborts its
// siblings — its failure becomes an error payload for that call alone.
package toolcall
