// Package client is the HTTP transport for the conversation service.
//
// Client implements convo.Service: plain JSON endpoints for session,
// history, and undo, and SSE endpoints for message streaming and
// tool-result resumption. Bearer tokens come from an auth.TokenSource;
// the client attaches one when available and leaves the authorization
// decision to the server. Non-2xx responses are classified by
// auth.ParseHTTPError so authentication failures reach the controller as
// *auth.Error and everything else as a generic transport error.
package client
