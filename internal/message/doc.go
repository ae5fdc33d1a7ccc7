// Package message defines the conversation message model.
//
// # Overview
//
// Messages are value-shaped records: the orchestrator holds the single
// ordered list for a conversation, and every other component works on
// copies. IDs are either server-issued (after a history fetch) or
// locally-minted temporary IDs created with NewTempID; temporary IDs are
// never patched in place — reconciliation replaces the whole list with
// what the server returns.
//
// # Roles
//
//   - RoleUser: a message typed by the person driving the conversation
//   - RoleAssistant: a (possibly still streaming) model response
//   - RoleSystem: instructions injected by the host
//   - RoleTool: a tool result echoed back into the history
package message
