// Package netrpc owns the socket wire contract used by the socket-rpc
// connector variant.
//
// Ownership boundary:
// - frame primitives (length prefix, decode limits)
// - request/reply envelope encoding
// - one-shot TCP request cycle (dial, send, receive, close)
package netrpc
