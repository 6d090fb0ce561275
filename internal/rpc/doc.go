// Package rpc frames payloads over a duplex byte-stream socket.
//
// Ownership boundary:
// - socket contract and the net.Conn adapter
// - size-prefixed framing: [8 bytes LE u64 length][payload]
// - streaming framing: self-delimited payloads ended by read quiescence
// - dial retry backoff for callers (the framer never retries)
//
// A Framer has no per-message state and takes no locks; callers serialize
// access to one socket.
package rpc
