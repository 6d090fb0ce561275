package rpc

import "errors"

var (
	ErrShortRead        = errors.New("rpc: short read")
	ErrShortWrite       = errors.New("rpc: short write")
	ErrTimeout          = errors.New("rpc: timeout")
	ErrMalformedLength  = errors.New("rpc: malformed length prefix")
	ErrCapacityExceeded = errors.New("rpc: frame exceeds capacity")
	ErrClosed           = errors.New("rpc: socket closed")
)
