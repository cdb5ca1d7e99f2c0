// Package server implements the postbox daemon: a TCP listener that runs one
// protocol dispatcher per accepted connection against the shared in-memory
// stores. The connection is strictly half-duplex request/response; a
// FetchNextMessage parks its connection until a message is ready, so clients
// wanting simultaneous send and receive open two connections.
package server
