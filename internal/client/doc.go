// Package client implements the client side of the postbox protocol: the
// handshake, the session state it establishes, and synchronous operations
// speaking the request/response packet protocol.
//
// A Session is not safe for concurrent use. RecvMessage blocks the calling
// goroutine until the server's long-poll resolves, so a caller that wants to
// send and receive at the same time runs two Sessions over two connections.
package client
