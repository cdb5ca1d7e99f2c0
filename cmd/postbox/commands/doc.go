// Package commands wires the postbox client CLI. Each command opens its own
// connection, performs the handshake, runs one operation flow, and tears the
// session down; recv keeps its connection open to long-poll for messages.
package commands
