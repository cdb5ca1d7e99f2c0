// Package store holds the server's in-memory state: live sessions, accounts,
// and per-user mailboxes. Each store is a single map behind a reader/writer
// lock, constructed once at startup and shared by every connection handler.
// Nothing here survives a restart.
package store
