// Package domain defines the shared types of the postbox protocol: usernames,
// session tokens, credentials, message shapes, and the store interfaces the
// server dispatcher is written against.
//
// The package is dependency-free apart from the standard library; every other
// package in the module imports it.
package domain
