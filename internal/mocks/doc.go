// Package mocks provides hand-written mock implementations of the store
// and auth interfaces for handler and middleware tests. Each mock keeps
// simple in-memory state and exposes Fn fields to override any method.
package mocks
