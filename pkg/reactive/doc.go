// Package reactive provides the observable primitives the editor store is
// built on: a value container with synchronous subscriber fan-out, read-only
// views for exposing state without granting mutation, and batching for
// grouping multi-field updates.
//
// Unlike tracking-based reactive systems, subscriptions here are explicit:
// Subscribe registers a callback and returns an unsubscribe handle. Reads
// never create dependencies, so Get is a pure accessor.
//
// Usage:
//
//	count := reactive.New(0)
//	stop := count.Subscribe(func(n int) {
//	    fmt.Println("count is now", n)
//	})
//	count.Set(1) // subscriber runs synchronously
//	stop()
package reactive
