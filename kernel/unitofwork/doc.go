// Package unitofwork commits the pending events of a set of aggregates: it persists them
// first and only then dispatches them to the broker.
//
// A failed persist dispatches nothing and keeps every event buffered, so the caller may retry
// the commit or discard the work. Events are never delivered to handlers before they are stored.
package unitofwork
