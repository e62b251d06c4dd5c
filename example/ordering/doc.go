// Package ordering is a small sample domain built on the kernel.
//
// An Order is placed for a customer, collects order lines, and is finally shipped.
// Every state change is recorded as an event on the Order's buffer, which the broker
// dispatches after the surrounding unit of work has committed. OrderSummaries is a
// read model fed by those events.
package ordering
