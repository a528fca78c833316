// Package mailsignal sends conditional emails when application objects are
// created, updated or deleted.
//
// Application developers declare, per object type, signal definitions:
// which lifecycle event to watch, which constraints must hold, and what
// email to send when they do. The package evaluates the constraints
// synchronously at event time; it owns no transport, no persistence and no
// event loop of its own.
//
// Typical use is as follows:
//
//  1. Implement the Object interface on the types that can raise signals
//  2. Declare definitions with constraints, or load them with one of the
//     store subpackages
//  3. Build a Catalog from the definitions; configuration errors such as
//     unknown comparison names surface here, before the first event
//  4. Build a Dispatcher over the catalog and a Mailer
//  5. Call Notify from the host's lifecycle hooks
//
// # Constraints
//
// A constraint compares two operands with a named predicate. The first
// operand always names a payload key or an object field, with the payload
// taking precedence. The second operand may also be an inline literal,
// so a definition can compare a status field against "active" or an
// amount against "100" without any extra configuration. All constraints
// of a definition must pass for its email to be sent; evaluation stops at
// the first failure.
//
// # Evaluation errors
//
// A failed constraint is a normal outcome and is reported as false. An
// unresolvable operand, an unknown comparison name or incompatible operand
// types abort the evaluation with a typed error. The dispatcher logs such
// errors and moves to the next definition; the lifecycle event that
// triggered the evaluation is never suppressed, only the email is.
//
// # Concurrency
//
// One evaluation is single-threaded and call-and-return. The registry and
// the catalog snapshot are read-only during evaluation, so the host may
// deliver events concurrently for different objects without locking.
package mailsignal
