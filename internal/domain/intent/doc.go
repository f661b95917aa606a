// Package intent defines the closed vocabulary of user-triggered actions
// the dashboard can send to its host, and the dispatcher that validates
// and forwards them.
//
// Each intent maps 1:1 to one outbound bridge call. The dispatcher holds
// no business logic beyond shape validation and translation; the one
// notable translation is allowlist polarity, where the generic
// "allowlisted" UI concept inverts into the protection toggle's
// isProtected flag.
//
// GetToggleReportOptions is the single request/reply intent: the caller
// suspends until exactly one reply arrives. No timeout is enforced at
// this layer; callers bound the wait through ctx.
package intent
