// Package aggregator merges independently-delivered tab-state fragments
// into consistent snapshots and decides when the first one is renderable.
//
// Four fields gate readiness: tracker-blocking data, protections, the
// HTTPS-upgrade flag and the locale. Until all four have arrived at least
// once, Snapshot returns nil and Wait blocks. Everything else (permissions,
// certificate, parent entity, consent status, pending-updates flag) is an
// optional overlay that never affects the gate.
//
// Delivery contract:
//   - Request data has a hard ordering precondition: protections must be
//     known first, because tracker-blocking data is derived from both. A
//     violation is a host contract bug and fails loudly.
//   - Consent status merges field-by-field; every other field replaces.
//
// Notification model:
//   - OnReady registrations fire exactly once with the first complete
//     snapshot; registrations made after readiness fire on a fresh
//     goroutine so they are never re-entrant in the caller's frame.
//   - OnUpdate subscriptions fire after every update that changes snapshot
//     content, for as long as the subscription is held.
//   - Wait parks the caller on the pending-render queue; queued waiters
//     drain in FIFO order the instant readiness is reached.
//
// Updates are serialized by a single mutex; callbacks always run after
// state is committed and the lock released.
package aggregator
