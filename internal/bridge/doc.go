// Package bridge defines the contract between a host platform and the
// tab-data core: the normalized inbound field-update entry points, the
// outbound adapter interface, and the request/reply correlation used by
// the single awaited intent.
//
// Inbound delivery is fire-and-forget from the host's perspective.
// Payloads failing schema validation are logged, counted and dropped;
// the host never receives an error signal and the aggregator never sees
// an invalid shape. The one exception is ordering: request data arriving
// before protections is a host contract violation and propagates loudly
// so it surfaces during integration testing.
//
// Transport implementations live elsewhere (internal/api/ws); this
// package is transport-agnostic.
package bridge
