// Package resilience implements a three-state circuit breaker
// (closed, open, half-open) used to shed load on failing outbound
// dependencies, currently the breakage-report collection endpoint.
//
// The breaker trips after consecutive failures, rejects requests while
// open, and probes with a bounded number of requests once its timeout
// elapses. State transitions can be observed via OnStateChange.
package resilience
