// Package tabdata defines the combined view of everything known about the
// currently inspected tab.
//
// The host platform delivers tab state in independent fragments (request
// classifications, protection status, locale, permissions, certificate
// chain, consent-management status). This package models each fragment and
// the immutable Snapshot the aggregator assembles from them.
//
// Field semantics:
//   - Every fragment fully replaces its predecessor on re-delivery, with
//     one exception: consent-management status accumulates field-by-field
//     because the host reports it incrementally.
//   - Tracker-blocking data is derived, not delivered: it is rebuilt from
//     the raw request payload plus the latest protections and HTTPS-upgrade
//     values each time a request payload arrives.
//
// Wire shapes use camelCase JSON tags to match the host messaging format.
package tabdata
