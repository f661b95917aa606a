// Package ws implements the WebSocket bridge transport between a host
// platform and the tab-data core.
//
// A host opens one connection per tab view and identifies itself with a
// hello message; the service creates a session and answers with its id.
// After that the host streams field updates as they become available, in
// any order the field contract allows.
//
// Message Types (Host → Service):
//   - hello: platform identification, starts a session
//   - requestData, protectionsStatus, localeSettings, upgradedHttps,
//     consentManaged, allowedPermissions, certificateData,
//     isPendingUpdates, parentEntity: field updates
//   - screenShown: first layout complete, carries the initial height
//   - toggleReportOptionsResponse: reply to getToggleReportOptions
//   - ping: keep-alive
//
// Message Types (Service → Host):
//   - ready: session established
//   - intent: outbound user action
//   - getToggleReportOptions: awaited request, correlated by id
//   - updateTabData: fresh snapshot after every relevant change
//   - firstPaint: readiness reached, first snapshot attached
//   - pong, error
package ws
