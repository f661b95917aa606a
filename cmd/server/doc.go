// Package main is the entry point for the privacy dashboard service.
//
// The service sits between a browser host (native app or extension) and
// the dashboard render layer:
//
//	Render layer (HTTP) → Aggregator → Host bridge (WebSocket)
//
// The server provides:
//   - WebSocket bridge for host field updates and outgoing intents
//   - REST API for snapshot reads and intent dispatch
//   - Readiness gating before the first render
//   - Optional breakage report forwarding
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8090 -platform macos
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
