// Package main provides the entry point for framekv-server.
//
// The server is the FrameKV service process:
//
//   - TCP listener speaking the frame protocol (GET/SET)
//   - In-memory key/value store shared across connections
//   - Optional Prometheus metrics endpoint
//
// Usage:
//
//	framekv-server [flags]
//	framekv-server --config /path/to/config.yaml
//
// The server loads configuration, initializes infrastructure components,
// and starts the configured listeners.
package main
