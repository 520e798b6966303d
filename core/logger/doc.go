// Package logger provides a structured logging facility based on Zap.
//
// WithInstance tags a logger with a per-process id. WithRayID extracts the
// RayID set by the rayid middleware from a Fiber context, so every log line
// about one request can be correlated with the X-Ray-ID response header.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: console (default, colored levels) or json
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "console"})
//	log = logger.WithInstance(log)
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
