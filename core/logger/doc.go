// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports development (console)
// and production (json) encodings and integrates with the Fiber web framework.
//
// # Context Awareness
//
// WithRayID extracts the RayID from a Fiber context and attaches it to the
// log entry, so every log line of one request can be correlated. WithJob does
// the same for the reconciliation job being run.
//
// # Configuration
//
//   - Level: debug, info, warn, error
//   - Format: console or json
//   - Output: stderr (default), stdout or a file path
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "console"})
//	log.Info("Job finished", zap.String("job", "prices"))
package logger
