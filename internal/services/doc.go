// Package services defines shared utilities consumed by the translation
// engine and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, chunk indices, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification (validation vs provider vs transient) uniform across
//     the pipeline.
//
// Use these helpers when wiring new engine logic so operational behaviour
// (error handling, observability, retries) stays consistent.
package services
