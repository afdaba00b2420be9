// Package config loads, validates, and normalizes the subtrans configuration
// file.
//
// Configuration lives in a TOML file (default ~/.config/subtrans/config.toml)
// and is split into sections per subsystem: paths, translation, providers,
// storage, workflow, and logging. Load applies defaults first, then file
// values, then normalization (path expansion) and validation, so callers
// always receive a usable Config or an error explaining what to fix.
//
// Translation settings that must be adjustable at runtime are copied into the
// engine's settings snapshot at startup; this package only describes the
// on-disk shape.
package config
