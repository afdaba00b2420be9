// Package api exposes the daemon's HTTP surface: job submission and
// queries, segment corrections, approval, cancellation, metrics, and
// runtime configuration.
package api
