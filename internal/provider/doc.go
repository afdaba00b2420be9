// Package provider abstracts the LLM backends used for translation. Each
// backend implements the Provider interface; Client wraps a Provider with
// bounded retry for rate-limit errors. All other provider failures surface
// immediately without retry.
package provider
