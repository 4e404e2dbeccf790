// Package logging provides structured logging for ClassKit.
//
// It wraps log/slog with service-wide default attributes and config-driven
// level, format, and destination selection. Handlers must never be passed
// credentials, password hashes, tokens, or resource ciphertext; callers log
// identifiers only.
package logging
