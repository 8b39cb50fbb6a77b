// Package middleware holds the echo middleware: request ids, the
// request-scoped logger, New Relic tracing, credential checks, rate limiting
// and the global error handler.
package middleware
