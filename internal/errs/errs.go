// Package errs defines the error types the API returns to clients.
//
// Every failure that leaves the service is an *HTTPError: validation
// failures with per-field details, identity provider failures translated
// from the provider's answer, and generic server errors that never leak
// internal details.
package errs
