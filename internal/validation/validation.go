// Package validation binds request payloads and checks them against their
// `validate` tags. Failures come back as one 400 listing every bad field,
// named as the client sent it (JSON, query or path name).
package validation
