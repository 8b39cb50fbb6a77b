// Package handler declares the API: one Controller per feature, each a set
// of typed actions that run through the same pipeline (bind and validate,
// run procedures, call the handler, write the response envelope).
package handler
