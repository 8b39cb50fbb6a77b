// Package model holds the entities and request payloads of each feature.
//
// Entities mirror what the identity provider returns; the provider owns their
// persistence. Request payloads carry the binding (`json`, `query`) and
// validation (`validate`) tags the handler pipeline works with.
package model
