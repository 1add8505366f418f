// Package api exposes the retrieval service over HTTP: semantic search,
// the curated briefings feed, and a health endpoint. Responses follow one
// envelope convention; failures never leak internal error detail to the
// client.
package api
