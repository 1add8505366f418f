// Package briefings serves a small curated record set filtered by topic
// tag. It is independent of the vector pipeline and holds everything in
// memory; the set is supplied externally as JSON.
package briefings
