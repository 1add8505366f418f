// Package storage defines the persistence abstractions for the retrieval
// corpus: the chunk repository interface, its sentinel errors, and the MUS
// (de)serialization helpers shared by backends.
//
// The vector similarity primitive lives on the repository: backends own the
// metric (cosine) and any normalization it needs.
package storage
