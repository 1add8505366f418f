// Package badger implements the storage interfaces on BadgerDB.
//
// Chunk records are stored under content-derived keys with a secondary
// index from source URL to chunk IDs. Similarity search is a full scan
// over stored records scored by cosine similarity; at corpus scale
// (thousands of chunks) this stays well under interactive latency.
package badger
