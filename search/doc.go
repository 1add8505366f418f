// Package search answers natural-language queries over the chunk corpus.
//
// A Searcher embeds the query and asks the store for the nearest chunks by
// cosine similarity. The searcher never mutates the store.
package search
