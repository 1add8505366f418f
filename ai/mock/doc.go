// Package mock provides test doubles for the ai package.
//
// The mock embedder is deterministic: the same text always yields the same
// vector, so similarity-ranking assertions are stable across runs without a
// live provider.
package mock
