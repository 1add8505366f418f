// Package ingestion turns source documents into embedded chunk records.
//
// The pipeline validates each document, splits it with the chunker, then
// embeds and stores every chunk on a bounded worker pool. Individual chunk
// failures are collected into the returned Summary; they never abort the
// document or the batch.
package ingestion
