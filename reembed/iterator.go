// Copyright 2025 Tessera Insights
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reembed

import (
	"context"

	"github.com/tessera-insights/retrieval/core"
	"github.com/tessera-insights/retrieval/storage"
)

const (
	// DefaultBatchSize is the default number of records to fetch in each batch
	DefaultBatchSize = 100
)

// RecordIterator iterates over all chunk records in batches.
type RecordIterator struct {
	repo      storage.ChunkRepository
	batchSize int
}

// NewRecordIterator creates a new record iterator.
// batchSize: number of records to fetch in each batch (must be > 0)
func NewRecordIterator(repo storage.ChunkRepository, batchSize int) *RecordIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &RecordIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach iterates over all chunk records, calling fn for each batch.
// Iteration stops on first error from fn or when all records are processed.
// Context cancellation is checked between batches.
func (it *RecordIterator) ForEach(ctx context.Context, fn func([]*core.ChunkRecord) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	batch := make([]*core.ChunkRecord, 0, it.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		batch = batch[:0]

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}

	err := it.repo.ForEachChunkRecord(ctx, func(record *core.ChunkRecord) error {
		batch = append(batch, record)
		if len(batch) == it.batchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return err
	}

	return flush()
}
