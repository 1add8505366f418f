package badger

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/tessera-insights/retrieval/core"
	"github.com/tessera-insights/retrieval/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) *ChunkRepository {
	return &ChunkRepository{backend: backend}
}

// Close is a no-op. The backend owns the database lifetime.
func (r *ChunkRepository) Close() error {
	return nil
}

// FindSimilar delegates to the backend.
func (r *ChunkRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *ChunkRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddChunkRecords writes chunk records, upserting by content ID.
func (r *ChunkRepository) AddChunkRecords(ctx context.Context, records ...*core.ChunkRecord) ([]*core.ChunkRecord, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, record := range records {
			if err := core.ValidateChunkRecord(record); err != nil {
				return err
			}

			// The ID is derived from (URL, chunk index), so re-ingesting
			// a source overwrites its old rows instead of duplicating them.
			if record.Id == 0 {
				record.Id = core.IDFromChunk(record.URL, record.ChunkIndex)
			}
			if record.InsertedAt.IsZero() {
				record.InsertedAt = now
			}

			// Store primary record
			key := makeChunkRecordKey(record.Id)
			value := storage.MarshalChunkRecord(record)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update source index
			sourceKey := makeSourceKey(record.URL, record.ChunkIndex, record.Id)
			if err := tx.Set(sourceKey, storage.MarshalID(record.Id)); err != nil {
				return err
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
		}
		return nil
	}, true)

	return records, err
}

// UpdateChunkRecords overwrites existing chunk records in place.
func (r *ChunkRepository) UpdateChunkRecords(ctx context.Context, records ...*core.ChunkRecord) ([]*core.ChunkRecord, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			key := makeChunkRecordKey(record.Id)

			old, err := r.readChunkRecord(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			value := storage.MarshalChunkRecord(record)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Move the source index entry if the record's position changed
			if old.URL != record.URL || old.ChunkIndex != record.ChunkIndex {
				oldSourceKey := makeSourceKey(old.URL, old.ChunkIndex, old.Id)
				if err := tx.Delete(oldSourceKey); err != nil {
					return err
				}
				newSourceKey := makeSourceKey(record.URL, record.ChunkIndex, record.Id)
				if err := tx.Set(newSourceKey, storage.MarshalID(record.Id)); err != nil {
					return err
				}
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
		}
		return nil
	}, true)

	return records, err
}

// GetChunkRecord retrieves a single chunk record by ID.
func (r *ChunkRepository) GetChunkRecord(ctx context.Context, id core.ID) (*core.ChunkRecord, error) {
	var result *core.ChunkRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeChunkRecordKey(id)
		var err error
		result, err = r.readChunkRecord(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetChunkRecords retrieves multiple chunk records by their IDs.
func (r *ChunkRepository) GetChunkRecords(ctx context.Context, ids ...core.ID) ([]*core.ChunkRecord, error) {
	var result []*core.ChunkRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeChunkRecordKey(id)
			record, err := r.readChunkRecord(tx, key)
			if err != nil {
				return err
			}
			if record != nil {
				result = append(result, record)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetChunkRecordsBySource retrieves all chunks of one source document,
// ordered by chunk index.
func (r *ChunkRepository) GetChunkRecordsBySource(ctx context.Context, url string) ([]*core.ChunkRecord, error) {
	var results []*core.ChunkRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialSourceKey(url)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if !bytes.HasPrefix(key, startKey) {
				break
			}

			var recordID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				recordID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			recordKey := makeChunkRecordKey(recordID)
			record, err := r.readChunkRecord(tx, recordKey)
			if err != nil {
				return err
			}
			if record != nil {
				results = append(results, record)
			}
		}
		return nil
	}, false)

	return results, err
}

// DeleteChunkRecordsBySource removes every chunk of one source document.
// Returns the number of records removed.
func (r *ChunkRepository) DeleteChunkRecordsBySource(ctx context.Context, url string) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialSourceKey(url)

		// Collect keys first, then delete, to avoid mutating under the iterator
		var sourceKeys [][]byte
		var recordIDs []core.ID

		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().KeyCopy(nil)
			if !bytes.HasPrefix(key, startKey) {
				break
			}

			var recordID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				recordID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				iter.Close()
				return err
			}

			sourceKeys = append(sourceKeys, key)
			recordIDs = append(recordIDs, recordID)
		}
		iter.Close()

		for i, sourceKey := range sourceKeys {
			if err := tx.Delete(sourceKey); err != nil {
				return err
			}
			if err := tx.Delete(makeChunkRecordKey(recordIDs[i])); err != nil {
				return err
			}
			count++
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
		}
		return nil
	}, true)

	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountChunkRecords returns the total number of stored chunk records.
func (r *ChunkRepository) CountChunkRecords(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkRecordPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if bytes.HasPrefix(key, []byte(chunkRecordSourcePrefix+":")) {
				continue
			}
			count++
		}
		return nil
	}, false)
	return count, err
}

// ForEachChunkRecord iterates over all stored chunk records in key order.
func (r *ChunkRepository) ForEachChunkRecord(ctx context.Context, fn func(*core.ChunkRecord) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			if bytes.HasPrefix(item.Key(), []byte(chunkRecordSourcePrefix+":")) {
				continue
			}

			var record *core.ChunkRecord
			if err := item.Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalChunkRecord(val)
				return err
			}); err != nil {
				return err
			}
			if record == nil {
				continue
			}
			if err := fn(record); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// readChunkRecord reads a chunk record from the transaction.
// Returns nil without error when the key is absent.
func (r *ChunkRepository) readChunkRecord(tx *badger.Txn, key []byte) (*core.ChunkRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.ChunkRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalChunkRecord(val)
		return unmarshalErr
	})
	return record, err
}
