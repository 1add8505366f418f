package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted types. Written by hand against the
// mus-go primitive serializers; the record layout is versioned by the
// storage keyspace, so fields must only ever be appended.

// IDMUS serializes ID values.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

// ChunkRecordMUS serializes ChunkRecord values.
// Timestamps are stored as Unix microseconds.
var ChunkRecordMUS = chunkRecordMUS{}

type chunkRecordMUS struct{}

func (chunkRecordMUS) Marshal(r ChunkRecord, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(r.Id), bs)
	n += ord.String.Marshal(r.Content, bs[n:])
	n += ord.String.Marshal(r.URL, bs[n:])
	n += ord.String.Marshal(r.Title, bs[n:])
	n += ord.String.Marshal(r.Date, bs[n:])
	n += varint.Int.Marshal(r.ChunkIndex, bs[n:])
	n += varint.Int.Marshal(r.TotalChunks, bs[n:])
	n += varint.Int.Marshal(len(r.Vector), bs[n:])
	for _, f := range r.Vector {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	n += varint.Int64.Marshal(r.InsertedAt.UnixMicro(), bs[n:])
	return n
}

func (chunkRecordMUS) Unmarshal(bs []byte) (r ChunkRecord, n int, err error) {
	var (
		id  uint64
		cnt int
		m   int
	)
	id, n, err = varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	r.Id = ID(id)

	r.Content, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	r.URL, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	r.Title, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	r.Date, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	r.ChunkIndex, m, err = varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	r.TotalChunks, m, err = varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	cnt, m, err = varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	if cnt > 0 {
		r.Vector = make([]float32, cnt)
		for i := 0; i < cnt; i++ {
			r.Vector[i], m, err = raw.Float32.Unmarshal(bs[n:])
			n += m
			if err != nil {
				return
			}
		}
	}
	var micros int64
	micros, m, err = varint.Int64.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	r.InsertedAt = time.UnixMicro(micros).UTC()
	return
}

func (chunkRecordMUS) Size(r ChunkRecord) (size int) {
	size = varint.Uint64.Size(uint64(r.Id))
	size += ord.String.Size(r.Content)
	size += ord.String.Size(r.URL)
	size += ord.String.Size(r.Title)
	size += ord.String.Size(r.Date)
	size += varint.Int.Size(r.ChunkIndex)
	size += varint.Int.Size(r.TotalChunks)
	size += varint.Int.Size(len(r.Vector))
	for _, f := range r.Vector {
		size += raw.Float32.Size(f)
	}
	size += varint.Int64.Size(r.InsertedAt.UnixMicro())
	return size
}
