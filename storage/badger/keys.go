package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/tessera-insights/retrieval/core"
)

// Key prefixes for different data types
const (
	chunkRecordPrefix       = "chkrec"
	chunkRecordSourcePrefix = "chkrecs"
)

// makeChunkRecordKey generates a key for a chunk record by ID.
func makeChunkRecordKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkRecordPrefix, id))
}

// makeSourceKey generates a composite key for the source index.
// Format: prefix:url\x00chunkIndex
// The NUL byte terminates the URL so one URL never prefixes another,
// and the BigEndian index makes lexicographic order follow chunk order.
func makeSourceKey(url string, chunkIndex int, id core.ID) []byte {
	prefix := chunkRecordSourcePrefix + ":"
	totalSize := len(prefix) + len(url) + 1 + 16
	buf := make([]byte, totalSize)
	offset := copy(buf, []byte(prefix))
	offset += copy(buf[offset:], []byte(url))
	buf[offset] = 0
	offset++
	binary.BigEndian.PutUint64(buf[offset:], uint64(chunkIndex))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialSourceKey generates a partial key for scanning one source's chunks.
// Format: prefix:url\x00
func makePartialSourceKey(url string) []byte {
	prefix := chunkRecordSourcePrefix + ":"
	totalSize := len(prefix) + len(url) + 1
	buf := make([]byte, totalSize)
	offset := copy(buf, []byte(prefix))
	offset += copy(buf[offset:], []byte(url))
	buf[offset] = 0
	return buf
}
