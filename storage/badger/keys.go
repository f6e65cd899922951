package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/recall/core"
)

// Key prefixes for different data types
const (
	documentPrefix       = "docrec"
	documentDatePrefix   = "docrecd"
	documentSourcePrefix = "docrecs"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, id))
}

// makeDateKey generates a composite key for the date index.
// Format: prefix:timestamp:id
func makeDateKey(timestamp time.Time, id core.ID) []byte {
	buf := makePartialDateKey(timestamp)
	return binary.BigEndian.AppendUint64(buf, uint64(id))
}

// makePartialDateKey generates a partial key for date range queries.
// Format: prefix:timestamp
func makePartialDateKey(timestamp time.Time) []byte {
	prefix := documentDatePrefix + ":"
	buf := make([]byte, len(prefix)+8, len(prefix)+16)
	offset := copy(buf, prefix)
	// Flipping the sign bit and writing BigEndian makes lexicographic order
	// chronological, including before 1970.
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro())^(1<<63))
	return buf
}

// makeSourceKey generates a composite key for the source type index.
// Format: prefix:type:id
func makeSourceKey(st core.SourceType, id core.ID) []byte {
	return binary.BigEndian.AppendUint64(makePartialSourceKey(st), uint64(id))
}

// makePartialSourceKey generates a partial key for source type scans.
// Format: prefix:type:
func makePartialSourceKey(st core.SourceType) []byte {
	return []byte(documentSourcePrefix + ":" + string(st) + ":")
}
