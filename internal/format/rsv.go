package format

import (
	"fmt"

	"github.com/joshuapare/fdtkit/pkg/types"
)

// ReserveEntry is one record of the memory reservation block: a physical
// address range the kernel must leave untouched. The block is a flat array
// of entries terminated by an all-zero entry.
type ReserveEntry struct {
	Address uint64
	Size    uint64
}

// ReserveEntries decodes the reservation block starting at off within b,
// stopping at the terminating zero entry. end bounds the scan (the declared
// total size of the blob).
func ReserveEntries(b []byte, off, end int) ([]ReserveEntry, error) {
	var entries []ReserveEntry
	for {
		if off+ReserveEntrySize > end || off+ReserveEntrySize > len(b) {
			return nil, fmt.Errorf("rsvmap: missing terminator: %w", types.ErrTruncated)
		}
		e := ReserveEntry{
			Address: ReadU64(b, off),
			Size:    ReadU64(b, off+8),
		}
		if e.Address == 0 && e.Size == 0 {
			return entries, nil
		}
		entries = append(entries, e)
		off += ReserveEntrySize
	}
}
