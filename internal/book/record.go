// Package book implements the opening-book builder: a DAG over Hex
// positions expanded best-first, with values and priorities backed up
// from leaves, sharing the same generic position store the DFPN
// engine uses.
package book

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hexsolver/hexsolver/internal/hexboard"
	"github.com/hexsolver/hexsolver/internal/store"
)

// DBTypeTag is the on-disk schema tag for book records.
const DBTypeTag = "HEX_BOOK_DB_VERSION_0001"

// Record is a single book node: a value and priority for best-first
// expansion, a play count, and the two leaf/terminal flags that stop
// expansion.
type Record struct {
	Value    float64
	Priority float64
	Count    int

	// Leaf is true for a node whose children have never been
	// expanded; Terminal is true for a node whose game outcome is
	// already decided (a proven win/loss, or no legal moves).
	Leaf     bool
	Terminal bool

	Children []hexboard.Move
	BestMove hexboard.Move
	Valid    bool
}

// Rotate implements store.Rotatable: Children and BestMove are
// orientation-dependent; Value, Priority, Count, Leaf, Terminal pass
// through unchanged.
func (r Record) Rotate(size int) Record {
	out := r
	out.BestMove = hexboard.RotateMove(r.BestMove, size)
	if r.Children != nil {
		out.Children = make([]hexboard.Move, len(r.Children))
		for i, m := range r.Children {
			out.Children[i] = hexboard.RotateMove(m, size)
		}
	}
	return out
}

// Weight is the TT replacement criterion for book records: least
// play count is evicted first, in contrast to DFPN's least-work rule.
func Weight(r Record) uint64 { return uint64(r.Count) }

// Codec returns the packed encode/decode pair for the on-disk store.
func Codec() store.Codec[Record] {
	return store.Codec[Record]{Encode: encodeRecord, Decode: decodeRecord}
}

func encodeRecord(r Record) []byte {
	size := 8 + 8 + 4 + 1 + 1 + 4 + 4*len(r.Children) + 1
	buf := make([]byte, size)
	off := 0
	binary.BigEndian.PutUint64(buf[off:], math.Float64bits(r.Value))
	off += 8
	binary.BigEndian.PutUint64(buf[off:], math.Float64bits(r.Priority))
	off += 8
	binary.BigEndian.PutUint32(buf[off:], uint32(r.Count))
	off += 4
	if r.Leaf {
		buf[off] = 1
	}
	off++
	if r.Terminal {
		buf[off] = 1
	}
	off++
	binary.BigEndian.PutUint32(buf[off:], uint32(int32(r.BestMove)))
	off += 4
	binary.BigEndian.PutUint32(buf[off:], uint32(len(r.Children)))
	off += 4
	for _, m := range r.Children {
		binary.BigEndian.PutUint32(buf[off:], uint32(int32(m)))
		off += 4
	}
	if r.Valid {
		buf[off] = 1
	}
	return buf
}

func decodeRecord(b []byte) (Record, error) {
	var r Record
	need := 8 + 8 + 4 + 1 + 1 + 4 + 4
	if len(b) < need {
		return r, fmt.Errorf("book: truncated record (%d bytes)", len(b))
	}
	off := 0
	r.Value = math.Float64frombits(binary.BigEndian.Uint64(b[off:]))
	off += 8
	r.Priority = math.Float64frombits(binary.BigEndian.Uint64(b[off:]))
	off += 8
	r.Count = int(binary.BigEndian.Uint32(b[off:]))
	off += 4
	r.Leaf = b[off] != 0
	off++
	r.Terminal = b[off] != 0
	off++
	r.BestMove = hexboard.Move(int32(binary.BigEndian.Uint32(b[off:])))
	off += 4
	numChildren := int(binary.BigEndian.Uint32(b[off:]))
	off += 4
	r.Children = make([]hexboard.Move, numChildren)
	for i := range r.Children {
		r.Children[i] = hexboard.Move(int32(binary.BigEndian.Uint32(b[off:])))
		off += 4
	}
	if off < len(b) {
		r.Valid = b[off] != 0
	}
	return r, nil
}
