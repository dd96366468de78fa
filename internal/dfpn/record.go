package dfpn

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hexsolver/hexsolver/internal/hexboard"
	"github.com/hexsolver/hexsolver/internal/store"
)

// DBTypeTag is the on-disk schema tag for DFPN records.
const DBTypeTag = "DFPN_DB_VERSION"

// Record is the per-position DFPN payload: bounds, an ordered
// child-move list, the best move, cumulative work, a static evaluation
// score, and a validity flag.
type Record struct {
	Bounds Bounds

	// Children is the full, statically-ordered move list fixed at
	// record creation; only the first LiveWidth of them are
	// considered live at any given visit (widening).
	Children  []hexboard.Move
	LiveWidth int

	BestMove hexboard.Move

	// Work is the total node-expansion count backing the current
	// bounds; it is the TT replacement criterion.
	Work uint64

	EvalScore float64
	Valid     bool
}

// Rotate implements store.Rotatable: BestMove and Children are
// orientation-dependent and are rotated cell-by-cell; Bounds, Work,
// EvalScore and Valid pass through unchanged.
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

// LiveChildren returns the currently-admitted prefix of Children.
func (r Record) LiveChildren() []hexboard.Move {
	w := r.LiveWidth
	if w > len(r.Children) {
		w = len(r.Children)
	}
	return r.Children[:w]
}

// Weight is the TT replacement criterion: least work is evicted first.
func Weight(r Record) uint64 { return r.Work }

// Codec returns the packed-record encode/decode pair for the on-disk
// store. Layout: bounds (16B) | work (8B) | evalScore (8B) | bestMove
// (4B) | valid (1B) | numChildren (4B) | children (4B each) |
// liveWidth (4B).
func Codec() store.Codec[Record] {
	return store.Codec[Record]{Encode: encodeRecord, Decode: decodeRecord}
}

func encodeRecord(r Record) []byte {
	size := 16 + 8 + 8 + 4 + 1 + 4 + 4*len(r.Children) + 4
	buf := make([]byte, size)
	off := 0
	binary.BigEndian.PutUint64(buf[off:], r.Bounds.Phi)
	off += 8
	binary.BigEndian.PutUint64(buf[off:], r.Bounds.Delta)
	off += 8
	binary.BigEndian.PutUint64(buf[off:], r.Work)
	off += 8
	binary.BigEndian.PutUint64(buf[off:], math.Float64bits(r.EvalScore))
	off += 8
	binary.BigEndian.PutUint32(buf[off:], uint32(int32(r.BestMove)))
	off += 4
	if r.Valid {
		buf[off] = 1
	}
	off++
	binary.BigEndian.PutUint32(buf[off:], uint32(len(r.Children)))
	off += 4
	for _, m := range r.Children {
		binary.BigEndian.PutUint32(buf[off:], uint32(int32(m)))
		off += 4
	}
	binary.BigEndian.PutUint32(buf[off:], uint32(r.LiveWidth))
	return buf
}

func decodeRecord(b []byte) (Record, error) {
	var r Record
	need := 16 + 8 + 8 + 4 + 1 + 4
	if len(b) < need {
		return r, fmt.Errorf("dfpn: truncated record (%d bytes)", len(b))
	}
	off := 0
	r.Bounds.Phi = binary.BigEndian.Uint64(b[off:])
	off += 8
	r.Bounds.Delta = binary.BigEndian.Uint64(b[off:])
	off += 8
	r.Work = binary.BigEndian.Uint64(b[off:])
	off += 8
	r.EvalScore = math.Float64frombits(binary.BigEndian.Uint64(b[off:]))
	off += 8
	r.BestMove = hexboard.Move(int32(binary.BigEndian.Uint32(b[off:])))
	off += 4
	r.Valid = b[off] != 0
	off++
	numChildren := int(binary.BigEndian.Uint32(b[off:]))
	off += 4
	r.Children = make([]hexboard.Move, numChildren)
	for i := range r.Children {
		r.Children[i] = hexboard.Move(int32(binary.BigEndian.Uint32(b[off:])))
		off += 4
	}
	r.LiveWidth = int(binary.BigEndian.Uint32(b[off:]))
	return r, nil
}
