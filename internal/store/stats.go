package store

import "sync/atomic"

// Stats are per-store counters for reads, hits, writes, rotations,
// and replacements. Collisions are not counted separately: a write
// into a full TT bucket shows up only as a replacement.
type Stats struct {
	reads        atomic.Uint64
	hits         atomic.Uint64
	writes       atomic.Uint64
	rotations    atomic.Uint64
	replacements atomic.Uint64
}

func (s *Stats) recordRead()        { s.reads.Add(1) }
func (s *Stats) recordHit()         { s.hits.Add(1) }
func (s *Stats) recordWrite()       { s.writes.Add(1) }
func (s *Stats) recordRotation()    { s.rotations.Add(1) }
func (s *Stats) recordReplacement() { s.replacements.Add(1) }

// Snapshot is an immutable copy of the counters at a point in time.
type Snapshot struct {
	Reads        uint64
	Hits         uint64
	Writes       uint64
	Rotations    uint64
	Replacements uint64
}

// Snapshot reads the current counter values.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Reads:        s.reads.Load(),
		Hits:         s.hits.Load(),
		Writes:       s.writes.Load(),
		Rotations:    s.rotations.Load(),
		Replacements: s.replacements.Load(),
	}
}
