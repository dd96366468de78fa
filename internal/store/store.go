package store

import (
	"github.com/hexsolver/hexsolver/internal/hexboard"
)

// Rotatable is satisfied by a record type whose orientation-dependent
// fields (e.g. a best-move, a cell-set) know how to rotate themselves
// 180 degrees on a board of the given size. Orientation-independent
// fields (bounds, work, value, counts) are expected to pass through a
// Rotate call unchanged.
type Rotatable[T any] interface {
	Rotate(size int) T
}

// Config configures a Store.
type Config[T Rotatable[T]] struct {
	DBDir     string
	DBTypeTag string
	Codec     Codec[T]

	// MaxStones is the DB/TT split point: positions with stone count
	// <= MaxStones are read from and written to the on-disk DB; deeper
	// positions use the in-memory TT.
	MaxStones int

	// TTMinEntries sizes the in-memory table.
	TTMinEntries int

	// Weight scores a record for TT replacement; lower is evicted
	// first. Typically "work" for DFPN records, "count" for book
	// records.
	Weight func(T) uint64
}

// Store is the logical map canonical_key -> record, layered over a
// bounded TT and an unbounded on-disk DB.
type Store[T Rotatable[T]] struct {
	cfg   Config[T]
	tt    *TT[T]
	db    *DB[T]
	stats Stats
}

// Open constructs a Store, opening its on-disk database.
func Open[T Rotatable[T]](cfg Config[T]) (*Store[T], error) {
	db, err := OpenDB(cfg.DBDir, cfg.DBTypeTag, cfg.Codec)
	if err != nil {
		return nil, err
	}
	s := &Store[T]{cfg: cfg, db: db}
	s.tt = NewTT(cfg.TTMinEntries, cfg.Weight, &s.stats)
	return s, nil
}

// Close closes the on-disk database. The in-memory TT is discarded
// with the process; it is never persisted.
func (s *Store[T]) Close() error {
	return s.db.Close()
}

// Stats returns a snapshot of the store's counters.
func (s *Store[T]) Stats() Snapshot {
	return s.stats.Snapshot()
}

// onDisk reports whether p's stone count routes to the DB rather than
// the TT, per the maxStones split.
func (s *Store[T]) onDisk(p *hexboard.Position) bool {
	return p.StoneCount() <= s.cfg.MaxStones
}

// Get returns the record describing p in p's own orientation,
// fetching (and rotating, if necessary) the canonical record. The
// result is always in P's own orientation even when storage is keyed
// under rotate(P).
func (s *Store[T]) Get(p *hexboard.Position) (rec T, ok bool, err error) {
	s.stats.recordRead()
	key, needsRotate := CanonicalKey(p)
	if s.onDisk(p) {
		rec, ok, err = s.db.Get(key)
	} else {
		rec, ok = s.tt.Get(key)
	}
	if err != nil || !ok {
		return rec, ok, err
	}
	s.stats.recordHit()
	if needsRotate {
		rec = rec.Rotate(p.Size)
		s.stats.recordRotation()
	}
	return rec, true, nil
}

// Put stores rec, described in p's own orientation, under p's
// canonical key, rotating it into canonical orientation first if
// necessary.
func (s *Store[T]) Put(p *hexboard.Position, rec T) error {
	key, needsRotate := CanonicalKey(p)
	if needsRotate {
		rec = rec.Rotate(p.Size)
		s.stats.recordRotation()
	}
	if s.onDisk(p) {
		if err := s.db.Put(key, rec); err != nil {
			return err
		}
		s.stats.recordWrite()
		return nil
	}
	s.tt.Put(key, rec)
	return nil
}

// BackupDB forces pending DB writes to stable storage, then snapshots
// the on-disk database to path.
func (s *Store[T]) BackupDB(path string) error {
	if err := s.db.Sync(); err != nil {
		return err
	}
	return s.db.BackupTo(path)
}

// SyncDB forces pending DB writes to stable storage.
func (s *Store[T]) SyncDB() error {
	return s.db.Sync()
}
