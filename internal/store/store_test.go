package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hexsolver/hexsolver/internal/hexboard"
)

// testRecord is a minimal Rotatable record used only by this test
// file: a single orientation-dependent field (BestCell) and one
// orientation-independent field (Work).
type testRecord struct {
	BestCell int
	Work     uint64
}

func (r testRecord) Rotate(size int) testRecord {
	if r.BestCell < 0 {
		return r
	}
	return testRecord{BestCell: size*size - 1 - r.BestCell, Work: r.Work}
}

func testCodec() Codec[testRecord] {
	return Codec[testRecord]{
		Encode: func(r testRecord) []byte {
			buf := make([]byte, 16)
			putInt64(buf[0:8], int64(r.BestCell))
			putInt64(buf[8:16], int64(r.Work))
			return buf
		},
		Decode: func(b []byte) (testRecord, error) {
			return testRecord{
				BestCell: int(getInt64(b[0:8])),
				Work:     uint64(getInt64(b[8:16])),
			}, nil
		},
	}
}

func putInt64(b []byte, v int64) {
	for i := 0; i < 8 && i < len(b); i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func getInt64(b []byte) int64 {
	var v int64
	for i := 7; i >= 0 && i < len(b); i-- {
		v = v<<8 | int64(b[i])
	}
	return v
}

func newTestStore(t *testing.T, maxStones int) *Store[testRecord] {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(Config[testRecord]{
		DBDir:        filepath.Join(dir, "db"),
		DBTypeTag:    "TEST_DB_VERSION",
		Codec:        testCodec(),
		MaxStones:    maxStones,
		TTMinEntries: 16,
		Weight:       func(r testRecord) uint64 { return r.Work },
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t, 10)
	p := hexboard.NewPosition(5)
	p.PlayMove(hexboard.NewMove(5, 1, 1))
	rec := testRecord{BestCell: int(hexboard.NewMove(5, 2, 2)), Work: 7}
	if err := s.Put(p, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := s.Get(p)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got != rec {
		t.Fatalf("got %+v want %+v", got, rec)
	}
}

func TestRotationContract(t *testing.T) {
	s := newTestStore(t, 10)
	p := hexboard.NewPosition(5)
	p.PlayMove(hexboard.NewMove(5, 0, 0))
	p.PlayMove(hexboard.NewMove(5, 4, 4))
	best := hexboard.NewMove(5, 1, 2)
	rec := testRecord{BestCell: int(best), Work: 3}
	if err := s.Put(p, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	rp := p.Rotate()
	got, ok, err := s.Get(rp)
	if err != nil || !ok {
		t.Fatalf("Get(rotate(p)): ok=%v err=%v", ok, err)
	}
	wantBest := hexboard.RotateMove(best, 5)
	if got.BestCell != int(wantBest) {
		t.Fatalf("rotated best move = %d, want %d", got.BestCell, wantBest)
	}

	// get(P) == get(rotate(P)).rotate(board)
	back := got.Rotate(5)
	if back != rec {
		t.Fatalf("round trip through rotation: got %+v want %+v", back, rec)
	}
}

func TestMaxStonesRoutesToTT(t *testing.T) {
	s := newTestStore(t, 0) // everything past the empty board routes to TT
	p := hexboard.NewPosition(5)
	p.PlayMove(hexboard.NewMove(5, 2, 2))
	rec := testRecord{BestCell: -1, Work: 1}
	if err := s.Put(p, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	key, _ := CanonicalKey(p)
	if _, ok, _ := s.db.Get(key); ok {
		t.Fatal("record with stone count above maxStones should not be in the DB")
	}
	if _, ok := s.tt.Get(key); !ok {
		t.Fatal("record should be in the TT")
	}
}

func TestDBTypeTagMismatchFailsLoudly(t *testing.T) {
	dir := t.TempDir()
	dbDir := filepath.Join(dir, "db")
	s1, err := Open(Config[testRecord]{
		DBDir: dbDir, DBTypeTag: "FIRST_VERSION", Codec: testCodec(),
		MaxStones: 10, TTMinEntries: 4, Weight: func(r testRecord) uint64 { return r.Work },
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s1.Close()

	_, err = Open(Config[testRecord]{
		DBDir: dbDir, DBTypeTag: "SECOND_VERSION", Codec: testCodec(),
		MaxStones: 10, TTMinEntries: 4, Weight: func(r testRecord) uint64 { return r.Work },
	})
	if err == nil {
		t.Fatal("expected dbtype mismatch error")
	}
}

func TestStatsTrackReadsAndHits(t *testing.T) {
	s := newTestStore(t, 10)
	p := hexboard.NewPosition(5)
	if _, ok, _ := s.Get(p); ok {
		t.Fatal("expected miss on empty store")
	}
	if err := s.Put(p, testRecord{BestCell: -1, Work: 1}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok, _ := s.Get(p); !ok {
		t.Fatal("expected hit after put")
	}
	snap := s.Stats()
	if snap.Reads != 2 || snap.Hits != 1 {
		t.Fatalf("unexpected stats: %+v", snap)
	}
}

func TestBackupCreatesFile(t *testing.T) {
	s := newTestStore(t, 10)
	p := hexboard.NewPosition(5)
	if err := s.Put(p, testRecord{BestCell: -1, Work: 1}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	backupPath := filepath.Join(t.TempDir(), "backup.db")
	if err := s.BackupDB(backupPath); err != nil {
		t.Fatalf("BackupDB: %v", err)
	}
	if fi, err := os.Stat(backupPath); err != nil || fi.Size() == 0 {
		t.Fatalf("expected non-empty backup file: %v", err)
	}
}
