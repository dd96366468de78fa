package store

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// dbTypeKey is the reserved key holding the 32-byte null-terminated
// type tag identifying the on-disk schema.
const dbTypeKey = "dbtype"
const dbTypeTagLen = 32

// ErrDBTypeMismatch is returned when an existing database's "dbtype"
// tag does not match the schema the caller expects to open.
var ErrDBTypeMismatch = errors.New("store: database type tag mismatch")

// Codec packs and unpacks a record T to/from its fixed on-disk layout.
// The layout is stable; any change must bump the type tag's version
// suffix.
type Codec[T any] struct {
	Encode func(T) []byte
	Decode func([]byte) (T, error)
}

// DB is the on-disk half of the position store: an unbounded,
// authoritative, never-displaced key/value database.
type DB[T any] struct {
	bdb   *badger.DB
	codec Codec[T]
}

// OpenDB opens (or creates) a Badger database at dir, tagged with
// typeTag. An existing database whose dbtype tag differs from typeTag
// fails loudly; this is the versioning mechanism against schema drift.
func OpenDB[T any](dir string, typeTag string, codec Codec[T]) (*DB[T], error) {
	if len(typeTag) >= dbTypeTagLen {
		return nil, fmt.Errorf("store: type tag %q exceeds %d bytes", typeTag, dbTypeTagLen-1)
	}
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", dir, err)
	}
	if err := verifyOrWriteTag(bdb, typeTag); err != nil {
		bdb.Close()
		return nil, err
	}
	return &DB[T]{bdb: bdb, codec: codec}, nil
}

func verifyOrWriteTag(bdb *badger.DB, typeTag string) error {
	want := packTag(typeTag)
	return bdb.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(dbTypeKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return txn.Set([]byte(dbTypeKey), want)
		}
		if err != nil {
			return fmt.Errorf("store: read dbtype: %w", err)
		}
		got, err := item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("store: read dbtype: %w", err)
		}
		if string(got) != string(want) {
			return fmt.Errorf("%w: have %q want %q", ErrDBTypeMismatch, trimTag(got), trimTag(want))
		}
		return nil
	})
}

func packTag(s string) []byte {
	buf := make([]byte, dbTypeTagLen)
	copy(buf, s)
	return buf
}

func trimTag(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// Close closes the underlying Badger database.
func (d *DB[T]) Close() error {
	return d.bdb.Close()
}

func keyBytes(k Key) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(k))
	return b[:]
}

// Get returns the record stored under k, if any.
func (d *DB[T]) Get(k Key) (rec T, ok bool, err error) {
	err = d.bdb.View(func(txn *badger.Txn) error {
		item, gerr := txn.Get(keyBytes(k))
		if errors.Is(gerr, badger.ErrKeyNotFound) {
			return nil
		}
		if gerr != nil {
			return gerr
		}
		raw, verr := item.ValueCopy(nil)
		if verr != nil {
			return verr
		}
		decoded, derr := d.codec.Decode(raw)
		if derr != nil {
			return derr
		}
		rec, ok = decoded, true
		return nil
	})
	return rec, ok, err
}

// Put stores rec under k, overwriting any previous value.
func (d *DB[T]) Put(k Key, rec T) error {
	return d.bdb.Update(func(txn *badger.Txn) error {
		return txn.Set(keyBytes(k), d.codec.Encode(rec))
	})
}

// Sync forces pending writes to stable storage; used by the backup
// scheduler before snapshotting.
func (d *DB[T]) Sync() error {
	return d.bdb.Sync()
}

// BackupTo writes a full copy of the database, in Badger's native
// backup format, to the file at path (created or truncated).
func (d *DB[T]) BackupTo(path string) error {
	return backupDBFile(d.bdb, path)
}
