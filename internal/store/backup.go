package store

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// backupDBFile writes a full Badger backup stream to path, creating
// or truncating it. Used by the backup scheduler to snapshot the DB
// to a sibling path.
func backupDBFile(bdb *badger.DB, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("store: create backup file %s: %w", path, err)
	}
	defer f.Close()
	if _, err := bdb.Backup(f, 0); err != nil {
		return fmt.Errorf("store: backup to %s: %w", path, err)
	}
	return f.Sync()
}
