package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/hexsolver/hexsolver/internal/backup"
	"github.com/hexsolver/hexsolver/internal/command"
	"github.com/hexsolver/hexsolver/internal/evaluator"
)

var (
	boardSize    = flag.Int("size", 11, "Hex board size (N for an NxN board)")
	dfpnDBDir    = flag.String("dfpn-db", "./dfpn.db", "directory for the DFPN position database")
	bookDBDir    = flag.String("book-db", "./book.db", "directory for the opening book database")
	maxStones    = flag.Int("max-stones", 40, "stone count at or below which positions route to the on-disk database")
	ttMinEntries = flag.Int("tt-entries", 1<<20, "minimum number of entries in each in-memory transposition table")

	dbBakFilename = flag.String("db-bak-filename", "", "DFPN database backup file (empty disables)")
	dbBakPeriod   = flag.Duration("db-bak-period", 0, "interval between DFPN database backups")
	ttBakFilename = flag.String("tt-bak-filename", "", "book database backup file (empty disables)")
	ttBakPeriod   = flag.Duration("tt-bak-period", 0, "interval between book database backups")
)

func main() {
	flag.Parse()

	eval := evaluator.NewDefault(evaluator.DefaultParams())

	session, err := command.NewSession(command.Config{
		BoardSize:    *boardSize,
		DFPNDBDir:    *dfpnDBDir,
		BookDBDir:    *bookDBDir,
		MaxStones:    *maxStones,
		TTMinEntries: *ttMinEntries,
	}, eval, eval)
	if err != nil {
		log.Fatal(err)
	}
	defer session.Close()

	now := time.Now()
	session.ConfigureBackups(
		backup.Schedule{Filename: *dbBakFilename, First: now, Period: *dbBakPeriod},
		backup.Schedule{Filename: *ttBakFilename, First: now, Period: *ttBakPeriod},
		time.Minute,
	)

	if err := command.Loop(session, os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}
