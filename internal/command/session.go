package command

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/hexsolver/hexsolver/internal/backup"
	"github.com/hexsolver/hexsolver/internal/book"
	"github.com/hexsolver/hexsolver/internal/dfpn"
	"github.com/hexsolver/hexsolver/internal/evaluator"
	"github.com/hexsolver/hexsolver/internal/hexboard"
	"github.com/hexsolver/hexsolver/internal/store"
)

// Session owns everything one long-running invocation of the core
// needs: the current position, a DFPN solver and store, a book
// builder and store, and the backup scheduler. Constructed once per
// process and driven by the command loop.
type Session struct {
	pos *hexboard.Position

	eval   evaluator.Evaluator
	oracle evaluator.Oracle

	dfpnCfg   dfpn.Config
	dfpnStore *dfpn.Store
	solver    *dfpn.Solver

	bookParams book.Params
	bookStore  *book.Store
	builder    *book.Builder

	backupSched *backup.Scheduler
}

// Config bundles the construction-time parameters for a Session: the
// board size and the on-disk store locations for both schemas.
type Config struct {
	BoardSize    int
	DFPNDBDir    string
	BookDBDir    string
	MaxStones    int
	TTMinEntries int
}

// NewSession opens both stores and builds the solver/builder over the
// given evaluator/oracle pair.
func NewSession(cfg Config, eval evaluator.Evaluator, oracle evaluator.Oracle) (*Session, error) {
	dfpnStore, err := store.Open(store.Config[dfpn.Record]{
		DBDir:        cfg.DFPNDBDir,
		DBTypeTag:    dfpn.DBTypeTag,
		Codec:        dfpn.Codec(),
		MaxStones:    cfg.MaxStones,
		TTMinEntries: cfg.TTMinEntries,
		Weight:       dfpn.Weight,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: dfpn store: %v", ErrOpenFailure, err)
	}

	bookStore, err := store.Open(store.Config[book.Record]{
		DBDir:        cfg.BookDBDir,
		DBTypeTag:    book.DBTypeTag,
		Codec:        book.Codec(),
		MaxStones:    cfg.MaxStones,
		TTMinEntries: cfg.TTMinEntries,
		Weight:       book.Weight,
	})
	if err != nil {
		dfpnStore.Close()
		return nil, fmt.Errorf("%w: book store: %v", ErrOpenFailure, err)
	}

	dfpnCfg := dfpn.DefaultConfig()
	bookParams := book.DefaultParams()

	s := &Session{
		pos:         hexboard.NewPosition(cfg.BoardSize),
		eval:        eval,
		oracle:      oracle,
		dfpnCfg:     dfpnCfg,
		dfpnStore:   dfpnStore,
		solver:      dfpn.NewSolver(dfpnCfg, dfpnStore, oracle, eval),
		bookParams:  bookParams,
		bookStore:   bookStore,
		builder:     book.NewBuilder(bookParams, bookStore, oracle, eval),
		backupSched: backup.NewScheduler(func(filename string, err error) {
			log.Printf("[Backup] %s failed: %v", filename, err)
		}),
	}
	log.Printf("[Session] opened dfpn-db=%s book-db=%s board-size=%d", cfg.DFPNDBDir, cfg.BookDBDir, cfg.BoardSize)
	return s, nil
}

// Close releases both stores and stops the backup scheduler.
func (s *Session) Close() error {
	s.backupSched.Stop()
	err1 := s.dfpnStore.Close()
	err2 := s.bookStore.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// SetPosition replaces the session's current position with a board of
// the given size.
func (s *Session) SetPosition(size int) {
	s.pos = hexboard.NewPosition(size)
}

// Play applies a move to the session's current position.
func (s *Session) Play(m hexboard.Move) {
	s.pos.PlayMove(m)
}

// Position returns a read-only view of the current position.
func (s *Session) Position() *hexboard.Position { return s.pos }

// SolveState runs DFPN to completion (or abort) on the current
// position.
func (s *Session) SolveState() Result {
	log.Printf("[Solve] starting on a %dx%d board, %d thread(s)", s.pos.Size, s.pos.Size, s.dfpnCfg.NumThreads)
	res := s.solver.StartSearch(s.pos, dfpn.Bounds{Phi: dfpn.Infty, Delta: dfpn.Infty})
	if res.Aborted {
		log.Printf("[Solve] aborted after %d nodes", res.Work)
		return Result{Outcome: Undetermined, PV: res.PV, Work: res.Work, Err: ErrAborted}
	}
	outcome := outcomeFromBounds(res.Bounds, s.pos.ToMove())
	log.Printf("[Solve] finished: %v after %d nodes", outcome, res.Work)
	return Result{Outcome: outcome, PV: res.PV, Work: res.Work}
}

// FindWinning tries every root move and returns the subset that is
// winning, by descending into each child and solving it (a loss for
// the child's mover is a win for the root's mover).
func (s *Session) FindWinning() ([]hexboard.Move, error) {
	moves := s.oracle.LegalMoves(s.pos)
	var winning []hexboard.Move
	for _, m := range moves {
		u := s.pos.PlayMove(m)
		res := s.solver.StartSearch(s.pos, dfpn.Bounds{Phi: dfpn.Infty, Delta: dfpn.Infty})
		s.pos.UndoMove(m, u)
		if res.Aborted {
			return winning, ErrAborted
		}
		if res.Bounds.IsLoss() {
			winning = append(winning, m)
		}
	}
	return winning, nil
}

// BookExpand runs iterations best-first expansions of the book
// starting at the current position.
func (s *Session) BookExpand(iterations int) error {
	return s.builder.Expand(s.pos, iterations)
}

// BookRefresh recomputes every value and priority in the book DAG
// rooted at the current position.
func (s *Session) BookRefresh() error {
	return s.builder.Refresh(s.pos)
}

// BookIncreaseWidth widens every already-expanded node under the
// current position to the builder's current ExpandWidth.
func (s *Session) BookIncreaseWidth() error {
	return s.builder.IncreaseWidth(s.pos)
}

// BookSetValue overrides the current position's value directly.
func (s *Session) BookSetValue(value float64) error {
	if value < 0 || value > 1 {
		return fmt.Errorf("%w: value %v out of [0,1]", ErrProtocol, value)
	}
	rec, ok, err := s.bookStore.Get(s.pos)
	if err != nil {
		return err
	}
	if !ok {
		rec = book.Record{Valid: true}
	}
	rec.Value = value
	rec.Terminal = true
	return s.bookStore.Put(s.pos, rec)
}

// BookImportSolved imports a text stream of solved positions into the
// book rooted at the current position.
func (s *Session) BookImportSolved(r io.Reader) (int, error) {
	return s.builder.ImportSolvedStates(s.pos, r)
}

// SetDFPNConfig replaces the DFPN tunables and rebuilds the solver
// over them. alpha does not apply here; it is a book-only knob.
func (s *Session) SetDFPNConfig(cfg dfpn.Config) {
	s.dfpnCfg = cfg
	s.solver = dfpn.NewSolver(cfg, s.dfpnStore, s.oracle, s.eval)
}

// SetBookParams replaces the book builder's tunables and rebuilds the
// builder over them.
func (s *Session) SetBookParams(params book.Params) {
	s.bookParams = params
	s.builder = book.NewBuilder(params, s.bookStore, s.oracle, s.eval)
}

// ConfigureBackups registers the DFPN and book database backup
// schedules and starts the scheduler polling at pollInterval.
func (s *Session) ConfigureBackups(dfpnSched, bookSched backup.Schedule, pollInterval time.Duration) {
	s.backupSched.Add(dfpnTarget{s.dfpnStore}, dfpnSched)
	s.backupSched.Add(bookTarget{s.bookStore}, bookSched)
	s.backupSched.Start(pollInterval)
}

type dfpnTarget struct{ st *dfpn.Store }

func (t dfpnTarget) BackupDB(path string) error { return t.st.BackupDB(path) }

type bookTarget struct{ st *book.Store }

func (t bookTarget) BackupDB(path string) error { return t.st.BackupDB(path) }
