package dfpn

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hexsolver/hexsolver/internal/evaluator"
	"github.com/hexsolver/hexsolver/internal/hexboard"
	"github.com/hexsolver/hexsolver/internal/store"
)

// Store is the concrete position store type DFPN reads and writes:
// a rotation-aware store of Record.
type Store = store.Store[Record]

// Solver runs the DFPN algorithm against a shared position store. A
// single Solver may be driven by multiple goroutine workers
// concurrently (see StartSearch); workers share the store, the
// virtual-bounds table, and one atomic abort flag, and own their own
// scratch board and history.
type Solver struct {
	cfg      Config
	store    *Store
	oracle   evaluator.Oracle
	eval     evaluator.Evaluator
	vbounds  *VBoundsTable
	width    WidthSchedule
	abort    atomic.Bool
	deadline time.Time

	mu        sync.Mutex
	listeners []Listener
}

// NewSolver builds a Solver over the given store, oracle and
// evaluator.
func NewSolver(cfg Config, st *Store, oracle evaluator.Oracle, eval evaluator.Evaluator) *Solver {
	return &Solver{
		cfg:     cfg,
		store:   st,
		oracle:  oracle,
		eval:    eval,
		vbounds: NewVBoundsTable(cfg.MaxDepth, cfg.NumThreads),
		width:   cfg.widthSchedule(),
	}
}

// AddListener registers l to be notified whenever a position is
// solved.
func (s *Solver) AddListener(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

func (s *Solver) notify(hash uint64, bounds Bounds) {
	s.mu.Lock()
	ls := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()
	for _, l := range ls {
		l.OnSolved(hash, bounds)
	}
}

// Result is the outcome of a StartSearch call.
type Result struct {
	Bounds  Bounds
	PV      []hexboard.Move
	Aborted bool
	Work    uint64
}

// StartSearch runs DFPN on root up to maxBounds using cfg.NumThreads
// workers, returning once the root is solved, the time limit expires,
// or Abort is called.
//
// Parallelism: workers share the store, the virtual-bounds table, and
// the abort flag; each owns its own scratch board and History. Every
// worker starts its own descent at root; the root's children are not
// partitioned among workers. A worker claims each child it descends
// into in the virtual-bounds table, and the bounds it advertises there
// steer the other workers toward different children (see DESIGN.md).
func (s *Solver) StartSearch(root *hexboard.Position, maxBounds Bounds) Result {
	s.abort.Store(false)
	if s.cfg.TimeLimit > 0 {
		s.deadline = time.Now().Add(s.cfg.TimeLimit)
	} else {
		s.deadline = time.Time{}
	}

	rec, ok, _ := s.store.Get(root)
	if !ok {
		rec = s.createRecord(root)
		s.store.Put(root, rec)
	}
	if rec.Bounds.Solved() {
		return Result{Bounds: rec.Bounds, PV: s.principalVariation(root), Work: rec.Work}
	}

	n := s.cfg.NumThreads
	if n < 1 {
		n = 1
	}
	if n == 1 {
		hist := &History{}
		b := s.mid(0, root.Clone(), maxBounds, hist, 0)
		return Result{Bounds: b, PV: s.principalVariation(root), Aborted: s.abort.Load(), Work: s.workAt(root)}
	}

	var wg sync.WaitGroup
	for w := 0; w < n; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			hist := &History{}
			s.mid(workerID, root.Clone(), maxBounds, hist, 0)
		}(w)
	}
	wg.Wait()

	final, _, _ := s.store.Get(root)
	return Result{Bounds: final.Bounds, PV: s.principalVariation(root), Aborted: s.abort.Load(), Work: final.Work}
}

// Abort raises the shared abort flag; all workers return their
// current bounds without writing a degraded record back.
func (s *Solver) Abort() { s.abort.Store(true) }

func (s *Solver) workAt(p *hexboard.Position) uint64 {
	rec, ok, _ := s.store.Get(p)
	if !ok {
		return 0
	}
	return rec.Work
}

// checkAbort polls the shared flag and the deadline; it is called at
// every descent step.
func (s *Solver) checkAbort() bool {
	if s.abort.Load() {
		return true
	}
	if !s.deadline.IsZero() && time.Now().After(s.deadline) {
		s.abort.Store(true)
		return true
	}
	return false
}

// createRecord builds a fresh record for pos: terminal check, legal
// move enumeration (or the pruned "consider" subset when UseICE is
// set), static ordering by evaluator score, and unit bounds for every
// child.
func (s *Solver) createRecord(pos *hexboard.Position) Record {
	if value, determined := s.oracle.IsDetermined(pos); determined {
		if value >= 1 {
			return Record{Bounds: WinBounds, Valid: true}
		}
		return Record{Bounds: LossBounds, Valid: true}
	}

	var moves []hexboard.Move
	if s.cfg.UseICE {
		moves = s.oracle.ConsiderMoves(pos)
	} else {
		moves = s.oracle.LegalMoves(pos)
	}
	if len(moves) == 0 {
		// An empty legal-move set at an undetermined position is a
		// loss for the side to move.
		return Record{Bounds: LossBounds, Valid: true}
	}

	type scored struct {
		move  hexboard.Move
		score float64
	}
	scratch := pos.Clone()
	ranked := make([]scored, len(moves))
	for i, m := range moves {
		if m == hexboard.SwapMove {
			ranked[i] = scored{move: m, score: swapMoveScore(pos, s.eval)}
			continue
		}
		u := scratch.PlayMove(m)
		// Score from the parent's mover's point of view: negate the
		// evaluator's score, which favors scratch's own side to move
		// (the opponent after this move).
		ranked[i] = scored{move: m, score: -s.eval.Evaluate(scratch)}
		scratch.UndoMove(m, u)
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	children := make([]hexboard.Move, len(ranked))
	for i, r := range ranked {
		children[i] = r.move
	}

	return Record{
		Bounds:    UnitBounds,
		Children:  children,
		LiveWidth: s.width.LiveWidth(0, len(children)),
		EvalScore: s.eval.Evaluate(pos),
		Valid:     true,
	}
}

// swapMoveScore estimates the score of taking over the opponent's
// sole opening stone: evaluate the position as if mover had played
// that same cell itself, i.e. the mirror image of the opponent's
// placement from mover's perspective. A simple, serviceable proxy
// given the evaluator is an external black box.
func swapMoveScore(pos *hexboard.Position, eval evaluator.Evaluator) float64 {
	return -eval.Evaluate(pos)
}

// mid is the recursive depth-first proof-number search step, run on a
// worker's own scratch board and history.
func (s *Solver) mid(workerID int, pos *hexboard.Position, maxBounds Bounds, hist *History, depth int) Bounds {
	if s.checkAbort() {
		return Bounds{Phi: 1, Delta: 1}
	}

	rec, ok, _ := s.store.Get(pos)
	if !ok {
		rec = s.createRecord(pos)
		s.store.Put(pos, rec)
	}
	if rec.Bounds.Solved() {
		return rec.Bounds
	}
	if exceeds(rec.Bounds, maxBounds) {
		return rec.Bounds
	}
	if hist.Contains(pos.Hash()) {
		// A cycle in the DAG: treat as a terminator that cannot
		// improve the parent.
		return maxBounds
	}

	for {
		if s.checkAbort() || s.vbounds.PathSolved(workerID) {
			break
		}
		if len(rec.Children) == 0 {
			rec.Bounds = LossBounds
			break
		}

		rec.LiveWidth = s.width.LiveWidth(rec.Work, len(rec.Children))
		cursor := hexboard.NewChildCursor(rec.LiveChildren())
		if cursor.Size() == 0 {
			rec.Bounds = LossBounds
			break
		}

		bounds := make([]childBound, cursor.Size())
		scratch := pos.Clone()
		for i := 0; i < cursor.Size(); i++ {
			u := cursor.Play(i, scratch)
			b := UnitBounds
			if childRec, ok, _ := s.store.Get(scratch); ok {
				b = childRec.Bounds
			}
			if vb, has := s.vbounds.Read(depth+1, scratch.Hash()); has {
				b = looser(b, vb)
			}
			cursor.Undo(i, scratch, u)
			bounds[i] = childBound{index: i, bound: b}
		}

		newBounds := backup(bounds)
		if newBounds.Solved() || exceeds(newBounds, maxBounds) {
			rec.Bounds = newBounds
			if newBounds.IsWin() {
				rec.BestMove = cursor.MoveAt(winningChild(bounds))
			}
			break
		}

		selIdx, childMax := selectChild(bounds, maxBounds, s.cfg.Epsilon)
		m := cursor.MoveAt(selIdx)

		u := cursor.Play(selIdx, pos)
		childHash := pos.Hash()
		s.vbounds.Claim(depth+1, childHash, workerID, childMax)
		hist.Push(m, childHash)

		childBounds := s.mid(workerID, pos, childMax, hist, depth+1)

		hist.Pop()
		s.vbounds.Release(depth+1, childHash, workerID, childBounds, childBounds.Solved())
		cursor.Undo(selIdx, pos, u)

		if s.abort.Load() {
			// An aborted child's bounds are not a search result; the
			// stored record is left as it was.
			return rec.Bounds
		}

		bounds[selIdx].bound = childBounds
		rec.Work++
		newBounds = backup(bounds)
		rec.Bounds = newBounds

		if newBounds.Solved() {
			if newBounds.IsWin() {
				rec.BestMove = m
			}
			break
		}
		if exceeds(newBounds, maxBounds) {
			break
		}
		if allLosses(bounds) {
			rec.LiveWidth = s.width.LiveWidth(rec.Work, len(rec.Children))
			if rec.LiveWidth <= cursor.Size() {
				rec.Bounds = LossBounds
				break
			}
		}
	}

	s.store.Put(pos, rec)
	if rec.Bounds.Solved() {
		s.notify(pos.Hash(), rec.Bounds)
	}
	return rec.Bounds
}

// allLosses reports whether every child bound denotes a win for the
// child's own mover (Delta == Infty), i.e. a loss from the parent's
// perspective for every currently-live child.
func allLosses(bounds []childBound) bool {
	for _, b := range bounds {
		if b.bound.Delta != Infty {
			return false
		}
	}
	return true
}

// winningChild returns the index of the child whose bound witnesses
// the parent's win (Delta == 0 for that child, the minimal delta
// picked by backup's phi = min child delta).
func winningChild(bounds []childBound) int {
	best := 0
	for i, b := range bounds {
		if b.bound.Delta < bounds[best].bound.Delta {
			best = i
		}
	}
	return best
}

// looser returns whichever of a, b represents more remaining work
// (the larger phi+delta sum), used to merge a locally observed bound
// with an advertised virtual bound: workers should treat a
// collision-prone node as at least as hard as any peer's claim.
func looser(a, b Bounds) Bounds {
	if a.Phi+a.Delta >= b.Phi+b.Delta {
		return a
	}
	return b
}

// principalVariation follows BestMove from root while the current
// record is a proven win for its side to move, stopping at the first
// position that is absent, not a proven win, or already visited.
func (s *Solver) principalVariation(root *hexboard.Position) []hexboard.Move {
	var pv []hexboard.Move
	cur := root.Clone()
	seen := map[uint64]bool{}
	for {
		rec, ok, _ := s.store.Get(cur)
		if !ok || !rec.Bounds.IsWin() || seen[cur.Hash()] {
			return pv
		}
		seen[cur.Hash()] = true
		pv = append(pv, rec.BestMove)
		cur.PlayMove(rec.BestMove)
	}
}

// PropagateBackwards walks toRoot (a move sequence from the root to
// the current position) and refreshes bounds for every ancestor still
// present in the store, stopping at the first absent ancestor. Undo
// tokens for the original moves aren't available here, so each
// ancestor is rebuilt by replaying the prefix of toRoot from current
// rather than undoing from current towards the root.
func (s *Solver) PropagateBackwards(current *hexboard.Position, toRoot []hexboard.Move) {
	for i := len(toRoot) - 1; i >= 0; i-- {
		ancestor := current.Clone()
		for _, m := range toRoot[:i] {
			ancestor.PlayMove(m)
		}
		rec, ok, _ := s.store.Get(ancestor)
		if !ok {
			return
		}
		bounds := make([]childBound, 0, len(rec.LiveChildren()))
		scratch := ancestor.Clone()
		for _, m := range rec.LiveChildren() {
			u := scratch.PlayMove(m)
			b := UnitBounds
			if childRec, ok, _ := s.store.Get(scratch); ok {
				b = childRec.Bounds
			}
			scratch.UndoMove(m, u)
			bounds = append(bounds, childBound{bound: b})
		}
		if len(bounds) == 0 {
			continue
		}
		rec.Bounds = backup(bounds)
		s.store.Put(ancestor, rec)
		if rec.Bounds.Solved() {
			s.notify(ancestor.Hash(), rec.Bounds)
		}
	}
}
