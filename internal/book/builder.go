package book

import (
	"math"

	"github.com/hexsolver/hexsolver/internal/evaluator"
	"github.com/hexsolver/hexsolver/internal/hexboard"
	"github.com/hexsolver/hexsolver/internal/store"
)

// Store is the concrete position store type the book builder reads
// and writes.
type Store = store.Store[Record]

// Params carries the book builder's tunables: the back-up weight
// alpha, the per-node expansion width, and the replay count floor a
// child needs before ChooseMove will consider it.
type Params struct {
	Alpha           float64
	ExpandWidth     int
	ExpandThreshold int
	MinCountToPlay  int
}

// DefaultParams returns reasonable defaults.
func DefaultParams() Params {
	return Params{Alpha: 1.0, ExpandWidth: 10, ExpandThreshold: 1000, MinCountToPlay: 0}
}

// Builder implements the best-first expansion, refresh, and
// move-selection operations of the opening book. Value is tracked on
// a [0,1] scale (1 = proven win for the side to move, 0 = proven
// loss), mirroring evaluator.Oracle.IsDetermined's convention, so book
// and DFPN agree on what "won" and "lost" mean.
type Builder struct {
	params Params
	store  *Store
	oracle evaluator.Oracle
	eval   evaluator.Evaluator
}

// NewBuilder builds a Builder over the given store, oracle and
// evaluator.
func NewBuilder(params Params, st *Store, oracle evaluator.Oracle, eval evaluator.Evaluator) *Builder {
	return &Builder{params: params, store: st, oracle: oracle, eval: eval}
}

// inverse maps a child's value (from the child's mover's perspective)
// to the parent's perspective on the same outcome.
func inverse(v float64) float64 { return 1 - v }

// swapAwareValue accounts for the pie rule: at a position where swap
// is legal, the value to the player about to move there is never worse
// than the value of handing the position to the opponent and taking
// their seat instead.
func swapAwareValue(v float64) float64 {
	return math.Max(v, inverse(v))
}

// observedChildValue is how a parent reads a child's backed-up value:
// the plain inverse, unless swap is legal at the child position, in
// which case the parent must also credit the opponent's option to
// swap into the mover's seat instead of replying normally.
func observedChildValue(childValue float64, swapLegal bool) float64 {
	raw := inverse(childValue)
	if swapLegal {
		return swapAwareValue(raw)
	}
	return raw
}

// Expand expands numExpansions leaves of the book starting at root,
// using a best-first descent through existing nodes followed by leaf
// creation and a full backup to the root.
func (b *Builder) Expand(root *hexboard.Position, numExpansions int) error {
	for i := 0; i < numExpansions; i++ {
		if err := b.expandOnce(root); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) expandOnce(root *hexboard.Position) error {
	pos := root.Clone()
	var path []hexboard.Move

	rec, ok, err := b.store.Get(pos)
	if err != nil {
		return err
	}
	if !ok {
		rec = b.createRecord(pos)
		if err := b.store.Put(pos, rec); err != nil {
			return err
		}
	}

	// Best-first descent: repeatedly follow the most urgent
	// (lowest-priority) live child until a leaf or terminal node is
	// reached.
	for !rec.Leaf && !rec.Terminal {
		children := rec.Children
		if len(children) == 0 {
			break
		}
		next := bestPriorityChild(b.store, pos, children)
		path = append(path, next)
		pos.PlayMove(next)
		rec, ok, err = b.store.Get(pos)
		if err != nil {
			return err
		}
		if !ok {
			rec = b.createRecord(pos)
			if err := b.store.Put(pos, rec); err != nil {
				return err
			}
		}
	}

	if rec.Leaf && !rec.Terminal {
		if err := b.expandLeaf(pos, &rec); err != nil {
			return err
		}
		if err := b.store.Put(pos, rec); err != nil {
			return err
		}
	}

	return b.backupPath(root, path)
}

// createRecord builds a fresh leaf record for pos.
func (b *Builder) createRecord(pos *hexboard.Position) Record {
	if value, determined := b.oracle.IsDetermined(pos); determined {
		return Record{Value: value, Priority: 0, Leaf: false, Terminal: true, Valid: true}
	}
	return Record{Value: b.staticValue(pos), Priority: 0, Leaf: true, Terminal: false, Valid: true}
}

// staticValue rescales the evaluator's unbounded score into [0,1]
// via a logistic squash, a cheap stand-in used only until a node is
// expanded and its value is backed up from real children.
func (b *Builder) staticValue(pos *hexboard.Position) float64 {
	return 1 / (1 + math.Exp(-b.eval.Evaluate(pos)))
}

// expandLeaf turns a leaf into an internal node: enumerates
// consider-moves, ranked by the evaluator, truncated to the top
// ExpandWidth of them as live children.
func (b *Builder) expandLeaf(pos *hexboard.Position, rec *Record) error {
	moves := b.oracle.ConsiderMoves(pos)
	if len(moves) == 0 {
		rec.Terminal = true
		rec.Leaf = false
		rec.Value = 0
		return nil
	}

	width := b.params.ExpandWidth
	if width <= 0 || width > len(moves) {
		width = len(moves)
	}
	scratch := pos.Clone()
	type scored struct {
		move  hexboard.Move
		score float64
	}
	ranked := make([]scored, len(moves))
	for i, m := range moves {
		u := scratch.PlayMove(m)
		ranked[i] = scored{move: m, score: -b.eval.Evaluate(scratch)}
		scratch.UndoMove(m, u)
	}
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && ranked[j].score > ranked[j-1].score; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}
	children := make([]hexboard.Move, 0, width)
	for i := 0; i < width && i < len(ranked); i++ {
		children = append(children, ranked[i].move)
		cm := scratch.PlayMove(ranked[i].move)
		if _, ok, _ := b.store.Get(scratch); !ok {
			b.store.Put(scratch, b.createRecord(scratch))
		}
		scratch.UndoMove(ranked[i].move, cm)
	}

	rec.Children = children
	rec.Leaf = false
	return nil
}

// backupPath recomputes value and priority from root along path,
// deepest node first.
func (b *Builder) backupPath(root *hexboard.Position, path []hexboard.Move) error {
	pos := root.Clone()
	for _, m := range path {
		pos.PlayMove(m)
	}
	for i := len(path); i >= 0; i-- {
		if err := b.backupNode(pos); err != nil {
			return err
		}
		if i > 0 {
			// Undo the last move to step back to the parent; a fresh
			// Position walk from root keeps this simple and avoids
			// needing undo tokens across the loop.
			pos = root.Clone()
			for _, mm := range path[:i-1] {
				pos.PlayMove(mm)
			}
		}
	}
	return nil
}

// backupNode recomputes pos's value, priority, and best move from its
// live children currently in the store.
func (b *Builder) backupNode(pos *hexboard.Position) error {
	rec, ok, err := b.store.Get(pos)
	if err != nil || !ok || rec.Leaf || rec.Terminal {
		return err
	}

	children := rec.Children
	if len(children) == 0 {
		return nil
	}

	cursor := hexboard.NewChildCursor(children)
	scratch := pos.Clone()
	bestIdx := -1
	bestObserved := math.Inf(-1)
	var bestRawInv float64
	var bestChildPriority float64
	for i := 0; i < cursor.Size(); i++ {
		u := cursor.Play(i, scratch)
		childRec, ok, err := b.store.Get(scratch)
		swapLegal := scratch.SwapLegal()
		cursor.Undo(i, scratch, u)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		observed := observedChildValue(childRec.Value, swapLegal)
		if bestIdx == -1 || observed > bestObserved {
			bestIdx = i
			bestObserved = observed
			bestRawInv = inverse(childRec.Value)
			bestChildPriority = childRec.Priority
		}
	}
	if bestIdx == -1 {
		return nil
	}

	rec.Value = bestObserved
	rec.Priority = b.params.Alpha*(rec.Value-bestRawInv) + bestChildPriority + 1
	rec.BestMove = cursor.MoveAt(bestIdx)
	return b.store.Put(pos, rec)
}

// Refresh performs a full post-order traversal of the DAG rooted at
// root, recomputing every node's value and priority. Needed after
// ExpandWidth/ExpandThreshold changes, since ordinary Expand only
// propagates along the path it just descended.
func (b *Builder) Refresh(root *hexboard.Position) error {
	visited := map[uint64]bool{}
	return b.refresh(root.Clone(), visited)
}

func (b *Builder) refresh(pos *hexboard.Position, visited map[uint64]bool) error {
	if visited[pos.Hash()] {
		return nil
	}
	visited[pos.Hash()] = true

	rec, ok, err := b.store.Get(pos)
	if err != nil || !ok || rec.Leaf || rec.Terminal {
		return err
	}

	cursor := hexboard.NewChildCursor(rec.Children)
	scratch := pos.Clone()
	for i := 0; i < cursor.Size(); i++ {
		u := cursor.Play(i, scratch)
		if err := b.refresh(scratch, visited); err != nil {
			cursor.Undo(i, scratch, u)
			return err
		}
		cursor.Undo(i, scratch, u)
	}

	return b.backupNode(pos)
}

// IncreaseWidth widens every already-expanded node's live child set up
// to the builder's current ExpandWidth, without recomputing values.
// Call Refresh afterwards to propagate the new children's values up
// the tree.
func (b *Builder) IncreaseWidth(root *hexboard.Position) error {
	visited := map[uint64]bool{}
	return b.increaseWidth(root.Clone(), visited)
}

func (b *Builder) increaseWidth(pos *hexboard.Position, visited map[uint64]bool) error {
	if visited[pos.Hash()] {
		return nil
	}
	visited[pos.Hash()] = true

	rec, ok, err := b.store.Get(pos)
	if err != nil || !ok || rec.Leaf || rec.Terminal {
		return err
	}

	if len(rec.Children) < b.params.ExpandWidth {
		if err := b.expandLeaf(pos, &rec); err != nil {
			return err
		}
		rec.Leaf = false
		if err := b.store.Put(pos, rec); err != nil {
			return err
		}
	}

	cursor := hexboard.NewChildCursor(rec.Children)
	scratch := pos.Clone()
	for i := 0; i < cursor.Size(); i++ {
		u := cursor.Play(i, scratch)
		if err := b.increaseWidth(scratch, visited); err != nil {
			cursor.Undo(i, scratch, u)
			return err
		}
		cursor.Undo(i, scratch, u)
	}
	return nil
}

// ChooseMove picks the move to play from pos: the live child with the
// highest score(child) = observedChildValue(child) +
// w*log(child.count+1), restricted to children played at least
// MinCountToPlay times.
func (b *Builder) ChooseMove(pos *hexboard.Position, explorationWeight float64) (hexboard.Move, bool) {
	rec, ok, err := b.store.Get(pos)
	if err != nil || !ok || rec.Leaf {
		return 0, false
	}

	cursor := hexboard.NewChildCursor(rec.Children)
	scratch := pos.Clone()
	bestMove := hexboard.Move(0)
	bestScore := math.Inf(-1)
	found := false
	for i := 0; i < cursor.Size(); i++ {
		u := cursor.Play(i, scratch)
		childRec, ok, _ := b.store.Get(scratch)
		swapLegal := scratch.SwapLegal()
		cursor.Undo(i, scratch, u)
		if !ok || childRec.Count < b.params.MinCountToPlay {
			continue
		}
		score := observedChildValue(childRec.Value, swapLegal) + explorationWeight*math.Log(float64(childRec.Count)+1)
		if !found || score > bestScore {
			found = true
			bestScore = score
			bestMove = cursor.MoveAt(i)
		}
	}
	return bestMove, found
}

// IncrementPlayCount bumps pos's Count, used when a move is actually
// played from the book during self-play or tournament use.
func (b *Builder) IncrementPlayCount(pos *hexboard.Position) error {
	rec, ok, err := b.store.Get(pos)
	if err != nil {
		return err
	}
	if !ok {
		rec = b.createRecord(pos)
	}
	rec.Count++
	return b.store.Put(pos, rec)
}

// bestPriorityChild returns the live child of pos with the lowest
// stored priority (lower means more urgent to expand next), defaulting
// to the first child if none are yet present in the store.
func bestPriorityChild(st *Store, pos *hexboard.Position, children []hexboard.Move) hexboard.Move {
	cursor := hexboard.NewChildCursor(children)
	scratch := pos.Clone()
	best := cursor.MoveAt(0)
	bestPriority := math.Inf(1)
	for i := 0; i < cursor.Size(); i++ {
		u := cursor.Play(i, scratch)
		rec, ok, _ := st.Get(scratch)
		cursor.Undo(i, scratch, u)
		if ok && rec.Priority < bestPriority {
			bestPriority = rec.Priority
			best = cursor.MoveAt(i)
		}
	}
	return best
}
