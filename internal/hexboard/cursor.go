package hexboard

// ChildCursor is an ordered sequence of moves from a position. DFPN
// and the book builder both descend through a position's children via
// a cursor rather than re-deriving the move list at every step, so
// ordering decided once (by static score) is stable across the
// search.
type ChildCursor struct {
	moves []Move
}

// NewChildCursor wraps an already-ordered move slice (DFPN orders by
// static evaluator score; the book builder by the same means) into a
// cursor.
func NewChildCursor(moves []Move) *ChildCursor {
	return &ChildCursor{moves: moves}
}

// Size returns the number of moves in the cursor.
func (c *ChildCursor) Size() int { return len(c.moves) }

// MoveAt returns the i-th move.
func (c *ChildCursor) MoveAt(i int) Move { return c.moves[i] }

// Play applies the i-th move to state, returning the undo token.
func (c *ChildCursor) Play(i int, state *Position) Undo {
	return state.PlayMove(c.moves[i])
}

// Undo reverses the i-th move on state.
func (c *ChildCursor) Undo(i int, state *Position, u Undo) {
	state.UndoMove(c.moves[i], u)
}

// IndexOf returns the index of m in the cursor, or -1 if absent.
func (c *ChildCursor) IndexOf(m Move) int {
	for i, mv := range c.moves {
		if mv == m {
			return i
		}
	}
	return -1
}

// Moves returns the underlying ordered slice. Callers must not mutate
// it in place; cursors are shared by reference across a record's
// lifetime.
func (c *ChildCursor) Moves() []Move { return c.moves }
