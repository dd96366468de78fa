package hexboard

import "fmt"

// Position is a Hex board state paired with the side to move. The
// zero value is not valid; construct with NewPosition.
//
// Invariant: hash depends on stone placement AND side to move.
// Rotation produces a distinct hash in general; see Rotate.
type Position struct {
	Size   int
	cells  []Color
	toMove Color
	hash   uint64
	stones int

	// swapLegal is true exactly when the swap rule is available at
	// this position: the side to move is the second player, replying
	// to the opponent's sole, opening stone.
	swapLegal bool
}

// NewPosition returns an empty board of the given size with black to
// move first, as a fresh board always does.
func NewPosition(size int) *Position {
	if size < 1 || size > maxBoardSize {
		panic(fmt.Sprintf("hexboard: unsupported size %d", size))
	}
	return &Position{
		Size:   size,
		cells:  make([]Color, size*size),
		toMove: Black,
	}
}

// Clone returns an independent scratch copy. Engines play/undo moves
// on a clone; the caller's canonical Position is never mutated.
func (p *Position) Clone() *Position {
	cp := &Position{
		Size:      p.Size,
		cells:     make([]Color, len(p.cells)),
		toMove:    p.toMove,
		hash:      p.hash,
		stones:    p.stones,
		swapLegal: p.swapLegal,
	}
	copy(cp.cells, p.cells)
	return cp
}

// ToMove returns the side to move.
func (p *Position) ToMove() Color { return p.toMove }

// Hash returns the 64-bit Zobrist hash of this exact orientation and
// side to move.
func (p *Position) Hash() uint64 { return p.hash }

// StoneCount returns the number of stones on the board.
func (p *Position) StoneCount() int { return p.stones }

// SwapLegal reports whether the swap rule may be played instead of a
// normal move at this position (exactly one stone on the board, and
// it is the opponent's).
func (p *Position) SwapLegal() bool { return p.swapLegal }

// At returns the occupant of the given cell index.
func (p *Position) At(cell int) Color { return p.cells[cell] }

// Undo captures the state PlayMove needs to reverse itself. It is
// opaque to callers; the child cursor threads it through play/undo.
type Undo struct {
	swappedCell int // cell that changed owner on a swap, or -1
	swappedFrom Color
	prevSwapLegal bool
	prevHash      uint64
	prevToMove    Color
}

// PlayMove places toMove's stone at the move's cell (or performs the
// swap) and flips the side to move. Panics if the move is illegal;
// callers are expected to only play moves drawn from LegalMoves.
func (p *Position) PlayMove(m Move) Undo {
	u := Undo{swappedCell: -1, prevSwapLegal: p.swapLegal, prevHash: p.hash, prevToMove: p.toMove}
	if m == SwapMove {
		if !p.swapLegal {
			panic("hexboard: swap played but not legal")
		}
		// The sole stone on the board changes owner: the mover takes
		// over the opponent's opening placement.
		for i, c := range p.cells {
			if c != Empty {
				u.swappedCell = i
				u.swappedFrom = c
				p.hash ^= ZobristCell(i, c)
				p.cells[i] = p.toMove
				p.hash ^= ZobristCell(i, p.toMove)
				break
			}
		}
		p.hash ^= ZobristSideToMove()
		p.toMove = p.toMove.Opponent()
		p.swapLegal = false
		return u
	}
	if p.cells[m] != Empty {
		panic("hexboard: move onto occupied cell")
	}
	p.cells[m] = p.toMove
	p.hash ^= ZobristCell(int(m), p.toMove)
	p.hash ^= ZobristSideToMove()
	p.stones++
	p.toMove = p.toMove.Opponent()
	p.swapLegal = p.stones == 1
	return u
}

// UndoMove reverses the effect of PlayMove(m), given the Undo token it
// returned. The canonical board is never mutated this way by engines:
// only scratch clones are.
func (p *Position) UndoMove(m Move, u Undo) {
	if m == SwapMove {
		p.cells[u.swappedCell] = u.swappedFrom
	} else {
		p.cells[m] = Empty
		p.stones--
	}
	p.hash = u.prevHash
	p.toMove = u.prevToMove
	p.swapLegal = u.prevSwapLegal
}

// LegalMoves returns the ordered sequence of placement moves at this
// position (every empty cell, row-major), plus SwapMove first when
// the swap rule is currently legal. An empty legal-move set signals
// the board is full.
func (p *Position) LegalMoves() []Move {
	moves := make([]Move, 0, len(p.cells)+1)
	if p.swapLegal {
		moves = append(moves, SwapMove)
	}
	for i, c := range p.cells {
		if c == Empty {
			moves = append(moves, Move(i))
		}
	}
	return moves
}

// Rotate returns a new Position that is this one rotated 180 degrees
// about the board's center: cell (r,c) maps to (Size-1-r, Size-1-c).
// Rotation preserves stone colors and side to move (180-degree
// rotation of a Hex board maps the board onto itself geometrically;
// it does not swap which edges each color connects).
func (p *Position) Rotate() *Position {
	rp := &Position{
		Size:      p.Size,
		cells:     make([]Color, len(p.cells)),
		toMove:    p.toMove,
		stones:    p.stones,
		swapLegal: p.swapLegal,
	}
	n := len(p.cells)
	for i, c := range p.cells {
		rp.cells[n-1-i] = c
	}
	rp.hash = computeHash(rp.cells, rp.toMove)
	return rp
}

// RotateMove returns the move obtained by rotating m 180 degrees on a
// board of the given size. RotateMove(SwapMove, _) is SwapMove: the
// swap has no board location to rotate.
func RotateMove(m Move, size int) Move {
	if m == SwapMove {
		return SwapMove
	}
	return Move(size*size - 1 - int(m))
}

func computeHash(cells []Color, toMove Color) uint64 {
	var h uint64
	for i, c := range cells {
		if c != Empty {
			h ^= ZobristCell(i, c)
		}
	}
	if toMove == White {
		h ^= ZobristSideToMove()
	}
	return h
}
