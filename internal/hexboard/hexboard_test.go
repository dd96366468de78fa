package hexboard

import "testing"

func TestHashChangesOnMove(t *testing.T) {
	p := NewPosition(5)
	h1 := p.Hash()
	p.PlayMove(NewMove(5, 2, 2))
	h2 := p.Hash()
	if h1 == h2 {
		t.Fatal("hash did not change after move")
	}
}

func TestUndoRestoresHash(t *testing.T) {
	p := NewPosition(5)
	h1 := p.Hash()
	m := NewMove(5, 2, 2)
	u := p.PlayMove(m)
	p.UndoMove(m, u)
	if p.Hash() != h1 {
		t.Fatalf("undo did not restore hash: got %x want %x", p.Hash(), h1)
	}
	if p.StoneCount() != 0 {
		t.Fatalf("undo did not restore stone count: got %d", p.StoneCount())
	}
}

func TestSwapLegalOnlyAfterOneMove(t *testing.T) {
	p := NewPosition(5)
	if p.SwapLegal() {
		t.Fatal("swap should not be legal on empty board")
	}
	p.PlayMove(NewMove(5, 0, 0))
	if !p.SwapLegal() {
		t.Fatal("swap should be legal after exactly one stone placed")
	}
	p.PlayMove(NewMove(5, 1, 1))
	if p.SwapLegal() {
		t.Fatal("swap should not be legal after two stones placed")
	}
}

func TestSwapTakesOverStone(t *testing.T) {
	p := NewPosition(5)
	p.PlayMove(NewMove(5, 0, 0)) // black plays, white to move
	if p.At(int(NewMove(5, 0, 0))) != Black {
		t.Fatal("expected black stone at (0,0)")
	}
	p.PlayMove(SwapMove) // white swaps
	if p.At(int(NewMove(5, 0, 0))) != White {
		t.Fatal("expected white to now own the swapped stone")
	}
	if p.ToMove() != Black {
		t.Fatalf("expected black to move after swap, got %v", p.ToMove())
	}
}

func TestRotateRoundTrip(t *testing.T) {
	p := NewPosition(5)
	p.PlayMove(NewMove(5, 0, 2))
	p.PlayMove(NewMove(5, 4, 1))
	rp := p.Rotate()
	rrp := rp.Rotate()
	if rrp.Hash() != p.Hash() {
		t.Fatalf("double rotation should be identity: got %x want %x", rrp.Hash(), p.Hash())
	}
}

func TestRotateMovesCellsCorrectly(t *testing.T) {
	p := NewPosition(5)
	m := NewMove(5, 0, 0)
	p.PlayMove(m)
	rp := p.Rotate()
	rm := RotateMove(m, 5)
	if rp.At(int(rm)) != Black {
		t.Fatalf("expected rotated stone at %v", rm)
	}
}

func TestLegalMovesExcludesOccupied(t *testing.T) {
	p := NewPosition(3)
	p.PlayMove(NewMove(3, 1, 1))
	moves := p.LegalMoves()
	for _, m := range moves {
		if m != SwapMove && m == NewMove(3, 1, 1) {
			t.Fatal("occupied cell should not be a legal move")
		}
	}
	// 9 cells - 1 occupied + 1 swap = 9
	if len(moves) != 9 {
		t.Fatalf("expected 9 legal moves (8 empty + swap), got %d", len(moves))
	}
}

func TestBlackWinsTopToBottom(t *testing.T) {
	p := NewPosition(3)
	for r := 0; r < 3; r++ {
		p.cells[r*3+1] = Black
	}
	p.stones = 3
	winner, ok := p.Winner()
	if !ok || winner != Black {
		t.Fatalf("expected black to win via middle column, got %v %v", winner, ok)
	}
}

func TestWhiteWinsLeftToRight(t *testing.T) {
	p := NewPosition(3)
	for c := 0; c < 3; c++ {
		p.cells[1*3+c] = White
	}
	p.stones = 3
	winner, ok := p.Winner()
	if !ok || winner != White {
		t.Fatalf("expected white to win via middle row, got %v %v", winner, ok)
	}
}

func TestNoWinnerOnEmptyBoard(t *testing.T) {
	p := NewPosition(5)
	if _, ok := p.Winner(); ok {
		t.Fatal("empty board should have no winner")
	}
}

func TestParseCoordRoundTrip(t *testing.T) {
	size := 11
	m := NewMove(size, 3, 4)
	s := m.Coord(size)
	parsed, ok := ParseCoord(size, s)
	if !ok || parsed != m {
		t.Fatalf("round trip failed: %v -> %q -> %v", m, s, parsed)
	}
}
