package book

import (
	"strings"
	"testing"

	"github.com/hexsolver/hexsolver/internal/evaluator"
	"github.com/hexsolver/hexsolver/internal/hexboard"
	"github.com/hexsolver/hexsolver/internal/store"
)

func newTestBuilder(t *testing.T, params Params) (*Builder, *Store) {
	t.Helper()
	st, err := store.Open(store.Config[Record]{
		DBDir:        t.TempDir(),
		DBTypeTag:    DBTypeTag,
		Codec:        Codec(),
		MaxStones:    0,
		TTMinEntries: 256,
		Weight:       Weight,
	})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	eval := evaluator.NewDefault(evaluator.DefaultParams())
	return NewBuilder(params, st, eval, eval), st
}

func TestInverseIsInvolution(t *testing.T) {
	for _, v := range []float64{0, 0.25, 0.5, 0.75, 1} {
		if got := inverse(inverse(v)); got != v {
			t.Fatalf("inverse(inverse(%v)) = %v, want %v", v, got, v)
		}
	}
}

func TestObservedChildValueGatedOnSwapLegality(t *testing.T) {
	// Where swap is not legal, the parent sees the plain inverse: no
	// maxing against the mirror value.
	if got := observedChildValue(0.2, false); got != inverse(0.2) {
		t.Fatalf("observedChildValue(0.2, false) = %v, want %v", got, inverse(0.2))
	}
	if got := observedChildValue(0.8, false); got != inverse(0.8) {
		t.Fatalf("observedChildValue(0.8, false) = %v, want %v", got, inverse(0.8))
	}

	// Where swap is legal, the parent credits the opponent's option to
	// swap, so the observed value is never below 0.5 on a symmetric
	// input.
	if got := observedChildValue(0.5, true); got != 0.5 {
		t.Fatalf("observedChildValue(0.5, true) = %v, want 0.5", got)
	}
	if got := observedChildValue(0.2, true); got < 0.5 {
		t.Fatalf("observedChildValue(0.2, true) = %v, want >= 0.5 (max with inverse)", got)
	}
}

func TestExpandCreatesRootRecord(t *testing.T) {
	b, st := newTestBuilder(t, DefaultParams())
	root := hexboard.NewPosition(3)

	if err := b.Expand(root, 5); err != nil {
		t.Fatalf("Expand: %v", err)
	}
	rec, ok, err := st.Get(root)
	if err != nil || !ok {
		t.Fatalf("Get(root) after Expand: ok=%v err=%v", ok, err)
	}
	if rec.Leaf {
		t.Fatal("root is still a leaf after expansion")
	}
	if len(rec.Children) == 0 {
		t.Fatal("root has no children after expansion")
	}
}

func TestImportSolvedStatesIsIdempotent(t *testing.T) {
	b, st := newTestBuilder(t, DefaultParams())
	root := hexboard.NewPosition(3)

	data := "a1 black\n"
	n1, err := b.ImportSolvedStates(root, strings.NewReader(data))
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	if n1 != 1 {
		t.Fatalf("first import count = %d, want 1", n1)
	}

	n2, err := b.ImportSolvedStates(root, strings.NewReader(data))
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if n2 != 0 {
		t.Fatalf("second (idempotent) import count = %d, want 0", n2)
	}

	pos := root.Clone()
	m, _ := hexboard.ParseCoord(pos.Size, "a1")
	pos.PlayMove(m)
	rec, ok, err := st.Get(pos)
	// After black plays a1, the side to move is white; the imported
	// winner is black, so the resulting position's value (relative to
	// its own mover, white) is a loss: 0.
	if err != nil || !ok || !rec.Terminal || rec.Value != 0 {
		t.Fatalf("imported record = %+v ok=%v err=%v, want terminal loss (value=0)", rec, ok, err)
	}
}

func TestChooseMoveRespectsMinCountToPlay(t *testing.T) {
	params := DefaultParams()
	params.MinCountToPlay = 1
	b, _ := newTestBuilder(t, params)
	root := hexboard.NewPosition(3)

	if err := b.Expand(root, 3); err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if _, ok := b.ChooseMove(root, 0.1); ok {
		t.Fatal("ChooseMove found a move despite no child meeting MinCountToPlay")
	}
}

func TestRefreshDoesNotPanicOnFreshBook(t *testing.T) {
	b, _ := newTestBuilder(t, DefaultParams())
	root := hexboard.NewPosition(3)
	if err := b.Expand(root, 2); err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if err := b.Refresh(root); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
}
