package command

import (
	"strings"
	"testing"

	"github.com/hexsolver/hexsolver/internal/evaluator"
)

func newTestSession(t *testing.T, boardSize int) *Session {
	t.Helper()
	eval := evaluator.NewDefault(evaluator.DefaultParams())
	s, err := NewSession(Config{
		BoardSize:    boardSize,
		DFPNDBDir:    t.TempDir(),
		BookDBDir:    t.TempDir(),
		MaxStones:    0,
		TTMinEntries: 256,
	}, eval, eval)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSolveStateSolvesTrivialBoard(t *testing.T) {
	s := newTestSession(t, 2)
	res := s.SolveState()
	if res.Err != nil {
		t.Fatalf("SolveState: %v", res.Err)
	}
	if res.Outcome == Undetermined {
		t.Fatalf("SolveState left a 2x2 board undetermined")
	}
}

func TestBookSetValueRejectsOutOfRange(t *testing.T) {
	s := newTestSession(t, 3)
	if err := s.BookSetValue(1.5); err == nil {
		t.Fatal("BookSetValue(1.5) did not error")
	}
	if err := s.BookSetValue(0.5); err != nil {
		t.Fatalf("BookSetValue(0.5): %v", err)
	}
}

func TestBookImportSolvedThroughSession(t *testing.T) {
	s := newTestSession(t, 3)
	n, err := s.BookImportSolved(strings.NewReader("a1 black\n"))
	if err != nil {
		t.Fatalf("BookImportSolved: %v", err)
	}
	if n != 1 {
		t.Fatalf("imported = %d, want 1", n)
	}
}

func TestLoopDispatchesKnownCommands(t *testing.T) {
	s := newTestSession(t, 2)
	in := strings.NewReader("solve-state black\nquit\n")
	var out strings.Builder
	if err := Loop(s, in, &out); err != nil {
		t.Fatalf("Loop: %v", err)
	}
	if !strings.Contains(out.String(), "black") && !strings.Contains(out.String(), "white") {
		t.Fatalf("Loop output = %q, want a winner line", out.String())
	}
}

func TestLoopReportsProtocolErrorOnUnknownCommand(t *testing.T) {
	s := newTestSession(t, 2)
	in := strings.NewReader("bogus-command\n")
	var out strings.Builder
	if err := Loop(s, in, &out); err != nil {
		t.Fatalf("Loop: %v", err)
	}
	if !strings.Contains(out.String(), "error") {
		t.Fatalf("Loop output = %q, want a protocol error", out.String())
	}
}

func TestSetParameterUpdatesConfig(t *testing.T) {
	s := newTestSession(t, 3)
	in := strings.NewReader("set num_threads 2\nset epsilon 0.5\nquit\n")
	var out strings.Builder
	if err := Loop(s, in, &out); err != nil {
		t.Fatalf("Loop: %v", err)
	}
	if s.dfpnCfg.NumThreads != 2 {
		t.Fatalf("NumThreads = %d, want 2", s.dfpnCfg.NumThreads)
	}
	if s.dfpnCfg.Epsilon != 0.5 {
		t.Fatalf("Epsilon = %v, want 0.5", s.dfpnCfg.Epsilon)
	}
}
