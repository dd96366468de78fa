package hexboard

import (
	"context"
	"fmt"

	"github.com/katalvlaran/lvlath/graph/algorithms"
	"github.com/katalvlaran/lvlath/graph/core"
)

// hexNeighborOffsets are the six axial-coordinate neighbor deltas on a
// rhombic Hex grid addressed by (row, col).
var hexNeighborOffsets = [6][2]int{
	{-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0},
}

const (
	virtualSource = "__source__"
	virtualSink   = "__sink__"
)

// Winner reports whether one side has connected its two edges, and if
// so which. Black connects the top row (row 0) to the bottom row
// (row Size-1); White connects the left column (col 0) to the right
// column (col Size-1). A board admits at most one winner at a time
// under normal play; Winner checks Black first, then White.
//
// Connectivity is decided by breadth-first search over a graph built
// from one color's stones, with a virtual source wired to every stone
// touching that color's first edge and a virtual sink wired to every
// stone touching its second edge: the color wins iff sink is
// reachable from source.
func (p *Position) Winner() (Color, bool) {
	if connected(p, Black) {
		return Black, true
	}
	if connected(p, White) {
		return White, true
	}
	return Empty, false
}

// IsTerminal reports whether a side has connected. An empty legal-move
// set at an undetermined position is treated as a loss for the side to
// move, but that is a DFPN/book-level interpretation rather than a
// board-level fact; IsTerminal reports only the connection condition,
// and callers combine it with an empty LegalMoves() check.
func (p *Position) IsTerminal() bool {
	_, ok := p.Winner()
	return ok
}

func connected(p *Position, c Color) bool {
	g := core.NewGraph(false, false)
	size := p.Size
	touchesFirst := false
	touchesSecond := false
	for i, cell := range p.cells {
		if cell != c {
			continue
		}
		r, col := i/size, i%size
		if firstEdge(c, r, col, size) {
			g.AddEdge(virtualSource, vertexID(i), 0)
			touchesFirst = true
		}
		if secondEdge(c, r, col, size) {
			g.AddEdge(vertexID(i), virtualSink, 0)
			touchesSecond = true
		}
		for _, d := range hexNeighborOffsets {
			nr, ncol := r+d[0], col+d[1]
			if nr < 0 || nr >= size || ncol < 0 || ncol >= size {
				continue
			}
			ni := nr*size + ncol
			if p.cells[ni] == c {
				g.AddEdge(vertexID(i), vertexID(ni), 0)
			}
		}
	}
	if !touchesFirst || !touchesSecond {
		return false
	}
	if !g.HasVertex(virtualSource) || !g.HasVertex(virtualSink) {
		return false
	}
	res, err := algorithms.BFS(g, virtualSource, &algorithms.BFSOptions{Ctx: context.Background()})
	if err != nil {
		return false
	}
	return res.Visited[virtualSink]
}

func vertexID(cell int) string {
	return fmt.Sprintf("c%d", cell)
}

// firstEdge reports whether (r,col) touches the edge c must reach
// first: row 0 for Black, column 0 for White.
func firstEdge(c Color, r, col, size int) bool {
	if c == Black {
		return r == 0
	}
	return col == 0
}

// secondEdge reports whether (r,col) touches the edge c must reach
// second: the last row for Black, the last column for White.
func secondEdge(c Color, r, col, size int) bool {
	if c == Black {
		return r == size-1
	}
	return col == size-1
}
