package book

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/hexsolver/hexsolver/internal/hexboard"
)

// ImportSolvedStates reads a text stream of solved positions and
// marks each one terminal in the book, idempotently (re-importing the
// same line twice leaves the record unchanged after the first
// import). Each line is a whitespace-separated move sequence from
// root terminated by the literal "black" or "white" naming the
// winner, e.g. "a1 b2 c3 black". Lines starting with "#" are
// comments.
func (b *Builder) ImportSolvedStates(root *hexboard.Position, r io.Reader) (imported int, err error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 1 {
			continue
		}
		winnerTok := fields[len(fields)-1]
		moveTokens := fields[:len(fields)-1]

		pos := root.Clone()
		for _, tok := range moveTokens {
			m, parsed := hexboard.ParseCoord(pos.Size, tok)
			if !parsed {
				return imported, fmt.Errorf("book: unparseable move sequence %q", line)
			}
			pos.PlayMove(m)
		}

		winner, parsed := hexboard.ParseColor(winnerTok)
		if !parsed {
			return imported, fmt.Errorf("book: unknown winner %q", winnerTok)
		}

		// value is relative to the side to move at the resulting
		// position: 1 if that side is the named winner, else 0.
		value := 0.0
		if winner == pos.ToMove() {
			value = 1
		}

		rec, ok, err := b.store.Get(pos)
		if err != nil {
			return imported, err
		}
		if ok && rec.Terminal && rec.Value == value {
			continue // already imported, idempotent no-op
		}
		rec = Record{Value: value, Terminal: true, Valid: true}
		if err := b.store.Put(pos, rec); err != nil {
			return imported, err
		}
		imported++
	}
	if err := scanner.Err(); err != nil {
		return imported, err
	}
	return imported, nil
}
