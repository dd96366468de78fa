package evaluator

import "github.com/hexsolver/hexsolver/internal/hexboard"

// Params carries every tunable knob the default evaluator and oracle
// need: no package-level configuration, just a plain struct the
// caller constructs and injects.
type Params struct {
	// CenterWeight scales the bonus given to stones nearer the
	// board's center, a crude proxy for influence.
	CenterWeight float64
}

// DefaultParams returns reasonable defaults.
func DefaultParams() Params {
	return Params{CenterWeight: 0.1}
}

// Default is a lightweight stand-in Evaluator + Oracle used for
// testing the DFPN engine and book builder in isolation. It is not a
// serious Hex evaluation function: the real evaluator is treated as an
// external black box the core never implements, so Default only needs
// to be cheap, deterministic, and directionally sane (favor more of
// the side to move's own stones, mildly favor central cells).
type Default struct {
	params Params
}

// NewDefault builds a Default evaluator/oracle from params.
func NewDefault(params Params) *Default {
	return &Default{params: params}
}

// Evaluate implements Evaluator.
func (d *Default) Evaluate(p *hexboard.Position) float64 {
	mover := p.ToMove()
	opp := mover.Opponent()
	center := float64(p.Size-1) / 2
	var score float64
	for i := 0; i < p.Size*p.Size; i++ {
		c := p.At(i)
		if c == hexboard.Empty {
			continue
		}
		r, col := i/p.Size, i%p.Size
		dr, dc := float64(r)-center, float64(col)-center
		dist := dr*dr + dc*dc
		bonus := 1.0 + d.params.CenterWeight/(1.0+dist)
		switch c {
		case mover:
			score += bonus
		case opp:
			score -= bonus
		}
	}
	return score
}

// LegalMoves implements Oracle.
func (d *Default) LegalMoves(p *hexboard.Position) []hexboard.Move {
	return p.LegalMoves()
}

// ConsiderMoves implements Oracle; Default does no pruning.
func (d *Default) ConsiderMoves(p *hexboard.Position) []hexboard.Move {
	return p.LegalMoves()
}

// IsDetermined implements Oracle: a position is determined when one
// side has connected, or when no legal move remains for an
// otherwise-undetermined side to move, which counts as a loss for
// that side.
func (d *Default) IsDetermined(p *hexboard.Position) (float64, bool) {
	if winner, ok := p.Winner(); ok {
		if winner == p.ToMove() {
			return 1, true
		}
		return 0, true
	}
	if len(p.LegalMoves()) == 0 {
		return 0, true
	}
	return 0, false
}
