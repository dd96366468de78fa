package command

import (
	"github.com/hexsolver/hexsolver/internal/dfpn"
	"github.com/hexsolver/hexsolver/internal/hexboard"
)

// Outcome is the structured result every operation surfaces: a winner
// color, undetermined, or error.
type Outcome int

const (
	Undetermined Outcome = iota
	WinnerBlack
	WinnerWhite
	Errored
)

func (o Outcome) String() string {
	switch o {
	case WinnerBlack:
		return "black"
	case WinnerWhite:
		return "white"
	case Errored:
		return "error"
	default:
		return "undetermined"
	}
}

// Result is the structured value Session.SolveState returns: winner,
// optional PV, and work stats.
type Result struct {
	Outcome Outcome
	PV      []hexboard.Move
	Work    uint64
	Err     error
}

func outcomeFromBounds(b dfpn.Bounds, mover hexboard.Color) Outcome {
	switch {
	case b.IsWin():
		return colorOutcome(mover)
	case b.IsLoss():
		return colorOutcome(mover.Opponent())
	default:
		return Undetermined
	}
}

func colorOutcome(c hexboard.Color) Outcome {
	if c == hexboard.Black {
		return WinnerBlack
	}
	return WinnerWhite
}
