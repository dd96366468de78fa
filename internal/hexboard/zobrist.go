package hexboard

// Zobrist hash keys for position hashing, generated with a seeded
// PRNG so keys are reproducible across runs (required: the store's
// persisted records must remain addressable by the same hash after a
// process restart).

const maxBoardSize = 19 // largest Hex board size we precompute keys for

var (
	zobristCell       [maxBoardSize * maxBoardSize][3]uint64 // [cell][Color]
	zobristSideToMove uint64
)

func init() {
	initZobrist()
}

// prng is a small reproducible xorshift64* generator.
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := newPRNG(0xB0A2D1EE5CABBA9E)
	for cell := range zobristCell {
		for c := Empty; c <= White; c++ {
			zobristCell[cell][c] = rng.next()
		}
	}
	zobristSideToMove = rng.next()
}

// ZobristCell returns the Zobrist key contribution of placing color c
// on the given cell index.
func ZobristCell(cell int, c Color) uint64 {
	return zobristCell[cell][c]
}

// ZobristSideToMove returns the Zobrist key XORed in when it is
// White's turn to move.
func ZobristSideToMove() uint64 {
	return zobristSideToMove
}
