// Package store implements the persistent, rotation-aware position
// store shared by the DFPN solver and the opening book builder. A
// single logical map canonical_key -> record is layered over a
// bounded in-memory hash table (TT) and an unbounded on-disk key/value
// database, split by stone count.
package store

import "github.com/hexsolver/hexsolver/internal/hexboard"

// Key is the canonical storage key for a position: the lesser of its
// own hash and its 180-degree rotation's hash.
type Key uint64

// CanonicalKey computes key(P) = min(hash(P), hash(rotate(P))), and
// reports whether P's own hash is greater than the rotated hash (i.e.
// whether the key is the rotated hash, so a record fetched under it
// must be rotated to describe P's own orientation).
func CanonicalKey(p *hexboard.Position) (key Key, needsRotate bool) {
	own := p.Hash()
	rotated := p.Rotate().Hash()
	if own <= rotated {
		return Key(own), false
	}
	return Key(rotated), true
}
