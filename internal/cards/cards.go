// internal/cards/cards.go
//
// Provides the fixed card universe for the game engine.
//
// Responsibilities:
//   - Generate every valid card exactly once at process start.
//   - Maintain an id → card lookup for round resolution.
//   - Supply validation helpers for roster/hand submissions.
//
// The universe:
//   A card is an ordered triple of attribute values. Every value is >= 3 and
//   the three values sum to exactly 27. The universe is the set of all
//   distinct permutations of the eleven base triples below, deduplicated by
//   exact triple equality, which yields 28 cards. Ids are assigned in
//   generation order ("c0" … "c27") so the set is stable across processes.
//
// Constraints:
//   • Generation is run once (sync.Once) and the result is immutable.
//   • Order is deterministic: base triples in declared order, permutations in
//     a fixed rotation order, first occurrence wins.

package cards

import (
	"fmt"
	"sync"
)

// AttrSum is the fixed total of a card's three attribute values.
const AttrSum = 27

// MinAttr is the smallest legal value for a single attribute.
const MinAttr = 3

// UniverseSize is the number of distinct cards the generator produces.
// Seven distinct unordered partitions of 27 survive deduplication
// (3+6+6+3+3+6+1 ordered triples).
const UniverseSize = 28

// Card is one immutable card in the universe.
type Card struct {
	ID    string `json:"id"`
	Attrs [3]int `json:"attrs"`
}

// baseTriples are the unordered shapes the universe is built from. Some are
// permutations of earlier entries; deduplication removes the overlap.
var baseTriples = [11][3]int{
	{21, 3, 3}, {18, 6, 3}, {18, 3, 6}, {15, 9, 3}, {15, 3, 9}, {15, 6, 6},
	{12, 12, 3}, {12, 3, 12}, {12, 9, 6}, {12, 6, 9}, {9, 9, 9},
}

var (
	genOnce  sync.Once
	universe []Card
	byID     map[string]Card
)

// generate builds the universe exactly once.
func generate() {
	genOnce.Do(func() {
		seen := make(map[[3]int]bool, UniverseSize)
		byID = make(map[string]Card, UniverseSize)
		for _, t := range baseTriples {
			a, b, c := t[0], t[1], t[2]
			perms := [6][3]int{
				{a, b, c}, {b, c, a}, {c, a, b},
				{a, c, b}, {b, a, c}, {c, b, a},
			}
			for _, p := range perms {
				if seen[p] {
					continue
				}
				if p[0]+p[1]+p[2] != AttrSum || p[0] < MinAttr || p[1] < MinAttr || p[2] < MinAttr {
					continue
				}
				seen[p] = true
				card := Card{ID: fmt.Sprintf("c%d", len(universe)), Attrs: p}
				universe = append(universe, card)
				byID[card.ID] = card
			}
		}
	})
}

// All returns the full universe in generation order.
// The returned slice is shared; callers must not mutate it.
func All() []Card {
	generate()
	return universe
}

// ByID looks up a card by id.
func ByID(id string) (Card, bool) {
	generate()
	c, ok := byID[id]
	return c, ok
}

// ValidateIDs reports whether ids has exactly want entries, all of which are
// members of the universe. Uniqueness is the caller's concern.
func ValidateIDs(ids []string, want int) bool {
	generate()
	if len(ids) != want {
		return false
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return false
		}
	}
	return true
}

// Size returns the number of cards in the universe.
func Size() int {
	generate()
	return len(universe)
}
