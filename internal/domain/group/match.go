package group

import (
	"github.com/turtacn/simpol/internal/domain/molecule"
)

// ─────────────────────────────────────────────────────────────────────────────
// Matcher contract
// ─────────────────────────────────────────────────────────────────────────────

// Matcher finds the occurrences of one group.  Each returned slice is the
// atom set of one occurrence; the group's count is the number of slices.
// Consuming matchers must skip occurrences that touch consumed atoms.
type Matcher interface {
	Find(q *Query) [][]int
}

// MatcherFunc adapts a plain function to Matcher.
type MatcherFunc func(q *Query) [][]int

// Find calls f(q).
func (f MatcherFunc) Find(q *Query) [][]int { return f(q) }

// Query is the read-only view a Matcher receives: the graph, the set of atoms
// already claimed by higher-priority groups, and the occurrences found so far.
type Query struct {
	g        *molecule.Graph
	consumed []bool
	found    *[NumGroups][][]int
}

// Graph returns the molecular graph under inspection.
func (q *Query) Graph() *molecule.Graph { return q.g }

// Consumed reports whether atom has been claimed.
func (q *Query) Consumed(atom int) bool { return q.consumed[atom] }

// AnyConsumed reports whether any of atoms has been claimed.
func (q *Query) AnyConsumed(atoms ...int) bool {
	for _, a := range atoms {
		if q.consumed[a] {
			return true
		}
	}
	return false
}

// Found returns the occurrences already recorded for id.
func (q *Query) Found(id ID) [][]int { return q.found[id] }

// ─────────────────────────────────────────────────────────────────────────────
// Counts
// ─────────────────────────────────────────────────────────────────────────────

// Counts is the group count vector of one molecule.  Values is indexed by ID.
// Matches keeps the atom set of every occurrence for diagnostics.
type Counts struct {
	Values  [NumGroups]int
	Matches [NumGroups][][]int
}

// Get returns the count for id, or 0 when id is outside the catalogue.
func (c *Counts) Get(id ID) int {
	if !id.Valid() {
		return 0
	}
	return c.Values[id]
}

// NonZero returns the ids with a positive count, in ID order.
func (c *Counts) NonZero() []ID {
	var out []ID
	for i, v := range c.Values {
		if v > 0 {
			out = append(out, ID(i))
		}
	}
	return out
}

// Map returns the positive counts keyed by group Key.
func (c *Counts) Map() map[string]int {
	out := make(map[string]int)
	for i, v := range c.Values {
		if v > 0 {
			out[catalogue[i].Key] = v
		}
	}
	return out
}

// Count matches every catalogue group against g.  Functional groups run first,
// in priority order, claiming atoms; descriptor and correction groups run
// afterwards and may read the functional matches.  Count never fails on a
// graph produced by molecule.Parse.
func Count(g *molecule.Graph) Counts {
	return countWith(g, &catalogue, functionalOrder)
}

func countWith(g *molecule.Graph, defs *[NumGroups]Definition, order []ID) Counts {
	var c Counts
	q := &Query{
		g:        g,
		consumed: make([]bool, g.AtomCount()),
		found:    &c.Matches,
	}

	for _, id := range order {
		for _, occ := range defs[id].Matcher.Find(q) {
			if q.AnyConsumed(occ...) {
				continue
			}
			for _, a := range occ {
				q.consumed[a] = true
			}
			c.Matches[id] = append(c.Matches[id], occ)
		}
	}

	for id := range defs {
		if defs[id].Consumes() || defs[id].Matcher == nil {
			continue
		}
		c.Matches[id] = defs[id].Matcher.Find(q)
	}

	for id := range c.Matches {
		c.Values[id] = len(c.Matches[id])
	}
	return c
}

//Personal.AI order the ending
