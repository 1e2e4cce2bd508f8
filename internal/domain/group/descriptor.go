package group

import (
	"github.com/turtacn/simpol/internal/domain/molecule"
)

// carbonMatcher yields one occurrence per carbon atom.
type carbonMatcher struct{}

func (carbonMatcher) Find(q *Query) [][]int {
	g := q.Graph()
	var out [][]int
	for i := range g.Atoms {
		if g.Atoms[i].Element == "C" {
			out = append(out, []int{i})
		}
	}
	return out
}

// constantMatcher yields exactly one empty occurrence per molecule.
type constantMatcher struct{}

func (constantMatcher) Find(*Query) [][]int { return [][]int{{}} }

// ringMatcher yields one occurrence per SSSR ring of the requested kind.
type ringMatcher struct {
	aromatic bool
}

func (m ringMatcher) Find(q *Query) [][]int {
	var out [][]int
	for _, r := range q.Graph().Rings {
		if r.Aromatic == m.aromatic {
			out = append(out, append([]int(nil), r.Atoms...))
		}
	}
	return out
}

func isCCDouble(g *molecule.Graph, b *molecule.Bond) bool {
	return b.Order == molecule.BondDouble && isElement(g, b.A, "C") && isElement(g, b.B, "C")
}

// matchCCDouble counts non-aromatic C=C bonds.
func matchCCDouble(q *Query) [][]int {
	g := q.Graph()
	var out [][]int
	for bi := range g.Bonds {
		b := &g.Bonds[bi]
		if isCCDouble(g, b) {
			out = append(out, []int{b.A, b.B})
		}
	}
	return out
}

// matchEnoneInRing counts C=C-C=O units whose C=C and C-C bonds lie in the
// same non-aromatic ring.  Each (C=C bond, carbonyl carbon) pair counts once.
func matchEnoneInRing(q *Query) [][]int {
	g := q.Graph()
	type pair struct{ bond, carbonyl int }
	seen := make(map[pair]bool)
	var out [][]int
	for _, r := range g.Rings {
		if r.Aromatic {
			continue
		}
		for _, bi := range r.Bonds {
			b := &g.Bonds[bi]
			if !isCCDouble(g, b) {
				continue
			}
			for _, end := range [2]int{b.A, b.B} {
				for _, bj := range g.BondsOf(end) {
					if bj == bi || !r.ContainsBond(bj) || g.Bonds[bj].Order != molecule.BondSingle {
						continue
					}
					y := g.Bonds[bj].Other(end)
					oy := carbonylOxygen(g, y)
					if oy < 0 {
						continue
					}
					key := pair{bi, y}
					if seen[key] {
						continue
					}
					seen[key] = true
					out = append(out, []int{b.A, b.B, y, oy})
				}
			}
		}
	}
	return out
}

// matchAcidSideCarbons counts, for every matched amide, the carbons reachable
// from the carbonyl carbon through carbon-carbon bonds, the carbonyl carbon
// included.
func matchAcidSideCarbons(q *Query) [][]int {
	g := q.Graph()
	var out [][]int
	for _, id := range [...]ID{AmidePrimary, AmideSecondary, AmideTertiary} {
		for _, occ := range q.Found(id) {
			start := occ[0]
			seen := map[int]bool{start: true}
			queue := []int{start}
			for len(queue) > 0 {
				cur := queue[0]
				queue = queue[1:]
				out = append(out, []int{cur})
				for _, nb := range g.HeavyNeighbors(cur) {
					if !seen[nb] && isElement(g, nb, "C") {
						seen[nb] = true
						queue = append(queue, nb)
					}
				}
			}
		}
	}
	return out
}

// matchNitrophenol counts aromatic hydroxyls with a nitro group on an
// adjacent (ortho) ring carbon.
func matchNitrophenol(q *Query) [][]int {
	g := q.Graph()
	nitroN := make(map[int]bool)
	for _, occ := range q.Found(Nitro) {
		nitroN[occ[0]] = true
	}
	if len(nitroN) == 0 {
		return nil
	}
	var out [][]int
	for _, occ := range q.Found(AromaticHydroxyl) {
		o := occ[0]
		ar := g.HeavyNeighbors(o)[0]
		found := false
		for _, x := range g.HeavyNeighbors(ar) {
			if x == o || !g.Atoms[x].Aromatic {
				continue
			}
			for _, n := range g.HeavyNeighbors(x) {
				if nitroN[n] {
					out = append(out, []int{o, ar, x, n})
					found = true
					break
				}
			}
			if found {
				break
			}
		}
	}
	return out
}

//Personal.AI order the ending
