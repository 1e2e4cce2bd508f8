package molecule

import (
	"sort"

	"github.com/turtacn/simpol/pkg/errors"
)

// perceive runs the post-parse graph passes: SSSR ring perception, the
// aromatic-atom-in-ring check, demotion of acyclic aromatic bonds, and
// Kekulé-to-aromatic conversion of simple 5- and 6-membered rings.
func perceive(g *Graph) error {
	findRings(g)

	for i := range g.Atoms {
		if g.Atoms[i].Aromatic && !g.Atoms[i].InRing() {
			return errors.MalformedSMILES(g.SMILES, -1, "aromatic atom outside a ring").
				WithDetailf("smiles=%q atom=%d element=%s", g.SMILES, i, g.Atoms[i].Element)
		}
	}
	for i := range g.Bonds {
		if g.Bonds[i].Order == BondAromatic && !g.Bonds[i].InRing {
			g.Bonds[i].Order = BondSingle
		}
	}

	perceiveKekuleAromaticity(g)
	for ri := range g.Rings {
		r := &g.Rings[ri]
		r.Aromatic = true
		for _, a := range r.Atoms {
			if !g.Atoms[a].Aromatic {
				r.Aromatic = false
				break
			}
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// SSSR
// ─────────────────────────────────────────────────────────────────────────────

// bondSet is a GF(2) vector over the bonds of a graph.
type bondSet []uint64

func newBondSet(n int) bondSet { return make(bondSet, (n+63)/64) }

func (s bondSet) set(i int)      { s[i/64] |= 1 << (uint(i) % 64) }
func (s bondSet) has(i int) bool { return s[i/64]&(1<<(uint(i)%64)) != 0 }

func (s bondSet) xor(o bondSet) {
	for i := range s {
		s[i] ^= o[i]
	}
}

func (s bondSet) lowest() int {
	for w, v := range s {
		if v == 0 {
			continue
		}
		for b := 0; b < 64; b++ {
			if v&(1<<uint(b)) != 0 {
				return w*64 + b
			}
		}
	}
	return -1
}

func (s bondSet) clone() bondSet {
	c := make(bondSet, len(s))
	copy(c, s)
	return c
}

type candidate struct {
	bonds bondSet
	size  int
	key   []int // sorted bond indices, for deterministic ordering
}

// findRings computes the smallest set of smallest rings.  Candidate cycles
// are Horton cycles (shortest path r→x + bond x–y + shortest path y→r for
// every root r and bond x–y); taking them shortest first and keeping those
// linearly independent over GF(2) yields a minimum cycle basis whose size is
// the cyclomatic number.
func findRings(g *Graph) {
	nAtoms, nBonds := len(g.Atoms), len(g.Bonds)
	want := nBonds - nAtoms + g.Components()
	if want <= 0 {
		return
	}

	var cands []candidate
	for root := 0; root < nAtoms; root++ {
		parent, parentBond, depth := bfsTree(g, root)
		for bi := range g.Bonds {
			b := &g.Bonds[bi]
			if depth[b.A] < 0 || depth[b.B] < 0 {
				continue
			}
			if parentBond[b.A] == bi || parentBond[b.B] == bi {
				continue
			}
			pa := pathToRoot(b.A, parent, parentBond)
			pb := pathToRoot(b.B, parent, parentBond)
			if !disjointPaths(pa, pb) {
				continue
			}
			set := newBondSet(nBonds)
			set.set(bi)
			size := 1
			for _, e := range pa.bonds {
				set.set(e)
				size++
			}
			for _, e := range pb.bonds {
				set.set(e)
				size++
			}
			cands = append(cands, candidate{bonds: set, size: size})
		}
	}

	for i := range cands {
		for bi := 0; bi < nBonds; bi++ {
			if cands[i].bonds.has(bi) {
				cands[i].key = append(cands[i].key, bi)
			}
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].size != cands[j].size {
			return cands[i].size < cands[j].size
		}
		return lessInts(cands[i].key, cands[j].key)
	})

	basis := make(map[int]bondSet)
	var chosen []bondSet
	for _, c := range cands {
		if len(chosen) == want {
			break
		}
		if reduceInto(basis, c.bonds.clone()) {
			chosen = append(chosen, c.bonds)
		}
	}

	for _, set := range chosen {
		ring := orderRing(g, set)
		ri := len(g.Rings)
		g.Rings = append(g.Rings, ring)
		for _, a := range ring.Atoms {
			g.Atoms[a].Rings = append(g.Atoms[a].Rings, ri)
		}
		for _, b := range ring.Bonds {
			g.Bonds[b].InRing = true
		}
	}
}

// reduceInto performs Gaussian elimination of v against basis, keyed by the
// pivot (lowest set bit) of each stored vector.  It inserts and returns true
// when v is independent.
func reduceInto(basis map[int]bondSet, v bondSet) bool {
	for {
		p := v.lowest()
		if p < 0 {
			return false
		}
		b, ok := basis[p]
		if !ok {
			basis[p] = v
			return true
		}
		v.xor(b)
	}
}

type rootPath struct {
	atoms []int // from the start atom up to, but excluding, the root
	bonds []int
}

func bfsTree(g *Graph, root int) (parent, parentBond, depth []int) {
	n := len(g.Atoms)
	parent = make([]int, n)
	parentBond = make([]int, n)
	depth = make([]int, n)
	for i := range depth {
		depth[i] = -1
		parent[i] = -1
		parentBond[i] = -1
	}
	depth[root] = 0
	queue := []int{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, bi := range g.adj[cur] {
			nb := g.Bonds[bi].Other(cur)
			if depth[nb] >= 0 {
				continue
			}
			depth[nb] = depth[cur] + 1
			parent[nb] = cur
			parentBond[nb] = bi
			queue = append(queue, nb)
		}
	}
	return parent, parentBond, depth
}

func pathToRoot(start int, parent, parentBond []int) rootPath {
	var p rootPath
	for cur := start; parent[cur] >= 0; cur = parent[cur] {
		p.atoms = append(p.atoms, cur)
		p.bonds = append(p.bonds, parentBond[cur])
	}
	return p
}

// disjointPaths reports whether two root paths share no atom other than the root.
func disjointPaths(a, b rootPath) bool {
	seen := make(map[int]struct{}, len(a.atoms))
	for _, x := range a.atoms {
		seen[x] = struct{}{}
	}
	for _, x := range b.atoms {
		if _, ok := seen[x]; ok {
			return false
		}
	}
	return true
}

// orderRing walks the bonds of a simple cycle and returns it as a Ring that
// starts at its lowest atom index and proceeds towards the lower-indexed of
// that atom's two ring neighbours.
func orderRing(g *Graph, set bondSet) Ring {
	incident := make(map[int][]int)
	for bi := range g.Bonds {
		if !set.has(bi) {
			continue
		}
		b := &g.Bonds[bi]
		incident[b.A] = append(incident[b.A], bi)
		incident[b.B] = append(incident[b.B], bi)
	}
	start := -1
	for a := range incident {
		if start < 0 || a < start {
			start = a
		}
	}
	first := incident[start][0]
	if g.Bonds[incident[start][1]].Other(start) < g.Bonds[first].Other(start) {
		first = incident[start][1]
	}

	r := Ring{Atoms: []int{start}, Bonds: []int{first}}
	prevBond, cur := first, g.Bonds[first].Other(start)
	for cur != start {
		r.Atoms = append(r.Atoms, cur)
		next := incident[cur][0]
		if next == prevBond {
			next = incident[cur][1]
		}
		r.Bonds = append(r.Bonds, next)
		prevBond, cur = next, g.Bonds[next].Other(cur)
	}
	return r
}

func lessInts(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// ─────────────────────────────────────────────────────────────────────────────
// Aromaticity
// ─────────────────────────────────────────────────────────────────────────────

// perceiveKekuleAromaticity marks Kekulé-drawn benzenoid and five-membered
// heteroaromatic rings as aromatic.  A six-membered ring qualifies when every
// atom is C or N and carries exactly one double bond, that bond lying in some
// ring.  A five-membered ring qualifies when four atoms qualify the same way
// and the fifth is a neutral N, O or S with only single bonds.  Existing
// hydrogen counts are kept.
func perceiveKekuleAromaticity(g *Graph) {
	for ri := range g.Rings {
		r := &g.Rings[ri]
		if r.Size() != 5 && r.Size() != 6 {
			continue
		}
		allAromatic := true
		for _, a := range r.Atoms {
			if !g.Atoms[a].Aromatic {
				allAromatic = false
				break
			}
		}
		if allAromatic {
			continue
		}

		donors := 0
		ok := true
		for _, a := range r.Atoms {
			switch piKind(g, a) {
			case piDouble:
			case piLonePair:
				donors++
			default:
				ok = false
			}
			if !ok {
				break
			}
		}
		if !ok {
			continue
		}
		if (r.Size() == 6 && donors != 0) || (r.Size() == 5 && donors != 1) {
			continue
		}

		for _, a := range r.Atoms {
			g.Atoms[a].Aromatic = true
		}
		for _, b := range r.Bonds {
			g.Bonds[b].Order = BondAromatic
		}
	}
}

type piContribution int

const (
	piNone piContribution = iota
	piDouble
	piLonePair
)

func piKind(g *Graph, atom int) piContribution {
	a := &g.Atoms[atom]
	if a.Aromatic {
		return piDouble
	}
	doubles, ringDoubles, multiple := 0, 0, false
	for _, bi := range g.adj[atom] {
		b := &g.Bonds[bi]
		switch b.Order {
		case BondDouble:
			doubles++
			if b.InRing {
				ringDoubles++
			}
		case BondTriple, BondQuadruple:
			multiple = true
		}
	}
	if multiple {
		return piNone
	}
	switch {
	case doubles == 1 && ringDoubles == 1 && (a.Element == "C" || a.Element == "N"):
		return piDouble
	case doubles == 0 && a.Charge == 0 && (a.Element == "N" || a.Element == "O" || a.Element == "S"):
		return piLonePair
	}
	return piNone
}

//Personal.AI order the ending
