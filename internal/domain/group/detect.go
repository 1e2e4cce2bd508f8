package group

import (
	"github.com/turtacn/simpol/internal/domain/molecule"
)

// ─────────────────────────────────────────────────────────────────────────────
// Structural helpers
// ─────────────────────────────────────────────────────────────────────────────

func isElement(g *molecule.Graph, atom int, symbol string) bool {
	return g.Atoms[atom].Element == symbol
}

func bondOrder(g *molecule.Graph, a, b int) molecule.BondOrder {
	if bond, ok := g.BondBetween(a, b); ok {
		return bond.Order
	}
	return 0
}

// carbonylOxygen returns the oxygen double-bonded to carbon c, or -1.  The
// oxygen must carry no other heavy neighbour.
func carbonylOxygen(g *molecule.Graph, c int) int {
	if !isElement(g, c, "C") {
		return -1
	}
	for _, bi := range g.BondsOf(c) {
		b := &g.Bonds[bi]
		if b.Order != molecule.BondDouble {
			continue
		}
		o := b.Other(c)
		if isElement(g, o, "O") && g.HeavyDegree(o) == 1 {
			return o
		}
	}
	return -1
}

// terminalOxygen reports whether o is an oxygen with one heavy neighbour and
// no hydrogens, i.e. =O or [O-].
func terminalOxygen(g *molecule.Graph, o int) bool {
	return isElement(g, o, "O") && g.HeavyDegree(o) == 1 && g.HydrogenCount(o) == 0
}

// nitroCore recognises an NO2 unit in either the charge-separated or the
// pentavalent form.  It returns the third substituent of the nitrogen and
// the two terminal oxygens.
func nitroCore(g *molecule.Graph, n int) (other, o1, o2 int, ok bool) {
	if !isElement(g, n, "N") || g.Atoms[n].Aromatic || g.HydrogenCount(n) != 0 {
		return 0, 0, 0, false
	}
	nbs := g.HeavyNeighbors(n)
	if len(nbs) != 3 {
		return 0, 0, 0, false
	}
	var terminals []int
	other = -1
	for _, x := range nbs {
		if terminalOxygen(g, x) {
			terminals = append(terminals, x)
		} else {
			other = x
		}
	}
	if len(terminals) != 2 || other < 0 {
		return 0, 0, 0, false
	}
	return other, terminals[0], terminals[1], true
}

// bridgeOther returns the heavy neighbour of a two-coordinate atom that is
// not from, or -1 when atom is not a single-bonded bridge.
func bridgeOther(g *molecule.Graph, atom, from int) int {
	nbs := g.HeavyNeighbors(atom)
	if len(nbs) != 2 || g.HydrogenCount(atom) != 0 {
		return -1
	}
	for _, x := range nbs {
		if bondOrder(g, atom, x) != molecule.BondSingle {
			return -1
		}
	}
	if nbs[0] == from {
		return nbs[1]
	}
	if nbs[1] == from {
		return nbs[0]
	}
	return -1
}

// singleOxygens returns the oxygens bonded to atom by a single bond.
func singleOxygens(g *molecule.Graph, atom int) []int {
	var out []int
	for _, bi := range g.BondsOf(atom) {
		b := &g.Bonds[bi]
		o := b.Other(atom)
		if b.Order == molecule.BondSingle && isElement(g, o, "O") {
			out = append(out, o)
		}
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Nitrogen-oxygen groups
// ─────────────────────────────────────────────────────────────────────────────

// C(=O)OON(=O)=O
func matchCarbonylPeroxyNitrate(q *Query) [][]int {
	g := q.Graph()
	var out [][]int
	for n := range g.Atoms {
		other, oa, ob, ok := nitroCore(g, n)
		if !ok || !isElement(g, other, "O") {
			continue
		}
		o2 := other
		o1 := bridgeOther(g, o2, n)
		if o1 < 0 || !isElement(g, o1, "O") {
			continue
		}
		c := bridgeOther(g, o1, o2)
		if c < 0 {
			continue
		}
		oc := carbonylOxygen(g, c)
		if oc < 0 {
			continue
		}
		out = append(out, []int{c, oc, o1, o2, n, oa, ob})
	}
	return out
}

// C(=O)ON(=O)=O
func matchNitroester(q *Query) [][]int {
	g := q.Graph()
	var out [][]int
	for n := range g.Atoms {
		other, oa, ob, ok := nitroCore(g, n)
		if !ok || !isElement(g, other, "O") {
			continue
		}
		c := bridgeOther(g, other, n)
		if c < 0 {
			continue
		}
		oc := carbonylOxygen(g, c)
		if oc < 0 {
			continue
		}
		out = append(out, []int{c, oc, other, n, oa, ob})
	}
	return out
}

// C-ON(=O)=O
func matchNitrate(q *Query) [][]int {
	g := q.Graph()
	var out [][]int
	for n := range g.Atoms {
		other, oa, ob, ok := nitroCore(g, n)
		if !ok || !isElement(g, other, "O") {
			continue
		}
		c := bridgeOther(g, other, n)
		if c < 0 || !isElement(g, c, "C") {
			continue
		}
		out = append(out, []int{other, n, oa, ob})
	}
	return out
}

// C-N(=O)=O
func matchNitro(q *Query) [][]int {
	g := q.Graph()
	var out [][]int
	for n := range g.Atoms {
		other, oa, ob, ok := nitroCore(g, n)
		if !ok || !isElement(g, other, "C") {
			continue
		}
		out = append(out, []int{n, oa, ob})
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Peroxides
// ─────────────────────────────────────────────────────────────────────────────

// C(=O)OO[H]
func matchCarbonylPeroxyAcid(q *Query) [][]int {
	g := q.Graph()
	var out [][]int
	for c := range g.Atoms {
		oc := carbonylOxygen(g, c)
		if oc < 0 {
			continue
		}
		for _, o1 := range singleOxygens(g, c) {
			o2 := bridgeOther(g, o1, c)
			if o2 < 0 || !isElement(g, o2, "O") {
				continue
			}
			if g.HeavyDegree(o2) == 1 && g.HydrogenCount(o2) == 1 {
				out = append(out, []int{c, oc, o1, o2})
				break
			}
		}
	}
	return out
}

// C-OO[H]
func matchHydroperoxide(q *Query) [][]int {
	g := q.Graph()
	var out [][]int
	for o2 := range g.Atoms {
		if !isElement(g, o2, "O") || g.HydrogenCount(o2) != 1 || g.HeavyDegree(o2) != 1 {
			continue
		}
		o1 := g.HeavyNeighbors(o2)[0]
		if !isElement(g, o1, "O") {
			continue
		}
		c := bridgeOther(g, o1, o2)
		if c < 0 || !isElement(g, c, "C") {
			continue
		}
		out = append(out, []int{o1, o2})
	}
	return out
}

// C-OO-C
func matchPeroxide(q *Query) [][]int {
	g := q.Graph()
	var out [][]int
	for o1 := range g.Atoms {
		if !isElement(g, o1, "O") {
			continue
		}
		for _, o2 := range g.HeavyNeighbors(o1) {
			if o2 <= o1 || !isElement(g, o2, "O") {
				continue
			}
			c1 := bridgeOther(g, o1, o2)
			c2 := bridgeOther(g, o2, o1)
			if c1 < 0 || c2 < 0 || !isElement(g, c1, "C") || !isElement(g, c2, "C") {
				continue
			}
			out = append(out, []int{o1, o2})
		}
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Carbonyl groups
// ─────────────────────────────────────────────────────────────────────────────

func matchCarboxylicAcid(q *Query) [][]int {
	g := q.Graph()
	var out [][]int
	for c := range g.Atoms {
		oc := carbonylOxygen(g, c)
		if oc < 0 {
			continue
		}
		for _, o := range singleOxygens(g, c) {
			if g.HeavyDegree(o) == 1 && g.HydrogenCount(o) == 1 {
				out = append(out, []int{c, oc, o})
				break
			}
		}
	}
	return out
}

func matchEster(q *Query) [][]int {
	g := q.Graph()
	var out [][]int
	for c := range g.Atoms {
		oc := carbonylOxygen(g, c)
		if oc < 0 {
			continue
		}
		for _, o := range singleOxygens(g, c) {
			if q.Consumed(o) {
				continue
			}
			r := bridgeOther(g, o, c)
			if r >= 0 && isElement(g, r, "C") {
				out = append(out, []int{c, oc, o})
				break
			}
		}
	}
	return out
}

// amideMatcher matches C(=O)N where the nitrogen carries the given number of
// hydrogens.
type amideMatcher struct {
	hydrogens int
}

func (m amideMatcher) Find(q *Query) [][]int {
	g := q.Graph()
	var out [][]int
	for c := range g.Atoms {
		oc := carbonylOxygen(g, c)
		if oc < 0 || q.Consumed(c) {
			continue
		}
		for _, bi := range g.BondsOf(c) {
			b := &g.Bonds[bi]
			n := b.Other(c)
			if b.Order != molecule.BondSingle || !isElement(g, n, "N") || g.Atoms[n].Aromatic || q.Consumed(n) {
				continue
			}
			if g.HydrogenCount(n) == m.hydrogens {
				out = append(out, []int{c, oc, n})
				break
			}
		}
	}
	return out
}

func matchAldehyde(q *Query) [][]int {
	g := q.Graph()
	var out [][]int
	for c := range g.Atoms {
		oc := carbonylOxygen(g, c)
		if oc < 0 || g.HydrogenCount(c) == 0 {
			continue
		}
		ok := true
		for _, x := range g.HeavyNeighbors(c) {
			if x != oc && !isElement(g, x, "C") {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, []int{c, oc})
		}
	}
	return out
}

func matchKetone(q *Query) [][]int {
	g := q.Graph()
	var out [][]int
	for c := range g.Atoms {
		oc := carbonylOxygen(g, c)
		if oc < 0 || g.HydrogenCount(c) != 0 {
			continue
		}
		carbons := 0
		others := 0
		for _, x := range g.HeavyNeighbors(c) {
			switch {
			case x == oc:
			case isElement(g, x, "C"):
				carbons++
			default:
				others++
			}
		}
		if carbons == 2 && others == 0 {
			out = append(out, []int{c, oc})
		}
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Hydroxyls and ethers
// ─────────────────────────────────────────────────────────────────────────────

// hydroxylCarbon returns the carbon of a C-OH, or -1.
func hydroxylCarbon(g *molecule.Graph, o int) int {
	if !isElement(g, o, "O") || g.HydrogenCount(o) != 1 || g.HeavyDegree(o) != 1 || g.Atoms[o].Charge != 0 {
		return -1
	}
	c := g.HeavyNeighbors(o)[0]
	if !isElement(g, c, "C") || bondOrder(g, o, c) != molecule.BondSingle {
		return -1
	}
	return c
}

func matchAromaticHydroxyl(q *Query) [][]int {
	g := q.Graph()
	var out [][]int
	for o := range g.Atoms {
		if c := hydroxylCarbon(g, o); c >= 0 && g.Atoms[c].Aromatic {
			out = append(out, []int{o})
		}
	}
	return out
}

func matchHydroxyl(q *Query) [][]int {
	g := q.Graph()
	var out [][]int
	for o := range g.Atoms {
		if c := hydroxylCarbon(g, o); c >= 0 && !g.Atoms[c].Aromatic {
			out = append(out, []int{o})
		}
	}
	return out
}

// etherMatcher matches C-O-C oxygens of one class.  An oxygen that is itself
// aromatic or touches an aromatic carbon is aromatic; otherwise an oxygen in a
// ring is alicyclic; the rest are plain ethers.
type etherMatcher struct {
	class ID
}

func (m etherMatcher) Find(q *Query) [][]int {
	g := q.Graph()
	var out [][]int
	for o := range g.Atoms {
		if cls, ok := etherClass(g, o); ok && cls == m.class {
			out = append(out, []int{o})
		}
	}
	return out
}

func etherClass(g *molecule.Graph, o int) (ID, bool) {
	a := &g.Atoms[o]
	if a.Element != "O" || a.Charge != 0 || g.HydrogenCount(o) != 0 {
		return 0, false
	}
	nbs := g.HeavyNeighbors(o)
	if len(nbs) != 2 {
		return 0, false
	}
	aromatic := a.Aromatic
	for _, x := range nbs {
		if !isElement(g, x, "C") {
			return 0, false
		}
		switch bondOrder(g, o, x) {
		case molecule.BondSingle, molecule.BondAromatic:
		default:
			return 0, false
		}
		if g.Atoms[x].Aromatic {
			aromatic = true
		}
	}
	switch {
	case aromatic:
		return EtherAromatic, true
	case a.InRing():
		return EtherAlicyclic, true
	default:
		return Ether, true
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Amines
// ─────────────────────────────────────────────────────────────────────────────

// amineMatcher matches neutral, non-aromatic nitrogens bonded only to carbons
// by single bonds, none of which is a carbonyl carbon.
type amineMatcher struct {
	class ID
}

func (m amineMatcher) Find(q *Query) [][]int {
	g := q.Graph()
	var out [][]int
	for n := range g.Atoms {
		if cls, ok := amineClass(g, n); ok && cls == m.class {
			out = append(out, []int{n})
		}
	}
	return out
}

func amineClass(g *molecule.Graph, n int) (ID, bool) {
	a := &g.Atoms[n]
	if a.Element != "N" || a.Aromatic || a.Charge != 0 {
		return 0, false
	}
	nbs := g.HeavyNeighbors(n)
	if len(nbs) == 0 {
		return 0, false
	}
	aromatic := false
	for _, x := range nbs {
		if !isElement(g, x, "C") || bondOrder(g, n, x) != molecule.BondSingle || carbonylOxygen(g, x) >= 0 {
			return 0, false
		}
		if g.Atoms[x].Aromatic {
			aromatic = true
		}
	}
	if aromatic {
		return AmineAromatic, true
	}
	switch g.HydrogenCount(n) {
	case 2:
		return AminePrimary, true
	case 1:
		return AmineSecondary, true
	case 0:
		return AmineTertiary, true
	}
	return 0, false
}

//Personal.AI order the ending
