// Package molecule turns SMILES strings into an atom/bond connectivity graph
// with perceived rings and aromaticity.  It is the leaf of the estimation
// pipeline: the group matcher reads the Graph built here and never mutates it.
//
// The parser covers the subset of SMILES needed for connectivity: the
// organic subset, bracket atoms (isotope, chirality, hydrogen count, charge
// and atom class are read, only hydrogen count and charge are kept), bond
// symbols, branches, ring closures and disconnected components.  Stereo
// bonds are read as single bonds.
package molecule

import (
	"fmt"
	"sort"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Bond orders
// ─────────────────────────────────────────────────────────────────────────────

// BondOrder is the multiplicity of a bond.  BondAromatic marks a bond that is
// part of an aromatic system and has no fixed Kekulé order.
type BondOrder int

const (
	BondSingle    BondOrder = 1
	BondDouble    BondOrder = 2
	BondTriple    BondOrder = 3
	BondQuadruple BondOrder = 4
	BondAromatic  BondOrder = 5
)

// String returns the SMILES symbol for the order.
func (o BondOrder) String() string {
	switch o {
	case BondSingle:
		return "-"
	case BondDouble:
		return "="
	case BondTriple:
		return "#"
	case BondQuadruple:
		return "$"
	case BondAromatic:
		return ":"
	default:
		return fmt.Sprintf("BondOrder(%d)", int(o))
	}
}

// valence returns the number of σ/π bond units the order contributes to an
// atom's explicit valence.  Aromatic bonds count one; the extra π unit of an
// aromatic atom is handled when implicit hydrogens are assigned.
func (o BondOrder) valence() int {
	switch o {
	case BondDouble:
		return 2
	case BondTriple:
		return 3
	case BondQuadruple:
		return 4
	default:
		return 1
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Atoms, bonds, rings
// ─────────────────────────────────────────────────────────────────────────────

// Atom is one vertex of the graph.  Its identity is its Index, which follows
// the order of appearance in the SMILES string.
type Atom struct {
	Index    int
	Element  string
	Aromatic bool
	// Bracket is true for atoms written in [...] form.
	Bracket bool
	Isotope int
	Charge  int
	// Hydrogens is the implicit hydrogen count for organic-subset atoms and
	// the declared count for bracket atoms.  Explicit [H] atoms are separate
	// vertices and are not included.
	Hydrogens int
	// Rings holds the indices into Graph.Rings of every SSSR ring that
	// contains the atom.
	Rings []int
}

// InRing reports whether the atom belongs to at least one ring.
func (a *Atom) InRing() bool { return len(a.Rings) > 0 }

// Is reports whether the atom is of the given element.
func (a *Atom) Is(symbol string) bool { return a.Element == symbol }

// Bond is one edge of the graph.
type Bond struct {
	Index int
	A, B  int
	Order BondOrder
	// RingClosure is true when the bond was written with a ring-closure digit.
	RingClosure bool
	InRing      bool
}

// Other returns the endpoint of b that is not atom.
func (b *Bond) Other(atom int) int {
	if b.A == atom {
		return b.B
	}
	return b.A
}

// Ring is one member of the smallest set of smallest rings.
type Ring struct {
	// Atoms lists the ring atoms in traversal order, starting at the lowest index.
	Atoms []int
	// Bonds lists the ring bonds; Bonds[i] joins Atoms[i] and Atoms[(i+1)%n].
	Bonds    []int
	Aromatic bool
}

// Size returns the number of atoms in the ring.
func (r Ring) Size() int { return len(r.Atoms) }

// Contains reports whether atom is a ring member.
func (r Ring) Contains(atom int) bool {
	for _, a := range r.Atoms {
		if a == atom {
			return true
		}
	}
	return false
}

// ContainsBond reports whether bond is a ring bond.
func (r Ring) ContainsBond(bond int) bool {
	for _, b := range r.Bonds {
		if b == bond {
			return true
		}
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// Graph
// ─────────────────────────────────────────────────────────────────────────────

// Graph is the molecular connectivity graph of one SMILES string.  A Graph is
// immutable once Parse returns it and may be shared between goroutines.
type Graph struct {
	SMILES string
	Atoms  []Atom
	Bonds  []Bond
	Rings  []Ring

	// adj holds, per atom, the indices of its incident bonds.
	adj [][]int
}

func newGraph(smiles string) *Graph {
	return &Graph{SMILES: smiles}
}

func (g *Graph) addAtom(a Atom) int {
	a.Index = len(g.Atoms)
	g.Atoms = append(g.Atoms, a)
	g.adj = append(g.adj, nil)
	return a.Index
}

func (g *Graph) addBond(a, b int, order BondOrder, closure bool) int {
	idx := len(g.Bonds)
	g.Bonds = append(g.Bonds, Bond{Index: idx, A: a, B: b, Order: order, RingClosure: closure})
	g.adj[a] = append(g.adj[a], idx)
	g.adj[b] = append(g.adj[b], idx)
	return idx
}

// AtomCount returns the number of atoms, explicit hydrogens included.
func (g *Graph) AtomCount() int { return len(g.Atoms) }

// BondsOf returns the indices of the bonds incident to atom.
func (g *Graph) BondsOf(atom int) []int { return g.adj[atom] }

// Neighbors returns the atoms bonded to atom, in bond order.
func (g *Graph) Neighbors(atom int) []int {
	out := make([]int, 0, len(g.adj[atom]))
	for _, bi := range g.adj[atom] {
		out = append(out, g.Bonds[bi].Other(atom))
	}
	return out
}

// HeavyNeighbors returns the non-hydrogen atoms bonded to atom.
func (g *Graph) HeavyNeighbors(atom int) []int {
	out := make([]int, 0, len(g.adj[atom]))
	for _, bi := range g.adj[atom] {
		o := g.Bonds[bi].Other(atom)
		if g.Atoms[o].Element != "H" {
			out = append(out, o)
		}
	}
	return out
}

// HeavyDegree returns the number of non-hydrogen neighbours of atom.
func (g *Graph) HeavyDegree(atom int) int {
	n := 0
	for _, bi := range g.adj[atom] {
		if g.Atoms[g.Bonds[bi].Other(atom)].Element != "H" {
			n++
		}
	}
	return n
}

// HydrogenCount returns the total hydrogens on atom: implicit or declared
// hydrogens plus explicit [H] neighbours.
func (g *Graph) HydrogenCount(atom int) int {
	n := g.Atoms[atom].Hydrogens
	for _, bi := range g.adj[atom] {
		if g.Atoms[g.Bonds[bi].Other(atom)].Element == "H" {
			n++
		}
	}
	return n
}

// BondBetween returns the bond joining a and b.
func (g *Graph) BondBetween(a, b int) (*Bond, bool) {
	for _, bi := range g.adj[a] {
		if g.Bonds[bi].Other(a) == b {
			return &g.Bonds[bi], true
		}
	}
	return nil, false
}

// CarbonCount returns the number of carbon atoms.
func (g *Graph) CarbonCount() int {
	n := 0
	for i := range g.Atoms {
		if g.Atoms[i].Element == "C" {
			n++
		}
	}
	return n
}

// Components returns the number of connected components.
func (g *Graph) Components() int {
	seen := make([]bool, len(g.Atoms))
	n := 0
	stack := make([]int, 0, len(g.Atoms))
	for start := range g.Atoms {
		if seen[start] {
			continue
		}
		n++
		seen[start] = true
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, nb := range g.Neighbors(cur) {
				if !seen[nb] {
					seen[nb] = true
					stack = append(stack, nb)
				}
			}
		}
	}
	return n
}

// ─────────────────────────────────────────────────────────────────────────────
// Formula and mass
// ─────────────────────────────────────────────────────────────────────────────

// elementTotals returns the atom count per element symbol, hydrogens included.
func (g *Graph) elementTotals() map[string]int {
	totals := make(map[string]int)
	for i := range g.Atoms {
		a := &g.Atoms[i]
		totals[a.Element]++
		if a.Hydrogens > 0 {
			totals["H"] += a.Hydrogens
		}
	}
	return totals
}

// Formula returns the molecular formula in Hill order: carbon first,
// hydrogen second, everything else alphabetical.  Without carbon every
// element, hydrogen included, is alphabetical.
func (g *Graph) Formula() string {
	totals := g.elementTotals()
	symbols := make([]string, 0, len(totals))
	for s := range totals {
		symbols = append(symbols, s)
	}
	_, hasC := totals["C"]
	sort.Slice(symbols, func(i, j int) bool {
		if hasC {
			ri, rj := hillRank(symbols[i]), hillRank(symbols[j])
			if ri != rj {
				return ri < rj
			}
		}
		return symbols[i] < symbols[j]
	})
	var sb strings.Builder
	for _, s := range symbols {
		sb.WriteString(s)
		if n := totals[s]; n > 1 {
			fmt.Fprintf(&sb, "%d", n)
		}
	}
	return sb.String()
}

func hillRank(symbol string) int {
	switch symbol {
	case "C":
		return 0
	case "H":
		return 1
	default:
		return 2
	}
}

// MolarMass returns the molar mass in g/mol.
func (g *Graph) MolarMass() float64 {
	totals := g.elementTotals()
	symbols := make([]string, 0, len(totals))
	for s := range totals {
		symbols = append(symbols, s)
	}
	// fixed summation order keeps repeated calls bit-identical
	sort.Strings(symbols)
	var m float64
	for _, sym := range symbols {
		if e, ok := LookupElement(sym); ok {
			m += e.Weight * float64(totals[sym])
		}
	}
	return m
}

//Personal.AI order the ending
