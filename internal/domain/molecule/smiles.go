package molecule

import (
	"strings"

	"github.com/turtacn/simpol/pkg/errors"
)

// ringOpening records an unmatched ring-closure digit.
type ringOpening struct {
	atom  int
	order BondOrder // 0 when no bond symbol preceded the digit
	pos   int
}

// branchMark records the atom a branch hangs from and the atom count when
// the branch was opened, so empty branches can be rejected.
type branchMark struct {
	atom      int
	atomCount int
	pos       int
}

// parser is the single-pass SMILES scanner.  It builds atoms and bonds in
// order of appearance; ring and aromaticity perception run afterwards.
type parser struct {
	src  string
	pos  int
	g    *Graph
	prev int // atom new atoms bond to, -1 at the start of a component

	pending    BondOrder // bond symbol waiting for its second atom, 0 if none
	pendingPos int

	branches []branchMark
	rings    map[int]ringOpening
}

// Parse builds the molecular graph for smiles.  Leading and trailing
// whitespace is ignored.  Any syntax or chemistry violation that prevents a
// consistent connectivity graph yields a MalformedSMILES error.
func Parse(smiles string) (*Graph, error) {
	s := strings.TrimSpace(smiles)
	if s == "" {
		return nil, errors.MalformedSMILES(smiles, -1, "empty SMILES")
	}
	p := &parser{
		src:   s,
		g:     newGraph(s),
		prev:  -1,
		rings: make(map[int]ringOpening),
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	assignImplicitHydrogens(p.g)
	if err := perceive(p.g); err != nil {
		return nil, err
	}
	return p.g, nil
}

// MustParse is Parse for literals known to be valid; it panics on error.
func MustParse(smiles string) *Graph {
	g, err := Parse(smiles)
	if err != nil {
		panic(err)
	}
	return g
}

func (p *parser) fail(pos int, reason string) error {
	return errors.MalformedSMILES(p.src, pos, reason)
}

func (p *parser) run() error {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '(':
			if p.prev < 0 {
				return p.fail(p.pos, "branch without a preceding atom")
			}
			if p.pending != 0 {
				return p.fail(p.pendingPos, "bond symbol before branch")
			}
			p.branches = append(p.branches, branchMark{atom: p.prev, atomCount: len(p.g.Atoms), pos: p.pos})
			p.pos++
		case c == ')':
			if len(p.branches) == 0 {
				return p.fail(p.pos, "unbalanced parentheses")
			}
			if p.pending != 0 {
				return p.fail(p.pendingPos, "bond symbol not followed by an atom")
			}
			top := p.branches[len(p.branches)-1]
			if top.atomCount == len(p.g.Atoms) {
				return p.fail(top.pos, "empty branch")
			}
			p.branches = p.branches[:len(p.branches)-1]
			p.prev = top.atom
			p.pos++
		case isBondSymbol(c):
			if p.prev < 0 {
				return p.fail(p.pos, "bond symbol without a preceding atom")
			}
			if p.pending != 0 {
				return p.fail(p.pos, "consecutive bond symbols")
			}
			p.pending = bondOrderFor(c)
			p.pendingPos = p.pos
			p.pos++
		case c == '.':
			if p.prev < 0 || p.pending != 0 {
				return p.fail(p.pos, "misplaced component separator")
			}
			if len(p.branches) > 0 {
				return p.fail(p.pos, "component separator inside a branch")
			}
			p.prev = -1
			p.pos++
		case c == '%' || isDigit(c):
			if err := p.ringClosure(); err != nil {
				return err
			}
		case c == '[':
			if err := p.bracketAtom(); err != nil {
				return err
			}
		case isLetter(c):
			if err := p.organicAtom(); err != nil {
				return err
			}
		case c == '*':
			return p.fail(p.pos, "wildcard atoms are not supported")
		default:
			return p.fail(p.pos, "unexpected character '"+string(c)+"'")
		}
	}

	if p.pending != 0 {
		return p.fail(p.pendingPos, "bond symbol not followed by an atom")
	}
	if len(p.branches) > 0 {
		return p.fail(p.branches[len(p.branches)-1].pos, "unbalanced parentheses")
	}
	if len(p.rings) > 0 {
		first := -1
		for _, o := range p.rings {
			if first < 0 || o.pos < first {
				first = o.pos
			}
		}
		return p.fail(first, "unclosed ring")
	}
	if len(p.g.Atoms) == 0 {
		return p.fail(-1, "no atoms")
	}
	if p.prev < 0 {
		return p.fail(len(p.src)-1, "trailing component separator")
	}
	return nil
}

// attach adds atom a to the graph and bonds it to the previous atom.
func (p *parser) attach(a Atom) {
	idx := p.g.addAtom(a)
	if p.prev >= 0 {
		order := p.pending
		if order == 0 {
			order = p.implicitOrder(p.prev, idx)
		}
		p.g.addBond(p.prev, idx, order, false)
	}
	p.prev = idx
	p.pending = 0
}

// implicitOrder is the order of an unwritten bond: aromatic between two
// aromatic atoms, single otherwise.
func (p *parser) implicitOrder(a, b int) BondOrder {
	if p.g.Atoms[a].Aromatic && p.g.Atoms[b].Aromatic {
		return BondAromatic
	}
	return BondSingle
}

func (p *parser) organicAtom() error {
	start := p.pos
	c := p.src[p.pos]
	var sym string
	aromatic := false
	switch {
	case c == 'C' && p.peek(1) == 'l':
		sym = "Cl"
	case c == 'B' && p.peek(1) == 'r':
		sym = "Br"
	case isUpper(c):
		sym = string(c)
		if _, ok := organicValences[sym]; !ok {
			return p.fail(start, "unknown element '"+sym+"' outside brackets")
		}
	default:
		s := string(c)
		el, ok := aromaticSymbols[s]
		if !ok {
			return p.fail(start, "unknown element '"+s+"'")
		}
		sym = el
		aromatic = true
	}
	p.pos += len(sym)
	p.attach(Atom{Element: sym, Aromatic: aromatic, Hydrogens: -1})
	return nil
}

func (p *parser) bracketAtom() error {
	open := p.pos
	end := strings.IndexByte(p.src[open:], ']')
	if end < 0 {
		return p.fail(open, "unterminated bracket atom")
	}
	body := p.src[open+1 : open+end]
	if strings.ContainsAny(body, "[") {
		return p.fail(open, "unterminated bracket atom")
	}
	a, err := parseBracketBody(body)
	if err != "" {
		return p.fail(open, err)
	}
	a.Bracket = true
	p.pos = open + end + 1
	p.attach(a)
	return nil
}

// parseBracketBody reads "isotope? symbol chiral? hcount? charge? class?".
// A non-empty string return is the failure reason.
func parseBracketBody(body string) (Atom, string) {
	var a Atom
	i := 0
	var ok bool
	if a.Isotope, i, ok = readNumber(body, i, maxIsotopeDigits); !ok {
		return a, "invalid bracket atom"
	}
	if i >= len(body) {
		return a, "missing element in bracket atom"
	}

	// element symbol
	switch {
	case isLower(body[i]):
		if i+1 < len(body) && isLower(body[i+1]) {
			if el, ok := aromaticSymbols[body[i:i+2]]; ok {
				a.Element, a.Aromatic = el, true
				i += 2
				break
			}
		}
		el, ok := aromaticSymbols[body[i:i+1]]
		if !ok {
			return a, "unknown element '" + body[i:i+1] + "'"
		}
		a.Element, a.Aromatic = el, true
		i++
	case isUpper(body[i]):
		if i+1 < len(body) && isLower(body[i+1]) {
			if _, ok := LookupElement(body[i : i+2]); ok {
				a.Element = body[i : i+2]
				i += 2
				break
			}
		}
		if _, ok := LookupElement(body[i : i+1]); !ok {
			return a, "unknown element '" + body[i:i+1] + "'"
		}
		a.Element = body[i : i+1]
		i++
	default:
		return a, "invalid bracket atom"
	}

	// chirality: @, @@, @TH1, @SP2, @OH12 ...
	if i < len(body) && body[i] == '@' {
		for i < len(body) && body[i] == '@' {
			i++
		}
		if i+1 < len(body) && isChiralClass(body[i:i+2]) {
			i += 2
			for i < len(body) && isDigit(body[i]) {
				i++
			}
		}
	}

	// hydrogen count
	if i < len(body) && body[i] == 'H' {
		i++
		a.Hydrogens = 1
		if i < len(body) && isDigit(body[i]) {
			if a.Hydrogens, i, ok = readNumber(body, i, maxCountDigits); !ok {
				return a, "invalid bracket atom"
			}
		}
	}

	// charge: +, ++, +2, -, --, -3
	if i < len(body) && (body[i] == '+' || body[i] == '-') {
		sign := 1
		if body[i] == '-' {
			sign = -1
		}
		sym := body[i]
		i++
		switch {
		case i < len(body) && isDigit(body[i]):
			var n int
			if n, i, ok = readNumber(body, i, maxCountDigits); !ok {
				return a, "invalid bracket atom"
			}
			a.Charge = sign * n
		default:
			n := 1
			for i < len(body) && body[i] == sym {
				n++
				i++
			}
			a.Charge = sign * n
		}
	}

	// atom class
	if i < len(body) && body[i] == ':' {
		i++
		if i >= len(body) || !isDigit(body[i]) {
			return a, "invalid atom class"
		}
		for i < len(body) && isDigit(body[i]) {
			i++
		}
	}

	if i != len(body) {
		return a, "invalid bracket atom"
	}
	return a, ""
}

// Digit limits inside bracket atoms.
const (
	maxIsotopeDigits = 3
	maxCountDigits   = 2
)

// readNumber reads the decimal digits of body starting at i.  It fails when
// there are more than maxDigits of them.
func readNumber(body string, i, maxDigits int) (n, next int, ok bool) {
	start := i
	for i < len(body) && isDigit(body[i]) {
		if i-start == maxDigits {
			return 0, i, false
		}
		n = n*10 + int(body[i]-'0')
		i++
	}
	return n, i, true
}

func (p *parser) ringClosure() error {
	start := p.pos
	if p.prev < 0 {
		return p.fail(start, "ring closure without a preceding atom")
	}
	var num int
	if p.src[p.pos] == '%' {
		if p.pos+2 >= len(p.src) || !isDigit(p.src[p.pos+1]) || !isDigit(p.src[p.pos+2]) {
			return p.fail(start, "ring closure '%' needs two digits")
		}
		num = int(p.src[p.pos+1]-'0')*10 + int(p.src[p.pos+2]-'0')
		p.pos += 3
	} else {
		num = int(p.src[p.pos] - '0')
		p.pos++
	}

	open, ok := p.rings[num]
	if !ok {
		p.rings[num] = ringOpening{atom: p.prev, order: p.pending, pos: start}
		p.pending = 0
		return nil
	}
	delete(p.rings, num)

	if open.atom == p.prev {
		return p.fail(start, "ring closure bonds an atom to itself")
	}
	if _, dup := p.g.BondBetween(open.atom, p.prev); dup {
		return p.fail(start, "ring closure duplicates an existing bond")
	}
	order := open.order
	switch {
	case order != 0 && p.pending != 0 && order != p.pending:
		return p.fail(start, "conflicting ring closure bond orders")
	case order == 0:
		order = p.pending
	}
	if order == 0 {
		order = p.implicitOrder(open.atom, p.prev)
	}
	p.g.addBond(open.atom, p.prev, order, true)
	p.pending = 0
	return nil
}

func (p *parser) peek(off int) byte {
	if p.pos+off < len(p.src) {
		return p.src[p.pos+off]
	}
	return 0
}

func isBondSymbol(c byte) bool {
	switch c {
	case '-', '=', '#', '$', ':', '/', '\\':
		return true
	}
	return false
}

func bondOrderFor(c byte) BondOrder {
	switch c {
	case '=':
		return BondDouble
	case '#':
		return BondTriple
	case '$':
		return BondQuadruple
	case ':':
		return BondAromatic
	default:
		return BondSingle
	}
}

func isChiralClass(s string) bool {
	switch s {
	case "TH", "AL", "SP", "TB", "OH":
		return true
	}
	return false
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isUpper(c byte) bool  { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool  { return c >= 'a' && c <= 'z' }
func isLetter(c byte) bool { return isUpper(c) || isLower(c) }

// assignImplicitHydrogens fills Hydrogens for organic-subset atoms (marked
// with -1 by the parser).  The count brings the atom up to the smallest
// allowed valence not below its explicit bond units; aromatic atoms give up
// one more for their π electron.  Negative results clamp to zero.
func assignImplicitHydrogens(g *Graph) {
	for i := range g.Atoms {
		a := &g.Atoms[i]
		if a.Hydrogens >= 0 {
			continue
		}
		sum := 0
		for _, bi := range g.adj[i] {
			sum += g.Bonds[bi].Order.valence()
		}
		target := -1
		for _, v := range organicValences[a.Element] {
			if v >= sum {
				target = v
				break
			}
		}
		h := 0
		if target >= 0 {
			h = target - sum
			if a.Aromatic {
				h--
			}
		}
		if h < 0 {
			h = 0
		}
		a.Hydrogens = h
	}
}

//Personal.AI order the ending
