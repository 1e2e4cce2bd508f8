// Package group holds the SIMPOL.1 structural-group catalogue and the matcher
// that turns a molecular graph into a group count vector.
//
// Groups come in two flavours.  Functional groups (hydroxyl, ester, nitrate,
// ...) consume the atoms they match, and lower-priority groups skip consumed
// atoms, so an acid is never also counted as a ketone plus a hydroxyl.
// Descriptor groups (carbon number, rings, C=C, the correction terms) count
// structure without consuming it.  The catalogue is immutable and shared.
package group

import "fmt"

// ID identifies a group.  IDs from 2 up are the SIMPOL.1 term index k; 0 is
// the carbon number and 1 the constant (zeroeth) term.
type ID int

// NumGroups is the size of the catalogue and of every count vector.
const NumGroups = 31

const (
	CarbonNumber ID = iota
	Zeroeth
	CarbonAcidSideAmide
	AromaticRing
	NonAromaticRing
	CCDoubleBond
	CCCOInRing
	Hydroxyl
	Aldehyde
	Ketone
	CarboxylicAcid
	Ester
	Ether
	EtherAlicyclic
	EtherAromatic
	Nitrate
	Nitro
	AromaticHydroxyl
	AminePrimary
	AmineSecondary
	AmineTertiary
	AmineAromatic
	AmidePrimary
	AmideSecondary
	AmideTertiary
	CarbonylPeroxyNitrate
	Peroxide
	Hydroperoxide
	CarbonylPeroxyAcid
	Nitrophenol
	Nitroester
)

// Valid reports whether id is inside the catalogue.
func (id ID) Valid() bool { return id >= 0 && id < NumGroups }

// String returns the group's key, or ID(n) when id is outside the catalogue.
func (id ID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("ID(%d)", int(id))
	}
	return catalogue[id].Key
}

// Kind classifies how a group is counted.
type Kind int

const (
	// KindSynthetic is derived from element counts (carbon number).
	KindSynthetic Kind = iota
	// KindMolecular occurs once per molecule or per structural anchor.
	KindMolecular
	// KindRing is counted once per SSSR ring.
	KindRing
	// KindFunctional consumes the atoms it matches.
	KindFunctional
	// KindCorrection is an additive term on top of functional groups.
	KindCorrection
)

func (k Kind) String() string {
	switch k {
	case KindSynthetic:
		return "synthetic"
	case KindMolecular:
		return "molecular"
	case KindRing:
		return "ring"
	case KindFunctional:
		return "functional"
	case KindCorrection:
		return "correction"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Definition is one catalogue entry.
type Definition struct {
	ID   ID
	Key  string // machine name, used in report columns and JSON
	Name string
	Kind Kind
	// Priority orders functional groups; lower values match first.
	// Non-consuming groups carry 0.
	Priority int
	Matcher  Matcher
}

// Consumes reports whether matches of this group claim their atoms.
func (d Definition) Consumes() bool { return d.Kind == KindFunctional }

var catalogue = [NumGroups]Definition{
	{CarbonNumber, "carbon_number", "carbon number", KindSynthetic, 0, carbonMatcher{}},
	{Zeroeth, "zeroeth", "zeroeth group", KindMolecular, 0, constantMatcher{}},
	{CarbonAcidSideAmide, "carbon_asa", "carbon number on the acid side of an amide", KindMolecular, 0, MatcherFunc(matchAcidSideCarbons)},
	{AromaticRing, "aromatic_ring", "aromatic ring", KindRing, 0, ringMatcher{aromatic: true}},
	{NonAromaticRing, "non_aromatic_ring", "non-aromatic ring", KindRing, 0, ringMatcher{aromatic: false}},
	{CCDoubleBond, "c_eq_c", "C=C (non-aromatic)", KindCorrection, 0, MatcherFunc(matchCCDouble)},
	{CCCOInRing, "c_eq_c_c_eq_o_ring", "C=C-C=O in non-aromatic ring", KindCorrection, 0, MatcherFunc(matchEnoneInRing)},
	{Hydroxyl, "hydroxyl", "hydroxyl (alkyl)", KindFunctional, 140, MatcherFunc(matchHydroxyl)},
	{Aldehyde, "aldehyde", "aldehyde", KindFunctional, 110, MatcherFunc(matchAldehyde)},
	{Ketone, "ketone", "ketone", KindFunctional, 120, MatcherFunc(matchKetone)},
	{CarboxylicAcid, "carboxylic_acid", "carboxylic acid", KindFunctional, 80, MatcherFunc(matchCarboxylicAcid)},
	{Ester, "ester", "ester", KindFunctional, 90, MatcherFunc(matchEster)},
	{Ether, "ether", "ether", KindFunctional, 170, etherMatcher{class: Ether}},
	{EtherAlicyclic, "ether_alicyclic", "ether, alicyclic", KindFunctional, 160, etherMatcher{class: EtherAlicyclic}},
	{EtherAromatic, "ether_aromatic", "ether, aromatic", KindFunctional, 150, etherMatcher{class: EtherAromatic}},
	{Nitrate, "nitrate", "nitrate", KindFunctional, 60, MatcherFunc(matchNitrate)},
	{Nitro, "nitro", "nitro", KindFunctional, 70, MatcherFunc(matchNitro)},
	{AromaticHydroxyl, "aromatic_hydroxyl", "aromatic hydroxyl", KindFunctional, 130, MatcherFunc(matchAromaticHydroxyl)},
	{AminePrimary, "amine_primary", "amine, primary", KindFunctional, 190, amineMatcher{class: AminePrimary}},
	{AmineSecondary, "amine_secondary", "amine, secondary", KindFunctional, 191, amineMatcher{class: AmineSecondary}},
	{AmineTertiary, "amine_tertiary", "amine, tertiary", KindFunctional, 192, amineMatcher{class: AmineTertiary}},
	{AmineAromatic, "amine_aromatic", "amine, aromatic", KindFunctional, 180, amineMatcher{class: AmineAromatic}},
	{AmidePrimary, "amide_primary", "amide, primary", KindFunctional, 100, amideMatcher{hydrogens: 2}},
	{AmideSecondary, "amide_secondary", "amide, secondary", KindFunctional, 101, amideMatcher{hydrogens: 1}},
	{AmideTertiary, "amide_tertiary", "amide, tertiary", KindFunctional, 102, amideMatcher{hydrogens: 0}},
	{CarbonylPeroxyNitrate, "carbonylperoxynitrate", "carbonylperoxynitrate", KindFunctional, 10, MatcherFunc(matchCarbonylPeroxyNitrate)},
	{Peroxide, "peroxide", "peroxide", KindFunctional, 50, MatcherFunc(matchPeroxide)},
	{Hydroperoxide, "hydroperoxide", "hydroperoxide", KindFunctional, 40, MatcherFunc(matchHydroperoxide)},
	{CarbonylPeroxyAcid, "carbonylperoxyacid", "carbonylperoxyacid", KindFunctional, 30, MatcherFunc(matchCarbonylPeroxyAcid)},
	{Nitrophenol, "nitrophenol", "nitrophenol", KindCorrection, 0, MatcherFunc(matchNitrophenol)},
	{Nitroester, "nitroester", "nitroester", KindFunctional, 20, MatcherFunc(matchNitroester)},
}

// functionalOrder lists the consuming groups by ascending priority.
var functionalOrder = func() []ID {
	var ids []ID
	for _, d := range catalogue {
		if d.Consumes() {
			ids = append(ids, d.ID)
		}
	}
	// insertion sort keeps the table order for equal priorities
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && catalogue[ids[j]].Priority < catalogue[ids[j-1]].Priority; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	return ids
}()

// Catalogue returns a copy of every group definition, ordered by ID.
func Catalogue() []Definition {
	out := make([]Definition, NumGroups)
	copy(out, catalogue[:])
	return out
}

// Lookup returns the definition for id.
func Lookup(id ID) (Definition, bool) {
	if !id.Valid() {
		return Definition{}, false
	}
	return catalogue[id], true
}

// ByKey returns the definition whose Key equals key.
func ByKey(key string) (Definition, bool) {
	for _, d := range catalogue {
		if d.Key == key {
			return d, true
		}
	}
	return Definition{}, false
}

// Keys returns every group key in ID order.
func Keys() []string {
	keys := make([]string, NumGroups)
	for i, d := range catalogue {
		keys[i] = d.Key
	}
	return keys
}

// FunctionalOrder returns the consuming groups in the order they are matched.
func FunctionalOrder() []ID {
	out := make([]ID, len(functionalOrder))
	copy(out, functionalOrder)
	return out
}

//Personal.AI order the ending
