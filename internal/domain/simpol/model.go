package simpol

import (
	"math"

	"github.com/turtacn/simpol/internal/domain/group"
	"github.com/turtacn/simpol/pkg/errors"
)

const (
	// GasConstant is R in kJ mol⁻¹ K⁻¹.
	GasConstant = 8.314462618e-3
	// GasConstantAtm is R in m³ atm mol⁻¹ K⁻¹.
	GasConstantAtm = 8.2057366e-5
	// PascalPerAtm converts atmospheres to pascals.
	PascalPerAtm = 101325.0
	// ReferenceTemperature is the default evaluation temperature in kelvin.
	ReferenceTemperature = 298.15
)

// term is one group's contribution ν·b(T).  Both log10 P and its temperature
// derivative are computed from the same term so they cannot drift apart.
type term struct {
	c Coefficients
	n float64
}

func (t term) value(T float64) float64 {
	return t.n * (t.c.B0 + t.c.B1/T + t.c.B2*T + t.c.B3*math.Log(T))
}

// slope is d(value)/dT.
func (t term) slope(T float64) float64 {
	return t.n * (-t.c.B1/(T*T) + t.c.B2 + t.c.B3/T)
}

// ValidateTemperature rejects T <= 0, NaN and ±Inf.
func ValidateTemperature(T float64) error {
	if math.IsNaN(T) || math.IsInf(T, 0) || T <= 0 {
		return errors.InvalidTemperature(T)
	}
	return nil
}

// Evaluate returns log10 of the vapor pressure in atm and the enthalpy of
// vaporization in kJ/mol for a count vector at temperature T (kelvin):
//
//	log10 P = Σ ν_k b_k(T)
//	ΔHvap   = R T² ln10 · d(log10 P)/dT
//
// Groups with a zero count contribute nothing.
func Evaluate(counts group.Counts, T float64) (log10P, dHvap float64, err error) {
	if err := ValidateTemperature(T); err != nil {
		return 0, 0, err
	}
	var sum, dsum float64
	for id, n := range counts.Values {
		if n <= 0 {
			continue
		}
		t := term{c: table[id], n: float64(n)}
		sum += t.value(T)
		dsum += t.slope(T)
	}
	return sum, enthalpy(dsum, T), nil
}

// EvaluateSparse is Evaluate for counts given as a map keyed by group ID.
// Ids outside the catalogue yield an UnknownGroup error; negative counts are
// rejected as invalid parameters.
func EvaluateSparse(counts map[group.ID]int, T float64) (log10P, dHvap float64, err error) {
	var vec group.Counts
	for id, n := range counts {
		if _, err := CoefficientsFor(id); err != nil {
			return 0, 0, err
		}
		if n < 0 {
			return 0, 0, errors.InvalidParam("group counts must be non-negative").
				WithDetailf("id=%d count=%d", int(id), n)
		}
		vec.Values[id] = n
	}
	return Evaluate(vec, T)
}

func enthalpy(dlog10P, T float64) float64 {
	return GasConstant * T * T * math.Ln10 * dlog10P
}

// PressureAtm converts log10 P to atmospheres.
func PressureAtm(log10P float64) float64 { return math.Pow(10, log10P) }

// SaturationConcentration returns the saturation mass concentration C* in
// µg m⁻³ for a compound of molar mass M (g/mol) with vapor pressure p (atm)
// at temperature T (kelvin).
func SaturationConcentration(molarMass, pAtm, T float64) float64 {
	return 1e6 * molarMass * pAtm / (GasConstantAtm * T)
}

//Personal.AI order the ending
