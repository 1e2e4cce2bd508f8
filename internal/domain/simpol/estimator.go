package simpol

import (
	"github.com/turtacn/simpol/internal/domain/group"
	"github.com/turtacn/simpol/internal/domain/molecule"
	"github.com/turtacn/simpol/pkg/errors"
)

// Result is the full property estimate of one compound at one temperature.
type Result struct {
	SMILES      string       `json:"smiles"`
	Formula     string       `json:"formula"`
	MolarMass   float64      `json:"molar_mass"`
	Temperature float64      `json:"temperature_k"`
	Log10P      float64      `json:"log10_p_atm"`
	PressureAtm float64      `json:"p_atm"`
	PressurePa  float64      `json:"p_pa"`
	DHvap       float64      `json:"dhvap_kj_mol"`
	CStar       float64      `json:"c_star_ug_m3"`
	Counts      group.Counts `json:"-"`
}

// Estimator is the entry point of the core: SMILES in, properties out.  It
// holds no state and is safe for concurrent use; the zero value is ready.
type Estimator struct{}

// NewEstimator returns an Estimator.
func NewEstimator() *Estimator { return &Estimator{} }

// ParseAndCount builds the molecular graph of smiles and counts its groups.
func (e *Estimator) ParseAndCount(smiles string) (group.Counts, error) {
	g, err := molecule.Parse(smiles)
	if err != nil {
		return group.Counts{}, err
	}
	return group.Count(g), nil
}

// EvaluateProperties applies the SIMPOL.1 model to counts at temperature T.
func (e *Estimator) EvaluateProperties(counts group.Counts, T float64) (log10P, dHvap float64, err error) {
	return Evaluate(counts, T)
}

// Estimate parses smiles once and evaluates it at every temperature in
// temps, returning one Result per temperature in the same order.
func (e *Estimator) Estimate(smiles string, temps ...float64) ([]Result, error) {
	if len(temps) == 0 {
		temps = []float64{ReferenceTemperature}
	}
	for _, T := range temps {
		if err := ValidateTemperature(T); err != nil {
			return nil, err
		}
	}
	g, err := molecule.Parse(smiles)
	if err != nil {
		return nil, err
	}
	counts := group.Count(g)
	formula, mass := g.Formula(), g.MolarMass()

	out := make([]Result, 0, len(temps))
	for _, T := range temps {
		logP, dH, err := Evaluate(counts, T)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeUnknown, "evaluating "+g.SMILES)
		}
		p := PressureAtm(logP)
		out = append(out, Result{
			SMILES:      g.SMILES,
			Formula:     formula,
			MolarMass:   mass,
			Temperature: T,
			Log10P:      logP,
			PressureAtm: p,
			PressurePa:  p * PascalPerAtm,
			DHvap:       dH,
			CStar:       SaturationConcentration(mass, p, T),
			Counts:      counts,
		})
	}
	return out, nil
}

//Personal.AI order the ending
