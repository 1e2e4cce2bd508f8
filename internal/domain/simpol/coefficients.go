// Package simpol implements the SIMPOL.1 group-contribution model of Pankow
// and Asher (2008): per-group temperature functions b_k(T) are summed with the
// group counts of a molecule to give log10 of the pure-liquid vapor pressure
// (atm), and the temperature derivative of the same sum gives the enthalpy of
// vaporization.
package simpol

import (
	"github.com/turtacn/simpol/internal/domain/group"
	"github.com/turtacn/simpol/pkg/errors"
)

// Coefficients are the four terms of one group's b(T):
//
//	b(T) = B0 + B1/T + B2*T + B3*ln(T)
type Coefficients struct {
	B0 float64 `json:"b0"` // constant
	B1 float64 `json:"b1"` // multiplies 1/T
	B2 float64 `json:"b2"` // multiplies T
	B3 float64 `json:"b3"` // multiplies ln T
}

// table holds SIMPOL.1 Table 5, indexed by group.ID.  The published columns
// are B1..B4 in the order 1/T, constant, T, ln T.
var table = [group.NumGroups]Coefficients{
	group.CarbonNumber:          {B1: -4.11248e+02, B0: 8.96919e-01, B2: -2.48607e-03, B3: 1.40312e-01},
	group.Zeroeth:               {B1: -4.26938e+02, B0: 2.89223e-01, B2: 4.42057e-03, B3: 2.92737e-01},
	group.CarbonAcidSideAmide:   {B1: -1.46442e+02, B0: 1.54528e+00, B2: 1.71021e-03, B3: -2.78291e-01},
	group.AromaticRing:          {B1: 3.50262e+01, B0: -9.20839e-01, B2: 2.24399e-03, B3: -9.36300e-02},
	group.NonAromaticRing:       {B1: -8.72770e+01, B0: 1.78059e+00, B2: -3.07187e-03, B3: -1.04341e-01},
	group.CCDoubleBond:          {B1: 5.73335e+00, B0: 1.69764e-02, B2: -6.28957e-04, B3: 7.55434e-03},
	group.CCCOInRing:            {B1: -2.61268e+02, B0: -7.63282e-01, B2: -1.68213e-03, B3: 2.89038e-01},
	group.Hydroxyl:              {B1: -7.25373e+02, B0: 8.26326e-01, B2: 2.50957e-03, B3: -2.32304e-01},
	group.Aldehyde:              {B1: -7.29501e+02, B0: 9.86017e-01, B2: -2.92664e-03, B3: 1.78077e-01},
	group.Ketone:                {B1: -1.37456e+01, B0: 5.23486e-01, B2: 5.50298e-04, B3: -2.76950e-01},
	group.CarboxylicAcid:        {B1: -7.98796e+02, B0: -1.09436e+00, B2: 5.24132e-03, B3: -2.28040e-01},
	group.Ester:                 {B1: -3.93345e+02, B0: -9.51778e-01, B2: -2.19071e-03, B3: 3.05843e-01},
	group.Ether:                 {B1: -1.44334e+02, B0: -1.85617e+00, B2: -2.37491e-05, B3: 2.88290e-01},
	group.EtherAlicyclic:        {B1: 4.05265e+01, B0: -2.43780e+00, B2: 3.60133e-03, B3: 9.62936e-02},
	group.EtherAromatic:         {B1: -7.07406e+01, B0: -1.06674e+00, B2: 3.73104e-03, B3: -1.44003e-01},
	group.Nitrate:               {B1: -7.83648e+02, B0: -1.03439e+00, B2: -1.07148e-03, B3: 3.15535e-01},
	group.Nitro:                 {B1: -5.63872e+02, B0: -7.18416e-01, B2: 2.63016e-03, B3: -4.99470e-02},
	group.AromaticHydroxyl:      {B1: -4.53961e+02, B0: -3.26105e-01, B2: -1.39780e-04, B3: -3.93916e-02},
	group.AminePrimary:          {B1: 3.71375e+01, B0: -2.66753e+00, B2: 1.01483e-03, B3: 2.14233e-01},
	group.AmineSecondary:        {B1: -5.03710e+02, B0: 1.04092e+00, B2: -4.12746e-03, B3: 1.82790e-01},
	group.AmineTertiary:         {B1: -3.59763e+01, B0: -4.08458e-01, B2: 1.67264e-03, B3: -9.98919e-02},
	group.AmineAromatic:         {B1: -6.09432e+02, B0: 1.50436e+00, B2: -9.09024e-04, B3: -1.35495e-01},
	group.AmidePrimary:          {B1: -1.02367e+02, B0: -7.16253e-01, B2: -2.90670e-04, B3: -5.88556e-01},
	group.AmideSecondary:        {B1: -1.93802e+03, B0: 6.48262e-01, B2: 1.73245e-03, B3: 3.47940e-02},
	group.AmideTertiary:         {B1: -5.26919e+00, B0: 3.06435e-01, B2: 3.25397e-03, B3: -6.81506e-01},
	group.CarbonylPeroxyNitrate: {B1: -2.84042e+02, B0: -6.25424e-01, B2: -8.22474e-04, B3: -8.80549e-02},
	group.Peroxide:              {B1: 1.50093e+02, B0: 2.39875e-02, B2: -3.37969e-03, B3: 1.52789e-02},
	group.Hydroperoxide:         {B1: -2.03387e+01, B0: -5.48718e+00, B2: 8.39075e-03, B3: 1.07884e-01},
	group.CarbonylPeroxyAcid:    {B1: -8.38064e+02, B0: -1.09600e+00, B2: -4.24385e-04, B3: 2.81812e-01},
	group.Nitrophenol:           {B1: -5.27934e+01, B0: -4.63689e-01, B2: -5.11647e-03, B3: 3.84965e-01},
	group.Nitroester:            {B1: -1.61520e+03, B0: 9.01669e-01, B2: 1.44536e-03, B3: 2.66889e-01},
}

// CoefficientsFor returns the coefficient row of group id.
func CoefficientsFor(id group.ID) (Coefficients, error) {
	if !id.Valid() {
		return Coefficients{}, errors.UnknownGroup(int(id))
	}
	return table[id], nil
}

//Personal.AI order the ending
