package simpol

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/simpol/internal/domain/group"
	"github.com/turtacn/simpol/pkg/errors"
)

func bAt(c Coefficients, T float64) float64 {
	return c.B0 + c.B1/T + c.B2*T + c.B3*math.Log(T)
}

// ─────────────────────────────────────────────────────────────────────────────
// Coefficient table
// ─────────────────────────────────────────────────────────────────────────────

func TestCoefficientsFor_PublishedValuesAt293K(t *testing.T) {
	t.Parallel()

	// b_k(293.15 K) as tabulated alongside the coefficients.
	want := map[group.ID]float64{
		group.Zeroeth:               1.79,
		group.CarbonNumber:          -0.438,
		group.CarbonAcidSideAmide:   -0.0338,
		group.AromaticRing:          -0.675,
		group.NonAromaticRing:       -0.0104,
		group.CCDoubleBond:          -0.105,
		group.CCCOInRing:            -0.506,
		group.Hydroxyl:              -2.23,
		group.Aldehyde:              -1.35,
		group.Ketone:                -0.935,
		group.CarboxylicAcid:        -3.58,
		group.Ester:                 -1.20,
		group.Ether:                 -0.718,
		group.EtherAlicyclic:        -0.697,
		group.EtherAromatic:         -1.03,
		group.Nitrate:               -2.23,
		group.Nitro:                 -2.15,
		group.AromaticHydroxyl:      -2.14,
		group.AminePrimary:          -1.03,
		group.AmineSecondary:        -0.849,
		group.AmineTertiary:         -0.608,
		group.AmineAromatic:         -1.61,
		group.AmidePrimary:          -4.49,
		group.AmideSecondary:        -5.26,
		group.AmideTertiary:         -2.63,
		group.CarbonylPeroxyNitrate: -2.34,
		group.Peroxide:              -0.368,
		group.Hydroperoxide:         -2.48,
		group.CarbonylPeroxyAcid:    -2.48,
		group.Nitrophenol:           0.0432,
		group.Nitroester:            -2.67,
	}
	require.Len(t, want, group.NumGroups)

	for id, b293 := range want {
		c, err := CoefficientsFor(id)
		require.NoError(t, err)
		tol := math.Max(0.006, math.Abs(b293)*0.01)
		assert.InDelta(t, b293, bAt(c, 293.15), tol, "group %v", id)
	}
}

func TestCoefficientsFor_UnknownGroup(t *testing.T) {
	t.Parallel()

	for _, id := range []group.ID{-1, group.NumGroups, 100} {
		_, err := CoefficientsFor(id)
		require.Error(t, err)
		assert.True(t, errors.IsUnknownGroup(err))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Property model
// ─────────────────────────────────────────────────────────────────────────────

func ethanolCounts() group.Counts {
	var c group.Counts
	c.Values[group.CarbonNumber] = 2
	c.Values[group.Zeroeth] = 1
	c.Values[group.Hydroxyl] = 1
	return c
}

func TestEvaluate_MatchesTermSum(t *testing.T) {
	t.Parallel()

	T := 298.15
	logP, dH, err := Evaluate(ethanolCounts(), T)
	require.NoError(t, err)

	zero, carbon, oh := table[group.Zeroeth], table[group.CarbonNumber], table[group.Hydroxyl]
	wantLogP := bAt(zero, T) + 2*bAt(carbon, T) + bAt(oh, T)
	assert.InDelta(t, wantLogP, logP, 1e-12)

	deriv := func(c Coefficients) float64 { return -c.B1/(T*T) + c.B2 + c.B3/T }
	wantDH := GasConstant * T * T * math.Ln10 * (deriv(zero) + 2*deriv(carbon) + deriv(oh))
	assert.InDelta(t, wantDH, dH, 1e-9)

	// ethanol: roughly 7.9 kPa and 42 kJ/mol
	assert.InDelta(t, -1.1, logP, 0.15)
	assert.InDelta(t, 43, dH, 3)
}

func TestEvaluate_EnthalpyIsDerivativeOfLogP(t *testing.T) {
	t.Parallel()

	const h = 0.01
	vectors := []group.Counts{ethanolCounts()}
	var acid group.Counts
	acid.Values[group.CarbonNumber] = 10
	acid.Values[group.Zeroeth] = 1
	acid.Values[group.NonAromaticRing] = 1
	acid.Values[group.Ketone] = 1
	acid.Values[group.CarboxylicAcid] = 1
	vectors = append(vectors, acid)

	for _, counts := range vectors {
		for _, T := range []float64{250, 273.15, 298.15, 320} {
			up, _, err := Evaluate(counts, T+h)
			require.NoError(t, err)
			down, _, err := Evaluate(counts, T-h)
			require.NoError(t, err)
			_, dH, err := Evaluate(counts, T)
			require.NoError(t, err)

			fd := GasConstant * T * T * math.Ln10 * (up - down) / (2 * h)
			assert.InDelta(t, fd, dH, math.Abs(dH)*1e-4, "T=%v", T)
		}
	}
}

func TestEvaluate_ZeroCountsContributeNothing(t *testing.T) {
	t.Parallel()

	logP, dH, err := Evaluate(group.Counts{}, 298.15)
	require.NoError(t, err)
	assert.Zero(t, logP)
	assert.Zero(t, dH)
}

func TestEvaluate_InvalidTemperature(t *testing.T) {
	t.Parallel()

	for _, T := range []float64{0, -1, -273.15, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, _, err := Evaluate(ethanolCounts(), T)
		require.Error(t, err, "T=%v", T)
		assert.True(t, errors.IsInvalidTemperature(err))
	}
}

func TestEvaluateSparse(t *testing.T) {
	t.Parallel()

	logP, dH, err := EvaluateSparse(map[group.ID]int{
		group.CarbonNumber: 2, group.Zeroeth: 1, group.Hydroxyl: 1,
	}, 298.15)
	require.NoError(t, err)
	wantLogP, wantDH, _ := Evaluate(ethanolCounts(), 298.15)
	assert.Equal(t, wantLogP, logP)
	assert.Equal(t, wantDH, dH)

	_, _, err = EvaluateSparse(map[group.ID]int{31: 1}, 298.15)
	assert.True(t, errors.IsUnknownGroup(err))

	_, _, err = EvaluateSparse(map[group.ID]int{group.Hydroxyl: -1}, 298.15)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestSaturationConcentration(t *testing.T) {
	t.Parallel()

	// 1e-7 atm of a 200 g/mol compound at 298.15 K
	assert.InDelta(t, 817.5, SaturationConcentration(200, 1e-7, 298.15), 0.5)
	assert.InDelta(t, 101325, PressureAtm(0)*PascalPerAtm, 1e-9)
}

//Personal.AI order the ending
