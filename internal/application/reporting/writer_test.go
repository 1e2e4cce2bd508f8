package reporting

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/simpol/pkg/errors"
	"github.com/turtacn/simpol/pkg/types/common"
	stypes "github.com/turtacn/simpol/pkg/types/simpol"
)

func fixtureResults() []stypes.CompoundResult {
	return []stypes.CompoundResult{
		{
			Index:     0,
			SMILES:    "CCO",
			Name:      "ethanol",
			Formula:   "C2H6O",
			MolarMass: 46.069,
			Groups:    map[string]int{"carbon_number": 2, "zeroeth": 1, "hydroxyl": 1},
			Points: []stypes.PropertyPoint{
				{Temperature: 298.15, Log10P: -1.187, PressureAtm: 0.065, PressurePa: 6500, DHvap: 43.086, CStar: 1.2e8},
				{Temperature: 310, Log10P: -0.9, PressureAtm: 0.126, PressurePa: 12700, DHvap: 42.5, CStar: 2.3e8},
			},
		},
		{
			Index:  1,
			SMILES: "C(",
			Name:   "broken",
			Error:  &common.ErrorDetail{Code: "MOL_001", Message: "unbalanced parentheses"},
		},
	}
}

func TestCSVHeader(t *testing.T) {
	h := CSVHeader()
	require.Len(t, h, 40)
	assert.Equal(t, []string{"smiles", "name", "temperature_k", "carbon_number", "zeroeth"}, h[:5])
	assert.Equal(t, "nitroester", h[33])
	assert.Equal(t, []string{"log10_p_atm", "p_pa", "dhvap_kj_mol", "molar_mass", "c_star_ug_m3", "error"}, h[34:])
}

func TestCSVWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSVWriter{}.Write(&buf, fixtureResults()))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Join(CSVHeader(), ","), lines[0])

	groups := "2,1,0,0,0,0,0,1," + strings.Repeat("0,", 23)
	assert.Equal(t, "CCO,ethanol,298.15,"+groups+"-1.1870,6.5000e+03,43.086,46.069,1.2000e+08,", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "CCO,ethanol,310.00,"))
	assert.Equal(t, "C(,broken"+strings.Repeat(",", 38)+"MOL_001: unbalanced parentheses", lines[3])
}

func TestTextWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TextWriter{}.Write(&buf, fixtureResults()))

	out := buf.String()
	assert.Contains(t, out, "ethanol")
	assert.Contains(t, out, "-1.1870")
	assert.Contains(t, out, "310.00")
	assert.Contains(t, out, "carbon_number=2 zeroeth=1 hydroxyl=1")
	assert.Contains(t, out, "1 compound(s) failed:")
	assert.Contains(t, out, "[1] C( broken: unbalanced parentheses (MOL_001)")
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSONWriter{}.Write(&buf, fixtureResults()))

	var decoded []stypes.CompoundResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, fixtureResults(), decoded)

	buf.Reset()
	require.NoError(t, JSONWriter{}.Write(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestNewWriter(t *testing.T) {
	for format, ct := range map[stypes.ReportFormat]string{
		stypes.FormatCSV:  "text/csv",
		stypes.FormatText: "text/plain; charset=utf-8",
		stypes.FormatJSON: "application/json",
	} {
		w, err := NewWriter(format)
		require.NoError(t, err)
		assert.Equal(t, ct, w.ContentType())
	}

	_, err := NewWriter("xlsx")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestGroupSummary(t *testing.T) {
	assert.Equal(t, "carbon_number=3 zeroeth=1 ketone=1", GroupSummary(map[string]int{"ketone": 1, "zeroeth": 1, "carbon_number": 3}))
	assert.Equal(t, "", GroupSummary(nil))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, assert.AnError }

func TestWriters_PropagateWriteErrors(t *testing.T) {
	err := JSONWriter{}.Write(failingWriter{}, fixtureResults())
	assert.True(t, errors.IsCode(err, errors.ErrCodeReportWriteFailed))

	err = CSVWriter{}.Write(failingWriter{}, fixtureResults())
	assert.True(t, errors.IsCode(err, errors.ErrCodeReportWriteFailed))
}

//Personal.AI order the ending
