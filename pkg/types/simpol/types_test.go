package simpol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/simpol/pkg/types/common"
)

func TestOnErrorPolicy_IsValid(t *testing.T) {
	assert.True(t, OnErrorSkip.IsValid())
	assert.True(t, OnErrorAbort.IsValid())
	assert.False(t, OnErrorPolicy("retry").IsValid())
	assert.False(t, OnErrorPolicy("").IsValid())
}

func TestReportFormat(t *testing.T) {
	tests := []struct {
		format ReportFormat
		valid  bool
		ext    string
	}{
		{FormatCSV, true, "csv"},
		{FormatText, true, "txt"},
		{FormatJSON, true, "json"},
		{ReportFormat("xml"), false, "xml"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.format.IsValid())
			assert.Equal(t, tt.ext, tt.format.Extension())
		})
	}
}

func TestCompoundResult_Failed(t *testing.T) {
	assert.False(t, CompoundResult{SMILES: "CCO"}.Failed())
	assert.True(t, CompoundResult{SMILES: "C(", Error: &common.ErrorDetail{Code: "MOL_001"}}.Failed())
}

func TestCompoundResult_FailureOmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(CompoundResult{
		Index:  3,
		SMILES: "C(",
		Error:  &common.ErrorDetail{Code: "MOL_001", Message: "malformed SMILES"},
	})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, float64(3), raw["index"])
	assert.Contains(t, raw, "error")
	assert.NotContains(t, raw, "points")
	assert.NotContains(t, raw, "groups")
	assert.NotContains(t, raw, "formula")
}

func TestEvaluateResponse_FlattensPoint(t *testing.T) {
	data, err := json.Marshal(EvaluateResponse{
		Counts:        map[string]int{"hydroxyl": 1},
		PropertyPoint: PropertyPoint{Temperature: 298.15, Log10P: -1.2},
	})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, 298.15, raw["temperature_k"])
	assert.Equal(t, -1.2, raw["log10_p_atm"])
	assert.NotContains(t, raw, "c_star_ug_m3")
}

//Personal.AI order the ending
