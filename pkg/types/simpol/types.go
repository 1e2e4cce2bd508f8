// Package simpol defines the estimation Data Transfer Objects shared by the
// CLI, the HTTP API and the stream worker.  Only plain data types live here so
// the package can be imported from any layer, including external clients.
package simpol

import (
	"strings"

	"github.com/turtacn/simpol/pkg/types/common"
)

// DefaultTemperature is the evaluation temperature used when a request names
// none, in kelvin.
const DefaultTemperature = 298.15

// ─────────────────────────────────────────────────────────────────────────────
// Enumerations
// ─────────────────────────────────────────────────────────────────────────────

// OnErrorPolicy selects what a batch run does with a compound that fails.
type OnErrorPolicy string

const (
	// OnErrorSkip records the failure against the compound and carries on.
	OnErrorSkip OnErrorPolicy = "skip"
	// OnErrorAbort stops the run at the first failure.
	OnErrorAbort OnErrorPolicy = "abort"
)

// IsValid reports whether p is a known policy.
func (p OnErrorPolicy) IsValid() bool {
	return p == OnErrorSkip || p == OnErrorAbort
}

// ReportFormat is the encoding of a batch report.
type ReportFormat string

const (
	FormatCSV  ReportFormat = "csv"
	FormatText ReportFormat = "text"
	FormatJSON ReportFormat = "json"
)

// IsValid reports whether f is a known format.
func (f ReportFormat) IsValid() bool {
	switch f {
	case FormatCSV, FormatText, FormatJSON:
		return true
	}
	return false
}

// Extension returns the file extension used for reports of format f.
func (f ReportFormat) Extension() string {
	if f == FormatText {
		return "txt"
	}
	return strings.ToLower(string(f))
}

// ─────────────────────────────────────────────────────────────────────────────
// Requests
// ─────────────────────────────────────────────────────────────────────────────

// CompoundInput is one compound of a batch: a SMILES string and an optional
// display name.
type CompoundInput struct {
	SMILES string `json:"smiles" validate:"required,max=4096"`
	Name   string `json:"name,omitempty" validate:"max=256"`
}

// EstimateRequest asks for the properties of one compound.  An empty
// Temperatures list means DefaultTemperature.
type EstimateRequest struct {
	SMILES       string    `json:"smiles" validate:"required,max=4096"`
	Name         string    `json:"name,omitempty" validate:"max=256"`
	Temperatures []float64 `json:"temperatures_k,omitempty" validate:"max=64"`
}

// BatchEstimateRequest asks for the properties of many compounds at the same
// set of temperatures.
type BatchEstimateRequest struct {
	Compounds    []CompoundInput `json:"compounds" validate:"required,min=1,max=1000,dive"`
	Temperatures []float64       `json:"temperatures_k,omitempty" validate:"max=64"`
	OnError      OnErrorPolicy   `json:"on_error,omitempty" validate:"omitempty,oneof=skip abort"`
}

// EvaluateRequest evaluates the property model on an explicit group count
// vector.  Counts is keyed by group key (see GroupInfo.Key); absent groups
// count zero.  A nil Temperature means DefaultTemperature.
type EvaluateRequest struct {
	Counts      map[string]int `json:"counts" validate:"required,min=1"`
	Temperature *float64       `json:"temperature_k,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Results
// ─────────────────────────────────────────────────────────────────────────────

// PropertyPoint is the model output at one temperature.
type PropertyPoint struct {
	Temperature float64 `json:"temperature_k"`
	Log10P      float64 `json:"log10_p_atm"`
	PressureAtm float64 `json:"p_atm"`
	PressurePa  float64 `json:"p_pa"`
	DHvap       float64 `json:"dhvap_kj_mol"`
	CStar       float64 `json:"c_star_ug_m3,omitempty"`
}

// CompoundResult is the estimate of one compound.  Groups lists the non-zero
// group counts by key.  On failure Error is set and the remaining fields other
// than Index, SMILES and Name are empty.
type CompoundResult struct {
	Index     int                 `json:"index"`
	SMILES    string              `json:"smiles"`
	Name      string              `json:"name,omitempty"`
	Formula   string              `json:"formula,omitempty"`
	MolarMass float64             `json:"molar_mass,omitempty"`
	Groups    map[string]int      `json:"groups,omitempty"`
	Points    []PropertyPoint     `json:"points,omitempty"`
	Error     *common.ErrorDetail `json:"error,omitempty"`
}

// Failed reports whether the compound could not be estimated.
func (r CompoundResult) Failed() bool { return r.Error != nil }

// BatchSummary describes a finished batch run.
type BatchSummary struct {
	RunID     string           `json:"run_id"`
	Total     int              `json:"total"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Aborted   bool             `json:"aborted,omitempty"`
	StartedAt common.Timestamp `json:"started_at"`
	ElapsedMS int64            `json:"elapsed_ms"`
	ReportURI string           `json:"report_uri,omitempty"`
}

// BatchEstimateResponse is the outcome of a batch run, results in input order.
type BatchEstimateResponse struct {
	Summary BatchSummary     `json:"summary"`
	Results []CompoundResult `json:"results"`
}

// EvaluateResponse is the model output for an explicit count vector.
type EvaluateResponse struct {
	Counts map[string]int `json:"counts"`
	PropertyPoint
}

// Coefficients is the wire form of one group's b(T) coefficients.
type Coefficients struct {
	B0 float64 `json:"b0"`
	B1 float64 `json:"b1"`
	B2 float64 `json:"b2"`
	B3 float64 `json:"b3"`
}

// GroupInfo describes one catalogue entry.
type GroupInfo struct {
	ID           int          `json:"id"`
	Key          string       `json:"key"`
	Name         string       `json:"name"`
	Kind         string       `json:"kind"`
	Priority     int          `json:"priority,omitempty"`
	Coefficients Coefficients `json:"coefficients"`
	// B298 is b(T) evaluated at 298.15 K.
	B298 float64 `json:"b_298"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Stream messages
// ─────────────────────────────────────────────────────────────────────────────

// StreamRequest is the payload of an estimation request message.
type StreamRequest struct {
	RequestID    string    `json:"request_id"`
	SMILES       string    `json:"smiles"`
	Name         string    `json:"name,omitempty"`
	Temperatures []float64 `json:"temperatures_k,omitempty"`
}

// StreamResult is the payload of an estimation result message.  Failed
// requests are published too, with Result.Error set.
type StreamResult struct {
	RequestID   string           `json:"request_id"`
	Result      CompoundResult   `json:"result"`
	ProcessedAt common.Timestamp `json:"processed_at"`
}

//Personal.AI order the ending
