// Package reporting renders batch estimation results as CSV, an aligned text
// table or JSON, and publishes rendered reports to object storage.
package reporting

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/turtacn/simpol/internal/domain/group"
	"github.com/turtacn/simpol/pkg/errors"
	stypes "github.com/turtacn/simpol/pkg/types/simpol"
)

// Writer renders results, in order, to w.
type Writer interface {
	Write(w io.Writer, results []stypes.CompoundResult) error
	ContentType() string
}

// NewWriter returns the writer for format.
func NewWriter(format stypes.ReportFormat) (Writer, error) {
	switch format {
	case stypes.FormatCSV:
		return CSVWriter{}, nil
	case stypes.FormatText:
		return TextWriter{}, nil
	case stypes.FormatJSON:
		return JSONWriter{Indent: true}, nil
	}
	return nil, errors.New(errors.CodeInvalidParam, "unknown report format").WithDetail(string(format))
}

func formatFloat(v float64, prec int) string { return strconv.FormatFloat(v, 'f', prec, 64) }
func formatSci(v float64) string             { return strconv.FormatFloat(v, 'e', 4, 64) }

func writeFailed(err error) error {
	return errors.Wrap(err, errors.ErrCodeReportWriteFailed, "writing report")
}

// ─────────────────────────────────────────────────────────────────────────────
// CSV
// ─────────────────────────────────────────────────────────────────────────────

// CSVWriter writes one row per compound and temperature.  A failed compound
// gets a single row with empty value columns and the error code and message
// in the last column.
type CSVWriter struct{}

func (CSVWriter) ContentType() string { return "text/csv" }

// CSVHeader returns the column names.
func CSVHeader() []string {
	h := []string{"smiles", "name", "temperature_k"}
	h = append(h, group.Keys()...)
	return append(h, "log10_p_atm", "p_pa", "dhvap_kj_mol", "molar_mass", "c_star_ug_m3", "error")
}

func (CSVWriter) Write(w io.Writer, results []stypes.CompoundResult) error {
	cw := csv.NewWriter(w)
	header := CSVHeader()
	if err := cw.Write(header); err != nil {
		return writeFailed(err)
	}
	keys := group.Keys()
	for _, r := range results {
		if r.Failed() {
			row := make([]string, len(header))
			row[0], row[1] = r.SMILES, r.Name
			row[len(row)-1] = r.Error.Code + ": " + r.Error.Message
			if err := cw.Write(row); err != nil {
				return writeFailed(err)
			}
			continue
		}
		for _, p := range r.Points {
			row := make([]string, 0, len(header))
			row = append(row, r.SMILES, r.Name, formatFloat(p.Temperature, 2))
			for _, k := range keys {
				row = append(row, strconv.Itoa(r.Groups[k]))
			}
			row = append(row,
				formatFloat(p.Log10P, 4),
				formatSci(p.PressurePa),
				formatFloat(p.DHvap, 3),
				formatFloat(r.MolarMass, 3),
				formatSci(p.CStar),
				"")
			if err := cw.Write(row); err != nil {
				return writeFailed(err)
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return writeFailed(err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Text
// ─────────────────────────────────────────────────────────────────────────────

// TextWriter writes an aligned table without the per-group columns; the
// non-zero groups are listed compactly instead.  Failures follow the table.
type TextWriter struct{}

func (TextWriter) ContentType() string { return "text/plain; charset=utf-8" }

func (TextWriter) Write(w io.Writer, results []stypes.CompoundResult) error {
	table := tablewriter.NewWriter(w)
	table.Header("SMILES", "Name", "T (K)", "log10 P (atm)", "P (Pa)", "dHvap (kJ/mol)", "M (g/mol)", "C* (ug/m3)", "Groups")

	var failed []stypes.CompoundResult
	for _, r := range results {
		if r.Failed() {
			failed = append(failed, r)
			continue
		}
		groups := GroupSummary(r.Groups)
		for _, p := range r.Points {
			if err := table.Append([]string{
				r.SMILES,
				r.Name,
				formatFloat(p.Temperature, 2),
				formatFloat(p.Log10P, 4),
				formatSci(p.PressurePa),
				formatFloat(p.DHvap, 3),
				formatFloat(r.MolarMass, 3),
				formatSci(p.CStar),
				groups,
			}); err != nil {
				return writeFailed(err)
			}
		}
	}
	if err := table.Render(); err != nil {
		return writeFailed(err)
	}

	if len(failed) > 0 {
		if _, err := fmt.Fprintf(w, "\n%d compound(s) failed:\n", len(failed)); err != nil {
			return writeFailed(err)
		}
		for _, r := range failed {
			if _, err := fmt.Fprintf(w, "  [%d] %s %s: %s (%s)\n", r.Index, r.SMILES, r.Name, r.Error.Message, r.Error.Code); err != nil {
				return writeFailed(err)
			}
		}
	}
	return nil
}

// GroupSummary lists non-zero counts as "key=n" in catalogue order.
func GroupSummary(counts map[string]int) string {
	out := ""
	for _, k := range group.Keys() {
		n := counts[k]
		if n == 0 {
			continue
		}
		if out != "" {
			out += " "
		}
		out += k + "=" + strconv.Itoa(n)
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// JSON
// ─────────────────────────────────────────────────────────────────────────────

// JSONWriter writes the results as a JSON array.
type JSONWriter struct {
	Indent bool
}

func (JSONWriter) ContentType() string { return "application/json" }

func (j JSONWriter) Write(w io.Writer, results []stypes.CompoundResult) error {
	if results == nil {
		results = []stypes.CompoundResult{}
	}
	enc := json.NewEncoder(w)
	if j.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(results); err != nil {
		return writeFailed(err)
	}
	return nil
}

//Personal.AI order the ending
