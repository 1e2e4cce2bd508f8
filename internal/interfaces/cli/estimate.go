package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/simpol/internal/application/reporting"
	stypes "github.com/turtacn/simpol/pkg/types/simpol"
)

// NewEstimateCmd estimates one or more compounds given on the command line.
// The first failing SMILES stops the command with its error.
func NewEstimateCmd() *cobra.Command {
	var temps []float64

	cmd := &cobra.Command{
		Use:   "estimate SMILES...",
		Short: "Estimate vapor pressure and enthalpy of vaporization",
		Long: "Estimate log10 P (atm), P (Pa), dHvap (kJ/mol) and C* (ug/m3) for each SMILES\n" +
			"at the given temperatures (default: estimation.temperatures).",
		Example: "  simpol estimate CCO\n  simpol estimate -t 273.15 -t 298.15 'OC(=O)CCC(=O)O'",
		Args:    cobra.MinimumNArgs(1),
		RunE: withCLIContext(func(cmd *cobra.Command, args []string, cc *CLIContext) error {
			results := make(compoundResults, 0, len(args))
			for i, smiles := range args {
				res, err := cc.Runtime.Service.Estimate(cmd.Context(), &stypes.EstimateRequest{
					SMILES:       smiles,
					Temperatures: temps,
				})
				if err != nil {
					return err
				}
				res.Index = i
				results = append(results, *res)
			}
			return PrintResult(cmd, cc.OutputFormat, results)
		}),
	}

	cmd.Flags().Float64SliceVarP(&temps, "temperature", "t", nil, "temperature in kelvin (repeatable or comma-separated)")
	return cmd
}

// compoundResults renders estimates for the terminal.
type compoundResults []stypes.CompoundResult

func (r compoundResults) RenderTable(cmd *cobra.Command) error {
	return reporting.TextWriter{}.Write(cmd.OutOrStdout(), r)
}

func (r compoundResults) RenderText(cmd *cobra.Command) error {
	w := cmd.OutOrStdout()
	bold := color.New(color.Bold)
	for i, res := range r {
		if i > 0 {
			fmt.Fprintln(w)
		}
		title := res.SMILES
		if res.Name != "" {
			title += "  (" + res.Name + ")"
		}
		bold.Fprintln(w, title)
		if res.Failed() {
			fmt.Fprintf(w, "  %s %s [%s]\n", color.RedString("failed:"), res.Error.Message, res.Error.Code)
			continue
		}
		fmt.Fprintf(w, "  formula %s   molar mass %.3f g/mol\n", res.Formula, res.MolarMass)
		fmt.Fprintf(w, "  groups  %s\n", reporting.GroupSummary(res.Groups))
		for _, p := range res.Points {
			writePoint(w, p)
		}
	}
	return nil
}

func writePoint(w io.Writer, p stypes.PropertyPoint) {
	fmt.Fprintf(w, "  T = %.2f K   log10 P = %.4f atm   P = %.4e Pa   dHvap = %.2f kJ/mol",
		p.Temperature, p.Log10P, p.PressurePa, p.DHvap)
	if p.CStar > 0 {
		fmt.Fprintf(w, "   C* = %.3e ug/m3 %s", p.CStar, colorClass(VolatilityClass(p.CStar)))
	}
	fmt.Fprintln(w)
}

// VolatilityClass bins a saturation concentration (ug/m3) into the
// volatility basis set classes.
func VolatilityClass(cstar float64) string {
	switch {
	case cstar <= 0:
		return ""
	case cstar < 3e-5:
		return "ELVOC"
	case cstar < 0.3:
		return "LVOC"
	case cstar < 300:
		return "SVOC"
	case cstar < 3e6:
		return "IVOC"
	default:
		return "VOC"
	}
}

func colorClass(class string) string {
	switch class {
	case "VOC", "IVOC":
		return color.CyanString("[%s]", class)
	case "SVOC":
		return color.YellowString("[%s]", class)
	default:
		return color.MagentaString("[%s]", class)
	}
}

//Personal.AI order the ending
