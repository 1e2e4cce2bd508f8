package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/simpol/internal/application/estimation"
	"github.com/turtacn/simpol/internal/application/reporting"
	"github.com/turtacn/simpol/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simpol/pkg/errors"
	stypes "github.com/turtacn/simpol/pkg/types/simpol"
)

type batchOptions struct {
	input   string
	out     string
	format  string
	onError string
	temps   []float64
	upload  bool
}

// NewBatchCmd estimates every compound of an input file and writes a report.
func NewBatchCmd() *cobra.Command {
	opts := &batchOptions{}

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Estimate a compound list and write a report",
		Long: "Read one compound per line as \"SMILES [name]\" (blank lines and # comments are\n" +
			"skipped), estimate them in parallel and write a csv, text or json report.\n" +
			"With --upload the report is also stored in the configured MinIO bucket.",
		Example: "  simpol batch --input compounds.txt --out report.csv\n" +
			"  cat compounds.txt | simpol batch --input - --format text --on-error abort",
		Args: cobra.NoArgs,
		RunE: withCLIContext(func(cmd *cobra.Command, args []string, cc *CLIContext) error {
			return runBatch(cmd, opts, cc)
		}),
	}

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "compound list path, - for stdin [REQUIRED]")
	f.StringVar(&opts.out, "out", "", "report path (default: stdout)")
	f.StringVarP(&opts.format, "format", "f", "", "report format: csv, text or json (default: from --out extension, else csv)")
	f.StringVar(&opts.onError, "on-error", "", "failure policy: skip or abort (default: estimation.on_error)")
	f.Float64SliceVarP(&opts.temps, "temperature", "t", nil, "temperature in kelvin (repeatable or comma-separated)")
	f.BoolVar(&opts.upload, "upload", false, "upload the report to MinIO")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runBatch(cmd *cobra.Command, opts *batchOptions, cc *CLIContext) error {
	format, err := reportFormat(opts.format, opts.out)
	if err != nil {
		return err
	}
	policy := stypes.OnErrorPolicy(opts.onError)
	if policy != "" && !policy.IsValid() {
		return errors.InvalidParam(fmt.Sprintf("unknown --on-error %q; expected skip or abort", opts.onError))
	}
	if opts.upload && cc.Runtime.Publisher == nil {
		return errors.New(errors.ErrCodeFeatureDisabled, "report upload requires minio.enabled")
	}

	var compounds []stypes.CompoundInput
	if opts.input == "-" {
		compounds, err = estimation.ReadCompounds(cmd.InOrStdin())
	} else {
		compounds, err = estimation.ReadCompoundsFile(opts.input)
	}
	if err != nil {
		return err
	}
	if len(compounds) == 0 {
		return errors.InvalidParam("no compounds in input").WithDetail(opts.input)
	}

	resp, runErr := cc.Runtime.Service.EstimateBatch(cmd.Context(), &stypes.BatchEstimateRequest{
		Compounds:    compounds,
		Temperatures: opts.temps,
		OnError:      policy,
	})
	if resp == nil {
		return runErr
	}

	if opts.out == "" {
		w, err := reporting.NewWriter(format)
		if err != nil {
			return err
		}
		if err := w.Write(cmd.OutOrStdout(), resp.Results); err != nil {
			return err
		}
	} else if err := reporting.WriteFile(opts.out, format, resp.Results); err != nil {
		return err
	}

	if opts.upload {
		uri, err := cc.Runtime.Publisher.Publish(cmd.Context(), resp.Summary.RunID, format, resp.Results)
		if err != nil {
			return err
		}
		resp.Summary.ReportURI = uri
	}

	printBatchSummary(cmd, resp.Summary, opts.out)
	cc.Logger.Debug("batch finished",
		logging.String(logging.FieldRunID, resp.Summary.RunID),
		logging.Int("total", resp.Summary.Total),
		logging.Int("failed", resp.Summary.Failed))
	return runErr
}

// reportFormat resolves the explicit format, else the report path extension,
// else csv.
func reportFormat(explicit, path string) (stypes.ReportFormat, error) {
	if explicit != "" {
		f := stypes.ReportFormat(strings.ToLower(explicit))
		if !f.IsValid() {
			return "", errors.InvalidParam(fmt.Sprintf("unknown --format %q; expected csv, text or json", explicit))
		}
		return f, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text":
		return stypes.FormatText, nil
	case ".json":
		return stypes.FormatJSON, nil
	default:
		return stypes.FormatCSV, nil
	}
}

// printBatchSummary writes the run summary to stderr so stdout stays a clean
// report.
func printBatchSummary(cmd *cobra.Command, s stypes.BatchSummary, out string) {
	w := cmd.ErrOrStderr()
	failed := fmt.Sprintf("%d failed", s.Failed)
	if s.Failed > 0 {
		failed = color.RedString(failed)
	}
	status := color.GreenString("done")
	if s.Aborted {
		status = color.RedString("aborted")
	}
	fmt.Fprintf(w, "%s run %s: %d compounds, %d succeeded, %s (%d ms)\n",
		status, s.RunID, s.Total, s.Succeeded, failed, s.ElapsedMS)
	if out != "" {
		fmt.Fprintf(w, "  report   %s\n", out)
	}
	if s.ReportURI != "" {
		fmt.Fprintf(w, "  uploaded %s\n", s.ReportURI)
	}
}

//Personal.AI order the ending
