package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/mtr03-counter/cmd/api"
	"github.com/FACorreiaa/mtr03-counter/internal/domain/production"
	"github.com/FACorreiaa/mtr03-counter/internal/domain/production/export"
	"github.com/FACorreiaa/mtr03-counter/internal/domain/production/service"
	"github.com/FACorreiaa/mtr03-counter/pkg/quantity"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Sum egg counts of a report over date intervals",
	Long: `Read an MTR03 report PDF and sum total and good egg counts.

With --end the single interval [start, end] is used. Otherwise --count
intervals of --days days each are generated from --start.

Example:
  mtr03 analyze --pdf relatorio.pdf --year 2025 --start 01/01/2025 --end 31/01/2025
  mtr03 analyze --pdf relatorio.pdf --year 2025 --start 01/01/2025 --count 4 --days 7 --out resultados_mtr03.csv`,
	RunE: runAnalyze,
}

var (
	analyzePDF   string
	analyzeYear  int
	analyzeStart string
	analyzeEnd   string
	analyzeCount int
	analyzeDays  int
	analyzeOut   string
	analyzeQuiet bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzePDF, "pdf", "", "report PDF to read")
	analyzeCmd.Flags().IntVar(&analyzeYear, "year", time.Now().Year(), "year appended to dd/mm dates")
	analyzeCmd.Flags().StringVar(&analyzeStart, "start", "", "first day, dd/mm/yyyy")
	analyzeCmd.Flags().StringVar(&analyzeEnd, "end", "", "last day, dd/mm/yyyy (single interval)")
	analyzeCmd.Flags().IntVar(&analyzeCount, "count", 1, "number of generated intervals")
	analyzeCmd.Flags().IntVar(&analyzeDays, "days", 7, "days per generated interval")
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "", "write results to a .xlsx or .csv file")
	analyzeCmd.Flags().BoolVarP(&analyzeQuiet, "quiet", "q", false, "hide progress messages")

	_ = analyzeCmd.MarkFlagRequired("pdf")
	_ = analyzeCmd.MarkFlagRequired("start")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	in, err := analyzeInput(cmd)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(analyzePDF)
	if err != nil {
		return fmt.Errorf("read pdf: %w", err)
	}

	deps := api.InitAnalysis(cliLogger())

	stderr := cmd.ErrOrStderr()
	cb := service.Callbacks{}
	if !analyzeQuiet {
		cb.Status = func(msg string) { fmt.Fprintln(stderr, msg) }
	}

	report, err := deps.AnalysisService.Analyze(cmd.Context(), data, in, cb)
	if errors.Is(err, service.ErrNoData) {
		fmt.Fprintln(stderr, service.NoDataMessage)
		return err
	}
	if err != nil {
		return err
	}

	printReport(cmd.OutOrStdout(), report)

	if analyzeOut != "" {
		if err := writeExport(analyzeOut, report.Results); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Resultados salvos em %s\n", analyzeOut)
	}
	return nil
}

// analyzeInput maps the flags to an AnalyzeInput. --end selects manual mode.
func analyzeInput(cmd *cobra.Command) (service.AnalyzeInput, error) {
	start, err := production.ParseDate(analyzeStart)
	if err != nil {
		return service.AnalyzeInput{}, fmt.Errorf("--start: %w", err)
	}

	in := service.AnalyzeInput{Year: analyzeYear, Start: start}
	if cmd.Flags().Changed("end") {
		end, err := production.ParseDate(analyzeEnd)
		if err != nil {
			return in, fmt.Errorf("--end: %w", err)
		}
		in.Mode = service.ModeManual
		in.End = end
		return in, nil
	}

	in.Mode = service.ModeAutomatic
	in.Count = analyzeCount
	in.Days = analyzeDays
	return in, nil
}

func printReport(w io.Writer, report *service.Report) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", export.Header[0], export.Header[1], export.Header[2], export.Header[3])
	for _, r := range report.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
			production.FormatDate(r.Start),
			production.FormatDate(r.End),
			quantity.Format(r.Total),
			quantity.Format(r.Good),
		)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nIntervalos calculados: %d\n", len(report.Results))
	fmt.Fprintf(w, "Total (soma): %s\n", quantity.Format(report.Total))
	fmt.Fprintf(w, "Bons (soma): %s\n", quantity.Format(report.Good))
}

func writeExport(path string, results []production.Result) error {
	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, results); err != nil {
			return err
		}
		data = buf.Bytes()
	case ".xlsx", "":
		xlsx, err := export.WriteExcel(results)
		if err != nil {
			return err
		}
		data = xlsx
	default:
		return fmt.Errorf("unsupported export format %q (use .xlsx or .csv)", filepath.Ext(path))
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
