package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/commune-qc/internal/engine"
	"github.com/sells-group/commune-qc/internal/loader"
	"github.com/sells-group/commune-qc/internal/model"
	"github.com/sells-group/commune-qc/internal/report"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one commune's survey and tracking extracts",
	Long: `Reads the site survey extract (source A) and the tracking extract
(source B), runs the five defect detectors, and prints the conformity verdict.

A missing or structurally broken extract does not abort the analysis: it
produces a KO verdict with the structural problem listed as a reason.

Examples:
  # Analyze a commune from two XLSX extracts
  analyze --commune Sainte-Anne --survey releve.xlsx --tracking suivi.xlsx

  # Emit the full result as JSON
  analyze --survey releve.xlsx --tracking suivi.xlsx --format json

  # Write an XLSX report and persist the run
  analyze --survey releve.xlsx --tracking suivi.xlsx --output report.xlsx --save`,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.String("commune", "", "commune name for reporting and run history")
	f.String("survey", "", "path to the site survey extract (xlsx or csv)")
	f.String("tracking", "", "path to the tracking extract (xlsx or csv)")
	f.String("format", "table", "output format: table or json")
	f.String("output", "", "write a report file (.xlsx, .csv or .json)")
	f.Bool("save", false, "persist the run to the store")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	commune, _ := cmd.Flags().GetString("commune")
	surveyPath, _ := cmd.Flags().GetString("survey")
	trackingPath, _ := cmd.Flags().GetString("tracking")
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	save, _ := cmd.Flags().GetBool("save")

	if format != "table" && format != "json" {
		return eris.Errorf("analyze: --format must be table or json (got %q)", format)
	}
	if err := cfg.Scorer.Validate(); err != nil {
		return err
	}

	tax, err := loadTaxonomy()
	if err != nil {
		return err
	}
	if err := tax.Validate(); err != nil {
		return err
	}

	log := zap.L().With(zap.String("command", "analyze"))

	in := engine.Input{Commune: commune}

	// Loader failures are structural defects of the extract, not failures of
	// the analysis: they flow into the verdict as critical findings.
	in.Survey, err = loader.LoadSurvey(surveyPath, cfg.Survey)
	if err != nil {
		log.Warn("survey extract unreadable", zap.Error(err))
		in.SurveyIssue = err.Error()
	}
	in.Tracking, err = loader.LoadTracking(trackingPath, cfg.Tracking)
	if err != nil {
		log.Warn("tracking extract unreadable", zap.Error(err))
		in.TrackingIssue = err.Error()
	}

	result := engine.New(tax, cfg.Scorer).Analyze(ctx, in)

	switch format {
	case "json":
		if err := report.WriteJSON(os.Stdout, result); err != nil {
			return err
		}
	case "table":
		printResult(result)
	}

	if outputPath != "" {
		if err := writeReportFile(outputPath, result); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", outputPath)
	}

	if save {
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.SaveRun(ctx, result)
		if err != nil {
			return eris.Wrap(err, "analyze: save run")
		}
		fmt.Printf("Run saved: %s\n", run.ID)
	}

	return nil
}

func writeReportFile(path string, result *model.AnalysisResult) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return report.WriteWorkbook(path, result)
	case ".csv":
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "analyze: create %s", path)
		}
		defer f.Close() //nolint:errcheck
		return report.WriteFindingsCSV(f, result)
	case ".json":
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "analyze: create %s", path)
		}
		defer f.Close() //nolint:errcheck
		return report.WriteJSON(f, result)
	default:
		return eris.Errorf("analyze: unsupported report extension %q", filepath.Ext(path))
	}
}

func printResult(r *model.AnalysisResult) {
	if r.Commune != "" {
		fmt.Printf("Commune:    %s\n", r.Commune)
	}
	fmt.Printf("Status:     %s\n", r.Status)
	if r.Conformity != nil {
		fmt.Printf("Conformity: %.2f / 100\n", *r.Conformity)
	} else {
		fmt.Printf("Conformity: n/a\n")
	}
	fmt.Printf("Rows:       %d survey, %d tracking\n", r.SurveyRows, r.TrackingRows)

	fmt.Printf("\nChecks:\n")
	fmt.Printf("  Motif gaps:         %d\n", r.MotifGapCount)
	fmt.Printf("  UPR ticket:         %s\n", r.Tickets.UPRStatus)
	fmt.Printf("  501/511 ticket:     %s\n", r.Tickets.TicketStatus)
	fmt.Printf("  Duplicate findings: %d\n", r.Duplicates.TotalFindingCount)
	fmt.Printf("  Pending review:     %d\n", r.PendingReview)
	fmt.Printf("  Invalid categories: %d\n", r.InvalidCount)

	if len(r.Reasons) > 0 {
		fmt.Printf("\nReasons:\n")
		for _, reason := range r.Reasons {
			fmt.Printf("  - %s\n", reason)
		}
	}
}
