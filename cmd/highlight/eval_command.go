package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"recipe-highlighter/internal/core/evaluation"
	"recipe-highlighter/internal/infrastructure/store"
)

func newEvalCommand(ctx *commandContext) *cobra.Command {
	var (
		workers int
		record  bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "eval [dataset-dir]",
		Short: "Score the matcher against labeled datasets",
		Long: "Evaluate every *.json dataset in a directory (default: eval.dataset_dir) and " +
			"report precision, recall and F1 per recipe plus macro and micro averages.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts, err := ctx.matchOptions(cmd)
			if err != nil {
				return err
			}

			dir := cfg.Eval.DatasetDir
			if len(args) == 1 {
				dir = args[0]
			}
			if !cmd.Flags().Changed("workers") {
				workers = cfg.Eval.Workers
			}

			report, err := evaluation.NewEvaluator(opts, workers).EvaluateDir(cmd.Context(), dir)
			if err != nil {
				return err
			}

			var runID string
			if record {
				st, err := store.Open(cfg.Eval.HistoryDB)
				if err != nil {
					return err
				}
				defer st.Close()
				if runID, err = st.RecordRun(cmd.Context(), report, "cli"); err != nil {
					return err
				}
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, struct {
					*evaluation.Report
					RunID string `json:"run_id,omitempty"`
				}{report, runID})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderReport(report))
			if verbose {
				writeMisses(out, report)
			}
			for _, fe := range report.Errors {
				fmt.Fprintf(out, "error: %s: %s\n", fe.File, fe.Error)
			}
			fmt.Fprintf(out, "%d evaluated, %d skipped, %d errors in %s (scorer %s, min confidence %.2f)\n",
				report.Evaluated, report.Skipped, len(report.Errors), report.Duration.Round(time.Millisecond),
				report.Scorer, report.MinConfidence)
			if runID != "" {
				fmt.Fprintf(out, "recorded run %s\n", runID)
			}
			return nil
		},
	}
	addMatchFlags(cmd)
	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "Number of recipes evaluated in parallel")
	cmd.Flags().BoolVar(&record, "record", false, "Save the run to the evaluation history database")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List missed and extra ingredients per step")
	return cmd
}

func renderReport(report *evaluation.Report) string {
	headers := []string{"Recipe", "Steps", "TP", "FP", "FN", "Precision", "Recall", "F1"}
	aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight}

	rows := make([][]string, 0, len(report.Recipes))
	for _, r := range report.Recipes {
		if r.Skipped {
			rows = append(rows, []string{r.ID, "-", "-", "-", "-", "skipped", "", ""})
			continue
		}
		rows = append(rows, []string{
			r.ID,
			strconv.Itoa(len(r.Steps)),
			strconv.Itoa(r.Counts.TP),
			strconv.Itoa(r.Counts.FP),
			strconv.Itoa(r.Counts.FN),
			formatScore(r.Metrics.Precision),
			formatScore(r.Metrics.Recall),
			formatScore(r.Metrics.F1),
		})
	}

	footers := [][]string{
		{"macro", "", "", "", "", formatScore(report.Macro.Precision), formatScore(report.Macro.Recall), formatScore(report.Macro.F1)},
		{
			"micro", "",
			strconv.Itoa(report.Totals.TP),
			strconv.Itoa(report.Totals.FP),
			strconv.Itoa(report.Totals.FN),
			formatScore(report.Micro.Precision),
			formatScore(report.Micro.Recall),
			formatScore(report.Micro.F1),
		},
	}
	return renderTableWithFooter(headers, rows, footers, aligns)
}

func writeMisses(w io.Writer, report *evaluation.Report) {
	for _, r := range report.Recipes {
		for _, step := range r.Steps {
			if len(step.Missed) == 0 && len(step.Extra) == 0 {
				continue
			}
			fmt.Fprintf(w, "%s %s: missed [%s] extra [%s]\n",
				r.ID, step.StepID, strings.Join(step.Missed, ", "), strings.Join(step.Extra, ", "))
		}
	}
}
