package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"recipe-highlighter/internal/infrastructure/store"
)

const historyTimeLayout = "2006-01-02 15:04:05"

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit    int
		recipeID string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded evaluation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := store.Open(cfg.Eval.HistoryDB)
			if err != nil {
				return err
			}
			defer st.Close()

			if recipeID != "" {
				scores, err := st.RecipeHistory(cmd.Context(), recipeID, limit)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, scores)
				}
				if len(scores) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No recorded runs for recipe %s\n", recipeID)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderRecipeHistory(scores))
				return nil
			}

			runs, err := st.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRuns(runs))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	cmd.Flags().StringVar(&recipeID, "recipe", "", "Show the score history of a single recipe id")
	return cmd
}

func renderRuns(runs []store.Run) string {
	headers := []string{"Run", "Created", "Source", "Scorer", "Min conf", "Evaluated", "Skipped", "Errors", "Macro F1", "Micro F1"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			run.CreatedAt.Local().Format(historyTimeLayout),
			run.Source,
			run.Scorer,
			strconv.FormatFloat(run.MinConfidence, 'f', 2, 64),
			strconv.Itoa(run.Evaluated),
			strconv.Itoa(run.Skipped),
			strconv.Itoa(run.FileErrors),
			formatScore(run.MacroF1),
			formatScore(run.MicroF1),
		})
	}
	return renderTable(headers, rows, aligns)
}

func renderRecipeHistory(scores []store.RecipeScore) string {
	headers := []string{"Run", "Created", "Precision", "Recall", "F1"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight}

	rows := make([][]string, 0, len(scores))
	for _, s := range scores {
		if s.Skipped {
			rows = append(rows, []string{shortID(s.RunID), s.CreatedAt.Local().Format(historyTimeLayout), "skipped", "", ""})
			continue
		}
		rows = append(rows, []string{
			shortID(s.RunID),
			s.CreatedAt.Local().Format(historyTimeLayout),
			formatScore(s.Metrics.Precision),
			formatScore(s.Metrics.Recall),
			formatScore(s.Metrics.F1),
		})
	}
	return renderTable(headers, rows, aligns)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
