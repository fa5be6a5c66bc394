package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"recipe-highlighter/internal/core/highlight"
	"recipe-highlighter/internal/core/recipe"
	"recipe-highlighter/internal/pkg/common"
)

func newMapCommand(ctx *commandContext) *cobra.Command {
	var explain bool

	cmd := &cobra.Command{
		Use:   "map <dataset.json>",
		Short: "Highlight the ingredients each step of a recipe uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := ctx.matchOptions(cmd)
			if err != nil {
				return err
			}
			ds, err := common.ReadDatasetFile(args[0])
			if err != nil {
				return err
			}

			svc := recipe.NewHighlightService(recipe.NewService(opts, nil))
			resp, err := svc.Highlight(cmd.Context(), &recipe.HighlightRequest{
				Ingredients:  ds.Ingredients,
				Instructions: ds.Instructions,
				Explain:      explain,
			})
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (scorer %s, min confidence %.2f)\n",
				datasetLabel(ds), resp.Scorer, opts.MinConfidence)
			fmt.Fprintln(cmd.OutOrStdout(), renderMapping(resp))
			return nil
		},
	}
	addMatchFlags(cmd)
	cmd.Flags().BoolVar(&explain, "explain", false, "Include per-candidate features in JSON output")
	return cmd
}

func datasetLabel(ds *common.Dataset) string {
	if title := ds.TitleText(); title != "" {
		return fmt.Sprintf("%s: %s", ds.ID, title)
	}
	return ds.ID
}

// renderMapping 每個步驟一行，食材 ID 換回原文
func renderMapping(resp *recipe.HighlightResponse) string {
	items := ingredientLookup(resp.Ingredients)

	var rows [][]string
	step := 0
	for _, group := range resp.Instructions {
		for _, text := range group.Steps {
			id := fmt.Sprintf("step-%d", step)
			names := make([]string, 0, len(resp.Mapping[id]))
			for _, ingID := range resp.Mapping[id] {
				names = append(names, items[ingID])
			}
			rows = append(rows, []string{id, group.Section, text, strings.Join(names, "; ")})
			step++
		}
	}
	return renderTable([]string{"Step", "Section", "Text", "Ingredients"}, rows, nil)
}

func ingredientLookup(groups []common.IngredientGroup) map[string]string {
	items := make(map[string]string, common.CountIngredients(groups))
	for gi, group := range groups {
		for ii, item := range group.Items {
			items[fmt.Sprintf("%d-%d", gi, ii)] = item
		}
	}
	return items
}

func newNormalizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <dataset.json>",
		Short: "Print the cleaned ingredient and instruction groups of a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := common.ReadDatasetFile(args[0])
			if err != nil {
				return err
			}
			out := common.Dataset{
				ID:           ds.ID,
				Title:        ds.Title,
				Ingredients:  highlight.NormalizeIngredientGroups(ds.Ingredients),
				Instructions: highlight.NormalizeInstructionGroups(ds.Instructions),
			}
			if out.Ingredients == nil {
				out.Ingredients = []common.IngredientGroup{}
			}
			if out.Instructions == nil {
				out.Instructions = []common.InstructionGroup{}
			}
			// 清理後 ID 會改變，舊標註不再適用
			return writeJSON(cmd, out)
		},
	}
}
