package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"recipe-highlighter/internal/core/cache"
	"recipe-highlighter/internal/core/convert"
	"recipe-highlighter/internal/core/recipe"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var useProvider bool

	cmd := &cobra.Command{
		Use:   "convert <ingredient line>...",
		Short: "Append metric equivalents to US-unit ingredient lines",
		Example: `  highlight convert "1 cup milk" "2 tbsp butter"
  highlight convert --provider "1 stick butter"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var (
				provider convert.Provider
				c        cache.Cache
			)
			if useProvider {
				if !cfg.OpenRouter.Enabled {
					return fmt.Errorf("--provider requires openrouter.enabled and OPENROUTER_API_KEY")
				}
				provider = convert.NewOpenRouterProvider(cfg.OpenRouter)
				if c, err = cache.New(cmd.Context(), cfg.Cache); err != nil {
					return err
				}
				if c != nil {
					defer c.Close()
				}
			}

			svc := recipe.NewConvertService(convert.NewConverter(provider, c))
			resp, err := svc.Convert(cmd.Context(), &recipe.ConvertRequest{Lines: args})
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, resp)
			}
			for _, res := range resp.Results {
				fmt.Fprintln(cmd.OutOrStdout(), formatConversion(res))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&useProvider, "provider", false, "Ask the configured AI provider about lines the rule table cannot convert")
	return cmd
}

func formatConversion(res convert.Result) string {
	if res.Source == convert.SourceNone {
		return res.Converted
	}
	return fmt.Sprintf("%s\t[%s]", res.Converted, res.Source)
}
