package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"recipe-highlighter/internal/core/highlight"
	"recipe-highlighter/internal/infrastructure/config"
	"recipe-highlighter/internal/pkg/common"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.LoadConfigFile(path)
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// matchOptions 以設定為基礎，套用命令列覆寫
func (c *commandContext) matchOptions(cmd *cobra.Command) (highlight.Options, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return highlight.Options{}, err
	}
	opts := highlight.Options{
		MinConfidence:   cfg.Highlight.MinConfidence,
		UseLearnedModel: cfg.Highlight.UseLearnedModel,
		StrictFuzzy:     cfg.Highlight.StrictFuzzy,
	}
	if f := cmd.Flags().Lookup("min-confidence"); f != nil && f.Changed {
		mc, err := cmd.Flags().GetFloat64("min-confidence")
		if err != nil {
			return opts, err
		}
		if mc < 0 || mc > 1 {
			return opts, fmt.Errorf("--min-confidence must be within [0, 1], got %v", mc)
		}
		opts.MinConfidence = mc
	}
	if f := cmd.Flags().Lookup("learned"); f != nil && f.Changed {
		learned, err := cmd.Flags().GetBool("learned")
		if err != nil {
			return opts, err
		}
		opts.UseLearnedModel = learned
	}
	if f := cmd.Flags().Lookup("strict-fuzzy"); f != nil && f.Changed {
		strict, err := cmd.Flags().GetBool("strict-fuzzy")
		if err != nil {
			return opts, err
		}
		opts.StrictFuzzy = strict
	}
	return opts, nil
}

func addMatchFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("min-confidence", highlight.DefaultMinConfidence, "Minimum confidence for a match (0-1)")
	cmd.Flags().Bool("learned", false, "Use the learned scorer instead of the heuristic one")
	cmd.Flags().Bool("strict-fuzzy", false, "Skip edit-distance matching for tokens shorter than 4 characters")
}

// initLogging 日誌寫到 stderr，stdout 只留給命令輸出
func initLogging(cmd *cobra.Command, level string) error {
	if err := common.InitLoggerTo(level, "", cmd.ErrOrStderr()); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	return nil
}
