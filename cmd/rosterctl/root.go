package main

import (
	"github.com/spf13/cobra"

	"github.com/mediapoint/roster/internal/config"
	"github.com/mediapoint/roster/internal/pkg/logger"
)

type commandContext struct {
	configPath *string
	cfg        *config.Config
}

// ensureConfig loads the config file once. Without -c the defaults apply.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	var err error
	if *c.configPath == "" {
		c.cfg = config.Default()
	} else if c.cfg, err = config.Load(*c.configPath); err != nil {
		return nil, err
	}
	if lvl, ok := logger.ParseLevel(c.cfg.Logging.Level); ok {
		logger.SetLevel(lvl)
	}
	logger.SetRedactPII(c.cfg.Logging.Redact())
	return c.cfg, nil
}

func newRootCommand() *cobra.Command {
	var configFlag string
	ctx := &commandContext{configPath: &configFlag}

	rootCmd := &cobra.Command{
		Use:           "rosterctl",
		Short:         "Classify subscriber roster workbooks",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newProcessCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))

	return rootCmd
}
