package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mediapoint/roster/internal/service/processing"
	"github.com/mediapoint/roster/internal/workbook"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check INPUT.xlsx",
		Short: "Validate a roster without classifying it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			tbl, err := workbook.Read(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			n, err := processing.NewPipeline(cfg.Roster).Check(tbl)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d records\n", n)
			return nil
		},
	}
}
