package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mediapoint/roster/internal/roster"
	"github.com/mediapoint/roster/internal/service/processing"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "process INPUT.xlsx",
		Short: "Classify a roster and write the output workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			input := args[0]
			if output == "" {
				output = defaultOutput(input)
			}

			f, err := os.Open(input)
			if err != nil {
				return err
			}
			defer f.Close()

			var buf bytes.Buffer
			res, err := processing.Transform(processing.NewPipeline(cfg.Roster), f, &buf)
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d records -> %s\n", res.Summary.Records, output)
			fmt.Fprintln(out, summaryTable(res.Summary))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output workbook (default Modified_<input>)")
	return cmd
}

func defaultOutput(input string) string {
	return filepath.Join(filepath.Dir(input), "Modified_"+filepath.Base(input))
}

func summaryTable(s roster.Summary) string {
	rows := make([][]string, 0, len(s.Views))
	for _, v := range s.Views {
		rows = append(rows, []string{v.Name, strconv.Itoa(v.Rows)})
	}
	return renderTable([]string{"Sheet", "Rows"}, rows, []columnAlignment{alignLeft, alignRight})
}
