package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/castedit/internal/export"
)

func (a *app) catCommand() *cobra.Command {
	var (
		pos    float64
		lines  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "cat FILE",
		Short: "Print a window of events",
		Long: "Print the events of up to --lines original lines, starting at the line\n" +
			"nearest to --pos, a fraction of the file size between 0 and 1.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, closeFile, err := a.open(args[0], false)
			if err != nil {
				return err
			}
			defer closeFile()

			if !cmd.Flags().Changed("lines") {
				lines = a.cfg.Editor.WindowLines
			}
			events, err := f.GetLines(pos, lines)
			if err != nil {
				return err
			}
			enc := export.NewEncoder(cmd.OutOrStdout(), asJSON)
			for _, p := range events {
				if err := enc.Encode(p); err != nil {
					return err
				}
			}
			return enc.Flush()
		},
	}
	cmd.Flags().Float64Var(&pos, "pos", 0, "start position as a fraction of the file size")
	cmd.Flags().IntVarP(&lines, "lines", "n", 0, "number of original lines (default editor.windowLines)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print NDJSON records")
	return cmd
}
