package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/castedit/internal/script"
)

func (a *app) scriptCommand() *cobra.Command {
	var (
		out    string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "script FILE SCRIPT.lua",
		Short: "Run a Lua edit script against a recording",
		Long: "Run SCRIPT.lua with a global cast module bound to FILE. When the script\n" +
			"leaves pending edits they are saved to --output, or over FILE.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, closeFile, err := a.open(args[0], false)
			if err != nil {
				return err
			}
			defer closeFile()

			err = script.Run(cmd.Context(), f, args[1],
				script.WithTimeout(a.cfg.Script.Timeout.Std()),
				script.WithInstructionLimit(a.cfg.Script.InstructionLimit),
				script.WithOutput(cmd.OutOrStdout()),
				script.WithLogger(a.log),
			)
			if err != nil {
				return err
			}

			stats := f.Stats()
			log := a.log.WithFields(map[string]any{
				"chains":     stats.Chains,
				"insertions": stats.Insertions,
				"deletions":  stats.Deletions,
			})
			if !f.Modified() {
				log.Info("script made no changes")
				return nil
			}
			if dryRun {
				log.Info("dry run, not saving")
				return nil
			}
			dest := out
			if dest == "" {
				dest = f.Path()
			}
			if err := f.SaveToFile(dest); err != nil {
				return err
			}
			log.WithField("path", dest).Info("saved")
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the result here instead of over FILE")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "run the script without saving")
	return cmd
}
