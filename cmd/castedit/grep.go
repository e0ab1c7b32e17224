package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/castedit/internal/export"
)

func (a *app) grepCommand() *cobra.Command {
	var (
		codes  string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "grep FILE PATTERN",
		Short: "Print events whose text matches a glob",
		Long: "Print every event whose payload matches PATTERN. * and ? are wildcards;\n" +
			"a pattern without wildcards matches anywhere in the payload.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			codeList, err := export.ParseCodes(codes)
			if err != nil {
				return err
			}
			filter, err := export.NewFilter(args[1], codeList...)
			if err != nil {
				return err
			}

			f, closeFile, err := a.open(args[0], false)
			if err != nil {
				return err
			}
			defer closeFile()

			n, err := export.Grep(f, filter, export.NewEncoder(cmd.OutOrStdout(), asJSON))
			if err != nil {
				return err
			}
			a.log.WithField("pattern", filter.Pattern()).Debug("%d matches", n)
			if n == 0 {
				return errSilent
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&codes, "code", "", "comma separated event codes to search (default all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print NDJSON records")
	return cmd
}
