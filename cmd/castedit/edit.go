package main

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/castedit/internal/config"
	"github.com/dshills/castedit/internal/tui"
)

// errNotTerminal is returned by edit when stdout is not a terminal.
var errNotTerminal = errors.New("stdout is not a terminal")

func (a *app) editCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "edit FILE",
		Short: "Browse and edit a recording interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errNotTerminal
			}
			// The terminal belongs to the editor; keep logs off it.
			if a.logFile == nil {
				a.log.SetOutput(io.Discard)
			}

			f, closeFile, err := a.open(args[0], true)
			if err != nil {
				return err
			}
			defer closeFile()

			backend, err := tui.NewTerminal()
			if err != nil {
				return err
			}
			ui := a.cfg.UI
			editor := tui.New(f, backend, tui.Options{
				WindowLines: a.cfg.Editor.WindowLines,
				ScrollStep:  a.cfg.Editor.ScrollStep,
				OutPath:     out,
				Colors: tui.Colors{
					Output: config.Color(ui.OutputColor),
					Input:  config.Color(ui.InputColor),
					Resize: config.Color(ui.ResizeColor),
					Marker: config.Color(ui.MarkerColor),
				},
				Logger: a.log,
			})
			return editor.Run()
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "save here instead of over FILE")
	return cmd
}
