package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/castedit/internal/cast"
	"github.com/dshills/castedit/internal/export"
)

func (a *app) infoCommand() *cobra.Command {
	var (
		asJSON bool
		color  bool
	)
	cmd := &cobra.Command{
		Use:   "info FILE",
		Short: "Show the header and size of a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, closeFile, err := a.open(args[0], false)
			if err != nil {
				return err
			}
			defer closeFile()

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := export.HeaderJSON(f.Header(), export.HeaderOptions{
					Pretty: true,
					Color:  color && isTerminal(out),
				})
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}

			events := 0
			if err := f.Each(func(cast.Positioned) bool {
				events++
				return true
			}); err != nil {
				return err
			}
			writeInfo(out, f.Path(), f.Size(), events, f.Header())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "pretty", false, "print the header as indented JSON")
	cmd.Flags().BoolVar(&color, "color", true, "colorize --pretty output on a terminal")
	return cmd
}

func writeInfo(w io.Writer, path string, size, events int, h cast.Header) {
	row := func(k, v string) {
		fmt.Fprintf(w, "%-12s %s\n", k+":", v)
	}
	row("file", path)
	row("size", humanize.IBytes(uint64(size)))
	row("events", humanize.Comma(int64(events)))
	row("version", fmt.Sprint(h.Version))
	row("terminal", fmt.Sprintf("%dx%d", h.Width, h.Height))
	if h.Title != nil {
		row("title", *h.Title)
	}
	if h.Command != nil {
		row("command", *h.Command)
	}
	if h.Timestamp != nil {
		at := time.Unix(int64(*h.Timestamp), 0)
		row("recorded", at.UTC().Format(time.RFC3339)+" ("+humanize.Time(at)+")")
	}
	if h.Duration != nil {
		row("duration", (time.Duration(*h.Duration * float64(time.Second))).Round(time.Millisecond).String())
	}
	if h.IdleTimeLimit != nil {
		row("idle limit", fmt.Sprintf("%gs", *h.IdleTimeLimit))
	}
	if len(h.Env) > 0 {
		keys := make([]string, 0, len(h.Env))
		for k := range h.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = k + "=" + h.Env[k]
		}
		row("env", strings.Join(pairs, " "))
	}
	if h.Theme != nil {
		row("theme fg", h.Theme.FG.Hex())
		row("theme bg", h.Theme.BG.Hex())
		hexes := make([]string, len(h.Theme.Palette))
		for i, c := range h.Theme.Palette {
			hexes[i] = c.Hex()
		}
		row("palette", strings.Join(hexes, " "))
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
