package main

import (
	"fmt"
	"strings"

	"github.com/beacon-audit/beacon/internal/audit"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

func newAuditsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "audits",
		Short: "List the built-in audits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			auditors := audit.Defaults()

			nameWidth := len("NAME")
			groupWidth := len("GROUP")
			for _, a := range auditors {
				meta := a.Meta()
				nameWidth = max(nameWidth, runewidth.StringWidth(meta.Name))
				groupWidth = max(groupWidth, runewidth.StringWidth(groupLabel(meta.Group.String())))
			}

			fmt.Fprintf(out, "%s  %s  %s\n", padRight("NAME", nameWidth), padRight("GROUP", groupWidth), "DESCRIPTION") //nolint:errcheck
			for _, a := range auditors {
				meta := a.Meta()
				line := fmt.Sprintf("%s  %s  %s", padRight(meta.Name, nameWidth), padRight(groupLabel(meta.Group.String()), groupWidth), meta.Description)
				fmt.Fprintln(out, strings.TrimRight(line, " ")) //nolint:errcheck
			}
			return nil
		},
	}
}

func groupLabel(group string) string {
	if group == "" {
		return "-"
	}
	return group
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
