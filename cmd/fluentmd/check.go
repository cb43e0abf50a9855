package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/acgh213/fluentmd/internal/markdown"
)

var errSanitized = errors.New("sanitizer changed the output")

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	File          string `arg:"" optional:"" help:"Markdown file to check; stdin when omitted or '-'"`
	Accessibility bool   `default:"true" negatable:"" help:"Emit ARIA attributes"`
	Context       bool   `help:"Print unchanged lines too"`
	Strict        bool   `help:"Fail when the sanitizer changes anything"`
}

func (c *CheckCmd) Run(stdio *IO) error {
	source, err := readSource(c.File, stdio.In)
	if err != nil {
		return err
	}

	report, err := markdown.Report(string(source), markdown.WithAccessibility(c.Accessibility))
	if err != nil {
		return err
	}

	for _, l := range report.Lines {
		switch l.Change {
		case markdown.Removed:
			fmt.Fprintf(stdio.Out, "-%4d      %s\n", l.RawLine, l.Content)
		case markdown.Added:
			fmt.Fprintf(stdio.Out, "+     %4d %s\n", l.OutLine, l.Content)
		default:
			if c.Context {
				fmt.Fprintf(stdio.Out, " %4d %4d %s\n", l.RawLine, l.OutLine, l.Content)
			}
		}
	}
	fmt.Fprintf(stdio.Out, "%d removed, %d added\n", report.Removed, report.Added)

	slog.Debug("checked markdown", "file", c.File, "removed", report.Removed, "added", report.Added)

	if c.Strict && report.Changed() {
		return errSanitized
	}
	return nil
}
