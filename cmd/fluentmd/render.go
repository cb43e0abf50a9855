package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"

	"github.com/acgh213/fluentmd/internal/fluent"
	"github.com/acgh213/fluentmd/internal/markdown"
)

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	File          string `arg:"" optional:"" help:"Markdown file to render; stdin when omitted or '-'"`
	Output        string `short:"o" help:"Write HTML to this file instead of stdout"`
	Accessibility bool   `default:"true" negatable:"" help:"Emit ARIA attributes"`
	Sanitize      bool   `default:"true" negatable:"" help:"Pass output through the HTML sanitizer"`
	Standalone    bool   `help:"Wrap the fragment in a complete HTML page with the Fluent stylesheet"`
	Title         string `help:"Page title used with --standalone" default:"Document"`
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>{{.Stylesheet}}</style>
</head>
<body>
{{.Body}}</body>
</html>
`))

func (c *RenderCmd) Run(stdio *IO) error {
	source, err := readSource(c.File, stdio.In)
	if err != nil {
		return err
	}

	out, err := markdown.RenderBytes(source,
		markdown.WithAccessibility(c.Accessibility),
		markdown.WithSanitize(c.Sanitize),
	)
	if err != nil {
		return err
	}

	if c.Standalone {
		var page bytes.Buffer
		if err := pageTmpl.Execute(&page, struct {
			Title      string
			Stylesheet template.CSS
			Body       template.HTML
		}{c.Title, template.CSS(fluent.Stylesheet), template.HTML(out)}); err != nil {
			return fmt.Errorf("render page: %w", err)
		}
		out = page.Bytes()
	}

	slog.Debug("rendered markdown",
		"file", c.File,
		"bytes", len(source),
		"accessibility", c.Accessibility,
		"sanitize", c.Sanitize,
	)

	if c.Output == "" {
		_, err = stdio.Out.Write(out)
		return err
	}
	if err := os.WriteFile(c.Output, out, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func readSource(file string, stdin io.Reader) ([]byte, error) {
	if file == "" || file == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return b, nil
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}
	return b, nil
}
