package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

// IO carries the streams commands read from and write to.
type IO struct {
	In  io.Reader
	Out io.Writer
}

type CLI struct {
	Verbose bool `short:"v" help:"Enable debug logging"`

	Render RenderCmd `cmd:"" help:"Render a Markdown file to Fluent HTML"`
	Check  CheckCmd  `cmd:"" help:"Show what the sanitizer removes from a rendered file"`
	Serve  ServeCmd  `cmd:"" help:"Run the preview and render HTTP service"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func newParser(cli *CLI, stdio *IO, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("fluentmd"),
		kong.Description("Render Markdown into Fluent design-system HTML."),
		kong.UsageOnError(),
		kong.Bind(stdio, cli),
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli, &IO{In: os.Stdin, Out: os.Stdout})
	if err != nil {
		slog.Error("failed to build command line parser", "error", err)
		os.Exit(1)
	}

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := ctx.Run(); err != nil {
		slog.Error("command failed", "command", ctx.Command(), "error", err)
		os.Exit(1)
	}
}
