// Package markdown renders Markdown into Fluent design-system HTML.
//
// Parsing is done by goldmark. Node kinds listed in the rendering table built
// by Components are written as Fluent elements, optionally carrying ARIA
// attributes; the result is then passed through the sanitization pipeline.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Options are the two switches of a render pass.
type Options struct {
	EnableAccessibility bool
	Sanitize            bool
}

// DefaultOptions turns both protections on.
func DefaultOptions() Options {
	return Options{EnableAccessibility: true, Sanitize: true}
}

// Option changes Options.
type Option func(*Options)

// WithAccessibility sets whether ARIA attributes are emitted.
func WithAccessibility(enabled bool) Option {
	return func(o *Options) { o.EnableAccessibility = enabled }
}

// WithSanitize sets whether output passes through the HTML sanitizer.
func WithSanitize(enabled bool) Option {
	return func(o *Options) { o.Sanitize = enabled }
}

// Render converts content to HTML.
func Render(content string, opts ...Option) (string, error) {
	out, err := RenderBytes([]byte(content), opts...)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// RenderBytes is Render for byte slices.
func RenderBytes(source []byte, opts ...Option) ([]byte, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	md := newMarkdown(Components(o.EnableAccessibility))
	pipeline := SanitizePipeline(o.Sanitize)

	var buf bytes.Buffer
	if err := md.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return pipeline.Apply(buf.Bytes()), nil
}

// newMarkdown returns a goldmark instance whose renderer consults table.
// Raw HTML is written through so the sanitize switch alone decides its fate.
func newMarkdown(table Table) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
			html.WithUnsafe(),
			renderer.WithNodeRenderers(
				util.Prioritized(newNodeRenderer(table), 100),
			),
		),
	)
}
