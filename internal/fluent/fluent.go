// Package fluent describes the Fluent design-system components that rendered
// Markdown is mapped onto.
//
// Components are identified in the emitted HTML by a "fui-<Name>" class, the
// same class names the Fluent UI React library puts on its root elements.
package fluent

import (
	_ "embed"
)

// Component is a Fluent component as it appears in static HTML.
type Component struct {
	Name string
	Tag  string // default root element
}

// Class returns the class name identifying the component.
func (c Component) Class() string {
	return "fui-" + c.Name
}

var (
	Title1      = Component{Name: "Title1", Tag: "h1"}
	Title2      = Component{Name: "Title2", Tag: "h2"}
	Subtitle1   = Component{Name: "Subtitle1", Tag: "h3"}
	Body1       = Component{Name: "Body1", Tag: "span"}
	Body1Strong = Component{Name: "Body1Strong", Tag: "span"}
	Link        = Component{Name: "Link", Tag: "a"}
	Divider     = Component{Name: "Divider", Tag: "div"}
	Image       = Component{Name: "Image", Tag: "img"}
)

// Catalog lists every component the renderer can emit.
var Catalog = []Component{
	Title1, Title2, Subtitle1, Body1, Body1Strong, Link, Divider, Image,
}

// Stylesheet gives the component classes Fluent-like typography so rendered
// fragments look right outside a Fluent UI application.
//
//go:embed fluent.css
var Stylesheet string
