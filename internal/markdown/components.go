package markdown

import (
	"strconv"

	"github.com/acgh213/fluentmd/internal/fluent"
)

// Node is what a rule sees of a Markdown node.
type Node struct {
	Children Content

	Href  string
	Src   string
	Alt   string
	Title string
	Class string

	// Inline is set for code spans and unset for code blocks.
	Inline bool
}

// Rule maps a node to the element that presents it.
type Rule func(Node) Element

// Table maps node kind names to rules. Kinds missing from the table keep
// goldmark's default HTML rendering.
type Table map[string]Rule

// Node kind names used as table keys.
const (
	KindH1         = "h1"
	KindH2         = "h2"
	KindH3         = "h3"
	KindParagraph  = "p"
	KindStrong     = "strong"
	KindLink       = "a"
	KindCode       = "code"
	KindBlockquote = "blockquote"
	KindRule       = "hr"
	KindImage      = "img"
	KindBulletList = "ul"
	KindOrderList  = "ol"
	KindListItem   = "li"
)

// Components builds the rendering table. With accessibility disabled the
// ARIA attributes are left off altogether.
func Components(enableAccessibility bool) Table {
	heading := func(c fluent.Component, level int) Rule {
		return func(Node) Element {
			el := component(c)
			if enableAccessibility {
				el = el.With("role", "heading").With("aria-level", strconv.Itoa(level))
			}
			return el
		}
	}

	labelled := func(el Element, label string) Element {
		if enableAccessibility && label != "" {
			return el.With("aria-label", label)
		}
		return el
	}

	return Table{
		KindH1: heading(fluent.Title1, 1),
		KindH2: heading(fluent.Title2, 2),
		KindH3: heading(fluent.Subtitle1, 3),

		KindParagraph: func(Node) Element {
			el := component(fluent.Body1)
			el.Tag = "p"
			return el
		},

		KindStrong: func(Node) Element {
			return component(fluent.Body1Strong)
		},

		KindLink: func(n Node) Element {
			el := component(fluent.Link).
				With("href", n.Href).
				With("target", "_blank").
				With("rel", "noopener noreferrer")
			if n.Title != "" {
				el = el.With("title", n.Title)
			}
			return labelled(el, LabelText(n.Children))
		},

		KindCode: func(n Node) Element {
			if n.Inline {
				return labelled(plain("code"), "Inline code")
			}
			el := plain("pre")
			el.Class = n.Class
			return labelled(el, "Code block")
		},

		KindBlockquote: func(Node) Element {
			return labelled(plain("blockquote"), "Quotation").Wrap(component(fluent.Body1))
		},

		KindRule: func(Node) Element {
			return component(fluent.Divider).
				With("role", "separator").
				With("aria-hidden", "true")
		},

		KindImage: func(n Node) Element {
			el := component(fluent.Image).
				With("src", n.Src).
				With("alt", n.Alt)
			if n.Title != "" {
				el = el.With("title", n.Title)
			}
			el.Void = true
			label := n.Alt
			if label == "" {
				label = "Image"
			}
			return labelled(el, label)
		},

		KindBulletList: func(Node) Element { return plain("ul") },
		KindOrderList:  func(Node) Element { return plain("ol") },

		KindListItem: func(Node) Element {
			return plain("li").Wrap(component(fluent.Body1))
		},
	}
}
