package markdown

import (
	"github.com/yuin/goldmark/util"

	"github.com/acgh213/fluentmd/internal/fluent"
)

// Attr is a single HTML attribute.
type Attr struct {
	Name  string
	Value string
}

// Element describes the presentation element a rule produces for a node.
type Element struct {
	Tag   string
	Class string
	Attrs []Attr
	Void  bool

	// Inner wraps the node's children inside the element.
	Inner *Element
}

func component(c fluent.Component) Element {
	return Element{Tag: c.Tag, Class: c.Class()}
}

func plain(tag string) Element {
	return Element{Tag: tag}
}

// With returns a copy of e with the attribute appended.
func (e Element) With(name, value string) Element {
	attrs := make([]Attr, len(e.Attrs), len(e.Attrs)+1)
	copy(attrs, e.Attrs)
	e.Attrs = append(attrs, Attr{Name: name, Value: value})
	return e
}

// Wrap returns a copy of e whose children are placed inside inner.
func (e Element) Wrap(inner Element) Element {
	e.Inner = &inner
	return e
}

// Attr returns the value of the named attribute and whether it is present.
func (e Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func (e Element) writeOpen(w util.BufWriter, xhtml bool, extra func(util.BufWriter)) {
	_ = w.WriteByte('<')
	_, _ = w.WriteString(e.Tag)
	if e.Class != "" {
		writeAttr(w, "class", e.Class)
	}
	for _, a := range e.Attrs {
		writeAttr(w, a.Name, a.Value)
	}
	if extra != nil {
		extra(w)
	}
	if e.Void {
		if xhtml {
			_, _ = w.WriteString(" />")
		} else {
			_ = w.WriteByte('>')
		}
		return
	}
	_ = w.WriteByte('>')
	if e.Inner != nil {
		e.Inner.writeOpen(w, xhtml, nil)
	}
}

func (e Element) writeClose(w util.BufWriter) {
	if e.Void {
		return
	}
	if e.Inner != nil {
		e.Inner.writeClose(w)
	}
	_, _ = w.WriteString("</")
	_, _ = w.WriteString(e.Tag)
	_ = w.WriteByte('>')
}

func writeAttr(w util.BufWriter, name, value string) {
	_ = w.WriteByte(' ')
	_, _ = w.WriteString(name)
	_, _ = w.WriteString(`="`)
	_, _ = w.Write(util.EscapeHTML([]byte(value)))
	_ = w.WriteByte('"')
}
