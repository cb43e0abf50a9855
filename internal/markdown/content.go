package markdown

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/util"
)

// Content is the child content of a node. It is one of Text, Sequence or
// Other.
type Content interface {
	isContent()
}

// Text is plain text content.
type Text string

// Sequence is an ordered run of mixed content.
type Sequence []Content

// Other is a child that is not text, such as emphasis or an inline image.
type Other struct {
	Kind string
}

func (Text) isContent()     {}
func (Sequence) isContent() {}
func (Other) isContent()    {}

// LabelText flattens content into a label. Text is used as is, a Sequence
// contributes only its Text entries in order, and anything else yields "".
func LabelText(c Content) string {
	switch v := c.(type) {
	case Text:
		return string(v)
	case Sequence:
		var b strings.Builder
		for _, item := range v {
			if t, ok := item.(Text); ok {
				b.WriteString(string(t))
			}
		}
		return b.String()
	default:
		return ""
	}
}

// childContent converts the children of n. A single child is returned on its
// own, several become a Sequence and no children give nil.
func childContent(n ast.Node, source []byte) Content {
	switch n.ChildCount() {
	case 0:
		return nil
	case 1:
		return contentOf(n.FirstChild(), source)
	}
	seq := make(Sequence, 0, n.ChildCount())
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		seq = append(seq, contentOf(c, source))
	}
	return seq
}

func contentOf(n ast.Node, source []byte) Content {
	switch t := n.(type) {
	case *ast.Text:
		s := string(unescape(t.Segment.Value(source)))
		if t.SoftLineBreak() || t.HardLineBreak() {
			s += "\n"
		}
		return Text(s)
	case *ast.String:
		if t.IsCode() {
			return Text(t.Value)
		}
		return Text(unescape(t.Value))
	default:
		return Other{Kind: n.Kind().String()}
	}
}

// plainText collects every text descendant of n, the way image alt text is
// derived.
func plainText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(unescape(t.Segment.Value(source)))
			if t.SoftLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(t.Value)
		case *ast.CodeSpan:
			for g := t.FirstChild(); g != nil; g = g.NextSibling() {
				if tx, ok := g.(*ast.Text); ok {
					b.Write(tx.Segment.Value(source))
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func unescape(v []byte) []byte {
	return util.UnescapePunctuations(util.ResolveNumericReferences(util.ResolveEntityNames(v)))
}
