package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// nodeRenderer writes the node kinds found in a Table and leaves everything
// else to goldmark's html.Renderer.
type nodeRenderer struct {
	html.Config
	table Table
}

func newNodeRenderer(table Table) renderer.NodeRenderer {
	return &nodeRenderer{Config: html.NewConfig(), table: table}
}

func (r *nodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindHeading, r.renderHeading)
	reg.Register(ast.KindParagraph, r.renderParagraph)
	reg.Register(ast.KindEmphasis, r.renderEmphasis)
	reg.Register(ast.KindLink, r.renderLink)
	reg.Register(ast.KindAutoLink, r.renderAutoLink)
	reg.Register(ast.KindCodeSpan, r.renderCodeSpan)
	reg.Register(ast.KindFencedCodeBlock, r.renderCodeBlock)
	reg.Register(ast.KindCodeBlock, r.renderCodeBlock)
	reg.Register(ast.KindBlockquote, r.renderBlockquote)
	reg.Register(ast.KindThematicBreak, r.renderThematicBreak)
	reg.Register(ast.KindImage, r.renderImage)
	reg.Register(ast.KindList, r.renderList)
	reg.Register(ast.KindListItem, r.renderListItem)
}

// element applies the rule for kind, if the table has one.
func (r *nodeRenderer) element(kind string, n Node) (Element, bool) {
	rule, ok := r.table[kind]
	if !ok {
		return Element{}, false
	}
	return rule(n), true
}

func (r *nodeRenderer) renderHeading(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Heading)
	el, ok := r.element(fmt.Sprintf("h%d", n.Level), Node{Children: childContent(n, source)})
	if !ok {
		el = plain(fmt.Sprintf("h%d", n.Level))
	}
	if entering {
		el.writeOpen(w, r.XHTML, func(w util.BufWriter) {
			if n.Attributes() != nil {
				html.RenderAttributes(w, n, html.HeadingAttributeFilter)
			}
		})
		return ast.WalkContinue, nil
	}
	el.writeClose(w)
	_ = w.WriteByte('\n')
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderParagraph(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	el, ok := r.element(KindParagraph, Node{Children: childContent(node, source)})
	if !ok {
		el = plain("p")
	}
	if entering {
		el.writeOpen(w, r.XHTML, nil)
		return ast.WalkContinue, nil
	}
	el.writeClose(w)
	_ = w.WriteByte('\n')
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderEmphasis(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Emphasis)
	tag := "em"
	var el Element
	ok := false
	if n.Level == 2 {
		tag = "strong"
		el, ok = r.element(KindStrong, Node{Children: childContent(n, source)})
	}
	if !ok {
		el = plain(tag)
	}
	if entering {
		el.writeOpen(w, r.XHTML, nil)
		return ast.WalkContinue, nil
	}
	el.writeClose(w)
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Link)
	el, ok := r.element(KindLink, Node{
		Children: childContent(n, source),
		Href:     safeURL(n.Destination),
		Title:    string(n.Title),
	})
	if !ok {
		el = plain("a").With("href", safeURL(n.Destination))
	}
	if entering {
		el.writeOpen(w, r.XHTML, nil)
		return ast.WalkContinue, nil
	}
	el.writeClose(w)
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderAutoLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.AutoLink)
	url := n.URL(source)
	label := n.Label(source)
	if n.AutoLinkType == ast.AutoLinkEmail && !bytes.HasPrefix(bytes.ToLower(url), []byte("mailto:")) {
		url = append([]byte("mailto:"), url...)
	}
	el, ok := r.element(KindLink, Node{Children: Text(label), Href: safeURL(url)})
	if !ok {
		el = plain("a").With("href", safeURL(url))
	}
	el.writeOpen(w, r.XHTML, nil)
	_, _ = w.Write(util.EscapeHTML(label))
	el.writeClose(w)
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderCodeSpan(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	el, ok := r.element(KindCode, Node{Children: childContent(node, source), Inline: true})
	if !ok {
		el = plain("code")
	}
	if !entering {
		el.writeClose(w)
		return ast.WalkContinue, nil
	}
	el.writeOpen(w, r.XHTML, nil)
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		var value []byte
		switch t := c.(type) {
		case *ast.Text:
			value = t.Segment.Value(source)
		case *ast.String:
			value = t.Value
		default:
			continue
		}
		if bytes.HasSuffix(value, []byte("\n")) {
			r.Writer.RawWrite(w, value[:len(value)-1])
			r.Writer.RawWrite(w, []byte(" "))
		} else {
			r.Writer.RawWrite(w, value)
		}
	}
	return ast.WalkSkipChildren, nil
}

func (r *nodeRenderer) renderCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	var class string
	if n, ok := node.(*ast.FencedCodeBlock); ok {
		if lang := n.Language(source); lang != nil {
			class = "language-" + string(lang)
		}
	}
	el, ok := r.element(KindCode, Node{Class: class})
	if !ok {
		el = plain("pre").Wrap(plain("code"))
	}
	if !entering {
		el.writeClose(w)
		_ = w.WriteByte('\n')
		return ast.WalkContinue, nil
	}
	el.writeOpen(w, r.XHTML, nil)
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		r.Writer.RawWrite(w, line.Value(source))
	}
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderBlockquote(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	el, ok := r.element(KindBlockquote, Node{Children: childContent(node, source)})
	if !ok {
		el = plain("blockquote")
	}
	if entering {
		el.writeOpen(w, r.XHTML, nil)
		_ = w.WriteByte('\n')
		return ast.WalkContinue, nil
	}
	el.writeClose(w)
	_ = w.WriteByte('\n')
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderThematicBreak(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	el, ok := r.element(KindRule, Node{})
	if !ok {
		el = plain("hr")
		el.Void = true
	}
	el.writeOpen(w, r.XHTML, nil)
	el.writeClose(w)
	_ = w.WriteByte('\n')
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Image)
	img := Node{
		Children: childContent(n, source),
		Src:      safeURL(n.Destination),
		Alt:      plainText(n, source),
		Title:    string(n.Title),
	}
	el, ok := r.element(KindImage, img)
	if !ok {
		el = plain("img").With("src", img.Src).With("alt", img.Alt)
		el.Void = true
	}
	el.writeOpen(w, r.XHTML, nil)
	el.writeClose(w)
	return ast.WalkSkipChildren, nil
}

func (r *nodeRenderer) renderList(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.List)
	kind, tag := KindBulletList, "ul"
	if n.IsOrdered() {
		kind, tag = KindOrderList, "ol"
	}
	el, ok := r.element(kind, Node{Children: childContent(n, source)})
	if !ok {
		el = plain(tag)
	}
	if entering {
		el.writeOpen(w, r.XHTML, nil)
		_ = w.WriteByte('\n')
		return ast.WalkContinue, nil
	}
	el.writeClose(w)
	_ = w.WriteByte('\n')
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderListItem(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	el, ok := r.element(KindListItem, Node{Children: childContent(node, source)})
	if !ok {
		el = plain("li")
	}
	if entering {
		el.writeOpen(w, r.XHTML, nil)
		if fc := node.FirstChild(); fc != nil {
			if _, ok := fc.(*ast.TextBlock); !ok {
				_ = w.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	}
	el.writeClose(w)
	_ = w.WriteByte('\n')
	return ast.WalkContinue, nil
}

// safeURL escapes a destination for an attribute value, dropping it when
// goldmark considers it dangerous.
func safeURL(dest []byte) string {
	if html.IsDangerousURL(dest) {
		return ""
	}
	return string(util.URLEscape(dest, true))
}
