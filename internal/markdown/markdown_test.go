package markdown

import (
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

func render(t *testing.T, input string, opts ...Option) string {
	t.Helper()
	out, err := Render(input, opts...)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	return out
}

// query parses out and returns the nodes matching selector.
func query(t *testing.T, out, selector string) []*html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	return cascadia.MustCompile(selector).MatchAll(doc)
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// ---------------------------------------------------------------------------
// XSS regression tests
// ---------------------------------------------------------------------------

func TestRender_XSS(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		rejected string // substring that must NOT appear in output
	}{
		{
			name:     "script tag",
			input:    `<script>alert('xss')</script>`,
			rejected: "<script",
		},
		{
			name:     "script content",
			input:    "<script>\nalert('xss')\n</script>",
			rejected: "alert(",
		},
		{
			name:     "img onerror",
			input:    `<img src=x onerror=alert('xss')>`,
			rejected: "onerror",
		},
		{
			name:     "javascript link in markdown",
			input:    `[click](javascript:alert('xss'))`,
			rejected: "javascript:",
		},
		{
			name:     "raw javascript href",
			input:    `<a href="javascript:void(0)">link</a>`,
			rejected: "javascript:",
		},
		{
			name:     "event handler on div",
			input:    `<div onmouseover="alert('xss')">hover</div>`,
			rejected: "onmouseover",
		},
		{
			name:     "svg onload",
			input:    `<svg onload=alert('xss')>`,
			rejected: "<svg",
		},
		{
			name:     "iframe",
			input:    `<iframe src="https://evil.example"></iframe>`,
			rejected: "<iframe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := render(t, tt.input)
			if strings.Contains(strings.ToLower(out), strings.ToLower(tt.rejected)) {
				t.Errorf("output contains rejected %q:\n%s", tt.rejected, out)
			}
		})
	}
}

func TestRender_SanitizeDisabledPassesRawHTML(t *testing.T) {
	input := "<script>alert('xss')</script>\n\ntext"
	out := render(t, input, WithSanitize(false))
	if !strings.Contains(out, "<script>alert('xss')</script>") {
		t.Errorf("expected raw script to pass through, got:\n%s", out)
	}

	out = render(t, input)
	if strings.Contains(out, "<script") || strings.Contains(out, "alert(") {
		t.Errorf("expected script to be removed, got:\n%s", out)
	}
}

func TestRender_DangerousURLWithoutSanitize(t *testing.T) {
	out := render(t, `[click](javascript:alert(1)) ![x](javascript:alert(2))`, WithSanitize(false))
	if strings.Contains(out, "javascript:") {
		t.Errorf("dangerous URL written:\n%s", out)
	}
}

// ---------------------------------------------------------------------------
// Element mapping
// ---------------------------------------------------------------------------

func TestRender_DefaultFlags(t *testing.T) {
	out := render(t, "# Title")

	h := query(t, out, `h1.fui-Title1[role="heading"][aria-level="1"]`)
	if len(h) != 1 {
		t.Fatalf("expected one accessible Title1 heading, got:\n%s", out)
	}
	if got := textOf(h[0]); got != "Title" {
		t.Errorf("heading text = %q", got)
	}
	if id, _ := attr(h[0], "id"); id != "title" {
		t.Errorf("heading id = %q, want title", id)
	}
}

func TestRender_Headings(t *testing.T) {
	input := "# One\n\n## Two\n\n### Three\n\n#### Four\n"
	out := render(t, input)

	for _, sel := range []string{
		`h1.fui-Title1[aria-level="1"]`,
		`h2.fui-Title2[aria-level="2"]`,
		`h3.fui-Subtitle1[aria-level="3"]`,
	} {
		if len(query(t, out, sel)) != 1 {
			t.Errorf("expected %s in:\n%s", sel, out)
		}
	}

	h4 := query(t, out, "h4")
	if len(h4) != 1 {
		t.Fatalf("expected default h4, got:\n%s", out)
	}
	if _, ok := attr(h4[0], "class"); ok {
		t.Errorf("h4 should keep default rendering, got:\n%s", out)
	}
	if _, ok := attr(h4[0], "role"); ok {
		t.Errorf("h4 should have no role, got:\n%s", out)
	}
}

func TestRender_AccessibilityDisabled(t *testing.T) {
	input := strings.Join([]string{
		"# Title",
		"[Go](https://go.dev) and `code`",
		"![Logo](logo.png)",
		"> quoted",
		"```go\nfmt.Println()\n```",
		"---",
	}, "\n\n")

	for _, sanitize := range []bool{true, false} {
		out := render(t, input, WithAccessibility(false), WithSanitize(sanitize))
		for _, rejected := range []string{"aria-label", "aria-level", `role="heading"`} {
			if strings.Contains(out, rejected) {
				t.Errorf("sanitize=%v: output contains %q:\n%s", sanitize, rejected, out)
			}
		}
		if len(query(t, out, `div.fui-Divider[aria-hidden="true"]`)) != 1 {
			t.Errorf("sanitize=%v: divider must stay hidden:\n%s", sanitize, out)
		}
		if len(query(t, out, `a.fui-Link[target="_blank"]`)) != 1 {
			t.Errorf("sanitize=%v: link must open a new context:\n%s", sanitize, out)
		}
	}
}

func TestRender_Link(t *testing.T) {
	out := render(t, "[Read more](https://example.com)", WithSanitize(false))
	links := query(t, out, "a.fui-Link")
	if len(links) != 1 {
		t.Fatalf("expected one link, got:\n%s", out)
	}
	want := map[string]string{
		"href":       "https://example.com",
		"target":     "_blank",
		"rel":        "noopener noreferrer",
		"aria-label": "Read more",
	}
	for k, v := range want {
		if got, _ := attr(links[0], k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}

	out = render(t, "[Read more](https://example.com)")
	links = query(t, out, "a.fui-Link")
	if len(links) != 1 {
		t.Fatalf("expected one sanitized link, got:\n%s", out)
	}
	rel, _ := attr(links[0], "rel")
	if !strings.Contains(rel, "noopener") || !strings.Contains(rel, "noreferrer") {
		t.Errorf("sanitized rel = %q", rel)
	}
	if got, _ := attr(links[0], "aria-label"); got != "Read more" {
		t.Errorf("sanitized aria-label = %q", got)
	}
}

func TestRender_LinkLabel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		label   string
		present bool
	}{
		{"text", "[Docs](/docs)", "Docs", true},
		{"mixed children keep only text", "[Read *this* now](/docs)", "Read  now", true},
		{"image only", "[![logo](logo.png)](/docs)", "", false},
		{"autolink", "<https://go.dev>", "https://go.dev", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := render(t, tt.input, WithSanitize(false))
			links := query(t, out, "a.fui-Link")
			if len(links) != 1 {
				t.Fatalf("expected one link, got:\n%s", out)
			}
			label, ok := attr(links[0], "aria-label")
			if ok != tt.present || label != tt.label {
				t.Errorf("aria-label = %q (present %v), want %q (present %v)", label, ok, tt.label, tt.present)
			}
		})
	}
}

func TestRender_Image(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		opts    []Option
		alt     string
		label   string
		present bool
	}{
		{"alt used as label", "![Logo](logo.png)", nil, "Logo", "Logo", true},
		{"empty alt", "![](logo.png)", nil, "", "Image", true},
		{"accessibility off", "![Logo](logo.png)", []Option{WithAccessibility(false)}, "Logo", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := render(t, tt.input, append(tt.opts, WithSanitize(false))...)
			imgs := query(t, out, "img.fui-Image")
			if len(imgs) != 1 {
				t.Fatalf("expected one image, got:\n%s", out)
			}
			if src, _ := attr(imgs[0], "src"); src != "logo.png" {
				t.Errorf("src = %q", src)
			}
			if alt, _ := attr(imgs[0], "alt"); alt != tt.alt {
				t.Errorf("alt = %q, want %q", alt, tt.alt)
			}
			label, ok := attr(imgs[0], "aria-label")
			if ok != tt.present || label != tt.label {
				t.Errorf("aria-label = %q (present %v), want %q (present %v)", label, ok, tt.label, tt.present)
			}
		})
	}
}

func TestRender_Code(t *testing.T) {
	out := render(t, "Use `go test` here.\n\n```go\nfmt.Println(\"<hi>\")\n```\n\n    indented\n")

	inline := query(t, out, `code[aria-label="Inline code"]`)
	if len(inline) != 1 || textOf(inline[0]) != "go test" {
		t.Errorf("expected labelled inline code, got:\n%s", out)
	}

	blocks := query(t, out, `pre[aria-label="Code block"]`)
	if len(blocks) != 2 {
		t.Fatalf("expected two labelled code blocks, got:\n%s", out)
	}
	if class, _ := attr(blocks[0], "class"); class != "language-go" {
		t.Errorf("fenced block class = %q", class)
	}
	if got := textOf(blocks[0]); got != "fmt.Println(\"<hi>\")\n" {
		t.Errorf("fenced block text = %q", got)
	}
	if strings.Contains(out, `role="region"`) {
		t.Errorf("code blocks must not carry a region role:\n%s", out)
	}
}

func TestRender_Blockquote(t *testing.T) {
	out := render(t, "> quoted text")
	if len(query(t, out, `blockquote[aria-label="Quotation"] > span.fui-Body1`)) != 1 {
		t.Errorf("expected labelled quotation wrapping Body1, got:\n%s", out)
	}
}

func TestRender_Divider(t *testing.T) {
	out := render(t, "above\n\n---\n\nbelow")
	if len(query(t, out, `div.fui-Divider[aria-hidden="true"]`)) != 1 {
		t.Errorf("expected hidden divider, got:\n%s", out)
	}
	if strings.Contains(out, "<hr") {
		t.Errorf("default hr should be replaced, got:\n%s", out)
	}
}

func TestRender_Lists(t *testing.T) {
	out := render(t, "- one\n- two\n\n1. first\n2. second\n")
	if n := len(query(t, out, "ul > li > span.fui-Body1")); n != 2 {
		t.Errorf("expected 2 bullet items, got %d:\n%s", n, out)
	}
	if n := len(query(t, out, "ol > li > span.fui-Body1")); n != 2 {
		t.Errorf("expected 2 ordered items, got %d:\n%s", n, out)
	}
	for _, sel := range []string{"ul[class]", "ol[class]", "ol[start]"} {
		if len(query(t, out, sel)) != 0 {
			t.Errorf("lists should be plain containers (%s):\n%s", sel, out)
		}
	}
}

func TestRender_Inline(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		selector string
		text     string
	}{
		{"paragraph", "hello", "p.fui-Body1", "hello"},
		{"bold", "**bold**", "span.fui-Body1Strong", "bold"},
		{"italic keeps default", "*italic*", "em", "italic"},
		{"strikethrough keeps default", "~~gone~~", "del", "gone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := render(t, tt.input)
			nodes := query(t, out, tt.selector)
			if len(nodes) != 1 || textOf(nodes[0]) != tt.text {
				t.Errorf("expected %s with %q, got:\n%s", tt.selector, tt.text, out)
			}
		})
	}
}

func TestRender_GFMTable(t *testing.T) {
	input := "| A | B |\n| - | - |\n| 1 | 2 |"
	out := render(t, input)
	if !strings.Contains(out, "<table") {
		t.Errorf("expected <table>, got:\n%s", out)
	}
}

func TestRender_Idempotent(t *testing.T) {
	input := "# Title\n\nSome [link](https://example.com) and ![img](a.png).\n\n- a\n- b\n"
	for _, opts := range [][]Option{
		nil,
		{WithAccessibility(false)},
		{WithSanitize(false)},
		{WithAccessibility(false), WithSanitize(false)},
	} {
		first := render(t, input, opts...)
		second := render(t, input, opts...)
		if first != second {
			t.Errorf("render not deterministic:\n%s\n---\n%s", first, second)
		}
	}
}

func TestRenderBytes(t *testing.T) {
	out, err := RenderBytes([]byte("**x**"), WithSanitize(false))
	if err != nil {
		t.Fatal(err)
	}
	want := "<p class=\"fui-Body1\"><span class=\"fui-Body1Strong\">x</span></p>\n"
	if string(out) != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestSanitizePipeline(t *testing.T) {
	if p := SanitizePipeline(false); len(p) != 0 {
		t.Errorf("disabled pipeline has %d stages", len(p))
	}
	p := SanitizePipeline(true)
	if len(p) != 1 {
		t.Fatalf("enabled pipeline has %d stages, want 1", len(p))
	}
	out := string(p.Apply([]byte(`<p onclick="x()">hi</p><script>bad()</script>`)))
	if out != "<p>hi</p>" {
		t.Errorf("Apply() = %q", out)
	}
	in := []byte("<b>keep</b>")
	if got := Pipeline(nil).Apply(in); string(got) != "<b>keep</b>" {
		t.Errorf("empty pipeline changed input: %q", got)
	}
}
