package markdown

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// Stage is one step of the sanitization pipeline.
type Stage func([]byte) []byte

// Pipeline runs its stages in order over rendered HTML.
type Pipeline []Stage

// Apply runs every stage over b.
func (p Pipeline) Apply(b []byte) []byte {
	for _, stage := range p {
		b = stage(b)
	}
	return b
}

// SanitizePipeline returns an empty pipeline when disabled and a single
// bluemonday stage otherwise.
func SanitizePipeline(enabled bool) Pipeline {
	if !enabled {
		return nil
	}
	return Pipeline{policy.SanitizeBytes}
}

var policy = newPolicy()

var (
	roleRe       = regexp.MustCompile(`^(heading|separator)$`)
	ariaLevelRe  = regexp.MustCompile(`^[1-6]$`)
	ariaHiddenRe = regexp.MustCompile(`^(true|false)$`)
	targetRe     = regexp.MustCompile(`^_blank$`)
)

// newPolicy starts from the UGC allow-list and keeps the attributes the
// rendering table emits.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).
		OnElements("h1", "h2", "h3", "p", "span", "a", "div", "img", "pre", "code")
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("role").Matching(roleRe).OnElements("h1", "h2", "h3", "div")
	p.AllowAttrs("aria-level").Matching(ariaLevelRe).OnElements("h1", "h2", "h3")
	p.AllowAttrs("aria-hidden").Matching(ariaHiddenRe).OnElements("div")
	p.AllowAttrs("aria-label").Matching(bluemonday.Paragraph).
		OnElements("a", "code", "pre", "blockquote", "img")
	p.AllowAttrs("target").Matching(targetRe).OnElements("a")
	p.AllowAttrs("rel").OnElements("a")
	p.RequireNoReferrerOnLinks(true)
	return p
}
