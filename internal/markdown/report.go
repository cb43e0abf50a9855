package markdown

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Change classifies a report line.
type Change string

const (
	Unchanged Change = "equal"
	Removed   Change = "delete"
	Added     Change = "insert"
)

// ReportLine is one line of rendered output.
type ReportLine struct {
	Change  Change
	Content string
	RawLine int // line in the unsanitized output, 0 for added lines
	OutLine int // line in the sanitized output, 0 for removed lines
}

// SanitizeReport shows what the sanitizer changed in a render.
type SanitizeReport struct {
	Lines   []ReportLine
	Removed int
	Added   int
}

// Changed reports whether sanitization altered the output.
func (r *SanitizeReport) Changed() bool {
	return r.Removed > 0 || r.Added > 0
}

// Report renders content with and without sanitization, using the
// accessibility setting from opts, and diffs the two line by line.
func Report(content string, opts ...Option) (*SanitizeReport, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	raw, err := Render(content, WithAccessibility(o.EnableAccessibility), WithSanitize(false))
	if err != nil {
		return nil, err
	}
	clean, err := Render(content, WithAccessibility(o.EnableAccessibility), WithSanitize(true))
	if err != nil {
		return nil, err
	}
	return diffLines(raw, clean), nil
}

func diffLines(raw, clean string) *SanitizeReport {
	dmp := diffmatchpatch.New()

	a, b, lineArray := dmp.DiffLinesToChars(raw, clean)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)
	diffs = dmp.DiffCleanupSemantic(diffs)

	report := &SanitizeReport{}
	rawLine, outLine := 1, 1

	for _, d := range diffs {
		lines := strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n")
		for _, line := range lines {
			rl := ReportLine{Content: line}
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				rl.Change = Unchanged
				rl.RawLine, rl.OutLine = rawLine, outLine
				rawLine++
				outLine++
			case diffmatchpatch.DiffDelete:
				rl.Change = Removed
				rl.RawLine = rawLine
				rawLine++
				report.Removed++
			case diffmatchpatch.DiffInsert:
				rl.Change = Added
				rl.OutLine = outLine
				outLine++
				report.Added++
			}
			report.Lines = append(report.Lines, rl)
		}
	}

	return report
}
