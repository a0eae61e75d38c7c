package diag

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
)

// Formatter formats diagnostics in a Rust-style format with source code snippets.
type Formatter struct {
	out         io.Writer
	sourceCache map[string]string // Cache of source text by filename

	severityColor map[Severity]*color.Color
	primaryColor  *color.Color
	secondary     *color.Color
	gutterColor   *color.Color
	bold          *color.Color
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithColor forces colored output on or off. Without it, fatih/color decides
// based on whether the output is a terminal.
func WithColor(enabled bool) FormatterOption {
	return func(f *Formatter) {
		for _, c := range f.colors() {
			if enabled {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}
}

// NewFormatter creates a new diagnostic formatter writing to out.
func NewFormatter(out io.Writer, opts ...FormatterOption) *Formatter {
	if out == nil {
		out = os.Stderr
	}
	f := &Formatter{
		out:         out,
		sourceCache: make(map[string]string),
		severityColor: map[Severity]*color.Color{
			SeverityError:   color.New(color.FgRed, color.Bold),
			SeverityWarning: color.New(color.FgYellow, color.Bold),
			SeverityNote:    color.New(color.FgCyan, color.Bold),
		},
		primaryColor: color.New(color.FgRed, color.Bold),
		secondary:    color.New(color.FgBlue),
		gutterColor:  color.New(color.FgBlue, color.Bold),
		bold:         color.New(color.Bold),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Formatter) colors() []*color.Color {
	cs := []*color.Color{f.primaryColor, f.secondary, f.gutterColor, f.bold}
	for _, c := range f.severityColor {
		cs = append(cs, c)
	}
	return cs
}

// AddSource registers source text for a filename so snippets can be rendered
// without touching the filesystem (used for --expr input and tests).
func (f *Formatter) AddSource(filename, src string) {
	f.sourceCache[filename] = src
}

// LoadSource loads source code for a file (cached).
func (f *Formatter) LoadSource(filename string) (string, error) {
	if filename == "" {
		return "", nil
	}
	if src, ok := f.sourceCache[filename]; ok {
		return src, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	src := string(data)
	f.sourceCache[filename] = src
	return src, nil
}

// Format formats and prints a diagnostic in Rust-style format.
func (f *Formatter) Format(d Diagnostic) {
	spans := f.collectSpans(d)
	if len(spans) == 0 {
		f.formatSimple(d)
		return
	}

	// Group spans by file
	spansByFile := make(map[string][]LabeledSpan)
	var files []string
	for _, span := range spans {
		filename := span.Span.Filename
		if filename == "" {
			filename = "<unknown>"
		}
		if _, seen := spansByFile[filename]; !seen {
			files = append(files, filename)
		}
		spansByFile[filename] = append(spansByFile[filename], span)
	}

	f.printHeader(d)

	for _, filename := range files {
		src, err := f.LoadSource(filename)
		if err != nil || src == "" {
			if d.Span.IsValid() {
				fmt.Fprintf(f.out, "  %s %s\n", f.gutterColor.Sprint("-->"), d.Span.String())
			}
			continue
		}
		f.printFileSpans(filename, src, spansByFile[filename])
	}

	f.printHelp(d)
}

// collectSpans collects all spans from the diagnostic, prioritizing LabeledSpans.
func (f *Formatter) collectSpans(d Diagnostic) []LabeledSpan {
	if len(d.LabeledSpans) > 0 {
		return d.LabeledSpans
	}
	if d.Span.IsValid() {
		return []LabeledSpan{{Span: d.Span, Style: "primary"}}
	}
	return nil
}

// printHeader prints the error header (error[CODE]: message).
func (f *Formatter) printHeader(d Diagnostic) {
	severity := d.Severity
	if severity == "" {
		severity = SeverityError
	}
	c, ok := f.severityColor[severity]
	if !ok {
		c = f.severityColor[SeverityError]
	}

	if d.Code != "" {
		fmt.Fprintf(f.out, "%s: %s\n", c.Sprintf("%s[%s]", severity, d.Code), f.bold.Sprint(d.Message))
	} else {
		fmt.Fprintf(f.out, "%s: %s\n", c.Sprint(string(severity)), f.bold.Sprint(d.Message))
	}
}

// printFileSpans prints source code with underlines for spans in a file.
func (f *Formatter) printFileSpans(filename string, src string, spans []LabeledSpan) {
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Span.Line != spans[j].Span.Line {
			return spans[i].Span.Line < spans[j].Span.Line
		}
		return spans[i].Span.Column < spans[j].Span.Column
	})

	spansByLine := make(map[int][]LabeledSpan)
	lines := strings.Split(src, "\n")
	maxLine := len(lines)

	for _, span := range spans {
		line := span.Span.Line
		if line > 0 && line <= maxLine {
			spansByLine[line] = append(spansByLine[line], span)
		}
	}

	lineNumbers := make([]int, 0, len(spansByLine))
	for line := range spansByLine {
		lineNumbers = append(lineNumbers, line)
	}
	sort.Ints(lineNumbers)

	if len(lineNumbers) == 0 {
		return
	}

	startLine := lineNumbers[0]
	endLine := lineNumbers[len(lineNumbers)-1]

	// Two lines of context on each side.
	contextStart := max(1, startLine-2)
	contextEnd := min(maxLine, endLine+2)

	lineNumWidth := len(fmt.Sprintf("%d", contextEnd))
	pad := strings.Repeat(" ", lineNumWidth)

	first := spans[0].Span
	for _, span := range spans {
		if span.Style == "primary" {
			first = span.Span
			break
		}
	}
	fmt.Fprintf(f.out, "  %s %s:%d:%d\n", f.gutterColor.Sprint("-->"), filename, first.Line, first.Column)
	fmt.Fprintf(f.out, " %s %s\n", pad, f.gutterColor.Sprint("|"))

	for lineNum := contextStart; lineNum <= contextEnd; lineNum++ {
		lineContent := strings.TrimRight(lines[lineNum-1], "\r")

		lineNumStr := fmt.Sprintf("%*d", lineNumWidth, lineNum)
		fmt.Fprintf(f.out, " %s %s %s\n", f.gutterColor.Sprint(lineNumStr), f.gutterColor.Sprint("|"), lineContent)

		if lineSpans := spansByLine[lineNum]; len(lineSpans) > 0 {
			f.printUnderlines(pad, lineContent, lineSpans)
		}
	}

	fmt.Fprintf(f.out, " %s %s\n", pad, f.gutterColor.Sprint("|"))
}

// printUnderlines prints underlines (^ for primary, ~ for secondary) for spans on a line.
func (f *Formatter) printUnderlines(pad string, lineContent string, spans []LabeledSpan) {
	width := len([]rune(lineContent))
	// Spans at end of input point one column past the last character.
	for _, span := range spans {
		if end := span.Span.Column - 1 + lineSpanWidth(span.Span, lineContent); end > width {
			width = end
		}
	}
	underline := make([]rune, width)
	for i := range underline {
		underline[i] = ' '
	}

	mark := func(style string, r rune, overwrite bool) {
		for _, span := range spans {
			if span.Style != style {
				continue
			}
			start := max(0, span.Span.Column-1)
			end := min(len(underline), start+lineSpanWidth(span.Span, lineContent))
			for i := start; i < end; i++ {
				if overwrite || underline[i] == ' ' {
					underline[i] = r
				}
			}
		}
	}
	mark("primary", '^', true)
	mark("secondary", '~', false)

	rightmost := -1
	for i := len(underline) - 1; i >= 0; i-- {
		if underline[i] != ' ' {
			rightmost = i
			break
		}
	}
	if rightmost == -1 {
		return
	}

	var b strings.Builder
	for _, r := range underline[:rightmost+1] {
		switch r {
		case '^':
			b.WriteString(f.primaryColor.Sprint("^"))
		case '~':
			b.WriteString(f.secondary.Sprint("~"))
		default:
			b.WriteRune(r)
		}
	}
	fmt.Fprintf(f.out, " %s %s %s", pad, f.gutterColor.Sprint("|"), b.String())

	primaryLabel := ""
	var secondaryLabels []string
	for _, span := range spans {
		if span.Label == "" {
			continue
		}
		if span.Style == "primary" {
			primaryLabel = span.Label
		} else {
			secondaryLabels = append(secondaryLabels, span.Label)
		}
	}

	if primaryLabel != "" {
		fmt.Fprintf(f.out, " %s", f.primaryColor.Sprint(primaryLabel))
	}
	fmt.Fprintln(f.out)

	for _, label := range secondaryLabels {
		fmt.Fprintf(f.out, " %s %s %s%s\n", pad, f.gutterColor.Sprint("|"), strings.Repeat(" ", rightmost+1), f.secondary.Sprint(label))
	}
}

// lineSpanWidth is the underline width of s on its starting line. A span that
// runs onto later lines is cut at the end of lineContent.
func lineSpanWidth(s Span, lineContent string) int {
	width := max(1, s.End-s.Start)
	if rest := len([]rune(lineContent)) - (s.Column - 1); width > rest {
		width = max(1, rest)
	}
	return width
}

// printHelp prints notes and help text.
func (f *Formatter) printHelp(d Diagnostic) {
	for _, note := range d.Notes {
		fmt.Fprintf(f.out, "  %s %s\n", f.gutterColor.Sprint("="), f.bold.Sprint("note: ")+note)
	}
	if d.Help != "" {
		fmt.Fprintf(f.out, "%s %s\n", f.bold.Sprint("help:"), d.Help)
	}
}

// formatSimple formats a diagnostic without source code (fallback).
func (f *Formatter) formatSimple(d Diagnostic) {
	f.printHeader(d)
	if d.Span.IsValid() {
		fmt.Fprintf(f.out, "  %s %s\n", f.gutterColor.Sprint("-->"), d.Span.String())
	}
	f.printHelp(d)
}
