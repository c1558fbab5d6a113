// Package diagnostics collects compiler errors, warnings, suggestions
// and notes and renders them with source snippets and caret underlines.
package diagnostics

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/sable-lang/sable/internal/lexer"
)

// Level represents the severity of a diagnostic item
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelSuggestion
	LevelNote
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelSuggestion:
		return "suggestion"
	case LevelNote:
		return "note"
	default:
		return "unknown"
	}
}

// Item is one message of a diagnostic
type Item struct {
	Level   Level
	Message string
	Span    lexer.Span
	Spanned bool // whether Span points into the source
}

// Diagnostic groups the items reported about one input file
type Diagnostic struct {
	File  string
	Code  string // e.g. "E0102", empty when unknown
	Items []Item
}

// Level returns the most severe level of the diagnostic's items
func (d Diagnostic) Level() Level {
	level := LevelNote

	for _, item := range d.Items {
		if item.Level < level {
			level = item.Level
		}
	}

	return level
}

// Builder collects diagnostics for a compilation session
type Builder struct {
	diagnostics  []Diagnostic
	sources      map[string][]string // file name to source lines
	errorCount   int
	warningCount int
	maxErrors    int
	dropped      int
}

// NewBuilder creates an empty builder. A limit of 0 keeps every error.
func NewBuilder() *Builder {
	return &Builder{
		diagnostics: make([]Diagnostic, 0),
		sources:     make(map[string][]string),
	}
}

// SetErrorLimit sets the number of errors kept; later ones are dropped
func (b *Builder) SetErrorLimit(limit int) {
	b.maxErrors = limit
}

// AddSource registers the text of a file so spans can be rendered
func (b *Builder) AddSource(file, src string) {
	b.sources[file] = strings.Split(src, "\n")
}

// Diagnostic starts a new diagnostic about file
func (b *Builder) Diagnostic(file string) *SubBuilder {
	return &SubBuilder{parent: b, diagnostic: Diagnostic{File: file}}
}

func (b *Builder) add(d Diagnostic) {
	switch d.Level() {
	case LevelError:
		if b.maxErrors > 0 && b.errorCount >= b.maxErrors {
			b.dropped++

			return
		}

		b.errorCount++
	case LevelWarning:
		b.warningCount++
	}

	b.diagnostics = append(b.diagnostics, d)
}

// spanned is implemented by errors that know their source location
type spanned interface {
	GetSpan() lexer.Span
}

// coded is implemented by errors that carry a diagnostic code
type coded interface {
	Code() string
}

// Report records err as an error diagnostic. The span and code are
// taken from the first error in the chain that provides them. Context
// added by wrapping is moved into a trailing note.
func (b *Builder) Report(err error) {
	if err == nil {
		return
	}

	var (
		s spanned
		c coded
	)

	sub := &SubBuilder{parent: b}

	if errors.As(err, &c) {
		sub.WithCode(c.Code())
	}

	message, context := splitContext(err)

	if errors.As(err, &s) {
		span := s.GetSpan()
		sub.diagnostic.File = span.Start.File
		sub.ErrorSpanned(message, span)
	} else {
		sub.Error(message)
	}

	if context != "" {
		sub.Note(context)
	}

	sub.Emit()
}

// splitContext separates the message of the innermost error from the
// prefixes wrapping put in front of it
func splitContext(err error) (string, string) {
	full := err.Error()
	cause := errors.Cause(err).Error()

	if cause == full || !strings.HasSuffix(full, ": "+cause) {
		return full, ""
	}

	return cause, strings.TrimSuffix(full, ": "+cause)
}

// Diagnostics returns the recorded diagnostics
func (b *Builder) Diagnostics() []Diagnostic {
	return b.diagnostics
}

// ErrorCount returns the number of error diagnostics kept
func (b *Builder) ErrorCount() int {
	return b.errorCount
}

// WarningCount returns the number of warning diagnostics kept
func (b *Builder) WarningCount() int {
	return b.warningCount
}

// HasErrors reports whether any error was recorded
func (b *Builder) HasErrors() bool {
	return b.errorCount > 0 || b.dropped > 0
}

// Reset drops all diagnostics but keeps registered sources and the limit
func (b *Builder) Reset() {
	b.diagnostics = b.diagnostics[:0]
	b.errorCount = 0
	b.warningCount = 0
	b.dropped = 0
}

// Sort orders diagnostics by file, then by the position of their first spanned item
func (b *Builder) Sort() {
	sort.SliceStable(b.diagnostics, func(i, j int) bool {
		a, c := b.diagnostics[i], b.diagnostics[j]

		if a.File != c.File {
			return a.File < c.File
		}

		return firstOffset(a) < firstOffset(c)
	})
}

func firstOffset(d Diagnostic) int {
	for _, item := range d.Items {
		if item.Spanned {
			return item.Span.Start.Offset
		}
	}

	return -1
}

// Render writes every diagnostic followed by a summary line
func (b *Builder) Render(w io.Writer, colorize bool) error {
	for _, d := range b.diagnostics {
		if _, err := io.WriteString(w, b.Format(d, colorize)); err != nil {
			return errors.Wrap(err, "writing diagnostics")
		}
	}

	if len(b.diagnostics) == 0 {
		return nil
	}

	_, err := fmt.Fprintln(w, b.Summary())

	return errors.Wrap(err, "writing diagnostics")
}

// Format renders one diagnostic
func (b *Builder) Format(d Diagnostic, colorize bool) string {
	var result strings.Builder

	for _, item := range d.Items {
		if item.Level == LevelNote {
			result.WriteString("  = note: " + item.Message + "\n")

			continue
		}

		result.WriteString(paint(colorize, item.Level, item.Level.String()))

		if d.Code != "" && item.Level == LevelError {
			result.WriteString("[" + d.Code + "]")
		}

		result.WriteString(": " + item.Message + "\n")

		if !item.Spanned {
			continue
		}

		result.WriteString("  --> " + item.Span.Start.String() + "\n")
		b.writeSnippet(&result, item, colorize)
	}

	result.WriteString("\n")

	return result.String()
}

func (b *Builder) writeSnippet(out *strings.Builder, item Item, colorize bool) {
	lines, ok := b.sources[item.Span.Start.File]
	if !ok {
		return
	}

	lineNum := item.Span.Start.Line
	if lineNum < 1 || lineNum > len(lines) {
		return
	}

	line := strings.TrimRight(lines[lineNum-1], "\r")
	out.WriteString(fmt.Sprintf("%4d | %s\n", lineNum, line))

	start := item.Span.Start.Column - 1
	if start < 0 {
		start = 0
	}

	width := 1

	switch {
	case item.Span.End.Line == lineNum && item.Span.End.Column > item.Span.Start.Column:
		width = item.Span.End.Column - item.Span.Start.Column
	case item.Span.End.Line > lineNum && len(line) > start:
		width = len(line) - start
	}

	carets := strings.Repeat("^", width)
	out.WriteString("     | " + strings.Repeat(" ", start) + paint(colorize, item.Level, carets) + "\n")
}

// Summary returns a one line count of errors and warnings
func (b *Builder) Summary() string {
	summary := fmt.Sprintf("Found %d error(s) and %d warning(s).", b.errorCount, b.warningCount)

	if b.dropped > 0 {
		summary += fmt.Sprintf(" %d more error(s) not shown.", b.dropped)
	}

	return summary
}

// paint wraps text in the colour of level
func paint(colorize bool, level Level, text string) string {
	if !colorize {
		return text
	}

	return colorizeLevel(level) + text + "\033[0m"
}

// colorizeLevel returns the terminal colour code of a level
func colorizeLevel(level Level) string {
	switch level {
	case LevelError:
		return "\033[31m" // Red
	case LevelWarning:
		return "\033[33m" // Yellow
	case LevelSuggestion:
		return "\033[36m" // Cyan
	default:
		return "\033[90m" // Gray
	}
}
