package diagnostics

import (
	"fmt"

	"github.com/sable-lang/sable/internal/lexer"
)

// SubBuilder provides a fluent interface for building one diagnostic.
// Nothing is recorded until Emit is called.
type SubBuilder struct {
	parent     *Builder
	diagnostic Diagnostic
}

func (sb *SubBuilder) push(level Level, message string, span lexer.Span, hasSpan bool) *SubBuilder {
	sb.diagnostic.Items = append(sb.diagnostic.Items, Item{
		Level:   level,
		Message: message,
		Span:    span,
		Spanned: hasSpan,
	})

	return sb
}

// WithCode sets the diagnostic code
func (sb *SubBuilder) WithCode(code string) *SubBuilder {
	sb.diagnostic.Code = code

	return sb
}

// Error adds an error without a source location
func (sb *SubBuilder) Error(message string) *SubBuilder {
	return sb.push(LevelError, message, lexer.Span{}, false)
}

// Errorf adds a formatted error without a source location
func (sb *SubBuilder) Errorf(format string, args ...interface{}) *SubBuilder {
	return sb.Error(fmt.Sprintf(format, args...))
}

// ErrorSpanned adds an error pointing at span
func (sb *SubBuilder) ErrorSpanned(message string, span lexer.Span) *SubBuilder {
	return sb.push(LevelError, message, span, true)
}

// Warn adds a warning without a source location
func (sb *SubBuilder) Warn(message string) *SubBuilder {
	return sb.push(LevelWarning, message, lexer.Span{}, false)
}

// WarnSpanned adds a warning pointing at span
func (sb *SubBuilder) WarnSpanned(message string, span lexer.Span) *SubBuilder {
	return sb.push(LevelWarning, message, span, true)
}

// SuggestSpanned adds a suggestion pointing at span
func (sb *SubBuilder) SuggestSpanned(message string, span lexer.Span) *SubBuilder {
	return sb.push(LevelSuggestion, message, span, true)
}

// Note adds a trailing note
func (sb *SubBuilder) Note(message string) *SubBuilder {
	return sb.push(LevelNote, message, lexer.Span{}, false)
}

// IsEmpty reports whether no item was added yet
func (sb *SubBuilder) IsEmpty() bool {
	return len(sb.diagnostic.Items) == 0
}

// Emit records the diagnostic in the parent builder. Empty diagnostics are dropped.
func (sb *SubBuilder) Emit() *Builder {
	if sb.IsEmpty() {
		return sb.parent
	}

	sb.parent.add(sb.diagnostic)

	return sb.parent
}
