package types

import (
	"fmt"

	"github.com/sable-lang/sable/internal/lexer"
)

// ErrorKind classifies resolution failures
type ErrorKind int

const (
	UnresolvedName ErrorKind = iota
	UnresolvedType
	UnresolvedFunc
	Mismatch
	Arity
	Redefinition
	UnsatisfiedBound
	UnknownTrait
	TraitMethod
	InvalidCallee
)

var errorKindNames = [...]string{
	UnresolvedName:   "unresolved name",
	UnresolvedType:   "unresolved type",
	UnresolvedFunc:   "unresolved function",
	Mismatch:         "type mismatch",
	Arity:            "wrong number of arguments",
	Redefinition:     "redefinition",
	UnsatisfiedBound: "unsatisfied trait bound",
	UnknownTrait:     "unknown trait",
	TraitMethod:      "trait method mismatch",
	InvalidCallee:    "invalid callee",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}

	return "resolution error"
}

// ResolutionError is a recoverable name or type resolution failure.
// Checking of other items continues after one is reported.
type ResolutionError struct {
	Kind     ErrorKind
	Path     string
	Name     string
	Expected string
	Found    string
	Detail   string
	Span     lexer.Span
}

func (e *ResolutionError) Error() string {
	msg := e.Kind.String()

	if e.Name != "" {
		msg += fmt.Sprintf(" `%s`", e.Name)
	}

	if e.Expected != "" || e.Found != "" {
		msg += fmt.Sprintf(": expected `%s`, found `%s`", e.Expected, e.Found)
	}

	if e.Detail != "" {
		msg += ": " + e.Detail
	}

	return msg
}

// GetSpan returns the source span the error points at
func (e *ResolutionError) GetSpan() lexer.Span {
	return e.Span
}

// Code returns the diagnostic code of the error kind
func (e *ResolutionError) Code() string {
	return fmt.Sprintf("E%04d", 100+int(e.Kind))
}

func newError(kind ErrorKind, span lexer.Span, name string) *ResolutionError {
	return &ResolutionError{Kind: kind, Path: DefaultPath, Name: name, Span: span}
}

func mismatch(span lexer.Span, expected, found SemTy) *ResolutionError {
	return &ResolutionError{
		Kind:     Mismatch,
		Path:     DefaultPath,
		Expected: expected.String(),
		Found:    found.String(),
		Span:     span,
	}
}
