package parser

import (
	"testing"

	"github.com/sable-lang/sable/internal/lexer"
)

func TestResynchronizeOnNextItem(t *testing.T) {
	input := `
fn broken( { }
struct Point { x: i32 }
const = 4;
fn ok() -> i32 { 1 }
`

	crate, errs := ParseSource(input, "test.sb")

	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}

	names := make([]string, 0, len(crate.Items))
	for _, item := range crate.Items {
		names = append(names, item.ItemName())
	}

	if len(names) != 2 || names[0] != "Point" || names[1] != "ok" {
		t.Fatalf("expected items [Point ok], got %v", names)
	}
}

func TestGarbageTerminates(t *testing.T) {
	inputs := []string{
		"}}}}",
		"( ( ( [",
		"fn",
		"struct",
		"pub",
		"impl<",
		"let x = 1;",
		"fn f() { let }",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, errs := ParseSource(input, "test.sb")
			if len(errs) == 0 {
				t.Fatalf("expected errors for %q", input)
			}
		})
	}
}

func TestEmptyInput(t *testing.T) {
	crate, errs := ParseSource("// only a comment\n", "test.sb")
	if len(errs) != 0 || len(crate.Items) != 0 {
		t.Fatalf("expected empty crate, got %d items, errors %v", len(crate.Items), errs)
	}
}

func TestTokenStream(t *testing.T) {
	tokens := lexer.Tokenize("a /* c */ b // d\n c")
	s := NewTokenStream(tokens[:len(tokens)-1])

	if s.Len() != 4 {
		t.Fatalf("expected 3 tokens plus EOF, got %d", s.Len())
	}

	if !s.LookAhead(0, func(tok lexer.Token) bool { return tok.Literal == "a" }) {
		t.Errorf("distance 0 should see the cursor token")
	}

	if !s.LookAhead(2, func(tok lexer.Token) bool { return tok.Literal == "b" }) {
		t.Errorf("distance 2 should see b")
	}

	if s.LookAhead(9, func(lexer.Token) bool { return true }) {
		t.Errorf("look-ahead past the end must be false")
	}

	if s.Eat(lexer.TokenComma) {
		t.Errorf("Eat must not consume a mismatched token")
	}

	if !s.Eat(lexer.TokenIdentifier) {
		t.Errorf("Eat should consume a")
	}

	tok, ok := s.NextAndAdvance()
	if !ok || tok.Literal != "b" {
		t.Errorf("expected b, got %v", tok)
	}

	s.Advance()

	if s.Peek(1) != lexer.TokenEOF {
		t.Errorf("expected EOF sentinel, got %s", s.Peek(1))
	}

	s.Advance()

	if s.CanAdvance() {
		t.Errorf("stream should be exhausted")
	}

	if _, ok := s.Next(); ok {
		t.Errorf("Next on an exhausted stream must fail")
	}
}

func TestTruncatedItemPointsAtEnd(t *testing.T) {
	inputs := []string{"struct S { x: i32", "fn f(a: i32", "trait T { fn m(&self)"}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, errs := ParseSource(input, "test.sb")
			if len(errs) == 0 {
				t.Fatalf("expected errors for %q", input)
			}

			perr, ok := errs[0].(*ParseError)
			if !ok {
				t.Fatalf("expected *ParseError, got %T", errs[0])
			}

			if perr.Span.Start.Offset != len(input) {
				t.Errorf("error at offset %d, want end of input %d", perr.Span.Start.Offset, len(input))
			}
		})
	}
}
