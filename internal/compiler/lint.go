package compiler

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/sable-lang/sable/internal/diagnostics"
	"github.com/sable-lang/sable/internal/lexer"
	"github.com/sable-lang/sable/internal/parser"
)

// lintNames warns about top level items whose names break the naming
// convention of their kind. Warnings never fail a check run.
func lintNames(crate *parser.Crate, diag *diagnostics.Builder) int {
	var warned int

	warn := func(kind, name, style, fixed string, span lexer.Span) {
		if fixed == name {
			return
		}

		diag.Diagnostic(span.Start.File).
			WarnSpanned(fmt.Sprintf("%s `%s` should have %s %s name", kind, name, article(style), style), span).
			SuggestSpanned(fmt.Sprintf("convert the identifier to %s: `%s`", style, fixed), span).
			Emit()

		warned++
	}

	for _, item := range crate.Items {
		switch it := item.(type) {
		case *parser.StaticVal:
			warn("static", it.Name, "upper case", toUpperSnake(it.Name), it.Span)
		case *parser.ConstVal:
			warn("constant", it.Name, "upper case", toUpperSnake(it.Name), it.Span)
		case *parser.StructDef:
			warn("type", it.Name, "upper camel case", toCamel(it.Name), it.Span)
		case *parser.TraitDef:
			warn("trait", it.Name, "upper camel case", toCamel(it.Name), it.Span)
		case *parser.FunctionDef:
			warn("function", it.Header.Name, "snake case", toSnake(it.Header.Name), it.Span)
		}
	}

	return warned
}

func article(word string) string {
	if strings.ContainsRune("aeiou", rune(word[0])) {
		return "an"
	}

	return "a"
}

// words splits an identifier on underscores and lower to upper case steps
func words(name string) []string {
	var (
		out     []string
		current []rune
	)

	flush := func() {
		if len(current) > 0 {
			out = append(out, string(current))
			current = current[:0]
		}
	}

	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_':
			flush()

			continue
		case unicode.IsUpper(r) && i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])):
			flush()
		}

		current = append(current, r)
	}

	flush()

	return out
}

// leading underscores mark intentionally unused names and are kept as is
func splitUnderscores(name string) (string, string) {
	rest := strings.TrimLeft(name, "_")

	return name[:len(name)-len(rest)], rest
}

func toUpperSnake(name string) string {
	prefix, rest := splitUnderscores(name)
	if !strings.ContainsFunc(rest, unicode.IsLower) {
		return name
	}

	return prefix + strings.ToUpper(strings.Join(words(rest), "_"))
}

func toSnake(name string) string {
	prefix, rest := splitUnderscores(name)
	if !strings.ContainsFunc(rest, unicode.IsUpper) {
		return name
	}

	return prefix + strings.ToLower(strings.Join(words(rest), "_"))
}

func toCamel(name string) string {
	prefix, rest := splitUnderscores(name)
	if rest == "" || (unicode.IsUpper([]rune(rest)[0]) && !strings.Contains(rest, "_")) {
		return name
	}

	var out strings.Builder

	out.WriteString(prefix)

	for _, w := range words(rest) {
		r := []rune(w)
		out.WriteString(string(unicode.ToUpper(r[0])) + string(r[1:]))
	}

	return out.String()
}
