package diagnostics

import (
	"os"

	"github.com/mattn/go-isatty"
)

// Colour modes accepted by ShouldColorize
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ShouldColorize resolves a colour mode for output written to f.
// In auto mode colour is used only on terminals and when NO_COLOR is unset.
func ShouldColorize(mode string, f *os.File) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}

	if f == nil {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
