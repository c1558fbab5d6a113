// Package main provides sablec, the command line driver of the Sable front
// end. It routes subcommands to the compiler session and renders diagnostics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sable-lang/sable/internal/cli"
	"github.com/sable-lang/sable/internal/compiler"
	"github.com/sable-lang/sable/internal/diagnostics"
	"github.com/sable-lang/sable/internal/lexer"
	"github.com/sable-lang/sable/internal/parser"
)

const toolName = "sablec"

var commands = []cli.CommandInfo{
	{
		Name:        "check",
		Usage:       "sablec check [OPTIONS] [FILES|DIRS...]",
		Description: "Parse and type check a crate",
		Flags:       sessionFlags,
		Examples:    []string{"sablec check", "sablec check src/main.sb lib"},
	},
	{
		Name:        "watch",
		Usage:       "sablec watch [OPTIONS] [FILES|DIRS...]",
		Description: "Check again whenever a source file changes",
		Flags:       sessionFlags,
		Examples:    []string{"sablec watch -color always"},
	},
	{
		Name:        "parse",
		Usage:       "sablec parse FILE...",
		Description: "Print the syntax tree of source files",
	},
	{
		Name:        "tokens",
		Usage:       "sablec tokens FILE...",
		Description: "Print the token stream of source files",
	},
	{
		Name:        "init",
		Usage:       "sablec init [-name NAME] [DIR]",
		Description: "Create a manifest and a starter source file",
		Flags:       []cli.FlagInfo{{Name: "name", Usage: "Crate name", Default: "directory name"}},
	},
	{
		Name:        "version",
		Usage:       "sablec version [-json]",
		Description: "Print version information",
	},
}

var sessionFlags = []cli.FlagInfo{
	{Name: "config", Usage: "Path to the crate manifest", Default: cli.ManifestName},
	{Name: "color", Usage: "Colorize output: auto, always or never", Default: "auto"},
	{Name: "workers", Usage: "Number of parallel parser workers", Default: "number of CPUs"},
	{Name: "max-errors", Usage: "Stop reporting after this many errors (0 = no limit)", Default: "100"},
	{Name: "verbose", Usage: "Enable verbose output"},
	{Name: "debug", Usage: "Enable debug output"},
}

func main() {
	if len(os.Args) < 2 {
		cli.PrintUsage(os.Stderr, toolName, commands)
		os.Exit(1)
	}

	sub := os.Args[1]
	args := os.Args[2:]

	switch sub {
	case "help", "-h", "--help":
		if len(args) > 0 {
			if cmd, ok := cli.FindCommand(commands, args[0]); ok {
				cli.PrintCommandUsage(os.Stdout, toolName, cmd)

				return
			}
		}

		cli.PrintUsage(os.Stdout, toolName, commands)
	case "version", "-v", "--version":
		fs := flag.NewFlagSet("version", flag.ExitOnError)
		jsonOutput := fs.Bool("json", false, "print as JSON")
		_ = fs.Parse(args)
		cli.PrintVersion(os.Stdout, toolName, *jsonOutput)
	case "check":
		os.Exit(runCheck(args, false))
	case "watch":
		os.Exit(runCheck(args, true))
	case "parse":
		os.Exit(runParse(args))
	case "tokens":
		os.Exit(runTokens(args))
	case "init":
		runInit(args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", sub)
		cli.PrintUsage(os.Stderr, toolName, commands)
		os.Exit(1)
	}
}

// loadSession builds a session from the manifest, flags and positional sources
func loadSession(name string, args []string) (*compiler.Session, string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", cli.ManifestName, "path to the crate manifest")
	color := fs.String("color", "", "colorize output: auto, always or never")
	workers := fs.Int("workers", -1, "number of parallel parser workers")
	maxErrors := fs.Int("max-errors", -1, "stop reporting after this many errors")
	verbose := fs.Bool("verbose", false, "enable verbose output")
	debug := fs.Bool("debug", false, "enable debug output")

	fs.Usage = func() {
		if cmd, ok := cli.FindCommand(commands, name); ok {
			cli.PrintCommandUsage(os.Stderr, toolName, cmd)
		}
	}

	_ = fs.Parse(args)

	config, err := cli.LoadConfig(*configPath)
	if err != nil {
		cli.ExitWithError("%v", err)
	}

	if fs.NArg() > 0 {
		config.Sources = fs.Args()
		config.Dir = "."
	}

	if *color != "" {
		config.Color = *color
	}

	if *workers >= 0 {
		config.Workers = *workers
	}

	if *maxErrors >= 0 {
		config.MaxErrors = *maxErrors
	}

	config.Verbose = config.Verbose || *verbose
	config.Debug = config.Debug || *debug

	if err := config.Validate(); err != nil {
		cli.ExitWithError("%v", err)
	}

	logger := cli.NewLogger(config.Verbose, config.Debug)

	return compiler.NewSession(config, logger), config.Color
}

func runCheck(args []string, watch bool) int {
	name := "check"
	if watch {
		name = "watch"
	}

	session, color := loadSession(name, args)
	colorize := diagnostics.ShouldColorize(color, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	render := func(result *compiler.Result, err error) bool {
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)

			return false
		}

		diag := session.Diagnostics()
		if err := diag.Render(os.Stderr, colorize); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}

		if result.OK {
			fmt.Fprintf(os.Stderr, "Checked %d file(s), %d item(s): ok\n", len(result.Files), len(result.Items))
		} else {
			fmt.Fprintln(os.Stderr, diag.Summary())
		}

		return result.OK
	}

	if !watch {
		if render(session.Check(ctx)) {
			return 0
		}

		return 1
	}

	err := session.Watch(ctx, func(result *compiler.Result, err error) {
		render(result, err)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		return 1
	}

	return 0
}

func runParse(args []string) int {
	if err := cli.ValidateArgs(args, 1, "sablec parse FILE..."); err != nil {
		cli.ExitWithError("%v", err)
	}

	diag := diagnostics.NewBuilder()

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			cli.ExitWithError("%v", err)
		}

		diag.AddSource(path, string(data))

		crate, errs := parser.ParseSource(string(data), path)
		for _, err := range errs {
			diag.Report(err)
		}

		fmt.Printf("// %s\n%s\n", path, crate)
	}

	_ = diag.Render(os.Stderr, diagnostics.ShouldColorize(diagnostics.ColorAuto, os.Stderr))

	if diag.HasErrors() {
		return 1
	}

	return 0
}

func runTokens(args []string) int {
	if err := cli.ValidateArgs(args, 1, "sablec tokens FILE..."); err != nil {
		cli.ExitWithError("%v", err)
	}

	status := 0

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			cli.ExitWithError("%v", err)
		}

		for _, tok := range lexer.NewWithFilename(string(data), path).Tokenize() {
			if tok.Type == lexer.TokenInvalid {
				status = 1
			}

			fmt.Printf("%s\t%-14s %q\n", tok.Span.Start, tok.Type, tok.Literal)
		}
	}

	return status
}

func runInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	name := fs.String("name", "", "crate name")
	_ = fs.Parse(args)

	dir := "."
	if fs.NArg() > 0 {
		dir = fs.Arg(0)
	}

	config, err := compiler.InitCrate(dir, *name)
	cli.HandleError(err, cli.NewLogger(false, false))

	fmt.Printf("Created crate %s in %s\n", config.Name, filepath.Join(dir, cli.ManifestName))
}
