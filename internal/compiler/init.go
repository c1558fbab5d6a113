package compiler

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/sable-lang/sable/internal/cli"
)

const mainTemplate = `struct Point {
    x: i32,
    y: i32,
}

const ORIGIN: Point = Point { x: 0, y: 0 };

fn add(a: i32, b: i32) -> i32 {
    a + b
}
`

// InitCrate writes a manifest and a starter source file into dir. It
// refuses to overwrite an existing manifest.
func InitCrate(dir, name string) (*cli.Config, error) {
	manifest := filepath.Join(dir, cli.ManifestName)

	if _, err := os.Stat(manifest); err == nil {
		return nil, errors.Errorf("%s already exists", manifest)
	}

	if name == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, errors.Wrap(err, "resolving crate directory")
		}

		name = filepath.Base(abs)
	}

	src := filepath.Join(dir, "src")
	if err := os.MkdirAll(src, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating source directory")
	}

	mainFile := filepath.Join(src, "main"+SourceExt)
	if _, err := os.Stat(mainFile); os.IsNotExist(err) {
		if err := os.WriteFile(mainFile, []byte(mainTemplate), 0o644); err != nil {
			return nil, errors.Wrap(err, "writing starter source")
		}
	}

	config := cli.DefaultConfig()
	config.Name = name
	config.Version = "0.1.0"
	config.Compiler = ">= " + cli.Version
	config.Sources = []string{"src"}
	config.Dir = dir

	if err := config.SaveConfig(manifest); err != nil {
		return nil, err
	}

	return config, nil
}
