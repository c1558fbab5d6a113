package compiler

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sable-lang/sable/internal/collector"
	"github.com/sable-lang/sable/internal/parser"
)

// SourceExt is the file extension of source files
const SourceExt = ".sb"

// ParsedFile is the parse result of one source file
type ParsedFile struct {
	Index  int
	Path   string
	Source string
	Crate  *parser.Crate
	Errors []error
}

// ExpandSources turns files and directories into a sorted, duplicate free
// list of source files. Directories are searched recursively.
func ExpandSources(paths []string) ([]string, error) {
	seen := make(map[string]bool)

	var files []string

	add := func(path string) {
		clean := filepath.Clean(path)
		if !seen[clean] {
			seen[clean] = true
			files = append(files, clean)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, errors.Wrapf(err, "source %s", path)
		}

		if !info.IsDir() {
			add(path)

			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if !d.IsDir() && filepath.Ext(p) == SourceExt {
				add(p)
			}

			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "walking %s", path)
		}
	}

	sort.Strings(files)

	return files, nil
}

// ParseFiles reads and parses files with at most WorkerCount goroutines.
// Results come back in the order of files.
func (s *Session) ParseFiles(ctx context.Context, files []string) ([]ParsedFile, error) {
	results := collector.New[ParsedFile](len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.WorkerCount())

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, "reading %s", path)
			}

			crate, errs := parser.ParseSource(string(data), path)
			s.logger.Debug("parsed %s: %d item(s), %d error(s)", path, len(crate.Items), len(errs))

			_, err = results.Push(ParsedFile{
				Index:  i,
				Path:   path,
				Source: string(data),
				Crate:  crate,
				Errors: errs,
			})

			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	parsed, err := results.Items()
	if err != nil {
		return nil, err
	}

	sort.Slice(parsed, func(i, j int) bool { return parsed[i].Index < parsed[j].Index })

	return parsed, nil
}
