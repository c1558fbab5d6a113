// Package compiler drives the front end over a crate on disk: it expands
// source paths, parses files in parallel, type checks the merged crate
// and reports everything through one diagnostics builder.
package compiler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/sable-lang/sable/internal/cli"
	"github.com/sable-lang/sable/internal/diagnostics"
	"github.com/sable-lang/sable/internal/parser"
	"github.com/sable-lang/sable/internal/types"
)

// Session holds the state of one compiler invocation
type Session struct {
	id       string
	config   *cli.Config
	logger   *cli.Logger
	diag     *diagnostics.Builder
	debounce time.Duration
}

// Result is the outcome of one check run
type Result struct {
	Files []string
	Items []types.ItemResult
	Ctx   *types.TyCtx
	OK    bool
}

// NewSession creates a session for config. A nil logger discards Info and Debug output.
func NewSession(config *cli.Config, logger *cli.Logger) *Session {
	if config == nil {
		config = cli.DefaultConfig()
	}

	if logger == nil {
		logger = cli.NewLogger(false, false)
	}

	id := uuid.NewString()

	diag := diagnostics.NewBuilder()
	diag.SetErrorLimit(config.MaxErrors)

	return &Session{
		id:       id,
		config:   config,
		logger:   logger.WithPrefix(id[:8]),
		diag:     diag,
		debounce: 100 * time.Millisecond,
	}
}

// ID returns the unique session identifier
func (s *Session) ID() string {
	return s.id
}

// Config returns the session configuration
func (s *Session) Config() *cli.Config {
	return s.config
}

// Diagnostics returns the builder holding the last run's diagnostics
func (s *Session) Diagnostics() *diagnostics.Builder {
	return s.diag
}

// Check parses and type checks every source of the crate. Parse and type
// errors go to the diagnostics builder; the returned error is reserved for
// failures that stop the run, such as unreadable files.
func (s *Session) Check(ctx context.Context) (*Result, error) {
	start := time.Now()

	files, err := ExpandSources(s.config.SourcePaths())
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, errors.Errorf("no %s files found in %v", SourceExt, s.config.Sources)
	}

	s.logger.Info("checking %d file(s)", len(files))

	parsed, err := s.ParseFiles(ctx, files)
	if err != nil {
		return nil, err
	}

	s.diag.Reset()

	crate := &parser.Crate{}
	parseOK := true

	for _, pf := range parsed {
		s.diag.AddSource(pf.Path, pf.Source)

		for _, perr := range pf.Errors {
			s.diag.Report(perr)

			parseOK = false
		}

		crate.Items = append(crate.Items, pf.Crate.Items...)
	}

	s.logger.Debug("merged %d item(s)", len(crate.Items))

	if n := lintNames(crate, s.diag); n > 0 {
		s.logger.Debug("%d naming warning(s)", n)
	}

	tyCtx, results, ok := types.CheckCrate(crate, s.diag)
	s.diag.Sort()

	s.logger.Info("checked in %s: %d error(s)", time.Since(start).Round(time.Microsecond), s.diag.ErrorCount())

	return &Result{
		Files: files,
		Items: results,
		Ctx:   tyCtx,
		OK:    ok && parseOK,
	}, nil
}
