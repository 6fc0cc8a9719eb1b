// Package analyzer produces function reports for every definition matching a
// name.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/morozRed/moveprobe/internal/ast"
	"github.com/morozRed/moveprobe/internal/callgraph"
	"github.com/morozRed/moveprobe/internal/index"
	"github.com/morozRed/moveprobe/internal/report"
	"github.com/morozRed/moveprobe/internal/signature"
)

var (
	// ErrInvalidName is returned for an empty or blank function name.
	ErrInvalidName = errors.New("function name must not be empty")
	// ErrFunctionNotFound is matched by NotFoundError.
	ErrFunctionNotFound = errors.New("function not found")
	// ErrAnalysisFailed is returned when no matching definition could be analyzed.
	ErrAnalysisFailed = errors.New("analysis failed")
)

// DefaultConcurrency bounds how many definitions are analyzed at once.
const DefaultConcurrency = 4

// NotFoundError reports a name with no matching definitions.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("function %q not found in project", e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrFunctionNotFound
}

// Options configure an Analyzer.
type Options struct {
	Logger      *slog.Logger
	Concurrency int
	Extract     callgraph.Options
}

// Analyzer answers analysis requests over one immutable project.
type Analyzer struct {
	index       *index.Index
	extractor   *callgraph.Extractor
	logger      *slog.Logger
	concurrency int
}

// New builds an analyzer over project.
func New(project *ast.Project, opts Options) *Analyzer {
	idx := index.New(project)
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Analyzer{
		index:       idx,
		extractor:   callgraph.New(idx, opts.Extract),
		logger:      logger,
		concurrency: concurrency,
	}
}

// Index exposes the lookups the analyzer runs on.
func (a *Analyzer) Index() *index.Index {
	return a.index
}

// Analyze reports on every definition named name, in supply order. A
// definition that fails is replaced by a degraded record; the call only fails
// when every definition does.
func (a *Analyzer) Analyze(ctx context.Context, name string) ([]report.FunctionAnalysis, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidName
	}
	refs := a.index.FindByName(name)
	if len(refs) == 0 {
		return nil, &NotFoundError{Name: name}
	}

	results := make([]report.FunctionAnalysis, len(refs))
	errs := make([]error, len(refs))

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, ref := range refs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			started := time.Now()
			result, err := a.analyzeDefinition(ref)
			if err != nil {
				errs[i] = err
				result = degraded(ref, err)
				a.logger.Warn("analyze.degraded", "module", ref.Module.Name, "function", name, "error", err)
			}
			results[i] = result
			a.logger.Debug("analyze.definition", "module", ref.Module.Name, "function", name, "elapsed", time.Since(started))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if failed == len(refs) {
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, errors.Join(errs...))
	}
	return results, nil
}

func (a *Analyzer) analyzeDefinition(ref index.FunctionRef) (report.FunctionAnalysis, error) {
	fn := ref.Function
	qualified := ref.Module.Name + "::" + fn.Name

	src, err := signature.ExtractSource(ref.Module.FilePath, fn.Loc)
	if err != nil {
		return report.FunctionAnalysis{}, fmt.Errorf("%s: %w", qualified, err)
	}
	calls, err := a.extractor.Extract(fn.Body, ref.Module)
	if err != nil {
		return report.FunctionAnalysis{}, fmt.Errorf("%s: %w", qualified, err)
	}

	return report.FunctionAnalysis{
		Contract: ref.Module.Name,
		Function: signature.Build(fn),
		Source:   src.Text,
		Location: report.Location{
			File:      ref.Module.FilePath,
			StartLine: src.StartLine,
			EndLine:   src.EndLine,
		},
		Parameters: signature.Parameters(fn),
		Calls:      calls,
	}, nil
}

// degraded is the placeholder record for a definition whose analysis failed.
func degraded(ref index.FunctionRef, cause error) report.FunctionAnalysis {
	return report.FunctionAnalysis{
		Contract:   ref.Module.Name,
		Function:   signature.Minimal(ref.Function),
		Source:     "// analysis failed: " + cause.Error(),
		Location:   report.Location{File: ref.Module.FilePath},
		Parameters: []report.Parameter{},
		Calls:      []report.FunctionCall{},
	}
}
