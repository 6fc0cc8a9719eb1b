package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/morozRed/moveprobe/internal/analyzer"
	"github.com/morozRed/moveprobe/internal/fileutil"
	"github.com/morozRed/moveprobe/internal/output"
	"github.com/morozRed/moveprobe/internal/search"
	"github.com/morozRed/moveprobe/internal/store"
)

// RunAnalyze handles `moveprobe analyze <project> <function>`.
func RunAnalyze(cmd *cobra.Command, args []string) error {
	format, err := ParseOutputFormat(cmd)
	if err != nil {
		return err
	}
	outPath, err := OptionalStringFlag(cmd, "out")
	if err != nil {
		return err
	}
	sqlitePath, err := OptionalStringFlag(cmd, "sqlite")
	if err != nil {
		return err
	}

	rootPath, err := resolveProjectPath(args[:1])
	if err != nil {
		return err
	}
	sess, err := openProject(cmd, rootPath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a := analyzer.New(sess.loaded.Project, analyzer.Options{
		Logger:      sess.logger,
		Concurrency: sess.config.Concurrency,
		Extract:     sess.config.ExtractOptions(),
	})
	name := args[1]
	results, err := a.Analyze(ctx, name)
	if errors.Is(err, analyzer.ErrFunctionNotFound) {
		if hints := search.Suggest(search.Build(a.Index()), name, 3); len(hints) > 0 {
			return fmt.Errorf("%w (did you mean %s?)", err, strings.Join(hints, ", "))
		}
	}
	if err != nil {
		return err
	}
	sess.logger.Info("analyze.done", "function", name, "definitions", len(results))

	var buf bytes.Buffer
	if err := output.Write(&buf, format, results); err != nil {
		return err
	}
	if outPath != "" {
		if err := fileutil.WriteIfChanged(outPath, buf.Bytes()); err != nil {
			return fmt.Errorf("failed to write %s: %w", outPath, err)
		}
	} else if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
		return err
	}

	if sqlitePath != "" {
		if err := store.Save(sqlitePath, name, results); err != nil {
			return fmt.Errorf("failed to save %s: %w", sqlitePath, err)
		}
		sess.logger.Info("store.saved", "path", sqlitePath, "definitions", len(results))
	}
	return nil
}
