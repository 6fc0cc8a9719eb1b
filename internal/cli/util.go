package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/morozRed/moveprobe/internal/config"
	"github.com/morozRed/moveprobe/internal/logging"
	"github.com/morozRed/moveprobe/internal/parser"
)

func resolveWorkingDirectory() (string, error) {
	rootPath, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return rootPath, nil
}

// resolveProjectPath returns the absolute project root named by args[0], or
// the working directory when no argument is given.
func resolveProjectPath(args []string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return resolveWorkingDirectory()
	}
	rootPath, err := filepath.Abs(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to resolve project path: %w", err)
	}
	return rootPath, nil
}

// session is a configured logger plus a loaded project.
type session struct {
	root   string
	config *config.Config
	logger *slog.Logger
	loaded *parser.LoadResult
}

// openProject resolves config for rootPath, builds the logger and loads the
// project's AST dumps.
func openProject(cmd *cobra.Command, rootPath string) (*session, error) {
	cfg, err := config.Load(rootPath, cmd.Flags())
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if cfg.File != "" {
		logger.Debug("config.loaded", "file", cfg.File)
	}

	progress := newLoadProgress(cmd.ErrOrStderr())
	loaded, err := parser.Load(rootPath, parser.LoadOptions{
		ASTDir: cfg.ASTDir,
		Ignore: cfg.Ignore,
		Logger: logger,
		OnFile: progress.File,
	})
	progress.Finish()
	if err != nil {
		return nil, err
	}

	return &session{root: rootPath, config: cfg, logger: logger, loaded: loaded}, nil
}
