package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/morozRed/moveprobe/internal/config"
	"github.com/morozRed/moveprobe/internal/fileutil"
	"github.com/morozRed/moveprobe/internal/ignore"
	"github.com/morozRed/moveprobe/internal/parser"
)

const configTemplate = `# moveprobe settings. MOVEPROBE_* environment variables and flags override these.
ast_dir: %s
concurrency: 4
include_specs: false
log_level: warn
ignore: []
rules:
  # Extra names added to the built-in tables; the defaults always apply.
  builtins: []
  std_modules: []
  std_addresses: []
  accessors: []
`

// RunInit handles `moveprobe init [project]`. Existing files are left alone.
func RunInit(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveProjectPath(args)
	if err != nil {
		return err
	}
	if info, err := os.Stat(rootPath); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: project path is not a directory: %s", parser.ErrInvalidProject, rootPath)
	}

	configPath := filepath.Join(rootPath, config.FileName+".yaml")
	configBody := fmt.Sprintf(configTemplate, parser.DefaultASTDir)
	if err := fileutil.WriteIfMissing(configPath, []byte(configBody), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	ignorePath := filepath.Join(rootPath, ignore.FileName)
	ignoreBody := "# Paths under the AST dump directory to skip, gitignore syntax.\n*.bak\nscratch/\n"
	if err := fileutil.WriteIfMissing(ignorePath, []byte(ignoreBody), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", ignorePath, err)
	}

	astDir := filepath.Join(rootPath, parser.DefaultASTDir)
	if err := os.MkdirAll(astDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", astDir, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized moveprobe in %s\n", rootPath)
	return nil
}
