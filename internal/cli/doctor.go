package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/morozRed/moveprobe/internal/config"
	"github.com/morozRed/moveprobe/internal/fileutil"
	"github.com/morozRed/moveprobe/internal/ignore"
	"github.com/morozRed/moveprobe/internal/index"
	"github.com/morozRed/moveprobe/internal/logging"
	"github.com/morozRed/moveprobe/internal/parser"
)

// DoctorSummary is the result of `moveprobe doctor`.
type DoctorSummary struct {
	Mode        string   `json:"mode"`
	RootPath    string   `json:"root_path"`
	ConfigFile  string   `json:"config_file,omitempty"`
	ASTDir      string   `json:"ast_dir"`
	Package     string   `json:"package,omitempty"`
	SourceFiles int      `json:"source_files"`
	TestFiles   int      `json:"test_files"`
	Modules     int      `json:"modules"`
	Functions   int      `json:"functions"`
	Issues      []string `json:"issues,omitempty"`
	Missing     []string `json:"missing,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Healthy     bool     `json:"healthy"`
}

// RunDoctor handles `moveprobe doctor [project]`. Problems are reported in
// the summary rather than returned as errors.
func RunDoctor(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveProjectPath(args)
	if err != nil {
		return err
	}
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}

	summary := DoctorSummary{Mode: "doctor", RootPath: rootPath}

	cfg, err := config.Load(rootPath, cmd.Flags())
	if err != nil {
		summary.Missing = append(summary.Missing, "valid "+config.FileName+".yaml")
		summary.Issues = append(summary.Issues, err.Error())
		return printDoctor(cmd, summary, asJSON)
	}
	summary.ConfigFile = cfg.File
	summary.ASTDir = cfg.ASTDir
	if cfg.File == "" {
		summary.Suggestions = append(summary.Suggestions, "run moveprobe init to write "+config.FileName+".yaml")
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}

	if err := parser.ValidateProject(rootPath); err != nil {
		summary.Missing = append(summary.Missing, "valid Move project layout")
		summary.Issues = append(summary.Issues, err.Error())
		return printDoctor(cmd, summary, asJSON)
	}
	if _, err := ignore.LoadRules(rootPath); err != nil {
		summary.Issues = append(summary.Issues, err.Error())
	}

	loaded, err := parser.Load(rootPath, parser.LoadOptions{
		ASTDir: cfg.ASTDir,
		Ignore: cfg.Ignore,
		Logger: logger,
	})
	if err != nil {
		summary.Missing = append(summary.Missing, "decodable AST dumps in "+filepath.ToSlash(cfg.ASTDir))
		summary.Issues = append(summary.Issues, err.Error())
		summary.Suggestions = append(summary.Suggestions, "run the Move front-end to dump ASTs into "+filepath.ToSlash(cfg.ASTDir))
		return printDoctor(cmd, summary, asJSON)
	}

	summary.Package = loaded.Manifest.Package.Name
	for _, file := range loaded.Project.Files {
		if file.IsTest {
			summary.TestFiles++
		} else {
			summary.SourceFiles++
		}
		summary.Modules += len(file.Definitions)
		for _, mod := range file.Definitions {
			if mod.AddressName == "" {
				continue
			}
			if _, ok := loaded.Manifest.ResolveAddress(mod.AddressName); !ok {
				summary.Issues = append(summary.Issues, fmt.Sprintf("module %s: named address %q is not assigned in %s", mod.Name, mod.AddressName, parser.ManifestFile))
			}
		}
	}
	summary.Functions = len(index.New(loaded.Project).All())
	for _, issue := range loaded.Issues {
		summary.Issues = append(summary.Issues, fmt.Sprintf("%s: %s", issue.File, issue.Message))
	}

	return printDoctor(cmd, summary, asJSON)
}

func printDoctor(cmd *cobra.Command, summary DoctorSummary, asJSON bool) error {
	summary.Missing = dedupeSorted(summary.Missing)
	summary.Suggestions = dedupeSorted(summary.Suggestions)
	summary.Healthy = len(summary.Missing) == 0 && len(summary.Issues) == 0

	out := cmd.OutOrStdout()
	if asJSON {
		return fileutil.PrintJSON(out, summary)
	}

	status := "issues"
	if summary.Healthy {
		status = "ok"
	}
	fmt.Fprintf(out, "doctor: %s\n", status)
	if summary.Package != "" {
		fmt.Fprintf(out, "package: %s\n", summary.Package)
	}
	fmt.Fprintf(out, "project: source_files=%d test_files=%d modules=%d functions=%d\n",
		summary.SourceFiles, summary.TestFiles, summary.Modules, summary.Functions)
	if summary.ConfigFile != "" {
		fmt.Fprintf(out, "config: %s\n", summary.ConfigFile)
	}
	for _, issue := range summary.Issues {
		fmt.Fprintf(out, "issue: %s\n", issue)
	}
	if len(summary.Missing) > 0 {
		fmt.Fprintf(out, "missing (%d): %s\n", len(summary.Missing), strings.Join(summary.Missing, ", "))
	}
	for _, suggestion := range summary.Suggestions {
		fmt.Fprintf(out, "next: %s\n", suggestion)
	}
	return nil
}

func dedupeSorted(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
