package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/morozRed/moveprobe/internal/analyzer"
	"github.com/morozRed/moveprobe/internal/output"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "moveprobe",
		Short: "Analyze functions in Move smart-contract projects",
		Long: `Moveprobe reports on Move functions by name: the rendered signature,
the source text with its doc comment, the file and line span, the typed
parameters and the project functions each definition calls.

It reads the typed AST dumps a Move front-end writes under .moveprobe/ast/.`,
		SilenceUsage: true,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze <project> <function>",
		Short: "Analyze every definition of a function",
		Args:  cobra.ExactArgs(2),
		RunE:  RunAnalyze,
	}
	analyzeCmd.Flags().String("format", string(output.FormatJSON), "Output format: json|jsonl|text")
	analyzeCmd.Flags().StringP("out", "o", "", "Write the report to a file instead of stdout")
	analyzeCmd.Flags().String("sqlite", "", "Also save the report to a SQLite database")
	analyzeCmd.Flags().Int("concurrency", analyzer.DefaultConcurrency, "Definitions analyzed in parallel")
	analyzeCmd.Flags().Bool("include-specs", false, "Collect calls inside spec blocks and quantifiers")
	addProjectFlags(analyzeCmd)

	functionsCmd := &cobra.Command{
		Use:   "functions <project>",
		Short: "List every function in the project",
		Args:  cobra.ExactArgs(1),
		RunE:  RunFunctions,
	}
	functionsCmd.Flags().Bool("json", false, "Print machine-readable function list")
	functionsCmd.Flags().String("search", "", "Rank functions against a free-text query")
	addProjectFlags(functionsCmd)

	showCmd := &cobra.Command{
		Use:   "show <db>",
		Short: "Print a report saved with analyze --sqlite",
		Args:  cobra.ExactArgs(1),
		RunE:  RunShow,
	}
	showCmd.Flags().String("format", string(output.FormatJSON), "Output format: json|jsonl|text")

	callersCmd := &cobra.Command{
		Use:   "callers <db> <module>",
		Short: "List analyzed functions' contracts that call into a module",
		Args:  cobra.ExactArgs(2),
		RunE:  RunCallers,
	}
	callersCmd.Flags().Bool("json", false, "Print machine-readable caller results")

	doctorCmd := &cobra.Command{
		Use:   "doctor [project]",
		Short: "Validate project layout, manifest and AST dumps",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunDoctor,
	}
	doctorCmd.Flags().Bool("json", false, "Print machine-readable doctor output")
	addProjectFlags(doctorCmd)

	initCmd := &cobra.Command{
		Use:   "init [project]",
		Short: "Write a starter moveprobe.yaml and .moveprobeignore",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunInit,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "moveprobe %s\n", version)
		},
	}

	rootCmd.AddCommand(
		analyzeCmd,
		functionsCmd,
		showCmd,
		callersCmd,
		doctorCmd,
		initCmd,
		versionCmd,
	)

	return rootCmd
}

func addProjectFlags(cmd *cobra.Command) {
	cmd.Flags().String("ast-dir", "", "AST dump directory, relative to the project root")
	cmd.Flags().String("log-level", "", "Log level: debug|info|warn|error")
}
