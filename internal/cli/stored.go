package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/morozRed/moveprobe/internal/fileutil"
	"github.com/morozRed/moveprobe/internal/output"
	"github.com/morozRed/moveprobe/internal/store"
)

// RunShow handles `moveprobe show <db>`: it re-renders a report saved with
// `analyze --sqlite`.
func RunShow(cmd *cobra.Command, args []string) error {
	format, err := ParseOutputFormat(cmd)
	if err != nil {
		return err
	}
	_, analyses, err := store.Load(args[0])
	if err != nil {
		return err
	}
	return output.Write(cmd.OutOrStdout(), format, analyses)
}

// CallersResult is the output of `moveprobe callers --json`.
type CallersResult struct {
	Module  string   `json:"module"`
	Query   string   `json:"query"`
	Callers []string `json:"callers"`
}

// RunCallers handles `moveprobe callers <db> <module>`.
func RunCallers(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	dbPath, module := args[0], args[1]

	query, _, err := store.Load(dbPath)
	if err != nil {
		return err
	}
	callers, err := store.CallersOf(dbPath, module)
	if err != nil {
		return err
	}
	if callers == nil {
		callers = []string{}
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return fileutil.PrintJSON(out, CallersResult{Module: module, Query: query, Callers: callers})
	}
	for _, caller := range callers {
		fmt.Fprintln(out, caller)
	}
	return nil
}
