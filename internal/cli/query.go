package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"modelite/internal/store"
)

// QueryResult holds the rows returned by an ad-hoc query.
type QueryResult struct {
	Rows  []map[string]any `json:"rows"`
	Count int              `json:"count"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "query --db <file> <sql> [args...]",
		Short: "Run a raw SQL statement against a database file",
		Long: `Run a raw SQL statement against a modelite SQLite database.

Positional arguments after the statement bind to ? placeholders in order.
Rows print as text or JSON per --format. Soft-deleted rows are visible:
this is the raw passthrough, not the model facade.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(rootOpts, dbPath, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "path to the SQLite database file (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runQuery(opts *RootOptions, dbPath, query string, rawArgs []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(dbPath); err != nil {
		msg := fmt.Sprintf("database not found: %s", dbPath)
		_ = formatter.Error("E110", msg, nil)
		return WrapExitError(ExitCommandError, msg, err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		_ = formatter.Error("E111", err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot open database", err)
	}
	defer st.Close()

	args := make([]any, len(rawArgs))
	for i, a := range rawArgs {
		args[i] = a
	}

	formatter.VerboseLog("Executing: %s (%d arg(s))", query, len(args))

	rows, err := st.Query(cmd.Context(), query, args...)
	if err != nil {
		_ = formatter.Error("E112", err.Error(), nil)
		return WrapExitError(ExitFailure, "query failed", err)
	}

	result := QueryResult{Rows: rows, Count: len(rows)}
	if formatter.Format == "json" {
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(CLIResponse{Status: "ok", Data: result})
	}

	printRowsText(formatter, rows)
	return nil
}

// printRowsText prints rows as "column=value" lines, one row per block.
func printRowsText(formatter *OutputFormatter, rows []map[string]any) {
	if len(rows) == 0 {
		fmt.Fprintln(formatter.Writer, "(0 rows)")
		return
	}

	for i, row := range rows {
		if i > 0 {
			fmt.Fprintln(formatter.Writer)
		}
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(formatter.Writer, "%s=%s\n", k, formatCell(row[k]))
		}
	}
	fmt.Fprintf(formatter.Writer, "\n(%d row(s))\n", len(rows))
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case string:
		return val
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}
