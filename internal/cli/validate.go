package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"modelite/internal/schema"
)

// FileResult holds the validation outcome for one schema file.
type FileResult struct {
	Path   string                   `json:"path"`
	Table  string                   `json:"table,omitempty"`
	Valid  bool                     `json:"valid"`
	Errors []schema.ValidationError `json:"errors,omitempty"`
}

// ValidationResult holds validation results across all files.
type ValidationResult struct {
	Valid bool         `json:"valid"`
	Files []FileResult `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <schema-file|dir>",
		Short: "Validate table schema declarations",
		Long: `Validate YAML or CUE table schema files.

Checks every declaration for reserved column names, duplicate columns,
unknown types, and malformed constraints. A directory argument validates
every .yaml, .yml, and .cue file it contains.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	files, err := schemaFiles(path)
	if err != nil {
		_ = formatter.Error("E100", err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot read schemas", err)
	}
	if len(files) == 0 {
		msg := fmt.Sprintf("no schema files (.yaml, .yml, .cue) found in %s", path)
		_ = formatter.Error("E101", msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	formatter.VerboseLog("Found %d schema file(s)", len(files))

	result := ValidationResult{Valid: true}
	for _, file := range files {
		fr := validateFile(file, formatter)
		if !fr.Valid {
			result.Valid = false
		}
		result.Files = append(result.Files, fr)
	}

	if !result.Valid {
		return outputValidationFailure(formatter, result)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ %d schema file(s) valid\n", len(files))
	return nil
}

// validateFile loads one schema file and collects its validation errors.
func validateFile(path string, formatter *OutputFormatter) FileResult {
	formatter.VerboseLog("Validating %s", path)

	fr := FileResult{Path: path}

	var table *schema.Table
	var err error
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		table, err = schema.LoadCUE(path)
	} else {
		table, err = schema.LoadYAML(path)
	}
	if err != nil {
		fr.Errors = []schema.ValidationError{{
			Field:   "load",
			Message: err.Error(),
			Code:    "E100",
		}}
		return fr
	}

	fr.Table = table.Name
	fr.Errors = table.Validate()
	fr.Valid = len(fr.Errors) == 0
	return fr
}

// schemaFiles resolves path to the list of schema files to validate.
func schemaFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml", ".cue":
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// outputValidationFailure reports the failing files and exits with code 1.
func outputValidationFailure(formatter *OutputFormatter, result ValidationResult) error {
	total := 0
	for _, fr := range result.Files {
		total += len(fr.Errors)
	}

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    "E102",
				Message: fmt.Sprintf("validation failed with %d error(s)", total),
			},
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", total))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, fr := range result.Files {
		if fr.Valid {
			continue
		}
		fmt.Fprintf(formatter.Writer, "%s\n", fr.Path)
		for _, e := range fr.Errors {
			fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n", e.Code, e.Field, e.Message)
		}
		fmt.Fprintln(formatter.Writer)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", total))
}
