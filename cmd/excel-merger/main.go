// Package main provides the CLI entry point for excel-merger.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DaJu-Duck/excel-merger/pkg/merger"
	"github.com/DaJu-Duck/excel-merger/pkg/merger/jobspec"
	"github.com/DaJu-Duck/excel-merger/pkg/merger/model"
	"github.com/DaJu-Duck/excel-merger/pkg/merger/xlsxio"
)

var (
	jobPath string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "excel-merger",
		Short: "Merge spreadsheet datasets using declared relational strategies",
		Long: `excel-merger combines multiple xlsx datasets into one output using a
declared relation (simple, single, chain or star), optionally preserving
formulas and styles on appended rows.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&jobPath, "job", "j", "", "Path to the YAML job file")
	_ = rootCmd.MarkPersistentFlagRequired("job")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress and diagnostics")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "merge",
			Short: "Run a relational merge (single, chain or star) into one table",
			RunE:  runMerge,
		},
		&cobra.Command{
			Use:   "simple",
			Short: "Concatenate selected sheets across datasets, removing duplicate rows",
			RunE:  runSimple,
		},
		&cobra.Command{
			Use:   "append",
			Short: "Append datasets onto the base workbook, propagating formulas and styles",
			RunE:  runAppend,
		},
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the job file, registers its datasets and builds an engine.
func setup() (*jobspec.Job, []model.Dataset, *merger.Engine, error) {
	job, err := jobspec.Load(jobPath)
	if err != nil {
		return nil, nil, nil, err
	}
	reader := xlsxio.Reader{}
	datasets, err := job.Build(reader)
	if err != nil {
		return nil, nil, nil, err
	}

	opts := merger.DefaultOptions()
	if verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, nil, nil, err
		}
		opts.Logger = logger.Sugar()
		opts.Progress = func(ev merger.Event) {
			fmt.Fprintf(os.Stderr, "[%3.0f%%] %s: %s\n", ev.Fraction*100, ev.Stage, ev.Message)
		}
	}
	return job, datasets, merger.New(reader, opts), nil
}

func runMerge(cmd *cobra.Command, args []string) error {
	job, datasets, engine, err := setup()
	if err != nil {
		return err
	}
	if job.Output == "" {
		return fmt.Errorf("job file declares no output path")
	}

	table, report, err := engine.Merge(cmd.Context(), &job.Relation, datasets, job.Columns)
	printReport(report)
	if err != nil {
		return err
	}

	writer := xlsxio.NewWriter(job.Output)
	defer writer.Close()
	if err := writer.WriteTable("merged", table); err != nil {
		return err
	}
	if err := writer.Save(); err != nil {
		return err
	}
	fmt.Printf("wrote %d rows, %d columns to %s\n", table.RowCount(), len(table.Columns), job.Output)
	return nil
}

func runSimple(cmd *cobra.Command, args []string) error {
	job, datasets, engine, err := setup()
	if err != nil {
		return err
	}
	if job.Output == "" {
		return fmt.Errorf("job file declares no output path")
	}

	writer := xlsxio.NewWriter(job.Output)
	defer writer.Close()
	counts, report, err := engine.MergeSimple(cmd.Context(), job.Relation.SelectedSheets, datasets, writer)
	printReport(report)
	if err != nil {
		return err
	}
	if err := writer.Save(); err != nil {
		return err
	}
	for sheet, n := range counts {
		fmt.Printf("sheet %q: %d rows\n", sheet, n)
	}
	return nil
}

func runAppend(cmd *cobra.Command, args []string) error {
	job, datasets, engine, err := setup()
	if err != nil {
		return err
	}
	if len(datasets) < 2 {
		return fmt.Errorf("append needs a base dataset and at least one more")
	}
	if job.Output == "" {
		return fmt.Errorf("job file declares no output path")
	}

	// The base dataset's workbook becomes the output; work on a copy unless
	// the job asks for in-place modification.
	if job.Output != datasets[0].Source {
		if err := copyFile(datasets[0].Source, job.Output); err != nil {
			return err
		}
	}
	wb, err := xlsxio.OpenForAppend(job.Output)
	if err != nil {
		return err
	}
	defer wb.Close()

	stats, report, err := engine.AppendWithFormulas(cmd.Context(), job.Relation.SelectedSheets, datasets, wb)
	printReport(report)
	if err != nil {
		return err
	}
	for sheet, st := range stats {
		fmt.Printf("sheet %q: %d original rows, %d added\n", sheet, st.OriginalRows, st.AddedRows)
	}
	return nil
}

func printReport(report *merger.Report) {
	if report == nil || !report.HasIssues() {
		return
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if report.Skipped != nil {
		fmt.Fprintf(os.Stderr, "skipped: %v\n", report.Skipped)
	}
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
