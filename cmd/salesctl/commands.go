package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"salesanalytics/internal/apperr"
	"salesanalytics/internal/calculator"
	"salesanalytics/internal/exporter"
	"salesanalytics/internal/importer"
	"salesanalytics/internal/query"
	"salesanalytics/internal/util"
)

// userError 校验类错误给出原因，其余保留完整错误链
func userError(err error) error {
	if apperr.CodeOf(err) == apperr.CodeStorageFailure || apperr.CodeOf(err) == apperr.CodeInternal {
		return err
	}
	return fmt.Errorf("%s", apperr.UserMessage(err))
}

func newImportCmd(opts *globalOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import [file.xlsx]",
		Short: "Validate, normalize and store a sales workbook",
		Long: `Import the first sheet of an .xlsx workbook as the current dataset.

The header row must contain all 96 schema columns. Rows whose customer name is in
ingest.exclude_customers are dropped. On any validation error the stored dataset
is left untouched.

Example: salesctl import march.xlsx --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := opts.open()
			if err != nil {
				return err
			}
			defer ws.Close()

			path := args[0]
			var size int64
			if fi, err := os.Stat(path); err == nil {
				size = fi.Size()
			}

			out := cmd.OutOrStdout()
			for evt := range ws.ctrl.Import(cmd.Context(), importer.ImportOptions{
				FileName: filepath.Base(path),
				FilePath: path,
				FileSize: size,
				DryRun:   dryRun,
			}) {
				fmt.Fprintf(out, "[%s] %s\n", evt.Type, evt.Message)
				if evt.Type == importer.EventError {
					return fmt.Errorf("import failed: %s", evt.Message)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate and normalize without saving")
	return cmd
}

func newCustomersCmd(opts *globalOptions) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "customers",
		Short: "List customers by total computed price",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := opts.open()
			if err != nil {
				return err
			}
			defer ws.Close()

			a, err := ws.ctrl.Analytics(cmd.Context(), "")
			if err != nil {
				return userError(err)
			}

			out := cmd.OutOrStdout()
			printIndicators(out, a.Indicators)
			fmt.Fprintf(out, "Scale: %s\n\n", a.Scale.Mode)

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tCUSTOMER\tTOTAL\tRECORDS")
			for i, c := range calculator.Top(a.Customers, top) {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", i+1, c.CustomerName, util.FormatRupees(c.TotalComputedPrice), c.RecordCount)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&top, "top", 0, "Only show the top N customers (0 = all)")
	return cmd
}

func printIndicators(w io.Writer, cards []calculator.Indicator) {
	for _, c := range cards {
		value := util.FormatCount(c.Value)
		if c.Unit != "" {
			value = c.Unit + value
		}
		fmt.Fprintf(w, "%s: %s\n", c.Name, value)
	}
}

func newRecordsCmd(opts *globalOptions) *cobra.Command {
	var (
		req    query.Request
		desc   bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "records",
		Short: "Search, sort and page through the stored records",
		Long: `Query the stored records ten rows at a time.

Example: salesctl records --search acme --sort "Computed Price" --desc --page 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := opts.open()
			if err != nil {
				return err
			}
			defer ws.Close()

			req.Direction = query.Asc
			if desc {
				req.Direction = query.Desc
			}
			res, err := ws.ctrl.Query(cmd.Context(), req)
			if err != nil {
				return userError(err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, strings.Join(query.DisplayColumns, "\t"))
			for i := range res.Rows {
				fmt.Fprintln(tw, strings.Join(query.Project(&res.Rows[i], query.DisplayColumns), "\t"))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%s (page %d of %d)\n", res.Showing(), res.Page, res.PageCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Customer, "customer", "", "Exact customer name filter")
	cmd.Flags().StringVar(&req.Search, "search", "", "Case-insensitive search across all fields")
	cmd.Flags().StringVar(&req.SortColumn, "sort", "", "Column to sort by")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	cmd.Flags().IntVar(&req.Page, "page", 1, "Page number (clamped to the available pages)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func newExportCmd(opts *globalOptions) *cobra.Command {
	var (
		req    query.Request
		desc   bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered records to an .xlsx workbook",
		Long: `Write every record matching the filters (not just one page) to a workbook
using the table's display columns. Progress is reported on stderr.

Example: salesctl export --customer "Acme Ltd" -o acme.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := opts.open()
			if err != nil {
				return err
			}
			defer ws.Close()

			req.Direction = query.Asc
			if desc {
				req.Direction = query.Desc
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}

			progress := cmd.ErrOrStderr()
			n, err := ws.ctrl.Export(cmd.Context(), req, f, func(p exporter.ProgressEvent) {
				fmt.Fprintf(progress, "[export] %s\n", p)
			})
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				_ = os.Remove(output)
				return userError(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s records to %s\n", util.FormatCount(float64(n)), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Customer, "customer", "", "Exact customer name filter")
	cmd.Flags().StringVar(&req.Search, "search", "", "Case-insensitive search across all fields")
	cmd.Flags().StringVar(&req.SortColumn, "sort", "", "Column to sort by")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	cmd.Flags().StringVarP(&output, "output", "o", "sales_records.xlsx", "Destination workbook path")
	return cmd
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := opts.open()
			if err != nil {
				return err
			}
			defer ws.Close()

			st, err := ws.ctrl.Status(cmd.Context())
			if err != nil {
				return userError(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Driver: %s\n", ws.cfg.Store.Driver)
			if !st.HasData {
				fmt.Fprintln(out, "No dataset stored.")
				return nil
			}
			fmt.Fprintf(out, "Source:  %s\n", st.Info.SourceFile)
			fmt.Fprintf(out, "Version: %s\n", st.Info.Version)
			fmt.Fprintf(out, "Records: %s\n", util.FormatCount(float64(st.Info.RecordCount)))
			fmt.Fprintf(out, "Saved:   %s\n", st.Info.SavedAt.Local().Format(time.DateTime))
			return nil
		},
	}
}

func newClearCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := opts.open()
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.ctrl.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Dataset cleared.")
			return nil
		},
	}
}

func newImportsCmd(opts *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "imports",
		Short: "Show recent import logs (SQL stores only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := opts.open()
			if err != nil {
				return err
			}
			defer ws.Close()

			logs, err := ws.ctrl.ImportLogs(cmd.Context(), limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tFILE\tSTATUS\tROWS\tIMPORTED\tEXCLUDED\tCREATED")
			for _, l := range logs {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%s\n", l.ID, l.Filename, l.Status, l.TotalRows, l.ImportedRows, l.ExcludedRows, l.CreatedAt)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of logs to show")
	return cmd
}
