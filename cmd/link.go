package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/orglink/internal/export"
	"github.com/sells-group/orglink/internal/fetcher"
	"github.com/sells-group/orglink/internal/linkage"
	"github.com/sells-group/orglink/internal/model"
	"github.com/sells-group/orglink/internal/search"
	"github.com/sells-group/orglink/internal/store"
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link every record of an input file to a directory listing",
	Long: `Reads name, location and url columns from a CSV or XLSX file, searches the
telephone directory for each name and keeps the listing whose address
matches. Every record is checkpointed to the store as it completes, so an
interrupted run can be picked up again with --resume.

Examples:
  # Address matching, results next to the input
  link --input companies.csv

  # Validate address matches by company name and also write XLSX
  link --input companies.xlsx --mode name --xlsx linked.xlsx

  # Continue an interrupted run
  link --input companies.csv --resume 3f6c0a1e-...`,
	RunE: runLink,
}

func init() {
	f := linkCmd.Flags()
	f.String("input", "", "input CSV or XLSX file with name, location and url columns")
	f.String("output", "", "output CSV path (default: <input>_linked.csv)")
	f.String("xlsx", "", "also write results to this XLSX path")
	f.String("headers", "", "YAML file overriding the XLSX header labels")
	f.String("mode", string(model.ModeAddress), "matching mode: address or name")
	f.String("resume", "", "resume the run with this ID")
	f.String("base-url", "", "directory base URL (overrides config)")
	f.Float64("address-threshold", 0, "minimum address score (overrides config)")
	f.Float64("name-threshold", 0, "minimum name score (overrides config)")
	addTableFlags(linkCmd)
	_ = linkCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(linkCmd)
}

func runLink(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	applyLinkOverrides(cmd)
	if err := cfg.Validate("link"); err != nil {
		return err
	}

	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = defaultOutputPath(input)
	}
	modeFlag, _ := cmd.Flags().GetString("mode")
	mode, err := model.ParseMode(modeFlag)
	if err != nil {
		return err
	}

	tblOpts, err := tableOptions(cmd)
	if err != nil {
		return err
	}
	tbl, err := fetcher.ReadTable(ctx, input, tblOpts)
	if err != nil {
		return err
	}
	records, err := linkage.LoadRecords(tbl)
	if err != nil {
		return err
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	pages := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  cfg.Search.UserAgent,
		Timeout:    time.Duration(cfg.Search.TimeoutSecs) * time.Second,
		Interval:   time.Duration(cfg.Search.RequestIntervalMs) * time.Millisecond,
		MaxRetries: cfg.Search.MaxRetries,
	})
	src, err := search.NewSource(pages, cfg.Search.BaseURL, cfg.Search.CacheSize)
	if err != nil {
		return err
	}

	p, err := linkage.New(src, st, linkage.Options{
		Mode:             mode,
		AddressThreshold: cfg.Match.AddressThreshold,
		NameThreshold:    cfg.Match.NameThreshold,
	})
	if err != nil {
		return err
	}

	var sum *linkage.Summary
	var runErr error
	if runID, _ := cmd.Flags().GetString("resume"); runID != "" {
		sum, runErr = p.Resume(ctx, runID, records)
	} else {
		sum, runErr = p.Run(ctx, input, records)
	}
	if sum == nil {
		return runErr
	}

	// Whatever was checkpointed is exported, including after an interruption.
	xlsxPath, _ := cmd.Flags().GetString("xlsx")
	headersPath, _ := cmd.Flags().GetString("headers")
	if err := exportRun(context.WithoutCancel(ctx), st, sum.RunID, output, xlsxPath, headersPath); err != nil {
		return err
	}

	printSummary(cmd.OutOrStdout(), sum, output)
	return runErr
}

// applyLinkOverrides copies explicitly set flags over the loaded config.
func applyLinkOverrides(cmd *cobra.Command) {
	f := cmd.Flags()
	if f.Changed("base-url") {
		cfg.Search.BaseURL, _ = f.GetString("base-url")
	}
	if f.Changed("address-threshold") {
		cfg.Match.AddressThreshold, _ = f.GetFloat64("address-threshold")
	}
	if f.Changed("name-threshold") {
		cfg.Match.NameThreshold, _ = f.GetFloat64("name-threshold")
	}
}

func exportRun(ctx context.Context, st store.Store, runID, csvPath, xlsxPath, headersPath string) error {
	results, err := st.ListResults(ctx, runID)
	if err != nil {
		return eris.Wrap(err, "load results")
	}

	if err := export.ExportCSV(results, csvPath); err != nil {
		return err
	}
	zap.L().Info("wrote csv", zap.String("path", csvPath), zap.Int("rows", len(results)))

	if xlsxPath == "" {
		return nil
	}
	headers, err := export.LoadHeaders(headersPath)
	if err != nil {
		return err
	}
	if err := export.ExportXLSX(results, headers, xlsxPath); err != nil {
		return err
	}
	zap.L().Info("wrote xlsx", zap.String("path", xlsxPath), zap.Int("rows", len(results)))
	return nil
}

// defaultOutputPath puts the results next to the input: in.xlsx -> in_linked.csv.
func defaultOutputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + "_linked.csv"
}

func printSummary(w io.Writer, s *linkage.Summary, output string) {
	_, _ = fmt.Fprintf(w, "run %s: %d/%d processed, %d matched, %d skipped, %d errors -> %s\n",
		s.RunID, s.Processed+s.Skipped, s.Total, s.Matched, s.Skipped, s.Errors, output)
}
