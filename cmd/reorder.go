package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/orglink/internal/export"
	"github.com/sells-group/orglink/internal/fetcher"
)

var reorderCmd = &cobra.Command{
	Use:   "reorder",
	Short: "Reorder a result file to follow a reference file",
	Long: `Sorts the rows of --target into the order their key column appears in
--reference. Rows whose key the reference lacks are appended in their
original order.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		refPath, _ := cmd.Flags().GetString("reference")
		targetPath, _ := cmd.Flags().GetString("target")
		output, _ := cmd.Flags().GetString("output")
		key, _ := cmd.Flags().GetString("key")

		opts, err := tableOptions(cmd)
		if err != nil {
			return err
		}
		reference, err := fetcher.ReadTable(ctx, refPath, opts)
		if err != nil {
			return err
		}
		target, err := fetcher.ReadTable(ctx, targetPath, opts)
		if err != nil {
			return err
		}

		sorted, stats, err := export.Reorder(reference, target, key)
		if err != nil {
			return err
		}
		if err := export.WriteTableCSV(sorted, output); err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(),
			"wrote %d rows to %s (%d keys matched, %d reference-only, %d target-only)\n",
			stats.OutputRows, output, stats.MatchedKeys, stats.ReferenceOnly, stats.TargetOnly)
		return nil
	},
}

func init() {
	f := reorderCmd.Flags()
	f.String("reference", "", "CSV or XLSX file whose key order is followed")
	f.String("target", "", "CSV or XLSX file to reorder")
	f.String("output", "", "output CSV path")
	f.String("key", export.DefaultKeyColumn, "column used to match rows")
	addTableFlags(reorderCmd)
	_ = reorderCmd.MarkFlagRequired("reference")
	_ = reorderCmd.MarkFlagRequired("target")
	_ = reorderCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(reorderCmd)
}
