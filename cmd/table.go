package main

import (
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/orglink/internal/fetcher"
)

// addTableFlags registers the flags that control how input tables are read.
func addTableFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("delimiter", ",", `CSV field delimiter (use "\t" for tab)`)
	f.Bool("lazy-quotes", false, "accept bare quotes inside unquoted CSV fields")
	f.Bool("trim-space", false, "trim surrounding whitespace from CSV fields")
	f.String("sheet", "", "XLSX sheet name (default: first sheet)")
	f.Int("skip-rows", 0, "XLSX rows above the header row")
}

// tableOptions reads the flags registered by addTableFlags.
func tableOptions(cmd *cobra.Command) (fetcher.TableOptions, error) {
	delim, _ := cmd.Flags().GetString("delimiter")
	if delim == `\t` {
		delim = "\t"
	}
	if utf8.RuneCountInString(delim) != 1 {
		return fetcher.TableOptions{}, eris.Errorf("delimiter must be a single character, got %q", delim)
	}
	r, _ := utf8.DecodeRuneInString(delim)

	skip, _ := cmd.Flags().GetInt("skip-rows")
	if skip < 0 {
		return fetcher.TableOptions{}, eris.Errorf("skip-rows must not be negative, got %d", skip)
	}

	lazy, _ := cmd.Flags().GetBool("lazy-quotes")
	trim, _ := cmd.Flags().GetBool("trim-space")
	sheet, _ := cmd.Flags().GetString("sheet")
	return fetcher.TableOptions{
		Delimiter:  r,
		LazyQuotes: lazy,
		TrimSpace:  trim,
		Sheet:      sheet,
		SkipRows:   skip,
	}, nil
}
