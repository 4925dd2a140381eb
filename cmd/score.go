package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/orglink/internal/similarity"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score two addresses or two names",
	Long: `Prints the similarity of two values on a 0.00-1.00 scale.

Examples:
  score address "岩手県FOO市BAR佐倉河字BAZ71番地" "岩手県FOO市BAR区佐倉河字BAZ71"
  score name "FOO株式会社" "ＦＯＯ"`,
}

var scoreAddressCmd = &cobra.Command{
	Use:   "address <a> <b>",
	Short: "Score two addresses",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", similarity.Address(args[0], args[1]))
		return err
	},
}

var scoreNameCmd = &cobra.Command{
	Use:   "name <a> <b>",
	Short: "Score two organization names",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", similarity.Name(args[0], args[1]))
		return err
	},
}

func init() {
	scoreCmd.AddCommand(scoreAddressCmd)
	scoreCmd.AddCommand(scoreNameCmd)
	rootCmd.AddCommand(scoreCmd)
}
