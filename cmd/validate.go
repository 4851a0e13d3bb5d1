package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/sts-risk-cli/internal/batch"
)

var validateCmd = &cobra.Command{
	Use:   "validate <input.csv|input.xlsx>",
	Short: "Check a batch file without querying the calculator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sets, _ := cmd.Flags().GetStringArray("set")
		overridesFile, _ := cmd.Flags().GetString("overrides")

		rows, err := loadRows(ctx, args[0])
		if err != nil {
			return err
		}
		overrides, err := loadOverrides(overridesFile, sets)
		if err != nil {
			return err
		}

		recs, err := batch.New(nil, batch.WithOverrides(overrides)).Prepare(rows)
		if err != nil {
			reportInvalid(os.Stderr, err)
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d rows valid\n", len(recs))
		return nil
	},
}

func init() {
	addOverrideFlags(validateCmd)
	rootCmd.AddCommand(validateCmd)
}
