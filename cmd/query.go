package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sts-risk-cli/internal/batch"
	"github.com/sells-group/sts-risk-cli/internal/sts"
	"github.com/sells-group/sts-risk-cli/internal/tabular"
)

var queryCmd = &cobra.Command{
	Use:   "query <input.csv|input.xlsx>",
	Short: "Query the calculator for every patient in a batch file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		out, _ := cmd.Flags().GetString("out")
		sets, _ := cmd.Flags().GetStringArray("set")
		overridesFile, _ := cmd.Flags().GetString("overrides")
		noStore, _ := cmd.Flags().GetBool("no-store")
		if cmd.Flags().Changed("adapter") {
			cfg.Batch.Adapter, _ = cmd.Flags().GetString("adapter")
		}
		if cmd.Flags().Changed("concurrency") {
			cfg.Batch.Concurrency, _ = cmd.Flags().GetInt("concurrency")
		}
		if cmd.Flags().Changed("resume") {
			cfg.Batch.Resume, _ = cmd.Flags().GetBool("resume")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if _, err := tabular.FormatFor(out); err != nil {
			return err
		}

		rows, err := loadRows(ctx, args[0])
		if err != nil {
			return err
		}
		overrides, err := loadOverrides(overridesFile, sets)
		if err != nil {
			return err
		}

		adapter, err := newAdapter(cfg)
		if err != nil {
			return err
		}

		opts := []batch.Option{
			batch.WithOverrides(overrides),
			batch.WithConcurrency(cfg.Batch.Concurrency),
			batch.WithBreaker(newBreaker(cfg)),
			batch.WithResume(cfg.Batch.Resume),
		}
		if !noStore {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			opts = append(opts, batch.WithStore(st))
		}

		report, runErr := batch.New(adapter, opts...).Run(ctx, rows)
		if report == nil {
			reportInvalid(os.Stderr, runErr)
			return runErr
		}

		if err := tabular.Write(out, report.Table()); err != nil {
			return eris.Wrapf(err, "write results %s", out)
		}
		if cached, ok := adapter.(*sts.CachedAdapter); ok {
			hits, misses := cached.Stats()
			zap.L().Debug("reply cache", zap.Int64("hits", hits), zap.Int64("misses", misses))
		}

		succeeded, failed := report.Counts()
		fmt.Fprintf(os.Stderr, "%d queried, %d failed, results written to %s\n", succeeded, failed, out)
		return runErr
	},
}

// reportInvalid prints every row problem of a rejected batch.
func reportInvalid(w io.Writer, err error) {
	var verr *batch.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprintf(w, "%d of %d rows invalid:\n", len(verr.Rows), verr.Total)
		for _, r := range verr.Rows {
			fmt.Fprintf(w, "  %s\n", r.String())
		}
		return
	}
	var derr *batch.DuplicateIdentifierError
	if errors.As(err, &derr) {
		for _, d := range derr.Duplicates {
			fmt.Fprintf(w, "  duplicate patientid %q on lines %v\n", d.ID, d.Lines)
		}
	}
}

func addOverrideFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("set", nil, "override a field for every row (field=value, repeatable)")
	cmd.Flags().String("overrides", "", "YAML file of field overrides applied to every row")
}

func init() {
	queryCmd.Flags().StringP("out", "o", "results.csv", "output file (.csv or .xlsx)")
	queryCmd.Flags().String("adapter", "", "calculator protocol: request or stream (default from config)")
	queryCmd.Flags().Int("concurrency", 1, "records queried at once")
	queryCmd.Flags().Bool("resume", false, "skip patients that already have a stored result")
	queryCmd.Flags().Bool("no-store", false, "do not persist results")
	addOverrideFlags(queryCmd)
	rootCmd.AddCommand(queryCmd)
}
