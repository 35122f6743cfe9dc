package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"log-analyzer/infrastructure/clickhouse"
	"log-analyzer/infrastructure/report"
)

func newShowCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:     "show",
		Short:   "Print stats stored in ClickHouse for a log date",
		Example: `  log-analyzer show --date 2017-06-30 --clickhouse-dsn clickhouse://default:@localhost:9000/default`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShow(cmd, date)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "log date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func runShow(cmd *cobra.Command, showDate string) error {
	cfg, _, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	if cfg.ClickHouseDSN == "" {
		return errors.New("show needs --clickhouse-dsn or LOG_ANALYZER_CLICKHOUSE_DSN")
	}
	date, err := time.Parse("2006-01-02", showDate)
	if err != nil {
		return fmt.Errorf("invalid --date %q: %w", showDate, err)
	}

	ctx := cmd.Context()
	db, err := clickhouse.Connect(ctx, cfg.ClickHouseDSN)
	if err != nil {
		return fmt.Errorf("could not connect to ClickHouse: %w", err)
	}
	defer db.Close()

	stats, err := clickhouse.NewClickHouseStatsRepository(db, cfg.ClickHouseTable).LoadStats(ctx, date)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No stats stored for %s\n", showDate)
		return nil
	}

	t := report.Table(report.Rows(stats))
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			data, err := cfg.YAML()
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
