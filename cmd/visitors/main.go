package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/jonboulle/clockwork"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"resume/internal/analytics"
	"resume/internal/config"
	"resume/internal/logging"
	"resume/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "visitors",
		Short:         "查看访客统计",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().String("config", "config.toml", "配置文件路径")

	table := &cobra.Command{
		Use:   "table",
		Short: "按列排序输出访客表",
		RunE: func(cmd *cobra.Command, args []string) error {
			column, err := cmd.Flags().GetString("sort")
			if err != nil {
				return fmt.Errorf("failed to get sort flag: %w", err)
			}
			desc, err := cmd.Flags().GetBool("desc")
			if err != nil {
				return fmt.Errorf("failed to get desc flag: %w", err)
			}
			report, err := loadReport(cmd)
			if err != nil {
				return err
			}
			if err := analytics.SortRows(report.Rows, column, desc); err != nil {
				return err
			}
			printRows(cmd.OutOrStdout(), report.Rows)
			return nil
		},
	}
	table.Flags().String("sort", "date_time", "排序列")
	table.Flags().Bool("desc", false, "降序")

	daily := &cobra.Command{
		Use:   "daily",
		Short: "输出每日访问次数",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := loadReport(cmd)
			if err != nil {
				return err
			}
			printDaily(cmd.OutOrStdout(), report)
			return nil
		},
	}

	root.AddCommand(table, daily)
	return root
}

// loadReport 按配置打开访客库并生成一次报告
func loadReport(cmd *cobra.Command) (analytics.Report, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return analytics.Report{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.Load(path, true)
	if err != nil {
		return analytics.Report{}, err
	}
	if !cfg.Database.Configured() {
		return analytics.Report{}, fmt.Errorf("访客库凭据不完整")
	}
	loc, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		return analytics.Report{}, fmt.Errorf("加载时区 %s 失败: %w", cfg.Server.Timezone, err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := store.Open(cfg.Database, cfg.Server.DataDir)
	if err != nil {
		return analytics.Report{}, err
	}
	defer db.Close()

	records, err := db.All(ctx)
	if err != nil {
		return analytics.Report{}, err
	}
	logger := logging.New(cmd.ErrOrStderr(), logging.ParseLevel(cfg.Server.LogLevel))
	reporter := analytics.NewReporter(logger, nil, clockwork.NewRealClock(), loc, cfg.Server.WindowDays)
	return reporter.Build(records), nil
}

func printRows(w io.Writer, rows []analytics.Row) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Date Time", "Country", "State", "City", "Postal", "Visits"})
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	for _, r := range rows {
		table.Append([]string{r.DateTime, r.Country, r.State, r.City, r.Postal, strconv.Itoa(r.Visits)})
	}
	table.Render()
}

func printDaily(w io.Writer, report analytics.Report) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Date", "Visits"})
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	for _, d := range report.Daily {
		table.Append([]string{d.Date, strconv.Itoa(d.Visits)})
	}
	table.SetFooter([]string{"Total", strconv.Itoa(report.Summary.TotalVisits)})
	table.Render()
}
