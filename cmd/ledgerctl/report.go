package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"contracting/internal/excel"
	"contracting/internal/repository"
	"contracting/internal/service"
)

var (
	reportKind     string
	reportCurrency string
	reportFormat   string
	reportOut      string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build financial reports",
}

var reportExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a profit, governorate or balances report to a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := service.ParseReportKind(reportKind)
		if err != nil {
			return err
		}
		format, err := excel.ParseFormat(reportFormat)
		if err != nil {
			return err
		}
		out := reportOut
		if out == "" {
			out = fmt.Sprintf("%s-%s.%s", kind, reportCurrency, format)
		}

		ctx := cmd.Context()
		pool, gw, err := connect(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		svc := service.New(repository.New(gw), service.WithLogger(logger))
		if err := svc.ExportReport(ctx, f, kind, reportCurrency, format); err != nil {
			f.Close()
			_ = os.Remove(out)
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", out, err)
		}
		logger.Info().Str("file", out).Msg("report written")
		return nil
	},
}

func init() {
	reportExportCmd.Flags().StringVar(&reportKind, "kind", "profit", "profit, governorates or balances")
	reportExportCmd.Flags().StringVar(&reportCurrency, "currency", "SAR", "report currency")
	reportExportCmd.Flags().StringVar(&reportFormat, "format", "xlsx", "xlsx or csv")
	reportExportCmd.Flags().StringVar(&reportOut, "out", "", "output path (default <kind>-<currency>.<format>)")
	reportCmd.AddCommand(reportExportCmd)
}
