package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"contracting/internal/excel"
	"contracting/internal/repository"
	"contracting/internal/service"
)

var (
	importContractID string
	importFile       string
	importDryRun     bool
)

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Work with contract line items",
}

var itemsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import contract items from an xlsx or csv sheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(importFile)
		if err != nil {
			return fmt.Errorf("open %s: %w", importFile, err)
		}
		defer f.Close()

		rows, err := excel.ParseContractItems(filepath.Base(importFile), f)
		if err != nil {
			return err
		}
		if importDryRun {
			if _, err := service.ValidateImportRows(importContractID, rows); err != nil {
				return err
			}
			for _, row := range rows {
				logger.Info().
					Int("line", row.Line).
					Str("item", row.ItemName).
					Str("quantity", row.Quantity.String()).
					Msg("parsed")
			}
			logger.Info().Int("count", len(rows)).Msg("dry run, nothing written")
			return nil
		}

		ctx := cmd.Context()
		pool, gw, err := connect(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		svc := service.New(repository.New(gw), service.WithLogger(logger))
		created, err := svc.ImportContractItems(ctx, importContractID, rows)
		if err != nil {
			return err
		}
		logger.Info().Str("contract_id", importContractID).Int("count", len(created)).Msg("items imported")
		return nil
	},
}

func init() {
	itemsImportCmd.Flags().StringVar(&importContractID, "contract", "", "contract id")
	itemsImportCmd.Flags().StringVar(&importFile, "file", "", "path to the xlsx or csv sheet")
	itemsImportCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "parse and validate every row without writing")
	_ = itemsImportCmd.MarkFlagRequired("contract")
	_ = itemsImportCmd.MarkFlagRequired("file")
	itemsCmd.AddCommand(itemsImportCmd)
}
