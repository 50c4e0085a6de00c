package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/export"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
)

var storeExportOut string

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect the run store",
}

var storeHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Ping the configured run store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, s *repository.Store) error {
			if err := s.HealthCheck(ctx, 5*time.Second); err != nil {
				return err
			}
			batches, err := s.ListBatches(ctx)
			if err != nil {
				return err
			}
			logger.Info("store.health.ok", "driver", cfg.Store.Driver, "batches", len(batches))
			return nil
		})
	},
}

var storeListCmd = &cobra.Command{
	Use:         "batches",
	Short:       "List stored batches, most recent first",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationStdout: "data"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, s *repository.Store) error {
			batches, err := s.ListBatches(ctx)
			if err != nil {
				return err
			}
			for _, b := range batches {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\t%d\n",
					b.ID, b.ScannedAt.Format(time.RFC3339), b.InvoiceCount, b.ErrorCount)
			}
			return nil
		})
	},
}

var storeExportCmd = &cobra.Command{
	Use:   "export <batch-id>",
	Short: "Export a stored batch again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid batch id: %w", err)
		}
		return withStore(cmd.Context(), func(ctx context.Context, s *repository.Store) error {
			res, err := loadBatch(ctx, s, id)
			if err != nil {
				return err
			}
			out, err := export.NewExporter(logger).WriteFile(res, storeExportOut)
			if err != nil {
				return err
			}
			logger.Info("store.export.ok", "batch_id", id.String(), "output", out)
			return nil
		})
	},
}

var storeVendorsCmd = &cobra.Command{
	Use:         "vendors <gstin>...",
	Short:       "Count stored invoice pages per vendor GSTIN",
	Args:        cobra.MinimumNArgs(1),
	Annotations: map[string]string{annotationStdout: "data"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, s *repository.Store) error {
			for _, gstin := range args {
				gstin = strings.ToUpper(strings.TrimSpace(gstin))
				n, err := s.InvoiceCountByVendor(ctx, gstin)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", gstin, n)
			}
			return nil
		})
	},
}

func init() {
	storeExportCmd.Flags().StringVarP(&storeExportOut, "out", "o", "invoices.xlsx", "output file (.xlsx or .json)")
	storeCmd.AddCommand(storeHealthCmd, storeListCmd, storeExportCmd, storeVendorsCmd)
	rootCmd.AddCommand(storeCmd)
}

func withStore(ctx context.Context, fn func(context.Context, *repository.Store) error) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("no run store configured (set STORE_DRIVER)")
	}
	defer s.Close()
	return fn(ctx, s)
}

func loadBatch(ctx context.Context, s *repository.Store, id uuid.UUID) (entity.BatchResult, error) {
	batches, err := s.ListBatches(ctx)
	if err != nil {
		return entity.BatchResult{}, err
	}
	for _, b := range batches {
		if b.ID != id {
			continue
		}
		invoices, err := s.ListInvoices(ctx, id)
		if err != nil {
			return entity.BatchResult{}, err
		}
		errs, err := s.ListErrors(ctx, id)
		if err != nil {
			return entity.BatchResult{}, err
		}
		return entity.BatchResult{
			BatchID:      id,
			ScannedAt:    b.ScannedAt,
			InvoiceCount: len(invoices),
			Invoices:     invoices,
			Errors:       errs,
		}, nil
	}
	return entity.BatchResult{}, fmt.Errorf("batch %s not found", id)
}
