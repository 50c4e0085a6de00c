package commands

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/internal/export"
	"github.com/joseph-ayodele/invoice-extractor/internal/ingest"
)

var (
	batchOut        string
	batchWorkers    int
	batchExts       []string
	batchStore      string
	batchStoreDSN   string
	batchNoRawText  bool
	batchNoBlocks   bool
	batchShowHidden bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir|file>...",
	Short: "Process invoices and export one record per page",
	Long: `Process every supported file under the given directories and files.
A document that cannot be read is recorded in the Errors sheet and the batch
continues. The output format follows the --out extension (.xlsx or .json).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "invoices.xlsx", "output file (.xlsx or .json); never overwritten")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "documents processed concurrently, overrides BATCH_WORKERS")
	batchCmd.Flags().StringSliceVar(&batchExts, "ext", nil, "file extensions to include (default: all supported)")
	batchCmd.Flags().StringVar(&batchStore, "store", "", "run store driver (none|sqlite|postgres), overrides STORE_DRIVER")
	batchCmd.Flags().StringVar(&batchStoreDSN, "store-dsn", "", "run store DSN, overrides STORE_DSN")
	batchCmd.Flags().BoolVar(&batchNoRawText, "no-raw-text", false, "omit page text from records")
	batchCmd.Flags().BoolVar(&batchNoBlocks, "no-blocks", false, "omit layout blocks from records")
	batchCmd.Flags().BoolVar(&batchShowHidden, "hidden", false, "include hidden files and directories")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if batchWorkers > 0 {
		cfg.Batch.Workers = batchWorkers
	}
	if batchStore != "" {
		cfg.Store.Driver = batchStore
	}
	if batchStoreDSN != "" {
		cfg.Store.DSN = batchStoreDSN
	}
	if batchNoRawText {
		cfg.Extraction.KeepRawText = false
	}
	if batchNoBlocks {
		cfg.Extraction.KeepBlocks = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	scanner := ingest.NewScanner(logger, ingest.WithExtensions(batchExts...), ingest.WithSkipHidden(!batchShowHidden))
	docs, stats, err := scanner.Collect(ctx, args)
	if err != nil {
		return fmt.Errorf("collect inputs: %w", err)
	}
	logger.Info("batch.inputs", "documents", len(docs), "deduplicated", stats.Deduplicated, "failed", stats.Failed)

	res := newProcessor(cfg, logger).ProcessBatch(ctx, docs)

	out, err := export.NewExporter(logger).WriteFile(res, batchOut)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		if _, err := store.SaveBatch(ctx, res); err != nil {
			return err
		}
	}

	logger.Info("batch.done",
		"batch_id", res.BatchID.String(),
		"output", out,
		"invoices", res.InvoiceCount,
		"errors", len(res.Errors),
	)
	return nil
}
