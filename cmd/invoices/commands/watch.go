package commands

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/export"
	"github.com/joseph-ayodele/invoice-extractor/internal/ingest"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
)

var (
	watchOutDir   string
	watchFormat   string
	watchInitial  bool
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>...",
	Short: "Process invoices as they appear in the given directories",
	Long: `Watch directories recursively and run a single-document batch for every
supported file that is created or rewritten. Each batch is exported to
--out-dir as <file>.xlsx (or .json) and saved to the run store when one is
configured.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchOutDir, "out-dir", "out", "directory for per-document exports")
	watchCmd.Flags().StringVar(&watchFormat, "format", export.FormatXLSX, "export format (xlsx|json)")
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "also process files already present")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 2*time.Second, "wait this long after the last write before processing")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if err := cfg.Validate(); err != nil {
		return err
	}
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	scanner := ingest.NewScanner(logger)
	events, errs, err := scanner.Watch(ctx, ingest.WatchConfig{Roots: args, InitialScan: watchInitial, Debounce: watchDebounce})
	if err != nil {
		return err
	}
	logger.Info("watch.start", "roots", args, "out_dir", watchOutDir)

	for {
		select {
		case path, ok := <-events:
			if !ok {
				return nil
			}
			processWatched(ctx, scanner, store, path)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watch.error", "error", err)
		case <-ctx.Done():
			logger.Info("watch.stop")
			return nil
		}
	}
}

func processWatched(ctx context.Context, scanner *ingest.Scanner, store *repository.Store, path string) {
	r, err := scanner.IngestPath(ctx, path)
	if err != nil {
		logger.Warn("watch.ingest.failed", "path", path, "error", err)
		return
	}
	if r.Duplicate {
		return
	}

	res := newProcessor(cfg, logger).ProcessBatch(ctx, []entity.Document{r.Document})

	name := strings.TrimSuffix(r.Document.Name, filepath.Ext(r.Document.Name)) + "." + strings.ToLower(watchFormat)
	if _, err := export.NewExporter(logger).WriteFile(res, filepath.Join(watchOutDir, name)); err != nil {
		logger.Error("watch.export.failed", "path", path, "error", err)
	}
	if store != nil {
		if _, err := store.SaveBatch(ctx, res); err != nil {
			logger.Error("watch.store.failed", "path", path, "error", err)
		}
	}
}
