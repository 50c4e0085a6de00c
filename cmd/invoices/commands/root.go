// Package commands is the invoices command line.
package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

// annotationStdout marks commands that print data on stdout; their logs go
// to stderr.
const annotationStdout = "stdout"

var (
	logLevel string

	cfg    *common.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Extract structured records from invoice PDFs and scans",
	Long: `invoices segments each page into layout blocks, classifies them and
reads line items, GST totals, parties and bank details into one record per
page. Results are written as an XLSX workbook or a JSON document.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = common.LoadConfig()
		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level = logLevel
		}
		out := cmd.OutOrStdout()
		if cmd.Annotations[annotationStdout] != "" {
			out = cmd.ErrOrStderr()
		}
		logger = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
			Level: common.ParseLevel(cfg.Log.Level),
		}))
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug|info|warn|error), overrides LOG_LEVEL")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
