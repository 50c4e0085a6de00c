package commands

import (
	"encoding/json"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/internal/core/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/pipeline"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

var blocksWords bool

var blocksCmd = &cobra.Command{
	Use:   "blocks <file>",
	Short: "Print the classified layout blocks of each page as JSON",
	Long: `Print the layout blocks of every page with their type and confidence.
With --words the positioned words are written instead, in the word dump
format that batch accepts as .json input.`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{annotationStdout: "data"},
	RunE:        runBlocks,
}

func init() {
	blocksCmd.Flags().BoolVar(&blocksWords, "words", false, "dump positioned words instead of blocks")
	rootCmd.AddCommand(blocksCmd)
}

type blocksDump struct {
	File  string                `json:"file"`
	Pages []pipeline.PageLayout `json:"pages"`
}

func runBlocks(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	path := args[0]
	pages, err := newProcessor(cfg, logger).Layout(cmd.Context(), entity.Document{Path: path})
	if err != nil {
		return err
	}

	var v any = blocksDump{File: filepath.Base(path), Pages: pages}
	if blocksWords {
		dump := extract.WordDump{File: filepath.Base(path)}
		for _, p := range pages {
			dump.Pages = append(dump.Pages, extract.WordDumpPage{Page: p.Number, Text: p.Text, Words: p.Words})
		}
		v = dump
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
