package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/docuflow-labs/docuflow/internal/core/domain"
)

var ingestID string

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Ingest scanned documents",
	Long: `Runs each file through OCR, validation, normalisation, chunking and
embedding. Documents that fail validation are reported but not stored.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestID, "id", "", "document id (single file only; default derived from filename)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestID != "" && len(args) > 1 {
		return fmt.Errorf("--id applies to a single file, got %d", len(args))
	}

	docs := make([]*domain.SourceDocument, 0, len(args))
	for _, path := range args {
		doc, err := loadDocument(path)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}
	if ingestID != "" {
		docs[0].ID = ingestID
	}

	svc, err := runtime.IngestService()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	if len(docs) == 1 {
		receipt, err := svc.Ingest(ctx, docs[0])
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		printReceipt(cmd, receipt)
		return nil
	}

	receipts, err := svc.IngestAll(ctx, docs)
	for i, receipt := range receipts {
		if receipt == nil {
			cmd.Printf("%s: failed\n", args[i])
			continue
		}
		printReceipt(cmd, receipt)
	}
	if err != nil {
		return fmt.Errorf("batch completed with failures: %w", err)
	}
	return nil
}

// loadDocument reads a file into a single-page source document. The
// document id defaults to the filename stem so re-dropping the same file
// reprocesses it instead of duplicating it.
func loadDocument(path string) (*domain.SourceDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("read %s: file is empty", path)
	}

	return &domain.SourceDocument{
		ID:       documentID(path),
		Filename: filepath.Base(path),
		Pages:    [][]byte{data},
		Metadata: map[string]any{"source_path": path},
		IngestedAt: time.Now().UTC(),
	}, nil
}

// documentID derives the stable document id from a file path: the
// filename stem, so re-dropping the same file reprocesses it.
func documentID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func printReceipt(cmd *cobra.Command, receipt *domain.IngestReceipt) {
	cmd.Printf("Document: %s\n", receipt.DocumentID)
	cmd.Printf("  Verdict: %s\n", receipt.Verdict.Recommendation)
	cmd.Printf("  Confidence: %.2f\n", receipt.Extraction.Confidence)
	cmd.Printf("  Pages: %d, Words: %d\n", receipt.Extraction.PageCount, receipt.Extraction.WordCount)
	if receipt.ChunksStored > 0 {
		cmd.Printf("  Stored: %d chunks, %d embeddings\n", receipt.ChunksStored, receipt.EmbeddingsStored)
	}
	for _, w := range receipt.Warnings {
		cmd.Printf("  Warning: %s\n", w)
	}
	cmd.Println()
}
