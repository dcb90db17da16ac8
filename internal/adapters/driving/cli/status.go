package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend health and corpus statistics",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	settings := runtime.Settings()

	cmd.Println("Configuration")
	cmd.Printf("  Config: %s\n", configStore.Path())
	cmd.Printf("  Data dir: %s\n", settings.DataDir)
	cmd.Printf("  OCR engine: %s\n", settings.OCR.Engine)
	cmd.Printf("  Embedding provider: %s\n", settings.Embedding.Provider)
	if settings.LLM.IsConfigured() {
		cmd.Printf("  LLM provider: %s\n", settings.LLM.Provider)
	} else {
		cmd.Println("  LLM provider: (none)")
	}
	cmd.Println()

	cmd.Println("Backends")
	report := runtime.Diagnose(cmd.Context())
	names := make([]string, 0, len(report))
	for name := range report {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := report[name]; err != nil {
			cmd.Printf("  %-10s unavailable: %v\n", name, err)
		} else {
			cmd.Printf("  %-10s ok\n", name)
		}
	}
	cmd.Println()

	svc, err := runtime.IngestService()
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	stats, err := svc.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("read stats: %w", err)
	}

	cmd.Println("Corpus")
	cmd.Printf("  Documents: %d\n", stats.Documents)
	cmd.Printf("  Chunks: %d\n", stats.Chunks)
	cmd.Printf("  Dimensions: %d\n", stats.Dimensions)
	return nil
}
