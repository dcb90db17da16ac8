// Package cli provides the cobra command surface and wires the concrete
// adapters into the core runtime.
package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/docuflow-labs/docuflow/internal/adapters/driven/ai"
	"github.com/docuflow-labs/docuflow/internal/adapters/driven/config/file"
	"github.com/docuflow-labs/docuflow/internal/adapters/driven/index/flat"
	"github.com/docuflow-labs/docuflow/internal/adapters/driven/ocr"
	"github.com/docuflow-labs/docuflow/internal/adapters/driven/storage/sqlite"
	"github.com/docuflow-labs/docuflow/internal/core/ports/driven"
	"github.com/docuflow-labs/docuflow/internal/core/services"
	"github.com/docuflow-labs/docuflow/internal/logger"
	"github.com/docuflow-labs/docuflow/internal/stages"
)

// version is overridden at build time via -ldflags.
var version = "dev"

var (
	configDir   string
	verboseFlag bool
)

var (
	configStore *file.ConfigStore
	runtime     *services.Runtime
)

var rootCmd = &cobra.Command{
	Use:   "docuflow",
	Short: "Document intelligence pipeline",
	Long: `docuflow ingests scanned documents through OCR, validation and text
normalisation, indexes them as embeddings, and answers questions against
the stored corpus with cited sources.`,
	SilenceUsage:      true,
	PersistentPreRunE: initRuntime,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		if runtime == nil {
			return nil
		}
		return runtime.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.docuflow)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "verbose pipeline logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command under the given context, so
// long-running commands stop on interrupt.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// initRuntime loads configuration and prepares the lazily-constructed
// adapter runtime. Nothing heavy is built until a command needs it.
func initRuntime(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verboseFlag)

	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	configStore = store
	settings := store.Settings()

	rt, err := services.NewRuntime(services.RuntimeConfig{
		Settings: settings,
		OCR: func() (driven.OCREngine, error) {
			return ocr.CreateEngine(settings.OCR)
		},
		Embedding: func() (driven.EmbeddingService, error) {
			return ai.CreateEmbeddingService(settings.Embedding)
		},
		LLM: func() (driven.LLMService, error) {
			return ai.CreateLLMService(settings.LLM)
		},
		ChunkStore: func() (driven.ChunkStore, error) {
			return sqlite.NewChunkStore(settings.DataDir)
		},
		Index: func(dimensions int, chunks driven.ChunkStore) (driven.VectorIndex, error) {
			index, err := flat.NewIndex(flat.Config{
				Path:       filepath.Join(settings.DataDir, flat.DefaultFilename),
				Dimensions: dimensions,
				Chunks:     chunks,
			})
			if err != nil {
				return nil, err
			}
			if err := index.Load(context.Background()); err != nil {
				return nil, err
			}
			return index, nil
		},
		Pipeline: func() driven.StagePipeline {
			return stages.Default(stages.Options{
				ChunkSize:      settings.Pipeline.ChunkSize,
				ChunkOverlap:   settings.Pipeline.ChunkOverlap,
				LowercaseProse: settings.Pipeline.LowercaseProse,
				SpellCorrect:   settings.Pipeline.SpellCorrect,
			})
		},
	})
	if err != nil {
		return err
	}
	runtime = rt
	return nil
}
