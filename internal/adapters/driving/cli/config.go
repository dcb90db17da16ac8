package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change configuration keys. Keys use dot notation, for
example "ocr.engine" or "pipeline.chunk_size".`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	settings := configStore.Settings()

	cmd.Printf("Config file: %s\n\n", configStore.Path())

	cmd.Println("[ocr]")
	cmd.Printf("  engine = %q\n", settings.OCR.Engine)
	cmd.Printf("  language = %q\n", settings.OCR.Language)
	cmd.Println()

	cmd.Println("[embedding]")
	cmd.Printf("  provider = %q\n", settings.Embedding.Provider)
	if settings.Embedding.Model != "" {
		cmd.Printf("  model = %q\n", settings.Embedding.Model)
	}
	cmd.Println()

	cmd.Println("[llm]")
	if settings.LLM.IsConfigured() {
		cmd.Printf("  provider = %q\n", settings.LLM.Provider)
		cmd.Printf("  model = %q\n", settings.LLM.Model)
	} else {
		cmd.Println("  # not configured; answers fall back to retrieved passages")
	}
	cmd.Println()

	cmd.Println("[pipeline]")
	cmd.Printf("  chunk_size = %d\n", settings.Pipeline.ChunkSize)
	cmd.Printf("  chunk_overlap = %d\n", settings.Pipeline.ChunkOverlap)
	cmd.Printf("  spell_correct = %t\n", settings.Pipeline.SpellCorrect)
	cmd.Printf("  workers = %d\n", settings.Pipeline.Workers)
	cmd.Println()

	cmd.Println("[query]")
	cmd.Printf("  top_k = %d\n", settings.Query.TopK)
	cmd.Printf("  min_similarity = %.2f\n", settings.Query.MinSimilarity)
	cmd.Printf("  context_words = %d\n", settings.Query.ContextWords)
	cmd.Println()

	cmd.Println("[validation]")
	cmd.Printf("  review_threshold = %.2f\n", settings.Thresholds.Review)
	cmd.Printf("  accept_threshold = %.2f\n", settings.Thresholds.Accept)
	cmd.Printf("  min_words = %d\n", settings.Thresholds.MinWords)
	cmd.Printf("  round_number_modulus = %d\n", settings.Thresholds.RoundNumberModulus)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	value, ok := configStore.Get(args[0])
	if !ok {
		return fmt.Errorf("key not set: %s", args[0])
	}
	cmd.Printf("%v\n", value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]

	// Store numerics and booleans typed so they round-trip through TOML.
	var value any = raw
	if b, err := strconv.ParseBool(raw); err == nil {
		value = b
	} else if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		value = i
	} else if f, err := strconv.ParseFloat(raw, 64); err == nil {
		value = f
	}

	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	cmd.Printf("%s = %v\n", key, value)
	return nil
}
