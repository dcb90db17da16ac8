package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/docuflow-labs/docuflow/internal/core/domain"
)

var (
	queryTopK    int
	queryMinSim  float64
	querySources bool
	queryRefine  bool
	queryJSON    bool
	queryTimeout time.Duration
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question against the indexed corpus",
	Long: `Embeds the question, retrieves the most similar chunks and generates
an answer with numbered citations. Without a configured language model
the most relevant passages are returned directly.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")
	queryCmd.Flags().Float64Var(&queryMinSim, "min-similarity", 0, "similarity threshold (default from config)")
	queryCmd.Flags().BoolVarP(&querySources, "sources", "s", false, "include source citations")
	queryCmd.Flags().BoolVarP(&queryRefine, "refine", "r", false, "rewrite the question with the language model before retrieval")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the result as JSON")
	queryCmd.Flags().DurationVar(&queryTimeout, "timeout", 60*time.Second, "overall request deadline")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	svc, err := runtime.QueryService()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), queryTimeout)
	defer cancel()

	result, err := svc.Answer(ctx, args[0], domain.QueryOptions{
		TopK:           queryTopK,
		MinSimilarity:  queryMinSim,
		IncludeSources: querySources,
		Refine:         queryRefine,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if result.RefinedQuery != "" {
		cmd.Printf("Refined query: %s\n\n", result.RefinedQuery)
	}
	if result.Degraded {
		cmd.Println("(query refinement unavailable, used the raw question)")
	}

	cmd.Println(result.Answer)

	if len(result.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, src := range result.Sources {
			cmd.Printf("  [%d] %s (similarity %.2f)\n", i+1, src.ChunkID, src.Similarity)
			cmd.Printf("      %s\n", src.Excerpt)
		}
	}
	return nil
}
