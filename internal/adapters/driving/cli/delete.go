package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Remove a document from the index",
	Long:  `Removes a document's chunks and embeddings. The source file is untouched.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	svc, err := runtime.IngestService()
	if err != nil {
		return err
	}

	removed, err := svc.Delete(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	if removed == 0 {
		cmd.Printf("No chunks found for document: %s\n", args[0])
		return nil
	}
	cmd.Printf("Removed %d chunks for document: %s\n", removed, args[0])
	return nil
}
