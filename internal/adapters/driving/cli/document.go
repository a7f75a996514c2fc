package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage analysed documents",
	Long:  `List, inspect, verify claims against, or delete analysed documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document status and analysis results",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document, its conversation and its index",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var documentVerifyCmd = &cobra.Command{
	Use:   "verify [doc-id] [claim]",
	Short: "Verify a claim against a document",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocumentVerify,
}

func init() {
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	documentCmd.AddCommand(documentVerifyCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	docs, err := pipelineService.List(context.Background(), userID)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    File: %s (%s)\n", docs[i].FileName, docs[i].DocType)
		cmd.Printf("    Status: %s", docs[i].Status)
		if docs[i].Indexed {
			cmd.Printf(", indexed (%d chunks)", docs[i].ChunkCount)
		}
		cmd.Println()
		cmd.Printf("    Submitted: %s\n", docs[i].CreatedAt.Format(time.RFC3339))
		cmd.Println()
	}
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	doc, err := pipelineService.Get(context.Background(), args[0], userID)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n", doc.ID)
	cmd.Printf("File: %s (%s, %d bytes)\n", doc.FileName, doc.MimeType, doc.FileSize)
	cmd.Printf("Type: %s\n", doc.DocType)
	cmd.Printf("Status: %s\n", doc.Status)

	if doc.FastAnalysis != nil {
		cmd.Printf("\nFast analysis:\n%s\n", prettyJSON(doc.FastAnalysis))
	}

	if doc.DeepAnalysis == nil {
		cmd.Println("\nDeep analysis: pending")
	} else {
		cmd.Printf("\nDeep analysis (%d/%d capabilities, %s):\n",
			doc.DeepAnalysis.Succeeded(), len(doc.DeepAnalysis.Results),
			doc.DeepAnalysis.Elapsed.Round(time.Millisecond))
		for name, result := range doc.DeepAnalysis.Results {
			if result.Failed() {
				cmd.Printf("  %s: failed (%s)\n", name, result.Err)
				continue
			}
			cmd.Printf("  %s:\n%s\n", name, prettyJSON(result.Payload))
		}
	}

	if doc.Indexed {
		cmd.Printf("\nIndexed: %d chunks\n", doc.ChunkCount)
	} else {
		cmd.Println("\nIndexing: pending")
	}
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	if err := pipelineService.Delete(context.Background(), args[0], userID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Deleted document %s\n", args[0])
	return nil
}

func runDocumentVerify(cmd *cobra.Command, args []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}
	if deepService == nil {
		return errors.New("analysis service not configured")
	}

	ctx := context.Background()
	doc, err := pipelineService.Get(ctx, args[0], userID)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	verdict, err := deepService.VerifyClaim(ctx, doc.RawText, args[1])
	if err != nil {
		return fmt.Errorf("claim verification failed: %w", err)
	}

	cmd.Println(prettyJSON(verdict))
	return nil
}
