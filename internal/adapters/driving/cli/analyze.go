package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/clearcut-labs/clearcut/internal/core/ports/driving"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Submit a document for analysis",
	Long: `Reads a text file, runs the fast analysis synchronously and prints its
result. Deep analysis and retrieval indexing continue in the background;
check progress with "document get".`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

// Flags for the analyze command.
var (
	analyzeDocType string
	analyzeWait    bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeDocType, "type", "t", "General", "document type (Legal, Medical, General)")
	analyzeCmd.Flags().BoolVarP(&analyzeWait, "wait", "w", false, "wait for deep analysis and indexing to settle")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	path := args[0]
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "text/plain"
	}

	receipt, err := pipelineService.Analyze(context.Background(), driving.Submission{
		OwnerID:  userID,
		FileName: filepath.Base(path),
		MimeType: mimeType,
		DocType:  analyzeDocType,
		RawText:  string(raw),
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	cmd.Printf("Document: %s\n", receipt.Document.ID)
	cmd.Printf("Status: %s\n", receipt.Document.Status)
	cmd.Printf("Fast analysis (%s):\n\n", receipt.FastAnalysisTime)
	cmd.Println(prettyJSON(receipt.FastAnalysis))

	if !analyzeWait {
		cmd.Println("\nDeep analysis and indexing are running in the background.")
		return nil
	}

	return waitForBackground(cmd, receipt.Document.ID)
}

// waitForBackground polls until both detached jobs have settled. The jobs
// run in this process, so exiting early would abandon them.
func waitForBackground(cmd *cobra.Command, documentID string) error {
	cmd.Println("\nWaiting for deep analysis and indexing...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return errors.New("timed out waiting for background jobs")
		case <-ticker.C:
		}

		doc, err := pipelineService.Get(ctx, documentID, userID)
		if err != nil {
			return err
		}
		if doc.DeepAnalysis == nil || !doc.Indexed {
			continue
		}

		cmd.Printf("Deep analysis: %d/%d capabilities succeeded in %s\n",
			doc.DeepAnalysis.Succeeded(), len(doc.DeepAnalysis.Results), doc.DeepAnalysis.Elapsed.Round(time.Millisecond))
		cmd.Printf("Indexed: %d chunks\n", doc.ChunkCount)
		return nil
	}
}

// prettyJSON indents a JSON payload, falling back to the raw text.
func prettyJSON(raw []byte) string {
	var buf map[string]any
	if err := json.Unmarshal(raw, &buf); err != nil {
		return string(raw)
	}
	out, err := json.MarshalIndent(buf, "", "  ")
	if err != nil {
		return string(raw)
	}
	return string(out)
}
