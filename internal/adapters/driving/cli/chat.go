package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/clearcut-labs/clearcut/internal/core/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions about an indexed document",
}

var chatAskCmd = &cobra.Command{
	Use:   "ask [doc-id] [question]",
	Short: "Ask a question, streaming the answer",
	Long: `Retrieves the most relevant passages from the document and streams a
grounded answer. Bracketed markers like [1] cite the retrieved passages,
listed after the answer.`,
	Args: cobra.ExactArgs(2),
	RunE: runChatAsk,
}

var chatHistoryCmd = &cobra.Command{
	Use:   "history [doc-id]",
	Short: "Show the conversation for a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatHistory,
}

func init() {
	chatCmd.AddCommand(chatAskCmd)
	chatCmd.AddCommand(chatHistoryCmd)
	rootCmd.AddCommand(chatCmd)
}

func runChatAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	stream, err := chatService.Ask(ctx, args[0], userID, args[1])
	if err != nil {
		if errors.Is(err, domain.ErrNotIndexed) {
			return errors.New("document is not indexed yet, try again shortly")
		}
		return fmt.Errorf("failed to start answer: %w", err)
	}

	for token := range stream.Tokens() {
		cmd.Print(token)
	}
	cmd.Println()

	if err := stream.Err(); err != nil {
		return fmt.Errorf("answer interrupted: %w", err)
	}

	results := stream.Results()
	if len(results) > 0 {
		cmd.Println("\nSources:")
		for i, r := range results {
			cmd.Printf("  [%d] chars %d-%d (score %.3f)\n", i+1, r.StartOffset, r.EndOffset, r.Score)
		}
	}
	return nil
}

func runChatHistory(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	msgs, err := chatService.History(context.Background(), args[0], userID)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(msgs) == 0 {
		cmd.Println("No conversation yet.")
		return nil
	}

	for i := range msgs {
		cmd.Printf("[%s] %s\n", msgs[i].Role, msgs[i].CreatedAt.Format(time.RFC3339))
		cmd.Println(msgs[i].Content)
		if msgs[i].Role == domain.RoleAssistant && len(msgs[i].Citations) > 0 {
			cmd.Printf("(%d citations, %d chunks retrieved, %s)\n",
				len(msgs[i].Citations), msgs[i].RetrievedChunks,
				msgs[i].ResponseTime.Round(time.Millisecond))
		}
		cmd.Println()
	}
	return nil
}
