package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/clearcut-labs/clearcut/internal/adapters/driven/llm/cerebras"
	"github.com/clearcut-labs/clearcut/internal/workers"
)

var workerCmd = &cobra.Command{
	Use:   "worker [name]",
	Short: "Run a capability worker on stdio",
	Long: `Runs one capability worker, speaking its tool protocol over stdin and
stdout. The gateway launches these as child processes; the command is
also useful standalone for debugging a capability.

Available workers: ` + strings.Join(workers.Names(), ", "),
	Args:   cobra.ExactArgs(1),
	RunE:   runWorker,
	Hidden: true,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	llm, err := cerebras.NewCompletionService(cerebras.Config{
		APIKey:  os.Getenv(cfg.Completion.APIKeyEnv),
		BaseURL: cfg.Completion.BaseURL,
		Model:   cfg.Completion.Model,
		Timeout: cfg.CompletionTimeout(),
	})
	if err != nil {
		return fmt.Errorf("configuring completion service: %w", err)
	}
	defer llm.Close()

	ctx := cmd.Context()
	if err := workers.Run(ctx, args[0], llm); err != nil {
		return fmt.Errorf("worker %s: %w", args[0], err)
	}
	return nil
}
