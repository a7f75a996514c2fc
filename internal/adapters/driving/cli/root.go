// Package cli implements the clearcut command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/panjf2000/ants/v2"
	"github.com/spf13/cobra"

	"github.com/clearcut-labs/clearcut/internal/adapters/driven/embedding/openai"
	"github.com/clearcut-labs/clearcut/internal/adapters/driven/llm/cerebras"
	"github.com/clearcut-labs/clearcut/internal/adapters/driven/storage/sqlite"
	"github.com/clearcut-labs/clearcut/internal/adapters/driven/vector/qdrant"
	"github.com/clearcut-labs/clearcut/internal/chunker"
	"github.com/clearcut-labs/clearcut/internal/config"
	"github.com/clearcut-labs/clearcut/internal/core/ports/driving"
	"github.com/clearcut-labs/clearcut/internal/core/services"
	"github.com/clearcut-labs/clearcut/internal/gateway"
	"github.com/clearcut-labs/clearcut/internal/logger"
	"github.com/clearcut-labs/clearcut/internal/toolclient"
)

// version is set at build time via -ldflags.
var version = "dev"

// Persistent flags.
var (
	cfgFile string
	verbose bool
	userID  string
)

// Services wired by initServices. Tests inject their own and set wired.
var (
	pipelineService driving.DocumentPipeline
	chatService     driving.ChatService
	deepService     driving.DeepAnalyzer

	store *sqlite.Store
	cfg   *config.Config
	wired bool
)

var rootCmd = &cobra.Command{
	Use:   "clearcut",
	Short: "Document analysis and retrieval from the command line",
	Long: `Clearcut analyses documents through a fast synchronous pass plus
background deep-analysis and retrieval-indexing jobs, then answers
questions over the indexed text with cited, streamed responses.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.clearcut/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "local", "acting user ID")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initServices wires the full service stack for commands that need it.
// Commands that run standalone (version, worker, gateway) skip wiring.
func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	switch cmd.Name() {
	case "version", "worker", "gateway", "help", "completion":
		return nil
	}
	if wired {
		return nil
	}

	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	loaded, err := loadConfig()
	if err != nil {
		return err
	}
	cfg = loaded

	store, err = sqlite.NewStore(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
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

	embedder, err := openai.NewEmbeddingService(openai.Config{
		APIKey:            os.Getenv(cfg.Embedding.APIKeyEnv),
		BaseURL:           cfg.Embedding.BaseURL,
		Model:             cfg.Embedding.Model,
		Dimensions:        cfg.Embedding.Dimensions,
		Timeout:           cfg.EmbeddingTimeout(),
		RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
	})
	if err != nil {
		return fmt.Errorf("configuring embedding service: %w", err)
	}

	vectors := qdrant.NewVectorStore(qdrant.Config{
		URL:     cfg.Qdrant.URL,
		APIKey:  os.Getenv(cfg.Qdrant.APIKeyEnv),
		Timeout: cfg.QdrantTimeout(),
	})

	ch := chunker.New(
		chunker.WithChunkSize(cfg.RAG.ChunkSize),
		chunker.WithOverlap(cfg.RAG.ChunkOverlap),
	)

	registry := gateway.NewRegistry(launchSpecs(cfg))
	tools := toolclient.New(gateway.New(registry))

	pool, err := ants.NewPool(cfg.Pipeline.Workers)
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}

	rag := services.NewRAGService(ch, embedder, vectors)
	deepService = services.NewOrchestratorService(tools)
	pipelineService = services.NewPipelineService(
		store.DocumentStore(), llm, deepService, rag, pool, cfg.FastTimeout())
	chatService = services.NewChatService(
		store.DocumentStore(), store.ChatStore(), rag, llm, cfg.RAG.TopK)

	wired = true
	return nil
}

// loadConfig resolves the config path and loads it.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return config.Load(path)
}

// launchSpecs builds the capability registry table from config, falling
// back to this binary's own worker subcommand for unconfigured entries.
func launchSpecs(cfg *config.Config) map[string]gateway.LaunchSpec {
	specs := gateway.DefaultSpecs()
	for name, cc := range cfg.Capabilities {
		if cc.Command == "" {
			continue
		}
		specs[name] = gateway.LaunchSpec{
			Command: cc.Command,
			Args:    cc.Args,
			Env:     cc.Env,
		}
	}
	return specs
}
