package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/clearcut-labs/clearcut/internal/config"
	"github.com/clearcut-labs/clearcut/internal/gateway"
	"github.com/clearcut-labs/clearcut/internal/logger"
)

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Serve the capability gateway over websockets",
	Long: `Exposes the capability workers to remote callers at /ws/{capability}.
Each connection spawns one worker process and relays its stdio protocol
byte for byte; closing the connection kills the worker.

The capability table reloads automatically when the config file changes.`,
	Args: cobra.NoArgs,
	RunE: runGateway,
}

// gatewayAddr is a flag for the gateway command.
var gatewayAddr string

func init() {
	gatewayCmd.Flags().StringVar(&gatewayAddr, "addr", ":8090", "listen address")
	rootCmd.AddCommand(gatewayCmd)
}

func runGateway(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	_ = godotenv.Load()

	path := cfgFile
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	registry := gateway.NewRegistry(launchSpecs(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Config edits swap the capability table without a restart.
	if err := registry.WatchFile(ctx, path, func(p string) (map[string]gateway.LaunchSpec, error) {
		reloaded, err := config.Load(p)
		if err != nil {
			return nil, err
		}
		return launchSpecs(reloaded), nil
	}); err != nil {
		logger.Warn("config watch unavailable: %v", err)
	}

	cmd.Printf("Gateway listening on %s (%d capabilities)\n", gatewayAddr, len(registry.Names()))
	return gateway.New(registry).Serve(ctx, gatewayAddr)
}
