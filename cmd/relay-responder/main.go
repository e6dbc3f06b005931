// ABOUTME: Entry point for the relay-responder backend.
// ABOUTME: Hosts the pluggable reply engines behind POST /respond.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/2389/relay-gateway/internal/config"
	"github.com/2389/relay-gateway/internal/engine"
	"github.com/2389/relay-gateway/internal/logging"
	"github.com/2389/relay-gateway/internal/responder"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
            _
  _ __ ___| | __ _ _   _
 | '__/ _ \ |/ _' | | | |
 | | |  __/ | (_| | |_| |
 |_|  \___|_|\__,_|\__, |
                   |___/   responder
`

// getConfigPath returns the path to the relay config file.
// Priority: RELAY_CONFIG env var > ./relay.yaml
func getConfigPath() string {
	if envPath := os.Getenv("RELAY_CONFIG"); envPath != "" {
		return envPath
	}
	return "relay.yaml"
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: relay-responder <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve    Start the responder server")
		fmt.Println("  health   Check responder health")
		os.Exit(1)
	}

	// Optional .env for local development; ignored when absent.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.Setup(cfg.Logging)

	registry, err := buildRegistry(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("building engine registry: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:  %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:    %s\n", cfg.Server.ResponderAddr)
	green.Print("    ▶ ")
	fmt.Printf("Engines: %v (default %s)\n", registry.Names(), cfg.Engines.Default)
	fmt.Println()

	logger.Info("starting relay-responder",
		"config", configPath,
		"addr", cfg.Server.ResponderAddr,
		"default_engine", cfg.Engines.Default,
	)

	srv := responder.NewServer(cfg, registry, logger)
	return srv.Run(ctx)
}

// buildRegistry assembles the engine set. The Gemini engine joins only when
// an API key is configured; a default name pointing at an absent engine
// fails here, before the server starts taking requests.
func buildRegistry(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*engine.Registry, error) {
	engines := map[string]engine.Engine{
		"echo": engine.Echo{},
		"rule": engine.Rule{},
	}

	if cfg.Engines.Gemini.APIKey != "" {
		gemini, err := engine.NewGemini(ctx, cfg.Engines.Gemini.APIKey, cfg.Engines.Gemini.Model)
		if err != nil {
			return nil, fmt.Errorf("creating gemini engine: %w", err)
		}
		engines["gemini"] = gemini
	}

	return engine.NewRegistry(engines, cfg.Engines.Default, logger)
}

func runHealth(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/health", cfg.Server.ResponderAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}
