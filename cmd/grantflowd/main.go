// Command grantflowd runs the grant assistant backend: a stateless HTTP
// service that routes each conversation turn through the profile, research
// and drafting sub-agents and hands the reconciled workflow state back to
// the client.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/joho/godotenv"

	"github.com/civicgrant/grantflow"
	"github.com/civicgrant/grantflow/config"
	"github.com/civicgrant/grantflow/logging"
	"github.com/civicgrant/grantflow/model"
	"github.com/civicgrant/grantflow/model/anthropic"
	"github.com/civicgrant/grantflow/model/openai"
	"github.com/civicgrant/grantflow/search"
	"github.com/civicgrant/grantflow/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "grantflowd:", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to a YAML config file")
	flag.Parse()

	// Local development convenience; absence of a .env file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(&logging.Config{
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Format: cfg.Logging.Format,
		Output: os.Stdout,
	})

	llm, err := buildModel(cfg.Model)
	if err != nil {
		return err
	}

	assistant, err := grantflow.New(llm, func(o *grantflow.Options) {
		o.SearchService = buildSearch(cfg.Search, logger)
		o.Completeness = cfg.Orchestrator.Completeness
		o.MaxModelCalls = cfg.Model.MaxCallsPerTurn
		o.Logger = logger.WithComponent("orchestrator")
	})
	if err != nil {
		return err
	}

	srv := server.New(assistant.Orchestrator(), func(o *server.Options) {
		o.BodyLimit = cfg.Server.BodyLimit
		o.Logger = logger.WithComponent("server")
	})

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		logger.Info("shutdown.signal")
		_ = srv.Shutdown()
	}()

	logger.Info("grantflowd.start",
		"addr", cfg.Server.Addr,
		"model_provider", cfg.Model.Provider,
		"model_id", cfg.Model.ID,
	)

	return srv.Listen(cfg.Server.Addr)
}

func buildModel(cfg config.ModelConfig) (model.Model, error) {
	switch cfg.Provider {
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.Model = anthropicsdk.Model(cfg.ID)
			o.APIKey = cfg.APIKey
		}), nil
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			o.Model = cfg.ID
			o.APIKey = cfg.APIKey
		}), nil
	case "mock":
		return model.NewMockModel(cfg.ID, "mock"), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

func buildSearch(cfg config.SearchConfig, logger logging.Logger) search.Service {
	if cfg.APIKey == "" || cfg.EngineID == "" {
		logger.Warn("search.stub", "reason", "google search credentials not configured")
		return search.NewStub()
	}

	return search.NewGoogleClient(cfg.APIKey, cfg.EngineID, func(o *search.GoogleOptions) {
		if cfg.NumResults > 0 {
			o.NumResults = cfg.NumResults
		}
	})
}
