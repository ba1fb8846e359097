package main

import (
	"context"
	"flag"

	"go.uber.org/zap"

	"github.com/interlinker0325/chatbot-bookshop/pkg/logger"
	"github.com/interlinker0325/chatbot-bookshop/server"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to TOML config file (watched for changes)")
	listenAddr := flag.String("listen", "", "Address to listen on")
	upstreamURL := flag.String("upstream", "", "Upstream LLM provider URL (e.g., Ollama)")
	model := flag.String("model", "", "Model name served by the upstream provider")
	dbPath := flag.String("db", "", "Path to SQLite session database (default: in-memory)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	config := server.DefaultConfig()
	if *configPath != "" {
		var err error
		config, err = server.LoadConfig(*configPath)
		if err != nil {
			logger.NewLogger(true).Fatal("failed to load config", zap.Error(err))
		}
	}

	// Flags win over the config file.
	if *listenAddr != "" {
		config.ListenAddr = *listenAddr
	}
	if *upstreamURL != "" {
		config.UpstreamURL = *upstreamURL
	}
	if *model != "" {
		config.Model = *model
	}
	if *dbPath != "" {
		config.DBPath = *dbPath
	}
	if *debug {
		config.Debug = true
	}

	// Set up logger
	logger := logger.NewLogger(config.Debug)
	defer logger.Sync()

	logger.Info("bookshop chatbot server starting",
		zap.String("listen", config.ListenAddr),
		zap.String("upstream", config.UpstreamURL),
		zap.String("model", config.Model),
		zap.Bool("debug", config.Debug),
	)

	s, err := server.New(config, logger)
	if err != nil {
		logger.Fatal("failed to create server", zap.Error(err))
	}
	defer s.Close()

	if *configPath != "" {
		if err := server.WatchConfig(context.Background(), *configPath, logger, s.ApplyConfig); err != nil {
			logger.Fatal("failed to watch config", zap.Error(err))
		}
	}

	if err := s.Run(); err != nil {
		logger.Fatal("chatbot server failed", zap.Error(err))
	}
}
