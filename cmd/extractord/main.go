package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/MadsenMartin/extractorCasaSergio/internal/common"
	"github.com/MadsenMartin/extractorCasaSergio/internal/history"
	"github.com/MadsenMartin/extractorCasaSergio/internal/llm/openai"
	"github.com/MadsenMartin/extractorCasaSergio/internal/pipeline"
	"github.com/MadsenMartin/extractorCasaSergio/internal/rasterize"
	"github.com/MadsenMartin/extractorCasaSergio/internal/server"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	raster := rasterize.NewRasterizer(cfg.Raster.DPI, logger)
	client := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
	proc := pipeline.NewProcessor(raster, client, logger)

	var hist *history.Store
	if cfg.History.Path != "" {
		var err error
		hist, err = history.NewStore(cfg.History.Path, logger)
		if err != nil {
			logger.Error("open history store", "path", cfg.History.Path, "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := hist.Close(); err != nil {
				logger.Warn("close history store", "error", err)
			}
		}()
	}

	srv := server.New(proc, hist, cfg.Server, logger)
	if err := srv.Run(); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
