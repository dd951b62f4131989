// One-shot extraction: read a purchase-order PDF, call the model, write the
// validated CSV (or XLSX) next to it, print the reconciliation verdict.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/MadsenMartin/extractorCasaSergio/internal/common"
	"github.com/MadsenMartin/extractorCasaSergio/internal/export"
	"github.com/MadsenMartin/extractorCasaSergio/internal/llm/openai"
	"github.com/MadsenMartin/extractorCasaSergio/internal/pipeline"
	"github.com/MadsenMartin/extractorCasaSergio/internal/rasterize"
)

func main() {
	_ = godotenv.Load()

	var (
		outPath = flag.String("o", "", "output path (default: derived from the order number)")
		asXLSX  = flag.Bool("xlsx", false, "write an XLSX workbook instead of CSV")
		quiet   = flag.Bool("q", false, "suppress progress logs")
	)
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: extract [-o out] [-xlsx] [-q] <pedido.pdf>")
		os.Exit(2)
	}
	pdfPath := flag.Arg(0)

	level := slog.LevelInfo
	if *quiet {
		level = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if cfg.LLM.APIKey == "" {
		logger.Error("OPENAI_API_KEY env var is required")
		os.Exit(2)
	}

	pdfBytes, err := os.ReadFile(pdfPath)
	if err != nil {
		logger.Error("read pdf", "path", pdfPath, "error", err)
		os.Exit(1)
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

	ctx, cancel := common.WithTimeout(context.Background(), cfg.LLM.Timeout+cfg.LLM.Timeout/2)
	defer cancel()

	res, err := proc.Process(ctx, pdfBytes)
	if err != nil {
		logger.Error("extraction failed", "error", err)
		os.Exit(1)
	}

	data := res.CSV
	name := res.Filename
	if *asXLSX {
		data, err = export.OrderXLSX(res.Order, res.Validation)
		if err != nil {
			logger.Error("render xlsx", "error", err)
			os.Exit(1)
		}
		name = export.Filename(res.Order, "xlsx")
	}
	if *outPath != "" {
		name = *outPath
	}

	if err := os.WriteFile(name, data, 0o644); err != nil {
		logger.Error("write output", "path", name, "error", err)
		os.Exit(1)
	}

	fmt.Printf("Pedido %s: %d items -> %s\n", res.Order.OrderNumber, len(res.Order.Items), name)
	fmt.Println(res.Validation.Message)
	if !res.Validation.OK() {
		fmt.Println(strings.Repeat("-", 40))
		fmt.Printf("Suma calculada: %s / SubTotal declarado: %s\n",
			common.FormatDecimal(res.Validation.ComputedTotalSum),
			common.FormatDecimal(res.Order.DeclaredSubtotal))
	}
}
