// Package pipeline wires the extraction stages into one synchronous run:
// rasterize → prompt → model call → parse → reconcile → export. Each
// invocation is fully self-contained and owns no shared mutable state, so
// independent submissions may run concurrently without locking.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MadsenMartin/extractorCasaSergio/internal/common"
	"github.com/MadsenMartin/extractorCasaSergio/internal/export"
	"github.com/MadsenMartin/extractorCasaSergio/internal/llm"
	"github.com/MadsenMartin/extractorCasaSergio/internal/rasterize"
	"github.com/MadsenMartin/extractorCasaSergio/internal/reconcile"
)

// Rasterizer renders a PDF into page images and text.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfBytes []byte) (*rasterize.Result, error)
}

// Result is everything one invocation hands to the presentation layer: the
// export bytes, the parsed extraction, and the validation verdict.
type Result struct {
	Order      *llm.OrderExtraction
	Validation reconcile.ValidationResult
	CSV        []byte
	Filename   string
	Elapsed    time.Duration
}

type Processor struct {
	raster    Rasterizer
	extractor llm.Extractor
	logger    *slog.Logger
}

func NewProcessor(raster Rasterizer, extractor llm.Extractor, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{raster: raster, extractor: extractor, logger: logger}
}

// Process runs the whole pipeline over one uploaded PDF. A reconciliation
// mismatch is not an error: the export artifact is produced regardless so
// the user can correct the table by hand. Fatal errors (unreadable document,
// remote failure, malformed response) abort this invocation only.
func (p *Processor) Process(ctx context.Context, pdfBytes []byte) (*Result, error) {
	rid := uuid.New().String()
	ctx = common.WithRequestID(ctx, rid)
	start := time.Now()

	ras, err := p.raster.Rasterize(ctx, pdfBytes)
	if err != nil {
		p.logger.Error("pipeline.rasterize.failed", "req_id", rid, "error", err)
		return nil, err
	}
	p.logger.Info("pipeline.rasterize.ok",
		"req_id", rid,
		"pages", ras.PageCount,
		"text_len", len(ras.FullText),
	)

	prompt := llm.BuildPrompt(ras.PageCount, ras.FullText)
	req := llm.BuildRequest(prompt, ras.Images)

	raw, err := p.extractor.Extract(ctx, req)
	if err != nil {
		p.logger.Error("pipeline.extract.failed", "req_id", rid, "error", err)
		return nil, err
	}

	order, err := llm.ParseOrder(raw, p.logger)
	if err != nil {
		p.logger.Error("pipeline.parse.failed", "req_id", rid, "error", err)
		return nil, err
	}
	p.logger.Info("pipeline.parse.ok",
		"req_id", rid,
		"order_number", order.OrderNumber,
		"items", len(order.Items),
	)

	validation := reconcile.Reconcile(order)
	if !validation.OK() {
		p.logger.Warn("pipeline.reconcile.mismatch",
			"req_id", rid,
			"totals_match", validation.TotalsMatch,
			"quantities_match", validation.QuantitiesMatch,
			"message", validation.Message,
		)
	}

	csvBytes, err := export.OrderCSV(order, validation)
	if err != nil {
		p.logger.Error("pipeline.export.failed", "req_id", rid, "error", err)
		return nil, common.NewAppError("EXPORT", "render csv", err)
	}

	res := &Result{
		Order:      order,
		Validation: validation,
		CSV:        csvBytes,
		Filename:   export.Filename(order, "csv"),
		Elapsed:    time.Since(start),
	}
	p.logger.Info("pipeline.ok",
		"req_id", rid,
		"order_number", order.OrderNumber,
		"items", len(order.Items),
		"validation_ok", validation.OK(),
		"elapsed_ms", res.Elapsed.Milliseconds(),
	)
	return res, nil
}
