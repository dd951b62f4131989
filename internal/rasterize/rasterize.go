// Package rasterize turns a purchase-order PDF into per-page images and
// plain text for the extraction prompt. Rendering happens fully in-memory
// through MuPDF (go-fitz); no scratch files are written.
package rasterize

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"time"

	"github.com/gen2brain/go-fitz"

	"github.com/MadsenMartin/extractorCasaSergio/internal/common"
)

// PageImage is one rendered page. Immutable once produced; discarded after
// the extraction request is sent.
type PageImage struct {
	Index int // 1-based page number
	PNG   []byte
	DPI   float64
}

// Result holds the rendered pages and the text layer of one document.
type Result struct {
	Images    []PageImage
	PageTexts []string
	// FullText is the page texts concatenated with page-boundary markers,
	// ready to embed in the prompt.
	FullText  string
	PageCount int
}

type Rasterizer struct {
	dpi    float64
	logger *slog.Logger
}

func NewRasterizer(dpi float64, logger *slog.Logger) *Rasterizer {
	if dpi <= 0 {
		dpi = 300 // small typography on order tables needs a high DPI
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Rasterizer{dpi: dpi, logger: logger}
}

// Rasterize renders every page of pdfBytes in document order and extracts its
// text layer. It fails with common.ErrDocumentOpen when the bytes are not a
// valid PDF.
func (r *Rasterizer) Rasterize(ctx context.Context, pdfBytes []byte) (*Result, error) {
	start := time.Now()

	doc, err := fitz.NewFromMemory(pdfBytes)
	if err != nil {
		return nil, common.DocumentOpenError("open pdf", err)
	}
	defer func() {
		if err := doc.Close(); err != nil {
			r.logger.Warn("rasterize.close_error", "error", err)
		}
	}()

	pageCount := doc.NumPage()
	if pageCount == 0 {
		return nil, common.DocumentOpenError("pdf has no pages", nil)
	}

	res := &Result{
		Images:    make([]PageImage, 0, pageCount),
		PageTexts: make([]string, 0, pageCount),
		PageCount: pageCount,
	}

	for pageNum := 0; pageNum < pageCount; pageNum++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := doc.ImageDPI(pageNum, r.dpi)
		if err != nil {
			return nil, common.DocumentOpenError(fmt.Sprintf("render page %d", pageNum+1), err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, common.DocumentOpenError(fmt.Sprintf("encode page %d", pageNum+1), err)
		}
		res.Images = append(res.Images, PageImage{
			Index: pageNum + 1,
			PNG:   buf.Bytes(),
			DPI:   r.dpi,
		})

		text, err := doc.Text(pageNum)
		if err != nil {
			return nil, common.DocumentOpenError(fmt.Sprintf("extract text of page %d", pageNum+1), err)
		}
		res.PageTexts = append(res.PageTexts, text)
	}

	res.FullText = JoinPageTexts(res.PageTexts)

	r.logger.Debug("rasterize.ok",
		"pages", pageCount,
		"dpi", r.dpi,
		"text_len", len(res.FullText),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// JoinPageTexts concatenates page texts with the page-boundary marker the
// prompt references, so the model can attribute rows to pages.
func JoinPageTexts(pages []string) string {
	var b bytes.Buffer
	for i, text := range pages {
		fmt.Fprintf(&b, "\n--- Página %d ---\n", i+1)
		b.WriteString(text)
	}
	return b.String()
}
