package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MadsenMartin/extractorCasaSergio/internal/common"
	"github.com/MadsenMartin/extractorCasaSergio/internal/llm"
	"github.com/MadsenMartin/extractorCasaSergio/internal/rasterize"
)

type stubRasterizer struct {
	result *rasterize.Result
	err    error
}

func (s *stubRasterizer) Rasterize(_ context.Context, _ []byte) (*rasterize.Result, error) {
	return s.result, s.err
}

type stubExtractor struct {
	response string
	err      error
	gotReq   llm.ExtractionRequest
}

func (s *stubExtractor) Extract(_ context.Context, req llm.ExtractionRequest) (string, error) {
	s.gotReq = req
	return s.response, s.err
}

func twoPageRaster() *rasterize.Result {
	texts := []string{"Código Artículo ...", "SubTotal: 1000.00\nUnidades: 8.00"}
	return &rasterize.Result{
		Images: []rasterize.PageImage{
			{Index: 1, PNG: []byte("p1"), DPI: 300},
			{Index: 2, PNG: []byte("p2"), DPI: 300},
		},
		PageTexts: texts,
		FullText:  rasterize.JoinPageTexts(texts),
		PageCount: 2,
	}
}

// Model reads 3 items summing to 999.99 off a document declaring 1000.00.
const mismatchResponse = "Acá está el JSON:\n```json\n" + `{
  "pedido_numero": "8804",
  "items": [
    {"codigo": "A1", "articulo": "Uno", "iva": 21.0, "pre_uni": 100.0, "cantidad": 5.0, "total": 500.0},
    {"codigo": "B2", "articulo": "Dos", "iva": 21.0, "pre_uni": 150.0, "cantidad": 2.0, "total": 300.0},
    {"codigo": "C3", "articulo": "Tres", "iva": 21.0, "pre_uni": 199.99, "cantidad": 1.0, "total": 199.99}
  ],
  "unidades": 8.0,
  "subtotal": 1000.00,
  "iva_total": 210.0,
  "total": 1210.0
}` + "\n```"

func TestProcessMismatchStillProducesExport(t *testing.T) {
	extractor := &stubExtractor{response: mismatchResponse}
	p := NewProcessor(&stubRasterizer{result: twoPageRaster()}, extractor, nil)

	res, err := p.Process(context.Background(), []byte("%PDF-fake"))
	require.NoError(t, err)

	assert.False(t, res.Validation.TotalsMatch)
	assert.True(t, res.Validation.QuantitiesMatch)
	assert.Contains(t, res.Validation.Message, "999.99")
	assert.Contains(t, res.Validation.Message, "1000.0")

	// export artifact still contains all 3 item rows
	lines := strings.Split(strings.TrimSuffix(string(res.CSV), "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "pedido_8804.csv", res.Filename)

	// prompt carried the page count and both page texts, then the two images
	require.Len(t, extractor.gotReq.Parts, 3)
	assert.Contains(t, extractor.gotReq.Parts[0].Text, "exactamente 2 página(s)")
	assert.Contains(t, extractor.gotReq.Parts[0].Text, "--- Página 2 ---")
}

func TestProcessDocumentOpenErrorPropagates(t *testing.T) {
	wantErr := common.DocumentOpenError("open pdf", errors.New("not a pdf"))
	p := NewProcessor(&stubRasterizer{err: wantErr}, &stubExtractor{}, nil)

	_, err := p.Process(context.Background(), []byte("garbage"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDocumentOpen))
}

func TestProcessRemoteErrorPropagates(t *testing.T) {
	extractor := &stubExtractor{err: common.RemoteServiceError("boom", nil)}
	p := NewProcessor(&stubRasterizer{result: twoPageRaster()}, extractor, nil)

	_, err := p.Process(context.Background(), []byte("%PDF-fake"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrRemoteService))
}

func TestProcessMalformedResponseFails(t *testing.T) {
	extractor := &stubExtractor{response: "Sure, here's your data"}
	p := NewProcessor(&stubRasterizer{result: twoPageRaster()}, extractor, nil)

	_, err := p.Process(context.Background(), []byte("%PDF-fake"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrMalformedExtraction))
}
