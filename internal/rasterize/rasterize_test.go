package rasterize

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MadsenMartin/extractorCasaSergio/internal/common"
)

func TestRasterizeRejectsInvalidPDF(t *testing.T) {
	r := NewRasterizer(300, nil)

	_, err := r.Rasterize(context.Background(), []byte("this is not a pdf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDocumentOpen))
}

func TestRasterizeRejectsEmptyInput(t *testing.T) {
	r := NewRasterizer(300, nil)

	_, err := r.Rasterize(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDocumentOpen))
}

func TestJoinPageTexts(t *testing.T) {
	got := JoinPageTexts([]string{"primera", "segunda"})
	assert.Equal(t, "\n--- Página 1 ---\nprimera\n--- Página 2 ---\nsegunda", got)
}

func TestJoinPageTextsEmpty(t *testing.T) {
	assert.Equal(t, "", JoinPageTexts(nil))
}

func TestNewRasterizerDefaultsDPI(t *testing.T) {
	r := NewRasterizer(0, nil)
	assert.Equal(t, float64(300), r.dpi)
}
