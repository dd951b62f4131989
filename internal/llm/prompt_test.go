package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MadsenMartin/extractorCasaSergio/internal/rasterize"
)

func TestBuildPrompt(t *testing.T) {
	text := "\n--- Página 1 ---\nCódigo Artículo\n--- Página 2 ---\nSubTotal: 37.00"
	prompt := BuildPrompt(2, text)

	assert.Contains(t, prompt, "exactamente 2 página(s)")
	assert.Contains(t, prompt, text)
	// aggregate captions searched by their literal text
	assert.Contains(t, prompt, `"Unidades:"`)
	assert.Contains(t, prompt, `"SubTotal:"`)
	assert.Contains(t, prompt, `"Iva:"`)
	assert.Contains(t, prompt, `"Total:"`)
	// row counting comes before extraction
	assert.Less(t, strings.Index(prompt, "CONTEO DE FILAS"), strings.Index(prompt, "EXTRACCIÓN DE TABLA"))
	// output schema field names
	for _, field := range []string{"pedido_numero", "codigo", "articulo", "iva", "pre_uni", "cantidad", "unidades", "subtotal", "iva_total"} {
		assert.Contains(t, prompt, field)
	}
	assert.Contains(t, prompt, "NO redondees")
}

func TestBuildPromptDeterministic(t *testing.T) {
	a := BuildPrompt(3, "texto")
	b := BuildPrompt(3, "texto")
	assert.Equal(t, a, b)
}

func TestBuildRequestPartOrder(t *testing.T) {
	images := []rasterize.PageImage{
		{Index: 1, PNG: []byte{0x89, 'P', 'N', 'G'}},
		{Index: 2, PNG: []byte{0x89, 'P', 'N', 'G', '2'}},
	}
	req := BuildRequest("instrucciones", images)

	assert.Equal(t, SystemPrompt, req.System)
	require.Len(t, req.Parts, 3)

	assert.Equal(t, "text", req.Parts[0].Type)
	assert.Equal(t, "instrucciones", req.Parts[0].Text)
	assert.Nil(t, req.Parts[0].ImageURL)

	for i, part := range req.Parts[1:] {
		assert.Equal(t, "image_url", part.Type)
		require.NotNil(t, part.ImageURL, "part %d", i+1)
		assert.True(t, strings.HasPrefix(part.ImageURL.URL, "data:image/png;base64,"))
	}
	// page order preserved
	assert.NotEqual(t, req.Parts[1].ImageURL.URL, req.Parts[2].ImageURL.URL)
}
