package llm

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/MadsenMartin/extractorCasaSergio/internal/rasterize"
)

// SystemPrompt frames the extraction task. Kept in the suppliers' language
// because the source documents and their captions are Spanish.
const SystemPrompt = "Sos un asistente que extrae datos estructurados de PDFs de múltiples páginas. " +
	"Usa el texto Y las imágenes para no perder ningún item."

// BuildPrompt composes the instruction block: exact page count, the
// locally-extracted text for cross-checking, the literal aggregate captions
// to search for, a row-count step that biases the model against dropping
// items on long tables, and the exact output schema. Pure and deterministic.
func BuildPrompt(pageCount int, fullText string) string {
	var b strings.Builder

	b.WriteString("TAREA CRÍTICA: Extrae datos de un pedido PDF con validación matemática obligatoria.\n\n")
	fmt.Fprintf(&b, "El documento tiene exactamente %d página(s). Extrae TODOS los items de TODAS las páginas.\n\n", pageCount)

	b.WriteString("TEXTO EXTRAÍDO DEL PDF:\n")
	b.WriteString(fullText)
	b.WriteString("\n\n")

	b.WriteString(`INSTRUCCIONES OBLIGATORIAS - NO OMITIR NINGÚN PASO:

PASO 1 - CONTEO DE FILAS:
- ANTES de extraer, CONTÁ cuántas filas tiene la tabla de items en total
- El array "items" debe tener exactamente esa cantidad de elementos

PASO 2 - EXTRACCIÓN DE TABLA:
- Extrae TODOS los items de la tabla
- Campos: Código, Artículo, IVA, Pre. Uni., Cantidad, Total
- Números con punto decimal (.), nunca coma

PASO 3 - BÚSQUEDA DE TOTALES EN PDF:
- Busca: "Unidades:"
- Busca: "SubTotal:"
- Busca: "Iva:"
- Busca: "Total:"

PASO 4 - VALIDACIÓN MATEMÁTICA OBLIGATORIA:
- Suma TODOS los "Total" de cada item que extrajiste
- COMPARA con el "SubTotal:" del PDF
- SI NO SON IGUALES: REVISA LÍNEA POR LÍNEA cada item hasta que coincidan
- NO devuelvas el JSON hasta que Suma Items = SubTotal del PDF

PASO 5 - SEGUNDA VALIDACIÓN:
- Suma TODAS las "Cantidad" de cada item
- COMPARA con "Unidades:" del PDF
- SI NO SON IGUALES: REVISA cada cantidad hasta que coincida

PASO 6 - DEVOLUCIÓN:
Solo cuando AMBAS validaciones sean correctas, devuelve EXACTAMENTE este JSON:
{
"pedido_numero": string,
"items": [
  {"codigo": string, "articulo": string, "iva": float, "pre_uni": float, "cantidad": float, "total": float}
],
"unidades": float,
"subtotal": float,
"iva_total": float,
"total": float
}

REGLAS NO NEGOCIABLES:
• NO redondees números
• Todos los números deben ser floats, decimales con punto
• Si hay discrepancia, REVISA LAS IMÁGENES, no adivines
`)

	return b.String()
}

// BuildRequest packages the instruction block and the rendered pages into a
// single ordered multimodal message: text first, then one image per page in
// page order.
func BuildRequest(prompt string, images []rasterize.PageImage) ExtractionRequest {
	parts := make([]ContentPart, 0, len(images)+1)
	parts = append(parts, ContentPart{Type: "text", Text: prompt})
	for _, img := range images {
		parts = append(parts, ContentPart{
			Type: "image_url",
			ImageURL: &ImageURL{
				URL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(img.PNG),
			},
		})
	}
	return ExtractionRequest{System: SystemPrompt, Parts: parts}
}
