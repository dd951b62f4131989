// Package export renders a validated extraction into downloadable artifacts.
// Everything is produced in-memory; the caller decides persistence.
package export

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/MadsenMartin/extractorCasaSergio/internal/common"
	"github.com/MadsenMartin/extractorCasaSergio/internal/llm"
	"github.com/MadsenMartin/extractorCasaSergio/internal/reconcile"
)

// Header columns of the export, in the order the destination spreadsheet
// expects them.
var csvHeader = []string{"Codigo", "Artículo", "Cantidad", "Precio Unitario", "IVA", "Total (neto)", "Validacion"}

// OrderCSV renders the items as a semicolon-delimited table: UTF-8 BOM for
// encoding clarity, comma as decimal separator (target-locale convention),
// newline row terminator, and the validation message only in the first data
// row. The line total column is computed as unit price × quantity, matching
// the canonical reconciliation expression.
func OrderCSV(order *llm.OrderExtraction, validation reconcile.ValidationResult) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("\uFEFF")

	w := csv.NewWriter(&buf)
	w.Comma = ';'

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for i, it := range order.Items {
		val := ""
		if i == 0 {
			val = validation.Message
		}
		row := []string{
			it.Code,
			it.Description,
			common.FormatDecimalComma(it.Quantity),
			common.FormatDecimalComma(it.UnitPrice),
			common.FormatDecimalComma(it.TaxRate),
			common.FormatDecimalComma(it.UnitPrice * it.Quantity),
			val,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename derives the download name from the extracted order number,
// falling back to a generic name when it is empty or unusable.
func Filename(order *llm.OrderExtraction, ext string) string {
	n := sanitizeForFilename(order.OrderNumber)
	if n == "" {
		return "pedido_extraido." + ext
	}
	return "pedido_" + n + "." + ext
}

func sanitizeForFilename(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	return b.String()
}
