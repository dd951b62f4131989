package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/MadsenMartin/extractorCasaSergio/internal/common"
	"github.com/MadsenMartin/extractorCasaSergio/internal/llm"
	"github.com/MadsenMartin/extractorCasaSergio/internal/reconcile"
)

// OrderXLSX returns an XLSX workbook (as bytes) with the same columns as the
// CSV export plus a declared-vs-computed summary block under the table.
func OrderXLSX(order *llm.OrderExtraction, validation reconcile.ValidationResult) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Pedido"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for i, h := range csvHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	row := 2
	for i, it := range order.Items {
		val := ""
		if i == 0 {
			val = validation.Message
		}
		write(1, row, it.Code)
		write(2, row, it.Description)
		write(3, row, common.FormatDecimalComma(it.Quantity))
		write(4, row, common.FormatDecimalComma(it.UnitPrice))
		write(5, row, common.FormatDecimalComma(it.TaxRate))
		write(6, row, common.FormatDecimalComma(it.UnitPrice*it.Quantity))
		write(7, row, val)
		row++
	}

	// summary block
	row++
	write(1, row, "Pedido N°")
	write(2, row, order.OrderNumber)
	row++
	write(1, row, "Items")
	write(2, row, len(order.Items))
	row++
	write(1, row, "SubTotal declarado")
	write(2, row, common.FormatDecimalComma(order.DeclaredSubtotal))
	write(3, row, "Suma calculada")
	write(4, row, common.FormatDecimalComma(validation.ComputedTotalSum))
	row++
	write(1, row, "Unidades declaradas")
	write(2, row, common.FormatDecimalComma(order.DeclaredUnitCount))
	write(3, row, "Cantidades calculadas")
	write(4, row, common.FormatDecimalComma(validation.ComputedQuantitySum))
	row++
	write(1, row, "Validacion")
	write(2, row, validation.Message)

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 14) // codigo
	_ = f.SetColWidth(sheet, "B", "B", 40) // articulo
	_ = f.SetColWidth(sheet, "C", "F", 16) // numerics
	_ = f.SetColWidth(sheet, "G", "G", 60) // validacion

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
