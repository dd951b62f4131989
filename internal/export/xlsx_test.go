package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MadsenMartin/extractorCasaSergio/internal/reconcile"
)

func TestOrderXLSX(t *testing.T) {
	order := sampleOrder()
	validation := reconcile.Reconcile(order)

	out, err := OrderXLSX(order, validation)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	const sheet = "Pedido"

	header, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Codigo", header)

	qty, err := f.GetCellValue(sheet, "C2")
	require.NoError(t, err)
	assert.Equal(t, "2,5", qty)

	val, err := f.GetCellValue(sheet, "G2")
	require.NoError(t, err)
	assert.Equal(t, validation.Message, val)

	// second data row carries an empty validation cell
	val2, err := f.GetCellValue(sheet, "G3")
	require.NoError(t, err)
	assert.Empty(t, val2)
}
