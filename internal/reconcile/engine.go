// Package reconcile cross-checks an extraction against the document's own
// declared aggregates. A mismatch is data, not an error: the caller still
// gets the full extraction to correct by hand.
package reconcile

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/MadsenMartin/extractorCasaSergio/internal/common"
	"github.com/MadsenMartin/extractorCasaSergio/internal/llm"
)

// Tolerance is the absolute tolerance for every aggregate comparison,
// absorbing rounding noise in the source documents.
const Tolerance = 0.01

// ValidationResult is derived purely from one OrderExtraction and recomputed
// fresh each call. TotalsMatch and QuantitiesMatch are independent; overall
// success requires both.
type ValidationResult struct {
	TotalsMatch         bool    `json:"totals_match"`
	QuantitiesMatch     bool    `json:"quantities_match"`
	ComputedTotalSum    float64 `json:"computed_total_sum"`
	ComputedQuantitySum float64 `json:"computed_quantity_sum"`
	Message             string  `json:"message"`
}

// OK reports whether both checks passed.
func (v ValidationResult) OK() bool {
	return v.TotalsMatch && v.QuantitiesMatch
}

// Reconcile computes the canonical total sum Σ(unit price × quantity) and
// the quantity sum over all items, and compares each against its declared
// counterpart within Tolerance. The model-reported per-line totals serve as
// a secondary cross-check; rows where they disagree with unit price ×
// quantity are named in the message. Pure and deterministic: identical input
// always yields an identical result.
func Reconcile(order *llm.OrderExtraction) ValidationResult {
	var totalSum, quantitySum float64
	var inconsistent []string
	for i, it := range order.Items {
		line := it.UnitPrice * it.Quantity
		totalSum += line
		quantitySum += it.Quantity
		if math.Abs(it.LineTotal-line) > Tolerance {
			inconsistent = append(inconsistent, strconv.Itoa(i+1))
		}
	}

	res := ValidationResult{
		ComputedTotalSum:    totalSum,
		ComputedQuantitySum: quantitySum,
	}

	clauses := make([]string, 0, 3)

	if math.Abs(totalSum-order.DeclaredSubtotal) <= Tolerance {
		res.TotalsMatch = true
		clauses = append(clauses, "OK Totales")
	} else {
		clauses = append(clauses, fmt.Sprintf("ERROR: Suma=%s != Subtotal=%s",
			common.FormatDecimal(totalSum), common.FormatDecimal(order.DeclaredSubtotal)))
	}

	if math.Abs(quantitySum-order.DeclaredUnitCount) <= Tolerance {
		res.QuantitiesMatch = true
		clauses = append(clauses, "OK Cantidades")
	} else {
		clauses = append(clauses, fmt.Sprintf("ERROR: Suma Cantidades=%s != Unidades=%s",
			common.FormatDecimal(quantitySum), common.FormatDecimal(order.DeclaredUnitCount)))
	}

	if len(inconsistent) > 0 {
		clauses = append(clauses, "AVISO: filas con Total inconsistente: "+strings.Join(inconsistent, ", "))
	}

	res.Message = strings.Join(clauses, " | ")
	return res
}
