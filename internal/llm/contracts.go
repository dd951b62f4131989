package llm

import "context"

// LineItem is one row of the order's item table, exactly as the model
// reported it. Nothing is rounded before validation.
type LineItem struct {
	Code        string  `json:"codigo"`
	Description string  `json:"articulo"`
	TaxRate     float64 `json:"iva"`
	UnitPrice   float64 `json:"pre_uni"`
	Quantity    float64 `json:"cantidad"`
	LineTotal   float64 `json:"total"`
}

// OrderExtraction is the parsed, unvalidated result of one extraction call.
// Declared aggregates come from the document itself; computed counterparts
// live in reconcile.ValidationResult.
type OrderExtraction struct {
	OrderNumber       string     `json:"pedido_numero"`
	Items             []LineItem `json:"items"`
	DeclaredUnitCount float64    `json:"unidades"`
	DeclaredSubtotal  float64    `json:"subtotal"`
	DeclaredTaxTotal  float64    `json:"iva_total"`
	DeclaredTotal     float64    `json:"total,omitempty"`
}

// ContentPart is one part of a multimodal message (text or image).
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL carries an image as a data URL.
type ImageURL struct {
	URL string `json:"url"`
}

// ExtractionRequest is an ordered multimodal message: one text instruction
// part followed by one image part per page, in page order. Built once per
// invocation; never mutated after construction.
type ExtractionRequest struct {
	System string
	Parts  []ContentPart
}

// Extractor is the remote extraction capability the pipeline depends on.
// The response is free-form text and must never be trusted without
// downstream validation.
type Extractor interface {
	Extract(ctx context.Context, req ExtractionRequest) (string, error)
}
