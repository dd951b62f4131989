package llm

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/MadsenMartin/extractorCasaSergio/internal/common"
)

// Models routinely wrap their JSON in a fenced code block with surrounding
// prose. The inner match is greedy so nested braces inside the object do not
// truncate it.
var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*\\})\\s*```")

// ParseOrder recovers an OrderExtraction from the model's raw response.
// Two-step lookup: a fenced ```json block if present, else the whole
// response as the payload. Beyond fence unwrapping and the sanitize
// coercions, no repair of malformed JSON is attempted — correctness of the
// extraction is the model's responsibility, faithful recovery is ours.
func ParseOrder(raw string, logger *slog.Logger) (*OrderExtraction, error) {
	if logger == nil {
		logger = slog.Default()
	}

	payload := strings.TrimSpace(raw)
	if m := fencedJSON.FindStringSubmatch(payload); m != nil {
		payload = m[1]
	}

	sanitized, err := sanitizeOrderJSON([]byte(payload), logger)
	if err != nil {
		return nil, common.MalformedExtractionError("response is not valid json", err)
	}

	if err := ValidateJSONAgainstSchema(BuildOrderJSONSchema(), sanitized); err != nil {
		return nil, common.MalformedExtractionError("response missing required fields", err)
	}

	var out OrderExtraction
	if err := json.Unmarshal(sanitized, &out); err != nil {
		return nil, common.MalformedExtractionError("decode order fields", err)
	}
	return &out, nil
}

var allowedOrderKeys = map[string]struct{}{
	"pedido_numero": {}, "items": {}, "unidades": {},
	"subtotal": {}, "iva_total": {}, "total": {},
}

var allowedItemKeys = map[string]struct{}{
	"codigo": {}, "articulo": {}, "iva": {},
	"pre_uni": {}, "cantidad": {}, "total": {},
}

// sanitizeOrderJSON
// - Coerces a numeric pedido_numero to string (older prompts asked for int)
// - Defaults a missing grand total from subtotal + iva_total
// - Removes unknown keys (strict additionalProperties = false friendliness)
func sanitizeOrderJSON(raw []byte, logger *slog.Logger) ([]byte, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}

	dropped := make([]string, 0, 4)

	if v, ok := m["pedido_numero"]; ok {
		switch t := v.(type) {
		case json.Number:
			m["pedido_numero"] = t.String()
		case string:
			m["pedido_numero"] = strings.TrimSpace(t)
		}
	}

	if _, ok := m["total"]; !ok {
		sub, okSub := asFloat(m["subtotal"])
		tax, okTax := asFloat(m["iva_total"])
		if okSub && okTax {
			m["total"] = sub + tax
		}
	}

	for k := range m {
		if _, ok := allowedOrderKeys[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k)
		}
	}

	if items, ok := m["items"].([]any); ok {
		for _, it := range items {
			obj, ok := it.(map[string]any)
			if !ok {
				continue
			}
			for k := range obj {
				if _, ok := allowedItemKeys[k]; !ok {
					delete(obj, k)
					dropped = append(dropped, "items."+k)
				}
			}
		}
	}

	if len(dropped) > 0 {
		logger.Warn("llm.parse.sanitize", "dropped", dropped)
	}
	return json.Marshal(m)
}

func asFloat(v any) (float64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}
