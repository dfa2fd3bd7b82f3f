package spec

import (
	"fmt"

	"validate-specs/internal/document"
	"validate-specs/internal/naming"
	"validate-specs/internal/quantity"
)

// Deserialize builds a specification from a resolved document with keys
// name, threshold and optionally metric and package. A package that
// conflicts with the name or metric does not override them.
func Deserialize(doc *document.Document) (Specification, error) {
	if !doc.Has(TypeThreshold) {
		return nil, fmt.Errorf("document has no %q field: %w", TypeThreshold, ErrUnsupportedKind)
	}

	name, err := nameFromDocument(doc)
	if err != nil {
		return nil, err
	}

	threshold, ok := doc.GetDocument(TypeThreshold)
	if !ok {
		return nil, fmt.Errorf("%s: threshold is not a mapping: %w", name, ErrInvalidDocument)
	}

	q, op, err := decodeThreshold(threshold)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return NewThreshold(name, q, op)
}

func nameFromDocument(doc *document.Document) (naming.Name, error) {
	raw, ok := doc.GetString("name")
	if !ok {
		return naming.Name{}, fmt.Errorf("missing or non-string name: %w", ErrInvalidDocument)
	}

	var opts []naming.Option

	if v, ok := doc.Get("metric"); ok && v != nil {
		metric, ok := v.(string)
		if !ok {
			return naming.Name{}, fmt.Errorf("%s: metric must be a string: %w", raw, ErrInvalidDocument)
		}

		opts = append(opts, naming.WithMetric(metric))
	}

	if pkg, ok := doc.GetString("package"); ok && pkg != "" {
		opts = append(opts, naming.WithContextPackage(pkg))
	}

	return naming.ParseSpecName(raw, opts...)
}

func decodeThreshold(d *document.Document) (quantity.Quantity, string, error) {
	v, ok := d.Get("value")
	if !ok {
		return quantity.Quantity{}, "", fmt.Errorf("threshold has no value: %w", ErrInvalidDocument)
	}

	value, ok := toFloat(v)
	if !ok {
		return quantity.Quantity{}, "", fmt.Errorf("threshold value %v is not a number: %w", v, ErrInvalidDocument)
	}

	unit := ""
	if u, ok := d.Get("unit"); ok && u != nil {
		if unit, ok = u.(string); !ok {
			return quantity.Quantity{}, "", fmt.Errorf("threshold unit %v is not a string: %w", u, ErrInvalidDocument)
		}
	}

	op, ok := d.GetString("operator")
	if !ok {
		return quantity.Quantity{}, "", fmt.Errorf("threshold has no operator: %w", ErrInvalidDocument)
	}

	q, err := quantity.New(value, unit)
	if err != nil {
		return quantity.Quantity{}, "", err
	}

	return q, op, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
