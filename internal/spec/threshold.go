package spec

import (
	"encoding/json"
	"fmt"

	"validate-specs/internal/document"
	"validate-specs/internal/naming"
	"validate-specs/internal/quantity"
)

// TypeThreshold is the Type of a ThresholdSpecification.
const TypeThreshold = "threshold"

// ThresholdSpecification passes a measurement when
// "measurement <operator> threshold" holds.
type ThresholdSpecification struct {
	name      naming.Name
	threshold quantity.Quantity
	operator  Operator
}

// NewThreshold builds a ThresholdSpecification. The name must be a
// specification name; it does not have to be fully qualified.
func NewThreshold(name naming.Name, threshold quantity.Quantity, operator string) (*ThresholdSpecification, error) {
	if !name.IsSpec() {
		return nil, fmt.Errorf("%q: %w", name, ErrNotSpecName)
	}

	op, err := ParseOperator(operator)
	if err != nil {
		return nil, fmt.Errorf("specification %s: %w", name, err)
	}

	return &ThresholdSpecification{name: name, threshold: threshold, operator: op}, nil
}

// Name returns the specification name.
func (s *ThresholdSpecification) Name() naming.Name { return s.name }

// Metric returns the name of the metric the specification applies to.
func (s *ThresholdSpecification) Metric() naming.Name { return s.name.MetricName() }

// Type returns TypeThreshold.
func (s *ThresholdSpecification) Type() string { return TypeThreshold }

// Threshold returns the threshold quantity.
func (s *ThresholdSpecification) Threshold() quantity.Quantity { return s.threshold }

// Operator returns the comparison operator.
func (s *ThresholdSpecification) Operator() Operator { return s.operator }

// Datum returns the threshold labelled with the specification name.
func (s *ThresholdSpecification) Datum() quantity.Datum {
	return quantity.NewDatum(s.threshold, s.name.String())
}

// Check compares measurement with the threshold after converting it to the
// threshold unit. Values within the quantity tolerance compare equal.
func (s *ThresholdSpecification) Check(measurement quantity.Quantity) (bool, error) {
	cmp, err := measurement.Compare(s.threshold)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", s.name, err)
	}

	if measurement.ApproxEqual(s.threshold) {
		cmp = 0
	}

	return s.operator.Holds(cmp), nil
}

// Equal reports whether other is a threshold specification with the same
// name and operator and an equivalent threshold.
func (s *ThresholdSpecification) Equal(other Specification) bool {
	o, ok := other.(*ThresholdSpecification)
	if !ok || o == nil {
		return false
	}

	return s.name == o.name &&
		s.operator == o.operator &&
		s.threshold.ApproxEqual(o.threshold)
}

// Document returns {name, type, threshold: {value, unit, operator}}.
func (s *ThresholdSpecification) Document() *document.Document {
	return document.FromPairs(
		"name", s.name.String(),
		"type", TypeThreshold,
		TypeThreshold, document.FromPairs(
			"value", s.threshold.Value,
			"unit", s.threshold.Unit.String(),
			"operator", s.operator.String(),
		),
	)
}

// MarshalJSON encodes the ordered Document form.
func (s *ThresholdSpecification) MarshalJSON() ([]byte, error) {
	return s.Document().MarshalJSON()
}

// MarshalYAML encodes the ordered Document form.
func (s *ThresholdSpecification) MarshalYAML() (any, error) {
	return s.Document().MarshalYAML()
}

func (s *ThresholdSpecification) String() string {
	return fmt.Sprintf("ThresholdSpecification(%s, %s, %s)", s.name, s.threshold, s.operator)
}

type thresholdJSON struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Threshold *struct {
		Value    float64 `json:"value"`
		Unit     string  `json:"unit"`
		Operator string  `json:"operator"`
	} `json:"threshold"`
}

// ThresholdFromJSON reconstructs a specification from its JSON form.
func ThresholdFromJSON(data []byte) (*ThresholdSpecification, error) {
	var raw thresholdJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode threshold specification: %w", err)
	}

	if raw.Type != "" && raw.Type != TypeThreshold {
		return nil, fmt.Errorf("type %q: %w", raw.Type, ErrUnsupportedKind)
	}

	if raw.Threshold == nil {
		return nil, fmt.Errorf("missing threshold: %w", ErrInvalidDocument)
	}

	name, err := naming.ParseSpecName(raw.Name)
	if err != nil {
		return nil, err
	}

	q, err := quantity.New(raw.Threshold.Value, raw.Threshold.Unit)
	if err != nil {
		return nil, fmt.Errorf("specification %s: %w", name, err)
	}

	return NewThreshold(name, q, raw.Threshold.Operator)
}
