package quantity

import (
	"fmt"
	"math"
	"strconv"
)

// relTolerance bounds the relative difference accepted by ApproxEqual.
const relTolerance = 1e-9

// Quantity is a numeric value with a unit.
type Quantity struct {
	Value float64
	Unit  Unit
}

// New returns a Quantity, parsing the unit string.
func New(value float64, unit string) (Quantity, error) {
	u, err := ParseUnit(unit)
	if err != nil {
		return Quantity{}, err
	}

	return Quantity{Value: value, Unit: u}, nil
}

// MustNew is New that panics on error.
func MustNew(value float64, unit string) Quantity {
	q, err := New(value, unit)
	if err != nil {
		panic(err)
	}

	return q
}

// To converts q to the given unit.
func (q Quantity) To(u Unit) (Quantity, error) {
	f, err := q.Unit.factor(u)
	if err != nil {
		return Quantity{}, err
	}

	return Quantity{Value: q.Value * f, Unit: u}, nil
}

// Compare compares q with other after converting other to q's unit.
// It returns -1, 0 or +1.
func (q Quantity) Compare(other Quantity) (int, error) {
	o, err := other.To(q.Unit)
	if err != nil {
		return 0, err
	}

	switch {
	case q.Value < o.Value:
		return -1, nil
	case q.Value > o.Value:
		return 1, nil
	default:
		return 0, nil
	}
}

// ApproxEqual reports whether q and other are the same physical amount,
// within a small relative tolerance. Incompatible units are never equal.
func (q Quantity) ApproxEqual(other Quantity) bool {
	o, err := other.To(q.Unit)
	if err != nil {
		return false
	}

	diff := math.Abs(q.Value - o.Value)
	scale := math.Max(math.Abs(q.Value), math.Abs(o.Value))

	return diff <= relTolerance*scale || diff == 0
}

// String formats the quantity as "<value> <unit>".
func (q Quantity) String() string {
	v := strconv.FormatFloat(q.Value, 'g', -1, 64)
	if q.Unit.symbol == "" {
		return v
	}

	return fmt.Sprintf("%s %s", v, q.Unit.symbol)
}

// Datum is a quantity with a label and description, as reported alongside
// measurements.
type Datum struct {
	Quantity    Quantity
	Label       string
	Description string
}

// NewDatum returns a labelled Datum.
func NewDatum(q Quantity, label string) Datum {
	return Datum{Quantity: q, Label: label}
}
