package quantity

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrUnknownUnit is returned when a unit string is not recognised.
	ErrUnknownUnit = errors.New("unknown unit")
	// ErrIncompatibleUnits is returned when converting between units of
	// different dimensions.
	ErrIncompatibleUnits = errors.New("incompatible units")
)

// Dimension indexes into a unit's exponent vector.
type Dimension int

const (
	DimLength Dimension = iota
	DimTime
	DimMass
	DimAngle
	DimMagnitude
	DimPixel
	DimCount

	numDimensions
)

// String returns a human-readable representation of the Dimension.
func (d Dimension) String() string {
	switch d {
	case DimLength:
		return "length"
	case DimTime:
		return "time"
	case DimMass:
		return "mass"
	case DimAngle:
		return "angle"
	case DimMagnitude:
		return "magnitude"
	case DimPixel:
		return "pixel"
	case DimCount:
		return "count"
	default:
		return "unknown"
	}
}

type exponents [numDimensions]int8

// Unit is a named unit with a scale relative to the base unit of its dimension.
type Unit struct {
	symbol string
	scale  float64
	dims   exponents
}

type baseUnit struct {
	scale      float64
	dims       exponents
	prefixable bool
}

func dim(d Dimension, exp int8) exponents {
	var e exponents
	e[d] = exp

	return e
}

var units = map[string]baseUnit{
	"":              {scale: 1},
	"dimensionless": {scale: 1},
	"%":             {scale: 0.01},
	"mag":           {scale: 1, dims: dim(DimMagnitude, 1), prefixable: true},
	"rad":           {scale: 1, dims: dim(DimAngle, 1), prefixable: true},
	"deg":           {scale: math.Pi / 180, dims: dim(DimAngle, 1)},
	"arcmin":        {scale: math.Pi / 180 / 60, dims: dim(DimAngle, 1), prefixable: true},
	"arcsec":        {scale: math.Pi / 180 / 3600, dims: dim(DimAngle, 1), prefixable: true},
	"mas":           {scale: math.Pi / 180 / 3600 / 1000, dims: dim(DimAngle, 1)},
	"m":             {scale: 1, dims: dim(DimLength, 1), prefixable: true},
	"pc":            {scale: 3.0856775814913673e16, dims: dim(DimLength, 1), prefixable: true},
	"AU":            {scale: 1.495978707e11, dims: dim(DimLength, 1)},
	"s":             {scale: 1, dims: dim(DimTime, 1), prefixable: true},
	"min":           {scale: 60, dims: dim(DimTime, 1)},
	"h":             {scale: 3600, dims: dim(DimTime, 1)},
	"d":             {scale: 86400, dims: dim(DimTime, 1)},
	"yr":            {scale: 365.25 * 86400, dims: dim(DimTime, 1)},
	"Hz":            {scale: 1, dims: dim(DimTime, -1), prefixable: true},
	"g":             {scale: 1e-3, dims: dim(DimMass, 1), prefixable: true},
	"pix":           {scale: 1, dims: dim(DimPixel, 1)},
	"pixel":         {scale: 1, dims: dim(DimPixel, 1)},
	"ct":            {scale: 1, dims: dim(DimCount, 1)},
	"count":         {scale: 1, dims: dim(DimCount, 1)},
	"electron":      {scale: 1, dims: dim(DimCount, 1)},
}

var prefixes = []struct {
	symbol string
	scale  float64
}{
	{"da", 1e1},
	{"Y", 1e24}, {"Z", 1e21}, {"E", 1e18}, {"P", 1e15}, {"T", 1e12},
	{"G", 1e9}, {"M", 1e6}, {"k", 1e3}, {"h", 1e2},
	{"d", 1e-1}, {"c", 1e-2}, {"m", 1e-3}, {"u", 1e-6}, {"µ", 1e-6},
	{"n", 1e-9}, {"p", 1e-12}, {"f", 1e-15}, {"a", 1e-18},
}

// ParseUnit parses a simple (non-composite) unit such as "mag", "mmag",
// "arcsec", "marcsec" or "" for dimensionless values.
func ParseUnit(s string) (Unit, error) {
	symbol := strings.TrimSpace(s)

	if b, ok := units[symbol]; ok {
		return Unit{symbol: symbol, scale: b.scale, dims: b.dims}, nil
	}

	for _, p := range prefixes {
		rest, ok := strings.CutPrefix(symbol, p.symbol)
		if !ok || rest == "" {
			continue
		}

		b, ok := units[rest]
		if !ok || !b.prefixable {
			continue
		}

		return Unit{symbol: symbol, scale: p.scale * b.scale, dims: b.dims}, nil
	}

	return Unit{}, fmt.Errorf("%q: %w", s, ErrUnknownUnit)
}

// MustParseUnit is ParseUnit that panics on error. Intended for tests and
// package-level variables.
func MustParseUnit(s string) Unit {
	u, err := ParseUnit(s)
	if err != nil {
		panic(err)
	}

	return u
}

// String returns the unit symbol as written.
func (u Unit) String() string {
	return u.symbol
}

// ConvertibleTo reports whether values in u can be expressed in other.
func (u Unit) ConvertibleTo(other Unit) bool {
	return u.dims == other.dims
}

// factor returns the multiplier converting a value in u to other.
func (u Unit) factor(other Unit) (float64, error) {
	if !u.ConvertibleTo(other) {
		return 0, fmt.Errorf("cannot convert %q to %q: %w", u.symbol, other.symbol, ErrIncompatibleUnits)
	}

	return u.scale / other.scale, nil
}
