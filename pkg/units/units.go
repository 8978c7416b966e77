// Package units converts between pixel and physical-length measurements.
//
// Grid margins and gutters may be declared either in raw pixels or in
// millimeters. Millimeter values are resolved to pixels once the canvas
// DPI is known; pixel values pass through unchanged. All functions are
// pure and stateless.
package units

import (
	"math"

	nserr "github.com/namesheet/namesplit/pkg/errors"
)

// Unit identifies the measurement system of a dimension value.
type Unit string

const (
	// Px is a raw pixel count. Conversion is the identity.
	Px Unit = "px"

	// Mm is a physical length in millimeters, resolved via DPI.
	Mm Unit = "mm"
)

// MmPerInch is the number of millimeters in one inch.
const MmPerInch = 25.4

// Valid reports whether u is a recognized unit.
func (u Unit) Valid() bool {
	return u == Px || u == Mm
}

// Dimension is a declarative length with its unit. The zero value is 0px.
type Dimension struct {
	Value float64 `toml:"value"`
	Unit  Unit    `toml:"unit"`
}

// PxDim returns a pixel-unit dimension.
func PxDim(v float64) Dimension { return Dimension{Value: v, Unit: Px} }

// MmDim returns a millimeter-unit dimension.
func MmDim(v float64) Dimension { return Dimension{Value: v, Unit: Mm} }

// IsZero reports whether the dimension has a zero value.
func (d Dimension) IsZero() bool { return d.Value == 0 }

// Pixels resolves the dimension to whole pixels at the given DPI.
// See ToPixels for the conversion and rounding rules.
func (d Dimension) Pixels(dpi float64) (int, error) {
	unit := d.Unit
	if unit == "" {
		unit = Px
	}
	return ToPixels(d.Value, unit, dpi)
}

// ToPixels converts a value in the given unit to whole pixels.
//
// Pixel values are rounded to the nearest integer. Millimeter values are
// multiplied by dpi/25.4 and rounded half away from zero (math.Round), so
// 5mm at 600dpi resolves to round(5*600/25.4) = 118px. A millimeter
// conversion with a non-positive DPI is a configuration error.
func ToPixels(value float64, unit Unit, dpi float64) (int, error) {
	switch unit {
	case Px:
		return int(math.Round(value)), nil
	case Mm:
		if dpi <= 0 {
			return 0, nserr.New(nserr.ErrCodeConfigInvalid, "mm dimension requires a positive dpi, got %g", dpi)
		}
		return int(math.Round(value * dpi / MmPerInch)), nil
	default:
		return 0, nserr.New(nserr.ErrCodeConfigInvalid, "unknown unit %q", unit)
	}
}

// ToMillimeters converts a pixel count back to millimeters at the given DPI.
func ToMillimeters(px int, dpi float64) (float64, error) {
	if dpi <= 0 {
		return 0, nserr.New(nserr.ErrCodeConfigInvalid, "mm conversion requires a positive dpi, got %g", dpi)
	}
	return float64(px) * MmPerInch / dpi, nil
}
