package sketch

import (
	"github.com/aretw0/cadbridge/pkg/domain"
	"gonum.org/v1/gonum/spatial/r2"
)

// CircleSpec describes a circle. Exactly one of Diameter or Radius must be set.
type CircleSpec struct {
	CX       float64 `mapstructure:"cx" json:"cx"`
	CY       float64 `mapstructure:"cy" json:"cy"`
	Diameter float64 `mapstructure:"diameter" json:"diameter,omitempty"`
	Radius   float64 `mapstructure:"radius" json:"radius,omitempty"`
}

// Center returns the circle center.
func (c CircleSpec) Center() r2.Vec {
	return Pt(c.CX, c.CY)
}

// ResolveRadius validates the spec and returns its radius.
func (c CircleSpec) ResolveRadius() (float64, error) {
	return oneOf("circle", c.Radius, c.Diameter)
}

// EllipseSpec describes an axis-aligned ellipse. Each axis takes either a
// radius or a diameter.
type EllipseSpec struct {
	CX            float64 `mapstructure:"cx" json:"cx"`
	CY            float64 `mapstructure:"cy" json:"cy"`
	MajorRadius   float64 `mapstructure:"major_radius" json:"major_radius,omitempty"`
	MajorDiameter float64 `mapstructure:"major_diameter" json:"major_diameter,omitempty"`
	MinorRadius   float64 `mapstructure:"minor_radius" json:"minor_radius,omitempty"`
	MinorDiameter float64 `mapstructure:"minor_diameter" json:"minor_diameter,omitempty"`
}

// Axes validates the spec and returns the major and minor radii.
func (e EllipseSpec) Axes() (major, minor float64, err error) {
	if major, err = oneOf("ellipse major axis", e.MajorRadius, e.MajorDiameter); err != nil {
		return 0, 0, err
	}
	if minor, err = oneOf("ellipse minor axis", e.MinorRadius, e.MinorDiameter); err != nil {
		return 0, 0, err
	}
	return major, minor, nil
}

func oneOf(what string, radius, diameter float64) (float64, error) {
	switch {
	case radius != 0 && diameter != 0:
		return 0, domain.Invalid("%s: give either radius or diameter, not both", what)
	case radius == 0 && diameter == 0:
		return 0, domain.Invalid("%s: radius or diameter is required", what)
	case diameter != 0:
		radius = diameter / 2
	}
	if radius <= 0 {
		return 0, domain.Invalid("%s: size must be positive", what)
	}
	return radius, nil
}
