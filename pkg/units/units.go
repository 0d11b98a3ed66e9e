// Package units converts between design units (millimetres, degrees) and the
// host's native units (metres, radians).
package units

import "math"

const mmPerMeter = 1000.0

// ToNativeLength converts millimetres to metres.
func ToNativeLength(mm float64) float64 {
	return mm / mmPerMeter
}

// ToDesignLength converts metres to millimetres.
func ToDesignLength(m float64) float64 {
	return m * mmPerMeter
}

// ToNativeAngle converts degrees to radians.
func ToNativeAngle(deg float64) float64 {
	return deg * math.Pi / 180
}

// ToDesignAngle converts radians to degrees.
func ToDesignAngle(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Point3 returns the native (x, y, z) triple for a design-unit point.
func Point3(x, y, z float64) [3]float64 {
	return [3]float64{ToNativeLength(x), ToNativeLength(y), ToNativeLength(z)}
}

// SketchPoint returns the native triple for a point on the sketch plane (z = 0).
func SketchPoint(x, y float64) [3]float64 {
	return Point3(x, y, 0)
}
