package thermal

import (
	"errors"
	"fmt"
	"math"
)

// Point is one (outdoor temperature, COP) control point.
type Point struct {
	TempC float64
	COP   float64
}

// Curve is an ordered piecewise-linear performance curve.
type Curve struct {
	points []Point
}

var errEmptyCurve = errors.New("curve needs at least one point")

// NewCurve validates the control points: temperatures strictly increasing,
// COP values non-negative.
func NewCurve(points ...Point) (Curve, error) {
	if len(points) == 0 {
		return Curve{}, errEmptyCurve
	}
	for i, p := range points {
		if math.IsNaN(p.TempC) || math.IsNaN(p.COP) || p.COP < 0 {
			return Curve{}, fmt.Errorf("point %d: invalid (t=%v, cop=%v)", i, p.TempC, p.COP)
		}
		if i > 0 && !(p.TempC > points[i-1].TempC) {
			return Curve{}, fmt.Errorf("point %d: temperature %v not above %v", i, p.TempC, points[i-1].TempC)
		}
	}
	cp := make([]Point, len(points))
	copy(cp, points)
	return Curve{points: cp}, nil
}

func mustCurve(points ...Point) Curve {
	c, err := NewCurve(points...)
	if err != nil {
		panic(err)
	}
	return c
}

// Points returns a copy of the control points.
func (c Curve) Points() []Point {
	out := make([]Point, len(c.points))
	copy(out, c.points)
	return out
}

// At evaluates the curve at t. Values outside the control range are held flat.
// Segments are closed on both ends and scanned in ascending order, so a
// temperature equal to an interior point resolves to that point's COP exactly.
func (c Curve) At(t float64) float64 {
	pts := c.points
	if len(pts) == 0 {
		return 0
	}
	first, last := pts[0], pts[len(pts)-1]
	if t <= first.TempC {
		return first.COP
	}
	if t >= last.TempC {
		return last.COP
	}
	for i := 0; i+1 < len(pts); i++ {
		lo, hi := pts[i], pts[i+1]
		if lo.TempC <= t && t <= hi.TempC {
			if t == hi.TempC {
				return hi.COP
			}
			return lo.COP + (hi.COP-lo.COP)*(t-lo.TempC)/(hi.TempC-lo.TempC)
		}
	}
	// unreachable for validated curves; NaN input lands here
	return last.COP
}
