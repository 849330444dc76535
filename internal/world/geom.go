package world

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

func cosSin(yaw float64) (float64, float64) {
	return math.Cos(yaw), math.Sin(yaw)
}

func toVec(p Point2D) r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }
func fromVec(v r2.Vec) Point2D { return Point2D{X: v.X, Y: v.Y} }

// lerp linearly interpolates between a and b at fraction frac in [0,1].
func lerp(a, b Point2D, frac float64) Point2D {
	return fromVec(r2.Add(toVec(a), r2.Scale(frac, r2.Sub(toVec(b), toVec(a)))))
}

// InterpolateJoint linearly blends the two joints neighboring s.
func InterpolateJoint(lane *Lane, s float64) (GeometryJoint, bool) {
	joints := lane.Joints
	if len(joints) == 0 {
		return GeometryJoint{}, false
	}
	if s <= joints[0].SOffset {
		return joints[0], true
	}
	last := joints[len(joints)-1]
	if s >= last.SOffset {
		return last, true
	}
	for i := 0; i+1 < len(joints); i++ {
		a, b := joints[i], joints[i+1]
		if s >= a.SOffset && s <= b.SOffset {
			span := b.SOffset - a.SOffset
			frac := 0.0
			if span > 0 {
				frac = (s - a.SOffset) / span
			}
			return GeometryJoint{
				SOffset:   s,
				Center:    lerp(a.Center, b.Center, frac),
				Left:      lerp(a.Left, b.Left, frac),
				Right:     lerp(a.Right, b.Right, frac),
				Heading:   a.Heading + frac*(b.Heading-a.Heading),
				Curvature: a.Curvature + frac*(b.Curvature-a.Curvature),
			}, true
		}
	}
	return GeometryJoint{}, false
}

// boundingBox returns the axis-aligned box enclosing a geometry
// element's quad, used as the R-tree insertion key.
func (e *GeometryElement) boundingBox() (minX, minY, maxX, maxY float64) {
	pts := []Point2D{e.LeftStart, e.LeftEnd, e.RightStart, e.RightEnd, e.CenterStart, e.CenterEnd}
	minX, minY = pts[0].X, pts[0].Y
	maxX, maxY = pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return
}

// polygon is a closed sequence of points (not repeating the first
// point), used for coarse-box/element intersection tests.
type polygon []Point2D

// quad returns the geometry element's four corners in winding order.
func (e *GeometryElement) quad() polygon {
	return polygon{e.LeftStart, e.LeftEnd, e.RightEnd, e.RightStart}
}

// intersects reports whether two convex polygons overlap, via the
// separating-axis theorem — sufficient for the small convex quads and
// object boxes this kernel works with.
func intersects(a, b polygon) bool {
	for _, poly := range [2]polygon{a, b} {
		for i := range poly {
			p1 := poly[i]
			p2 := poly[(i+1)%len(poly)]
			axisX, axisY := -(p2.Y - p1.Y), p2.X-p1.X
			aMin, aMax := projectOnto(a, axisX, axisY)
			bMin, bMax := projectOnto(b, axisX, axisY)
			if aMax < bMin || bMax < aMin {
				return false
			}
		}
	}
	return true
}

func projectOnto(poly polygon, axisX, axisY float64) (min, max float64) {
	first := true
	for _, p := range poly {
		d := p.X*axisX + p.Y*axisY
		if first {
			min, max = d, d
			first = false
			continue
		}
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return
}

// containsPoint reports whether pt lies inside convex polygon poly,
// using the same signed-area convention as intersects.
func containsPoint(poly polygon, pt Point2D) bool {
	n := len(poly)
	sign := 0
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		cross := (b.X-a.X)*(pt.Y-a.Y) - (b.Y-a.Y)*(pt.X-a.X)
		s := 0
		if cross > 0 {
			s = 1
		} else if cross < 0 {
			s = -1
		}
		if s == 0 {
			continue
		}
		if sign == 0 {
			sign = s
		} else if sign != s {
			return false
		}
	}
	return true
}

func distance(a, b Point2D) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
