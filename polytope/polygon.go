// Package polytope implements convex polytope representations and the projection
// engine used to reduce high dimensional feasibility systems to planar regions.
package polytope

import (
	"math"
	"sort"

	"github.com/golang/geo/r2"
)

// Polygon is a convex 2D region given by its extreme points in counter-clockwise
// boundary order. The ordering is part of the contract: containment and distance
// queries downstream assume it.
type Polygon []r2.Point

// ConvexHull returns the convex hull of a set of 2D points in counter-clockwise
// order, using Andrew's monotone chain algorithm. Collinear boundary points are
// dropped. Fewer than 3 non-collinear input points yield a degenerate (shorter)
// result that callers must check for.
func ConvexHull(points []r2.Point) Polygon {
	idx := convexHullIndices(points)
	hull := make(Polygon, 0, len(idx))
	for _, i := range idx {
		hull = append(hull, points[i])
	}
	return hull
}

// convexHullIndices is the monotone chain hull over point indices, so callers
// can recover which input points ended up on the hull.
func convexHullIndices(points []r2.Point) []int {
	idx := make([]int, len(points))
	for i := range idx {
		idx[i] = i
	}
	if len(points) < 3 {
		return idx
	}
	sort.Slice(idx, func(a, b int) bool {
		pa, pb := points[idx[a]], points[idx[b]]
		if pa.X != pb.X {
			return pa.X < pb.X
		}
		return pa.Y < pb.Y
	})

	cross := func(o, a, b r2.Point) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	var lower []int
	for _, i := range idx {
		for len(lower) >= 2 && cross(points[lower[len(lower)-2]], points[lower[len(lower)-1]], points[i]) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, i)
	}
	var upper []int
	for k := len(idx) - 1; k >= 0; k-- {
		i := idx[k]
		for len(upper) >= 2 && cross(points[upper[len(upper)-2]], points[upper[len(upper)-1]], points[i]) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, i)
	}
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

// Area returns the enclosed area of the polygon via the shoelace formula.
// Counter-clockwise polygons have positive area.
func (p Polygon) Area() float64 {
	if len(p) < 3 {
		return 0
	}
	area := 0.
	for i, v := range p {
		w := p[(i+1)%len(p)]
		area += v.X*w.Y - w.X*v.Y
	}
	return area / 2
}

// Centroid returns the area centroid of the polygon.
func (p Polygon) Centroid() r2.Point {
	a := p.Area()
	if len(p) == 0 {
		return r2.Point{}
	}
	if len(p) < 3 || a == 0 {
		c := r2.Point{}
		for _, v := range p {
			c = c.Add(v)
		}
		return c.Mul(1 / float64(len(p)))
	}
	c := r2.Point{}
	for i, v := range p {
		w := p[(i+1)%len(p)]
		f := v.X*w.Y - w.X*v.Y
		c.X += (v.X + w.X) * f
		c.Y += (v.Y + w.Y) * f
	}
	return c.Mul(1 / (6 * a))
}

// Contains reports whether the point lies inside or on the boundary of the
// counter-clockwise polygon, within tolerance.
func (p Polygon) Contains(pt r2.Point, tolerance float64) bool {
	if len(p) < 3 {
		return false
	}
	for i, v := range p {
		w := p[(i+1)%len(p)]
		e := w.Sub(v)
		if e.X*(pt.Y-v.Y)-e.Y*(pt.X-v.X) < -tolerance {
			return false
		}
	}
	return true
}

// AlmostEqualSet reports whether two polygons describe the same region up to
// tolerance, ignoring vertex ordering and starting offset: every vertex of each
// polygon must be within tolerance of some vertex of the other.
func (p Polygon) AlmostEqualSet(q Polygon, tolerance float64) bool {
	near := func(a r2.Point, poly Polygon) bool {
		for _, b := range poly {
			if math.Hypot(a.X-b.X, a.Y-b.Y) <= tolerance {
				return true
			}
		}
		return false
	}
	for _, v := range p {
		if !near(v, q) {
			return false
		}
	}
	for _, v := range q {
		if !near(v, p) {
			return false
		}
	}
	return true
}

// AlmostCongruent reports whether two convex polygons cover the same region up
// to tolerance: every vertex of each must lie inside (or within tolerance of
// the boundary of) the other. Unlike AlmostEqualSet this is insensitive to
// redundant collinear vertices.
func (p Polygon) AlmostCongruent(q Polygon, tolerance float64) bool {
	for _, v := range p {
		if !q.Contains(v, tolerance) {
			return false
		}
	}
	for _, v := range q {
		if !p.Contains(v, tolerance) {
			return false
		}
	}
	return true
}
