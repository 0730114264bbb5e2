package polytope

import (
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"
)

// dedupeTol collapses dual points produced by constraints that are positive
// multiples of each other.
const dedupeTol = 1e-10

// PolygonFromHull enumerates the vertices of the planar region {x : B*x <= c}
// via polar duality: each constraint row maps to the dual point B_i/c_i, the
// convex hull of the dual points is taken, and each pair of hull-adjacent
// constraints is intersected to recover a primal vertex. Requires every c_i > 0,
// i.e. the origin strictly inside the region; otherwise the duality is not well
// posed and the call fails with ErrProjectionFailed wrapping ErrDegenerateRegion.
func PolygonFromHull(b *mat.Dense, c []float64) (Polygon, error) {
	rows, dim := b.Dims()
	if dim != 2 || rows < 3 {
		return nil, newProjectionFailedError(ErrDegenerateRegion)
	}
	for _, ci := range c {
		if ci <= 0 {
			return nil, newProjectionFailedError(ErrDegenerateRegion)
		}
	}

	dual := make([]r2.Point, 0, rows)
	rowOf := make([]int, 0, rows)
	for i := 0; i < rows; i++ {
		p := r2.Point{X: b.At(i, 0) / c[i], Y: b.At(i, 1) / c[i]}
		duplicate := false
		for _, q := range dual {
			if math.Hypot(p.X-q.X, p.Y-q.Y) < dedupeTol {
				duplicate = true
				break
			}
		}
		if !duplicate {
			dual = append(dual, p)
			rowOf = append(rowOf, i)
		}
	}

	hull := convexHullIndices(dual)
	if len(hull) < 3 {
		return nil, newProjectionFailedError(ErrDegenerateRegion)
	}

	// The primal region is bounded exactly when the constraint normals
	// positively span the plane, i.e. the dual hull strictly contains the origin.
	hullPoly := make(Polygon, 0, len(hull))
	for _, hi := range hull {
		hullPoly = append(hullPoly, dual[hi])
	}
	if !hullPoly.Contains(r2.Point{}, -1e-12) {
		return nil, newProjectionFailedError(ErrUnboundedRegion)
	}

	vertices := make(Polygon, 0, len(hull))
	for k, hi := range hull {
		hj := hull[(k+1)%len(hull)]
		v, ok := intersectRows(b, c, rowOf[hi], rowOf[hj])
		if !ok {
			return nil, newProjectionFailedError(ErrDegenerateRegion)
		}
		vertices = append(vertices, v)
	}
	return vertices, nil
}

// intersectRows solves the 2x2 system picking the point where constraints i and
// j are both active.
func intersectRows(b *mat.Dense, c []float64, i, j int) (r2.Point, bool) {
	a11, a12 := b.At(i, 0), b.At(i, 1)
	a21, a22 := b.At(j, 0), b.At(j, 1)
	det := a11*a22 - a12*a21
	if math.Abs(det) < 1e-12 {
		return r2.Point{}, false
	}
	return r2.Point{
		X: (c[i]*a22 - c[j]*a12) / det,
		Y: (a11*c[j] - a21*c[i]) / det,
	}, true
}
