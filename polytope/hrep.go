package polytope

import (
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"
)

// HRep is the half-space representation of a convex polytope: the set
// {x : A*x <= b}.
type HRep struct {
	A *mat.Dense
	B []float64
}

// NewHRep wraps an inequality system. The number of rows of a must equal len(b).
func NewHRep(a *mat.Dense, b []float64) *HRep {
	return &HRep{A: a, B: b}
}

// Dims returns the number of inequality rows and the ambient dimension.
func (h *HRep) Dims() (rows, dim int) {
	return h.A.Dims()
}

// RowNorms returns the Euclidean norm of each row of A, used to turn algebraic
// distances b - A*x into Euclidean ones.
func (h *HRep) RowNorms() []float64 {
	rows, dim := h.A.Dims()
	norms := make([]float64, rows)
	for i := 0; i < rows; i++ {
		s := 0.
		for j := 0; j < dim; j++ {
			v := h.A.At(i, j)
			s += v * v
		}
		norms[i] = math.Sqrt(s)
	}
	return norms
}

// EqRep is a system of linear equality constraints {x : C*x = d}.
type EqRep struct {
	C *mat.Dense
	D []float64
}

// NewEqRep wraps an equality system. The number of rows of c must equal len(d).
func NewEqRep(c *mat.Dense, d []float64) *EqRep {
	return &EqRep{C: c, D: d}
}

// Projection is an affine map x -> E*x + g from the polytope's ambient space
// into the planar target space. E must have 2 rows.
type Projection struct {
	E *mat.Dense
	G []float64
}

// NewProjection wraps an affine projection map. If g is nil the map is linear.
func NewProjection(e *mat.Dense, g []float64) *Projection {
	if g == nil {
		g = make([]float64, 2)
	}
	return &Projection{E: e, G: g}
}

// Apply maps a point of the ambient space to the target plane.
func (p *Projection) Apply(x []float64) r2.Point {
	_, dim := p.E.Dims()
	u := 0.
	v := 0.
	for j := 0; j < dim; j++ {
		u += p.E.At(0, j) * x[j]
		v += p.E.At(1, j) * x[j]
	}
	return r2.Point{X: u + p.G[0], Y: v + p.G[1]}
}

// HRepFromVertices derives the half-space form of a counter-clockwise convex
// polygon: one row per edge, outward normals, b picked so each vertex lies on
// its two incident edges. Degenerate polygons (fewer than 3 vertices) fail.
func HRepFromVertices(poly Polygon) (*HRep, error) {
	if len(poly) < 3 {
		return nil, newProjectionFailedError(ErrDegenerateRegion)
	}
	n := len(poly)
	a := mat.NewDense(n, 2, nil)
	b := make([]float64, n)
	for i, v := range poly {
		w := poly[(i+1)%n]
		e := w.Sub(v)
		// outward normal of a CCW edge
		a.Set(i, 0, e.Y)
		a.Set(i, 1, -e.X)
		b[i] = e.Y*v.X - e.X*v.Y
	}
	return NewHRep(a, b), nil
}
