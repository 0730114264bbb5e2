package polytope

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"
)

// Names of the built-in projection methods.
const (
	HullMethodName              = "hull"
	DoubleDescriptionMethodName = "cdd"
	IncrementalMethodName       = "bretl"
)

// Method projects a polytope {x : ineq.A*x <= ineq.B, eq.C*x = eq.D} through an
// affine map onto the plane, returning the counter-clockwise vertex list of the
// projected region. The three built-in methods differ in performance and
// numerical robustness, never in meaning: on a well posed input they agree up to
// tolerance and vertex ordering. A projection that is empty, unbounded or
// degenerate fails with ErrProjectionFailed wrapping the detected cause.
type Method interface {
	Name() string
	Project(ineq *HRep, eq *EqRep, proj *Projection) (Polygon, error)
}

// MethodByName looks up a built-in projection method by its configuration name.
func MethodByName(name string, logger golog.Logger) (Method, error) {
	switch name {
	case HullMethodName:
		return NewHullMethod(logger), nil
	case DoubleDescriptionMethodName:
		return NewDoubleDescriptionMethod(logger), nil
	case IncrementalMethodName:
		return NewIncrementalMethod(logger), nil
	default:
		return nil, newUnknownMethodError(name)
	}
}

// supportPoint maximizes dir over the projected region by solving one LP on the
// original polytope, returning the projected maximizer.
func supportPoint(ineq *HRep, eq *EqRep, proj *Projection, dir r2.Point) (r2.Point, error) {
	_, n := ineq.A.Dims()
	c := make([]float64, n)
	for j := 0; j < n; j++ {
		c[j] = -(dir.X*proj.E.At(0, j) + dir.Y*proj.E.At(1, j))
	}
	var eqC mat.Matrix
	var eqD []float64
	if eq != nil {
		eqC, eqD = eq.C, eq.D
	}
	x, err := SolveLP(c, ineq.A, ineq.B, eqC, eqD)
	if err != nil {
		switch err {
		case ErrLPInfeasible:
			return r2.Point{}, newProjectionFailedError(ErrEmptyRegion)
		case ErrLPUnbounded:
			return r2.Point{}, newProjectionFailedError(ErrUnboundedRegion)
		default:
			return r2.Point{}, err
		}
	}
	return proj.Apply(x), nil
}

// hullMethod approximates the projection by evaluating the support function in
// a fan of directions and hulling the support points. Every support point is a
// true vertex of the projection, so the result is an inner approximation that
// is exact whenever the projection has no more edge normals than sampled
// directions.
type hullMethod struct {
	directions int
	logger     golog.Logger
}

// NewHullMethod returns the generic sample-and-hull projection method.
func NewHullMethod(logger golog.Logger) Method {
	return &hullMethod{directions: 64, logger: logger}
}

func (h *hullMethod) Name() string { return HullMethodName }

func (h *hullMethod) Project(ineq *HRep, eq *EqRep, proj *Projection) (Polygon, error) {
	points := make([]r2.Point, 0, h.directions)
	for i := 0; i < h.directions; i++ {
		theta := 2 * math.Pi * float64(i) / float64(h.directions)
		p, err := supportPoint(ineq, eq, proj, r2.Point{X: math.Cos(theta), Y: math.Sin(theta)})
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	hull := ConvexHull(points)
	if len(hull) < 3 {
		return nil, newProjectionFailedError(ErrDegenerateRegion)
	}
	return hull, nil
}

// doubleDescriptionMethod converts the H-representation to vertices via the
// double description method on the homogenized cone, then drops the
// non-projected coordinates and re-hulls.
type doubleDescriptionMethod struct {
	logger golog.Logger
}

// NewDoubleDescriptionMethod returns the double-description projection method.
func NewDoubleDescriptionMethod(logger golog.Logger) Method {
	return &doubleDescriptionMethod{logger: logger}
}

func (d *doubleDescriptionMethod) Name() string { return DoubleDescriptionMethodName }

func (d *doubleDescriptionMethod) Project(ineq *HRep, eq *EqRep, proj *Projection) (Polygon, error) {
	// Cone enumeration failures are numerical, not contractual; surface them
	// under the projection error so callers branch on one sentinel.
	vertices, directions, err := VertexEnumeration(ineq, eq)
	if err != nil {
		return nil, newProjectionFailedError(err)
	}
	if len(vertices) == 0 {
		return nil, newProjectionFailedError(ErrEmptyRegion)
	}
	// Recession directions are fine as long as they vanish under the
	// projection map; otherwise the projected region is unbounded.
	zero := &Projection{E: proj.E, G: make([]float64, 2)}
	for _, dir := range directions {
		if p := zero.Apply(dir); math.Hypot(p.X, p.Y) > 1e-7 {
			return nil, newProjectionFailedError(ErrUnboundedRegion)
		}
	}
	points := make([]r2.Point, 0, len(vertices))
	for _, v := range vertices {
		points = append(points, proj.Apply(v))
	}
	hull := ConvexHull(points)
	if len(hull) < 3 {
		return nil, newProjectionFailedError(ErrDegenerateRegion)
	}
	return hull, nil
}

// incrementalMethod grows the projected polygon edge by edge with repeated
// support function queries, after Bretl and Lall's recursive projection. Each
// LP either certifies an edge as final or splits it with a new vertex.
type incrementalMethod struct {
	maxIter   int
	tolerance float64
	logger    golog.Logger
}

// NewIncrementalMethod returns the incremental support-expansion projection method.
func NewIncrementalMethod(logger golog.Logger) Method {
	return &incrementalMethod{maxIter: 1000, tolerance: 1e-7, logger: logger}
}

func (b *incrementalMethod) Name() string { return IncrementalMethodName }

func (b *incrementalMethod) Project(ineq *HRep, eq *EqRep, proj *Projection) (Polygon, error) {
	// Seed triangle from three spread directions.
	seeds := []r2.Point{{X: 1, Y: 0}, {X: -0.5, Y: math.Sqrt(3) / 2}, {X: -0.5, Y: -math.Sqrt(3) / 2}}
	var vertices []r2.Point
	for _, dir := range seeds {
		p, err := supportPoint(ineq, eq, proj, dir)
		if err != nil {
			return nil, err
		}
		vertices = append(vertices, p)
	}
	hull := ConvexHull(vertices)
	if len(hull) < 3 {
		// The three seeds can land on fewer than three distinct vertices of a
		// perfectly good polygon; widen the fan before giving up.
		for i := 0; i < 8; i++ {
			theta := 2*math.Pi*float64(i)/8 + math.Pi/8
			p, err := supportPoint(ineq, eq, proj, r2.Point{X: math.Cos(theta), Y: math.Sin(theta)})
			if err != nil {
				return nil, err
			}
			vertices = append(vertices, p)
		}
		hull = ConvexHull(vertices)
	}
	if len(hull) < 3 {
		return nil, newProjectionFailedError(ErrDegenerateRegion)
	}
	vertices = []r2.Point(hull)

	done := make([]bool, len(vertices)) // done[i]: edge vertices[i] -> vertices[i+1] is final
	iter := 0
	for {
		expandable := -1
		for i, d := range done {
			if !d {
				expandable = i
				break
			}
		}
		if expandable < 0 {
			break
		}
		if iter++; iter > b.maxIter {
			return nil, newProjectionFailedError(ErrNotConverged)
		}

		i := expandable
		j := (i + 1) % len(vertices)
		edge := vertices[j].Sub(vertices[i])
		normal := r2.Point{X: edge.Y, Y: -edge.X} // outward for CCW
		if n := math.Hypot(normal.X, normal.Y); n > 0 {
			normal = normal.Mul(1 / n)
		}
		p, err := supportPoint(ineq, eq, proj, normal)
		if err != nil {
			return nil, err
		}
		if normal.Dot(p)-normal.Dot(vertices[i]) > b.tolerance {
			// Split the edge with the new extreme point.
			if j == 0 {
				vertices = append(vertices, p)
				done = append(done[:i], false, false)
			} else {
				vertices = append(vertices[:j], append([]r2.Point{p}, vertices[j:]...)...)
				done = append(done[:i], append([]bool{false, false}, done[j:]...)...)
			}
		} else {
			done[i] = true
		}
	}
	if b.logger != nil {
		b.logger.Debugf("incremental projection converged to %d vertices in %d support queries", len(vertices), iter+3)
	}
	return Polygon(vertices), nil
}
