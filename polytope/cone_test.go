package polytope

import (
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

func maxRowProduct(f *mat.Dense, x []float64) float64 {
	rows, dim := f.Dims()
	best := 0.
	for i := 0; i < rows; i++ {
		v := 0.
		for j := 0; j < dim; j++ {
			v += f.At(i, j) * x[j]
		}
		if i == 0 || v > best {
			best = v
		}
	}
	return best
}

func TestFaceOfSpanOctant(t *testing.T) {
	// cone spanned by the standard basis of R^3: the nonnegative octant
	span := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
	faces, err := FaceOfSpan(span)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, maxRowProduct(faces, []float64{1, 1, 1}), test.ShouldBeLessThan, 1e-9)
	test.That(t, maxRowProduct(faces, []float64{0.2, 0, 0.7}), test.ShouldBeLessThan, 1e-9)
	test.That(t, maxRowProduct(faces, []float64{-0.1, 1, 1}), test.ShouldBeGreaterThan, 1e-6)
}

func TestFaceOfSpanLowerDimensional(t *testing.T) {
	// a flat cone: the nonnegative quadrant of the z = 0 plane inside R^3.
	// The face form must pin z with an implicit equality (paired +/- rows).
	span := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 1,
		0, 0,
	})
	faces, err := FaceOfSpan(span)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, maxRowProduct(faces, []float64{1, 2, 0}), test.ShouldBeLessThan, 1e-9)
	test.That(t, maxRowProduct(faces, []float64{1, 2, 0.5}), test.ShouldBeGreaterThan, 1e-6)
	test.That(t, maxRowProduct(faces, []float64{1, 2, -0.5}), test.ShouldBeGreaterThan, 1e-6)
}

func TestVertexEnumerationSquare(t *testing.T) {
	// unit square [0,1]^2
	a := mat.NewDense(4, 2, []float64{
		1, 0,
		-1, 0,
		0, 1,
		0, -1,
	})
	ineq := NewHRep(a, []float64{1, 0, 1, 0})
	vertices, directions, err := VertexEnumeration(ineq, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, directions, test.ShouldHaveLength, 0)
	test.That(t, vertices, test.ShouldHaveLength, 4)

	for _, want := range [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}} {
		found := false
		for _, v := range vertices {
			if almostEqVec(v, want[:], 1e-8) {
				found = true
				break
			}
		}
		test.That(t, found, test.ShouldBeTrue)
	}
}

func TestVertexEnumerationWithEquality(t *testing.T) {
	// cube [0,1]^3 sliced by z = 0.5
	a := mat.NewDense(6, 3, []float64{
		1, 0, 0,
		-1, 0, 0,
		0, 1, 0,
		0, -1, 0,
		0, 0, 1,
		0, 0, -1,
	})
	ineq := NewHRep(a, []float64{1, 0, 1, 0, 1, 0})
	eq := NewEqRep(mat.NewDense(1, 3, []float64{0, 0, 1}), []float64{0.5})
	vertices, directions, err := VertexEnumeration(ineq, eq)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, directions, test.ShouldHaveLength, 0)
	test.That(t, vertices, test.ShouldHaveLength, 4)
	for _, v := range vertices {
		test.That(t, v[2], test.ShouldAlmostEqual, 0.5, 1e-8)
	}
}

func TestVertexEnumerationUnbounded(t *testing.T) {
	// half strip: 0 <= y <= 1, x >= 0
	a := mat.NewDense(3, 2, []float64{
		0, 1,
		0, -1,
		-1, 0,
	})
	ineq := NewHRep(a, []float64{1, 0, 0})
	_, directions, err := VertexEnumeration(ineq, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(directions), test.ShouldBeGreaterThan, 0)
}

func almostEqVec(a, b []float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if d := a[i] - b[i]; d > tol || d < -tol {
			return false
		}
	}
	return true
}
