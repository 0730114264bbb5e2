package polytope

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const coneTol = 1e-9

// ConeRays computes the generators of the polyhedral cone {x : A*x <= 0} by the
// double description method. The cone is returned as a set of extreme rays plus
// a basis of its lineality space; the cone is the set of positive combinations
// of the rays plus arbitrary combinations of the lines. Rays are unit length.
func ConeRays(a *mat.Dense) (rays, lines [][]float64, err error) {
	m, d := a.Dims()
	if m == 0 {
		return nil, identityBasis(d), nil
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, nil, errors.New("SVD factorization failed on cone constraint matrix")
	}
	var v mat.Dense
	svd.VTo(&v)
	sigma := svd.Values(nil)
	rank := 0
	for _, s := range sigma {
		if s > coneTol*sigma[0] {
			rank++
		}
	}

	// Split the space into the row space of A and its null space. The null
	// space is entirely feasible in both directions: it is the lineality part.
	for j := rank; j < d && j < len(sigma); j++ {
		lines = append(lines, mat.Col(nil, j, &v))
	}
	// SVDThin returns min(m,d) right singular vectors; any remaining null
	// directions need a full decomposition.
	if rows := minInt(m, d); rows < d {
		var svdFull mat.SVD
		if ok := svdFull.Factorize(a, mat.SVDFull); !ok {
			return nil, nil, errors.New("SVD factorization failed on cone constraint matrix")
		}
		var vf mat.Dense
		svdFull.VTo(&vf)
		lines = nil
		for j := rank; j < d; j++ {
			lines = append(lines, mat.Col(nil, j, &vf))
		}
		v.CloneFrom(&vf)
	}
	if rank == 0 {
		return nil, lines, nil
	}

	// Constraints in row-space coordinates: the reduced cone is pointed.
	basis := mat.NewDense(d, rank, nil)
	for j := 0; j < rank; j++ {
		basis.SetCol(j, mat.Col(nil, j, &v))
	}
	reduced := mat.NewDense(m, rank, nil)
	reduced.Mul(a, basis)

	reducedRays, err := pointedConeRays(reduced)
	if err != nil {
		return nil, nil, err
	}
	for _, rr := range reducedRays {
		ray := make([]float64, d)
		for i := 0; i < d; i++ {
			for j := 0; j < rank; j++ {
				ray[i] += basis.At(i, j) * rr[j]
			}
		}
		rays = append(rays, ray)
	}
	return rays, lines, nil
}

// pointedConeRays runs Motzkin's double description algorithm on a cone known
// to contain no lines (the constraint matrix has full column rank).
func pointedConeRays(a *mat.Dense) ([][]float64, error) {
	m, d := a.Dims()
	if d == 1 {
		// 1D: the ray directions are just the signs compatible with every row.
		pos, neg := true, true
		for i := 0; i < m; i++ {
			if a.At(i, 0) > coneTol {
				pos = false
			}
			if a.At(i, 0) < -coneTol {
				neg = false
			}
		}
		var out [][]float64
		if pos {
			out = append(out, []float64{1})
		}
		if neg {
			out = append(out, []float64{-1})
		}
		return out, nil
	}

	// Normalize rows so tolerances are scale free.
	rows := make([][]float64, m)
	for i := 0; i < m; i++ {
		r := mat.Row(nil, i, a)
		if n := floats.Norm(r, 2); n > 0 {
			floats.Scale(1/n, r)
		}
		rows[i] = r
	}

	initial, rest := independentRows(rows, d)
	if initial == nil {
		return nil, errors.New("cone constraint matrix lost rank during reduction")
	}

	// Rays of the initial subcone: columns of -inv(A_B).
	ab := mat.NewDense(d, d, nil)
	for i, bi := range initial {
		ab.SetRow(i, rows[bi])
	}
	var abInv mat.Dense
	if err := abInv.Inverse(ab); err != nil {
		return nil, errors.Wrap(err, "initial cone basis is singular")
	}
	var rays [][]float64
	for j := 0; j < d; j++ {
		ray := mat.Col(nil, j, &abInv)
		floats.Scale(-1/floats.Norm(ray, 2), ray)
		rays = append(rays, ray)
	}

	processed := append([]int{}, initial...)
	for _, k := range rest {
		rays = ddStep(rows, processed, rays, k, d)
		processed = append(processed, k)
	}
	return rays, nil
}

// ddStep refines the current ray set with one additional constraint row.
func ddStep(rows [][]float64, processed []int, rays [][]float64, k, d int) [][]float64 {
	sign := make([]float64, len(rays))
	for i, r := range rays {
		sign[i] = floats.Dot(rows[k], r)
	}

	var next [][]float64
	for i, r := range rays {
		if sign[i] <= coneTol {
			next = append(next, r)
		}
	}
	active := func(r []float64) map[int]bool {
		act := map[int]bool{}
		for _, pi := range processed {
			if math.Abs(floats.Dot(rows[pi], r)) <= coneTol {
				act[pi] = true
			}
		}
		return act
	}
	for i := range rays {
		if sign[i] <= coneTol {
			continue
		}
		actI := active(rays[i])
		for j := range rays {
			if sign[j] >= -coneTol {
				continue
			}
			common := []int{}
			actJ := active(rays[j])
			for pi := range actI {
				if actJ[pi] {
					common = append(common, pi)
				}
			}
			if !adjacentRays(rows, common, d) {
				continue
			}
			merged := make([]float64, d)
			floats.AddScaled(merged, sign[i], rays[j])
			floats.AddScaled(merged, -sign[j], rays[i])
			if n := floats.Norm(merged, 2); n > coneTol {
				floats.Scale(1/n, merged)
				next = appendRayIfNew(next, merged)
			}
		}
	}
	return next
}

// adjacentRays applies the algebraic adjacency test: two extreme rays are
// adjacent iff their common active constraints have rank d-2.
func adjacentRays(rows [][]float64, common []int, d int) bool {
	if len(common) < d-2 {
		return false
	}
	sub := make([][]float64, len(common))
	for i, ci := range common {
		sub[i] = append([]float64{}, rows[ci]...)
	}
	return rankOf(sub, d) >= d-2
}

func appendRayIfNew(rays [][]float64, ray []float64) [][]float64 {
	for _, r := range rays {
		same := true
		for i := range r {
			if math.Abs(r[i]-ray[i]) > 1e-8 {
				same = false
				break
			}
		}
		if same {
			return rays
		}
	}
	return append(rays, ray)
}

// independentRows picks d linearly independent rows, returning their indices
// and the indices of the remaining rows. Selection is by pivoted modified
// Gram-Schmidt: each step takes the row with the largest component outside the
// span of the rows chosen so far, so the basis is as well conditioned as the
// row set allows. First-fit selection can pass a rank tolerance yet hand the
// downstream inverse a nearly singular matrix.
func independentRows(rows [][]float64, d int) (chosen, rest []int) {
	residual := make([][]float64, len(rows))
	for i, r := range rows {
		residual[i] = append([]float64{}, r...)
	}
	used := make([]bool, len(rows))
	for len(chosen) < d {
		best := -1
		bestNorm := coneTol
		for i := range residual {
			if used[i] {
				continue
			}
			if n := floats.Norm(residual[i], 2); n > bestNorm {
				best, bestNorm = i, n
			}
		}
		if best < 0 {
			return nil, nil
		}
		used[best] = true
		chosen = append(chosen, best)
		q := residual[best]
		floats.Scale(1/bestNorm, q)
		for i := range residual {
			if used[i] {
				continue
			}
			floats.AddScaled(residual[i], -floats.Dot(residual[i], q), q)
		}
	}
	for i := range rows {
		if !used[i] {
			rest = append(rest, i)
		}
	}
	return chosen, rest
}

// rankOf computes the rank of a small row set by Gaussian elimination with
// partial pivoting.
func rankOf(rows [][]float64, d int) int {
	work := make([][]float64, len(rows))
	for i, r := range rows {
		work[i] = append([]float64{}, r...)
	}
	rank := 0
	for col := 0; col < d && rank < len(work); col++ {
		pivot := -1
		best := coneTol
		for i := rank; i < len(work); i++ {
			if v := math.Abs(work[i][col]); v > best {
				best = v
				pivot = i
			}
		}
		if pivot < 0 {
			continue
		}
		work[rank], work[pivot] = work[pivot], work[rank]
		for i := rank + 1; i < len(work); i++ {
			f := work[i][col] / work[rank][col]
			for j := col; j < d; j++ {
				work[i][j] -= f * work[rank][j]
			}
		}
		rank++
	}
	return rank
}

// FaceOfSpan converts the span form of a cone {S*z : z >= 0} to its face form:
// a matrix F such that F*x <= 0 exactly when x lies in the cone. Lineality
// directions of the dual produce paired +/- rows, so lower dimensional cones
// come out with implicit equalities rather than being silently widened.
func FaceOfSpan(s *mat.Dense) (*mat.Dense, error) {
	d, _ := s.Dims()
	var st mat.Dense
	st.CloneFrom(s.T())
	rays, lines, err := ConeRays(&st)
	if err != nil {
		return nil, err
	}
	nRows := len(rays) + 2*len(lines)
	if nRows == 0 {
		return nil, errors.New("span cone has an empty dual, face form undefined")
	}
	f := mat.NewDense(nRows, d, nil)
	for i, r := range rays {
		f.SetRow(i, r)
	}
	for i, l := range lines {
		pos := append([]float64{}, l...)
		neg := make([]float64, d)
		floats.AddScaled(neg, -1, l)
		f.SetRow(len(rays)+2*i, pos)
		f.SetRow(len(rays)+2*i+1, neg)
	}
	return f, nil
}

// VertexEnumeration computes the V-representation of the polytope
// {x : ineq.A*x <= ineq.B, eq.C*x = eq.D} by double description of its
// homogenization. It returns the polytope vertices plus any recession
// directions; a nonempty direction list means the region is unbounded.
func VertexEnumeration(ineq *HRep, eq *EqRep) (vertices, directions [][]float64, err error) {
	m, d := ineq.A.Dims()
	nEq := 0
	if eq != nil {
		nEq, _ = eq.C.Dims()
	}
	hom := mat.NewDense(m+2*nEq+1, d+1, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < d; j++ {
			hom.Set(i, j, ineq.A.At(i, j))
		}
		hom.Set(i, d, -ineq.B[i])
	}
	for i := 0; i < nEq; i++ {
		for j := 0; j < d; j++ {
			hom.Set(m+2*i, j, eq.C.At(i, j))
			hom.Set(m+2*i+1, j, -eq.C.At(i, j))
		}
		hom.Set(m+2*i, d, -eq.D[i])
		hom.Set(m+2*i+1, d, eq.D[i])
	}
	hom.Set(m+2*nEq, d, -1) // t >= 0

	rays, lines, err := ConeRays(hom)
	if err != nil {
		return nil, nil, err
	}
	// A line in the homogenization has t = 0 (t >= 0 pins it); its spatial part
	// is a full line contained in the polytope.
	for _, l := range lines {
		directions = append(directions, l[:d], scaled(l[:d], -1))
	}
	for _, r := range rays {
		t := r[d]
		if t > coneTol {
			v := make([]float64, d)
			for j := 0; j < d; j++ {
				v[j] = r[j] / t
			}
			vertices = append(vertices, v)
		} else {
			directions = append(directions, r[:d])
		}
	}
	return vertices, directions, nil
}

func scaled(v []float64, f float64) []float64 {
	out := make([]float64, len(v))
	floats.AddScaled(out, f, v)
	return out
}

func identityBasis(d int) [][]float64 {
	out := make([][]float64, d)
	for i := range out {
		out[i] = make([]float64, d)
		out[i][i] = 1
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
