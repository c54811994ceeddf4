// Package vecmath provides the small set of 3-vector and matrix helpers;
// internal/bodies uses its R1/R3 rotations for body-fixed frames.
package vecmath

import (
	"math"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
)

const epsilon = 1e-12

// Norm returns the Euclidean norm of a 3-vector.
func Norm(v []float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Unit returns the unit vector of a, or the zero vector if a is (numerically) zero.
func Unit(a []float64) []float64 {
	n := Norm(a)
	if floats.EqualWithinAbs(n, 0, epsilon) {
		return []float64{0, 0, 0}
	}
	b := make([]float64, len(a))
	for i, val := range a {
		b[i] = val / n
	}
	return b
}

// Dot is the inner product of two equal-length vectors.
func Dot(a, b []float64) float64 {
	return mat64.Dot(mat64.NewVector(len(a), a), mat64.NewVector(len(b), b))
}

// Cross is the 3-vector cross product a × b.
func Cross(a, b []float64) []float64 {
	return []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Sub returns a - b element-wise.
func Sub(a, b []float64) []float64 {
	c := make([]float64, len(a))
	for i := range a {
		c[i] = a[i] - b[i]
	}
	return c
}

// Add returns a + b element-wise.
func Add(a, b []float64) []float64 {
	c := make([]float64, len(a))
	for i := range a {
		c[i] = a[i] + b[i]
	}
	return c
}

// Scale returns s·a.
func Scale(s float64, a []float64) []float64 {
	c := make([]float64, len(a))
	for i := range a {
		c[i] = s * a[i]
	}
	return c
}

// Sign returns the sign of v, treating values within epsilon of zero as positive.
func Sign(v float64) float64 {
	if floats.EqualWithinAbs(v, 0, epsilon) {
		return 1
	}
	return v / math.Abs(v)
}

// R1 returns the rotation matrix about the first axis by angle x (radians).
func R1(x float64) *mat64.Dense {
	s, c := math.Sincos(x)
	return mat64.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R2 returns the rotation matrix about the second axis by angle x (radians).
func R2(x float64) *mat64.Dense {
	s, c := math.Sincos(x)
	return mat64.NewDense(3, 3, []float64{c, 0, -s, 0, 1, 0, s, 0, c})
}

// R3 returns the rotation matrix about the third axis by angle x (radians).
func R3(x float64) *mat64.Dense {
	s, c := math.Sincos(x)
	return mat64.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// MulVec3 applies a 3x3 rotation matrix to a 3-vector.
func MulVec3(m *mat64.Dense, v []float64) []float64 {
	var out mat64.Vector
	out.MulVec(m, mat64.NewVector(3, v))
	return []float64{out.At(0, 0), out.At(1, 0), out.At(2, 0)}
}

// DenseIdentity returns an n×n identity matrix.
func DenseIdentity(n int) *mat64.Dense {
	vals := make([]float64, n*n)
	for j := 0; j < n*n; j++ {
		if j%(n+1) == 0 {
			vals[j] = 1
		}
	}
	return mat64.NewDense(n, n, vals)
}
