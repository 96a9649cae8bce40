package vectorspace

import "math"

// Vector is a sparse row of the document-term matrix. Indices are strictly
// increasing column numbers and Values holds the matching weights.
type Vector struct {
	Indices []int
	Values  []float64
}

// Len returns the number of non-zero cells.
func (v Vector) Len() int {
	return len(v.Indices)
}

// IsZero reports whether the vector has no non-zero cells.
func (v Vector) IsZero() bool {
	for _, w := range v.Values {
		if w != 0 {
			return false
		}
	}
	return true
}

// Norm returns the Euclidean length, summing squares in column order.
func (v Vector) Norm() float64 {
	var sum float64
	for _, w := range v.Values {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Dot merges two sorted sparse vectors and sums the products of shared columns.
func (v Vector) Dot(o Vector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(o.Indices) {
		switch {
		case v.Indices[i] == o.Indices[j]:
			sum += v.Values[i] * o.Values[j]
			i++
			j++
		case v.Indices[i] < o.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Dense expands the vector to width columns.
func (v Vector) Dense(width int) []float64 {
	out := make([]float64, width)
	for k, idx := range v.Indices {
		if idx < width {
			out[idx] = v.Values[k]
		}
	}
	return out
}

// normalized scales v to unit length in place. A zero vector stays zero.
func (v Vector) normalized() Vector {
	norm := v.Norm()
	if norm == 0 {
		return v
	}
	for k := range v.Values {
		v.Values[k] /= norm
	}
	return v
}
