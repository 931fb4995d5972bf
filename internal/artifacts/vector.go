package artifacts

// FeatureVector is a sparse fixed-dimension representation of cleaned text.
// Indices are strictly increasing and each has a matching entry in Values.
type FeatureVector struct {
	Dim     int
	Indices []int
	Values  []float64
}

// NNZ is the number of active features.
func (v FeatureVector) NNZ() int {
	return len(v.Indices)
}

// Dense expands the vector into a slice of length Dim.
func (v FeatureVector) Dense() []float64 {
	out := make([]float64, v.Dim)
	for i, idx := range v.Indices {
		out[idx] = v.Values[i]
	}
	return out
}
