package vector

import "math"

// InnerProduct returns the dot product of two vectors accumulated in float64.
// Vectors of different length yield 0.
func InnerProduct(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// L2Norm returns the Euclidean length of x.
func L2Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// Cosine returns dot(a, b) / (normA * normB) using precomputed norms.
// A zero norm on either side yields exactly 0.
func Cosine(a, b []float32, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	return InnerProduct(a, b) / (normA * normB)
}

// CosineSimilarity computes cosine similarity in [-1, 1]; 0 when either vector is zero.
func CosineSimilarity(a, b []float32) float64 {
	return Cosine(a, b, L2Norm(a), L2Norm(b))
}
