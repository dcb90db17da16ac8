// Package embedding provides shared vector helpers for the embedding
// service adapters. Every backend returns unit-normalised vectors so
// cosine similarity reduces to a dot product in the index.
package embedding

import "math"

// Normalize scales the vector to unit L2 length in place and returns
// it. Zero vectors are returned unchanged.
func Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}
