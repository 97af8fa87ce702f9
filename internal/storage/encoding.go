package storage

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/viant/vec/search"
)

// EncodeEmbedding encodes a vector as a little-endian sequence of IEEE 754
// float32 values. The length is derived from the blob size on decode.
func EncodeEmbedding(vec []float32) []byte {
	b := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

// DecodeEmbedding decodes a blob produced by EncodeEmbedding.
func DecodeEmbedding(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding blob length %d", len(b))
	}
	vec := make([]float32, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec, nil
}

// CosineSimilarity returns the cosine of the angle between a and b.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine similarity dimension mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("cosine similarity on empty vectors")
	}

	va, vb := search.Float32s(a), search.Float32s(b)
	if va.Magnitude() == 0 || vb.Magnitude() == 0 {
		return 0, fmt.Errorf("cosine similarity with zero-magnitude vector")
	}
	return 1 - float64(va.CosineDistance(b)), nil
}
