package utils

import (
	"encoding/json"
	"strings"
	"unicode"
)

// Tokenize lowercases text and splits it on anything that is not a letter or digit
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// FlattenMetadata converts document metadata to the scalar values accepted by
// vector database metadata fields. Nested objects and lists are JSON encoded,
// nil values are dropped.
func FlattenMetadata(metadata map[string]any) map[string]any {
	flat := make(map[string]any, len(metadata))
	for key, value := range metadata {
		switch v := value.(type) {
		case nil:
			continue
		case string, bool, float64:
			flat[key] = v
		case float32:
			flat[key] = float64(v)
		case int:
			flat[key] = float64(v)
		case int64:
			flat[key] = float64(v)
		case json.Number:
			if f, err := v.Float64(); err == nil {
				flat[key] = f
			} else {
				flat[key] = v.String()
			}
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				flat[key] = ""
				continue
			}
			flat[key] = string(encoded)
		}
	}
	return flat
}
