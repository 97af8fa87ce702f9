package models

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

const (
	ToolAddDocument   = "add_document"
	ToolSearchSimilar = "search_similar"
)

// ToolSpec represents a tool advertised to MCP clients
type ToolSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// GenerateSchema derives an inline JSON Schema from a request struct.
func GenerateSchema[T any]() json.RawMessage {
	var v T
	schema := newReflector().Reflect(v)
	schema.Version = ""
	schema.ID = ""

	b, err := json.Marshal(schema)
	if err != nil {
		panic(err)
	}
	return b
}

func newReflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}
}

// exactArguments keeps the entries of args whose key is a property name of
// dst's schema. Keys differing only in case are dropped.
func exactArguments(args map[string]any, dst any) map[string]any {
	props := newReflector().Reflect(dst).Properties
	exact := make(map[string]any, len(args))
	if props == nil {
		return exact
	}
	for name, value := range args {
		if _, ok := props.Get(name); ok {
			exact[name] = value
		}
	}
	return exact
}
