package domain

// SchemaType is the JSON type of a schema node.
type SchemaType string

const (
	SchemaObject SchemaType = "object"
	SchemaArray  SchemaType = "array"
	SchemaString SchemaType = "string"
)

// Schema is a backend-neutral description of a structured model response.
// Generator backends translate it into their own schema types.
type Schema struct {
	Type        SchemaType
	Description string
	Properties  map[string]*Schema
	Items       *Schema
	Required    []string
	Nullable    bool
	Enum        []string
}
