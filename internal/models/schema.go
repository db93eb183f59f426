package models

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

// SchemaToMap converts a jsonschema.Schema into the plain JSON Schema map
// form that OpenAI-compatible structured output expects. The root is always
// a closed object: strict mode rejects unknown keys.
func SchemaToMap(schema *jsonschema.Schema) map[string]any {
	root := schemaNode(schema)
	if _, ok := root["type"]; !ok {
		root["type"] = "object"
	}
	if _, ok := root["required"]; !ok {
		root["required"] = []string{}
	}
	root["additionalProperties"] = false
	return root
}

// schemaNode converts one schema node, recursing into properties and items.
func schemaNode(schema *jsonschema.Schema) map[string]any {
	node := make(map[string]any)

	switch {
	case len(schema.Types) > 0:
		node["type"] = schema.Types
	case schema.Type != "":
		node["type"] = schema.Type
	}
	if schema.Description != "" {
		node["description"] = schema.Description
	}
	if len(schema.Enum) > 0 {
		node["enum"] = schema.Enum
	}
	if len(schema.Required) > 0 {
		node["required"] = schema.Required
	}
	if schema.Minimum != nil {
		node["minimum"] = *schema.Minimum
	}
	if schema.Maximum != nil {
		node["maximum"] = *schema.Maximum
	}
	if len(schema.Default) > 0 {
		var value any
		if err := json.Unmarshal(schema.Default, &value); err == nil {
			node["default"] = value
		}
	}

	if len(schema.Properties) > 0 {
		props := make(map[string]any, len(schema.Properties))
		for name, prop := range schema.Properties {
			if prop != nil {
				props[name] = schemaNode(prop)
			}
		}
		node["properties"] = props
	}
	if schema.Items != nil {
		node["items"] = schemaNode(schema.Items)
	}

	return node
}
