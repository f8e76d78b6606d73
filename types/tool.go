package types

import "encoding/json"

// Property describes a single named argument in a tool's input schema.
// Types are advisory: the bridge forwards whatever the caller supplies.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// InputSchema is the JSON-schema-shaped input contract of a tool.
// The required list is omitted entirely when empty; Type is always "object"
// and Properties is always present, even when no arguments are declared.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// NewInputSchema returns an empty object schema.
func NewInputSchema() InputSchema {
	return InputSchema{
		Type:       "object",
		Properties: make(map[string]Property),
	}
}

// ToolDescriptor is the bridge's external-facing artifact: one invocable
// tool derived from one API operation. The JSON shape is wire-verbatim for
// protocol interoperability.
type ToolDescriptor struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// SchemaJSON marshals the input schema for protocol registration.
func (t ToolDescriptor) SchemaJSON() json.RawMessage {
	data, err := json.Marshal(t.InputSchema)
	if err != nil {
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return data
}
