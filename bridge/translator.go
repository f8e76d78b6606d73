package bridge

import (
	"fmt"
	"strings"

	"github.com/BaSui01/apibridge/openapi"
	"github.com/BaSui01/apibridge/types"
)

// requestBodyKey is the reserved argument name carrying the whole JSON
// request body of an operation.
const requestBodyKey = "requestBody"

// DeriveTools derives the tool list from the live document.
func (b *Bridge) DeriveTools() ([]types.ToolDescriptor, error) {
	doc := b.doc.Load()
	if doc == nil {
		return nil, types.NewError(types.ErrNotInitialized, "OpenAPI document not loaded")
	}
	return DeriveTools(doc), nil
}

// DeriveTools translates every operation of a document into a tool
// descriptor. It is a pure function of the document: deterministic order
// (paths in document order, methods in the fixed method order), a fresh
// slice on every call, and no mutation of the document.
func DeriveTools(doc *openapi.Document) []types.ToolDescriptor {
	tools := make([]types.ToolDescriptor, 0)
	for _, ref := range doc.Operations() {
		tools = append(tools, operationToTool(ref))
	}
	return tools
}

func operationToTool(ref openapi.OperationRef) types.ToolDescriptor {
	return types.ToolDescriptor{
		Name:        toolName(ref),
		Description: toolDescription(ref),
		InputSchema: toolSchema(ref.Op),
	}
}

// toolName returns the operation id, or a synthesized method_path fallback
// when the document omits one. Slashes and placeholder braces become
// underscores so the name stays protocol-safe. Duplicate ids across the
// document are not detected here; resolution takes the first occurrence.
func toolName(ref openapi.OperationRef) string {
	if ref.Op.OperationID != "" {
		return ref.Op.OperationID
	}
	return ref.Method + "_" + sanitizePath(ref.Path)
}

func sanitizePath(path string) string {
	r := strings.NewReplacer("/", "_", "{", "_", "}", "_")
	return r.Replace(path)
}

func toolDescription(ref openapi.OperationRef) string {
	description := ref.Op.Description
	if description == "" {
		description = ref.Op.Summary
	}
	return fmt.Sprintf("%s\n\nPath: %s %s\n%s",
		ref.Op.Summary, strings.ToUpper(ref.Method), ref.Path, description)
}

// toolSchema builds the input schema: one property per declared parameter
// (type hint defaulting to string), plus the reserved requestBody property
// when the operation declares a JSON body. The required list is omitted
// when empty. Types are advisory and not enforced at call time.
func toolSchema(op *openapi.Operation) types.InputSchema {
	schema := types.NewInputSchema()

	for _, param := range op.Parameters {
		propType := "string"
		if param.Schema != nil && param.Schema.Type != "" {
			propType = param.Schema.Type
		}
		schema.Properties[param.Name] = types.Property{
			Type:        propType,
			Description: param.Description,
		}
		if param.Required {
			schema.Required = append(schema.Required, param.Name)
		}
	}

	if op.RequestBody.HasJSONBody() {
		schema.Properties[requestBodyKey] = types.Property{
			Type:        "object",
			Description: "Request body (JSON)",
		}
		if op.RequestBody.Required {
			schema.Required = append(schema.Required, requestBodyKey)
		}
	}

	return schema
}
