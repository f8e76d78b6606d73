// Package openapi holds the minimal OpenAPI document model the bridge
// operates on: paths, methods, parameters, and a single JSON request body.
// The document is parsed once per authenticated session and never validated;
// anything the model does not understand is ignored.
package openapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Methods the bridge recognizes, in the fixed order used both for tool
// derivation and for operation resolution. The double ordering (paths in
// document order, then this method order) is externally visible and must
// stay stable.
var MethodOrder = []string{"get", "post", "put", "delete", "patch"}

// Document is an immutable OpenAPI document. Paths preserve the order they
// appear in the source JSON.
type Document struct {
	Paths []PathEntry
}

// PathEntry pairs a path template with its operations.
type PathEntry struct {
	Path string
	Item PathItem
}

// PathItem represents operations on a path.
type PathItem struct {
	Get    *Operation `json:"get,omitempty"`
	Post   *Operation `json:"post,omitempty"`
	Put    *Operation `json:"put,omitempty"`
	Delete *Operation `json:"delete,omitempty"`
	Patch  *Operation `json:"patch,omitempty"`
}

// Operation represents an API operation.
type Operation struct {
	OperationID string       `json:"operationId,omitempty"`
	Summary     string       `json:"summary,omitempty"`
	Description string       `json:"description,omitempty"`
	Parameters  []Parameter  `json:"parameters,omitempty"`
	RequestBody *RequestBody `json:"requestBody,omitempty"`
}

// Parameter represents an operation parameter.
type Parameter struct {
	Name        string  `json:"name"`
	In          string  `json:"in"` // path, query, header, cookie
	Description string  `json:"description,omitempty"`
	Required    bool    `json:"required,omitempty"`
	Schema      *Schema `json:"schema,omitempty"`
}

// Schema carries the primitive type hint of a parameter.
type Schema struct {
	Type string `json:"type,omitempty"`
}

// RequestBody represents a request body descriptor. The body schema is kept
// opaque: the bridge forwards the whole body as one JSON value and performs
// no field-level validation.
type RequestBody struct {
	Required bool                 `json:"required,omitempty"`
	Content  map[string]MediaType `json:"content,omitempty"`
}

// MediaType represents one content entry of a request body.
type MediaType struct {
	Schema json.RawMessage `json:"schema,omitempty"`
}

// HasJSONBody reports whether the body declares a JSON media type with a
// schema. Other media types are ignored.
func (rb *RequestBody) HasJSONBody() bool {
	if rb == nil {
		return false
	}
	for mediaType, content := range rb.Content {
		if strings.Contains(mediaType, "application/json") && len(content.Schema) > 0 {
			return true
		}
	}
	return false
}

// Operation returns the operation for an HTTP method, nil when absent.
func (pi *PathItem) Operation(method string) *Operation {
	switch method {
	case "get":
		return pi.Get
	case "post":
		return pi.Post
	case "put":
		return pi.Put
	case "delete":
		return pi.Delete
	case "patch":
		return pi.Patch
	}
	return nil
}

// OperationRef locates one operation within the document.
type OperationRef struct {
	Path   string
	Method string
	Op     *Operation
}

// Operations lists every operation in the document's canonical order:
// paths in document order, methods in MethodOrder. Both the translator and
// the resolver walk this same sequence, so duplicate operation ids resolve
// deterministically to the first occurrence.
func (d *Document) Operations() []OperationRef {
	var refs []OperationRef
	for _, entry := range d.Paths {
		for _, method := range MethodOrder {
			if op := entry.Item.Operation(method); op != nil {
				refs = append(refs, OperationRef{Path: entry.Path, Method: method, Op: op})
			}
		}
	}
	return refs
}

// OperationCount returns the number of recognized operations.
func (d *Document) OperationCount() int {
	return len(d.Operations())
}

// UnmarshalJSON decodes a document while preserving the order of the paths
// object. An absent or empty paths collection yields zero operations rather
// than an error; every other top-level key is skipped.
func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("document is not a JSON object")
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		if key != "paths" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return fmt.Errorf("key %q: %w", key, err)
			}
			continue
		}

		entries, err := decodePaths(dec)
		if err != nil {
			return fmt.Errorf("paths: %w", err)
		}
		d.Paths = entries
	}
	return nil
}

func decodePaths(dec *json.Decoder) ([]PathEntry, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		// Null or scalar paths value degrades to zero operations.
		return nil, nil
	}
	if delim != '{' {
		return nil, fmt.Errorf("paths is not a JSON object")
	}

	var entries []PathEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		path, _ := keyTok.(string)

		var item PathItem
		if err := dec.Decode(&item); err != nil {
			return nil, fmt.Errorf("path %q: %w", path, err)
		}
		entries = append(entries, PathEntry{Path: path, Item: item})
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return nil, err
	}
	return entries, nil
}
