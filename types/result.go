package types

import (
	"encoding/json"
	"strings"
)

// ResultKind tags the variant held by a Result.
type ResultKind int

const (
	// ResultJSON holds a decoded JSON payload.
	ResultJSON ResultKind = iota
	// ResultText holds a raw text payload (non-JSON response body).
	ResultText
	// ResultError holds a failed invocation.
	ResultError
)

// Result is the outcome of one tool invocation: a decoded JSON value, a raw
// text payload, or a failure. A non-JSON response body is a valid success,
// not an error.
type Result struct {
	Kind ResultKind
	JSON json.RawMessage
	Text string
	Err  error
}

// JSONResult wraps a decoded JSON payload.
func JSONResult(raw json.RawMessage) Result {
	return Result{Kind: ResultJSON, JSON: raw}
}

// TextResult wraps a raw text payload.
func TextResult(text string) Result {
	return Result{Kind: ResultText, Text: text}
}

// ErrorResult wraps a failed invocation.
func ErrorResult(err error) Result {
	return Result{Kind: ResultError, Err: err}
}

// IsError returns true if the invocation failed.
func (r Result) IsError() bool {
	return r.Kind == ResultError
}

// Render produces the single text payload shown to the protocol consumer.
// JSON objects and arrays are re-indented, scalars render as their plain
// value (strings unquoted), errors carry the literal "Error: " prefix.
func (r Result) Render() string {
	switch r.Kind {
	case ResultJSON:
		var buf any
		if err := json.Unmarshal(r.JSON, &buf); err != nil {
			return string(r.JSON)
		}
		switch v := buf.(type) {
		case map[string]any, []any:
			pretty, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return string(r.JSON)
			}
			return string(pretty)
		case string:
			return v
		default:
			return strings.TrimSpace(string(r.JSON))
		}
	case ResultError:
		return "Error: " + errMessage(r.Err)
	default:
		return r.Text
	}
}

func errMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
