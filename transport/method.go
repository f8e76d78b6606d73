package transport

import (
	"fmt"
	"net/http"
	"strings"
)

// Method is the HTTP method of an API operation. The bridge only dispatches
// the five methods an OpenAPI path item can declare here.
type Method int

const (
	GET Method = iota
	POST
	PUT
	DELETE
	PATCH
)

// FromString maps a lowercase OpenAPI method key to a Method.
func FromString(s string) (Method, error) {
	switch strings.ToLower(s) {
	case "get":
		return GET, nil
	case "post":
		return POST, nil
	case "put":
		return PUT, nil
	case "delete":
		return DELETE, nil
	case "patch":
		return PATCH, nil
	}
	return GET, fmt.Errorf("unsupported HTTP method %q", s)
}

// String returns the wire form of the method.
func (m Method) String() string {
	switch m {
	case POST:
		return http.MethodPost
	case PUT:
		return http.MethodPut
	case DELETE:
		return http.MethodDelete
	case PATCH:
		return http.MethodPatch
	default:
		return http.MethodGet
	}
}

// AcceptsBody reports whether a request body is sent for this method.
// GET and DELETE requests are dispatched without a body even when the
// argument bag carries one.
func (m Method) AcceptsBody() bool {
	switch m {
	case POST, PUT, PATCH:
		return true
	}
	return false
}
