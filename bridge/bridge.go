// Package bridge connects protocol-exposed tools to the operations of a
// remote OpenAPI-described service. It derives tool descriptors from the
// loaded document and, at call time, turns a tool name plus argument bag
// back into one HTTP request, normalizing the outcome into a single result.
package bridge

import (
	"context"
	"net/url"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/BaSui01/apibridge/internal/metrics"
	"github.com/BaSui01/apibridge/openapi"
	"github.com/BaSui01/apibridge/transport"
)

// Transport is the slice of the transport client the bridge dispatches
// through.
type Transport interface {
	Send(ctx context.Context, method transport.Method, path string, query url.Values, body any) (*transport.Response, error)
}

// Bridge holds the session state: the immutable document and the authorized
// transport. The document reference is swapped atomically on reload, so
// concurrent invocations observe either the old or the new document, never
// a partially-updated one. No other locking is needed; invocations share no
// mutable state.
type Bridge struct {
	doc       atomic.Pointer[openapi.Document]
	transport Transport
	logger    *zap.Logger
	collector *metrics.Collector
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithMetrics attaches a metrics collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(b *Bridge) { b.collector = c }
}

// New creates a bridge over the given transport. A document must be set
// before tools can be derived or invoked.
func New(tr Transport, logger *zap.Logger, opts ...Option) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Bridge{
		transport: tr,
		logger:    logger.With(zap.String("component", "bridge")),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetDocument replaces the live document. The previous document remains
// valid for invocations already in flight.
func (b *Bridge) SetDocument(doc *openapi.Document) {
	b.doc.Store(doc)
	if doc != nil && b.collector != nil {
		b.collector.SetSpecOperations(doc.OperationCount())
	}
}

// Document returns the live document, nil before the first load.
func (b *Bridge) Document() *openapi.Document {
	return b.doc.Load()
}
