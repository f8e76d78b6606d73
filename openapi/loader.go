package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/BaSui01/apibridge/transport"
	"github.com/BaSui01/apibridge/types"
)

// Fetcher is the slice of the transport client the loader needs.
type Fetcher interface {
	Send(ctx context.Context, method transport.Method, path string, query url.Values, body any) (*transport.Response, error)
}

// Loader fetches the remote service's OpenAPI document through an already
// authorized transport. One successful load produces one immutable document;
// refreshing it requires a new authenticated session.
type Loader struct {
	client   Fetcher
	specPath string
	logger   *zap.Logger
}

// NewLoader creates a loader for the given spec path (e.g. /v3/api-docs).
func NewLoader(client Fetcher, specPath string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		client:   client,
		specPath: specPath,
		logger:   logger.With(zap.String("component", "spec_loader")),
	}
}

// Load retrieves and parses the document. Retrieval failures carry
// SPEC_FETCH, unparsable payloads SPEC_FORMAT. A document without a paths
// collection loads fine and yields zero operations.
func (l *Loader) Load(ctx context.Context) (*Document, error) {
	resp, err := l.client.Send(ctx, transport.GET, l.specPath, nil, nil)
	if err != nil {
		return nil, types.NewError(types.ErrSpecFetch, "failed to fetch OpenAPI spec").WithCause(err)
	}
	if !resp.IsSuccess() {
		return nil, types.NewError(types.ErrSpecFetch,
			fmt.Sprintf("spec endpoint returned HTTP %d", resp.Status)).WithHTTPStatus(resp.Status)
	}

	var doc Document
	if err := json.Unmarshal(resp.Body, &doc); err != nil {
		return nil, types.NewError(types.ErrSpecFormat, "failed to parse OpenAPI spec").WithCause(err)
	}

	l.logger.Info("loaded OpenAPI spec",
		zap.String("path", l.specPath),
		zap.Int("operations", doc.OperationCount()),
	)
	return &doc, nil
}
