package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/apibridge/openapi"
	"github.com/BaSui01/apibridge/transport"
	"github.com/BaSui01/apibridge/types"
)

// Invoke resolves a tool name back to its operation, partitions the
// argument bag into path, query, and body roles, dispatches exactly one
// HTTP request, and normalizes the outcome. Failures abort the remaining
// steps and surface as a single error; nothing is retried here.
func (b *Bridge) Invoke(ctx context.Context, operationID string, args map[string]any) (types.Result, error) {
	start := time.Now()
	result, err := b.invoke(ctx, operationID, args)

	status := "success"
	if err != nil {
		status = "error"
	}
	if b.collector != nil {
		b.collector.RecordInvocation(operationID, status, time.Since(start))
	}
	return result, err
}

func (b *Bridge) invoke(ctx context.Context, operationID string, args map[string]any) (types.Result, error) {
	doc := b.doc.Load()
	if doc == nil {
		return types.Result{}, types.NewError(types.ErrNotInitialized, "OpenAPI document not loaded")
	}

	ref, err := resolve(doc, operationID)
	if err != nil {
		return types.Result{}, err
	}

	method, err := transport.FromString(ref.Method)
	if err != nil {
		return types.Result{}, types.NewError(types.ErrOperationNotFound,
			fmt.Sprintf("operation %s uses an unsupported method", operationID)).WithCause(err)
	}

	path, query := partitionArgs(ref, args)
	body := args[requestBodyKey]

	invocationID := uuid.NewString()
	ilog := b.logger.With(
		zap.String("invocation_id", invocationID),
		zap.String("operation_id", operationID),
	)
	ilog.Debug("dispatching operation",
		zap.String("method", method.String()),
		zap.String("path", path),
	)

	resp, err := b.transport.Send(ctx, method, path, query, body)
	if err != nil {
		ilog.Warn("remote call failed", zap.Error(err))
		return types.Result{}, types.NewError(types.ErrRemoteCall,
			fmt.Sprintf("API call failed (invocation %s)", invocationID)).WithCause(err)
	}
	if b.collector != nil {
		b.collector.RecordRemoteRequest(method.String(), resp.Status)
	}
	if !resp.IsSuccess() {
		detail := strings.TrimSpace(string(resp.Body))
		msg := fmt.Sprintf("API call failed: HTTP %d", resp.Status)
		if detail != "" {
			msg = fmt.Sprintf("%s: %s", msg, detail)
		}
		ilog.Warn("remote call returned failure status", zap.Int("status", resp.Status))
		return types.Result{}, types.NewError(types.ErrRemoteCall, msg).WithHTTPStatus(resp.Status)
	}

	ilog.Debug("operation completed", zap.Int("status", resp.Status))
	return normalize(resp.Body), nil
}

// resolve scans the document in derivation order until the first operation
// with a matching id. First match wins when ids collide.
func resolve(doc *openapi.Document, operationID string) (openapi.OperationRef, error) {
	for _, ref := range doc.Operations() {
		if ref.Op.OperationID == operationID {
			return ref, nil
		}
	}
	return openapi.OperationRef{}, types.NewError(types.ErrOperationNotFound,
		fmt.Sprintf("operation %s not found in OpenAPI spec", operationID))
}

// partitionArgs substitutes path placeholders and collects query values
// from the declared parameters present in the argument bag. Declared
// parameters absent from the bag are omitted; the required flag is not
// enforced here — the remote service rejects what it must. Values are
// stringified but not escaped; the transport escapes when assembling the
// URL.
func partitionArgs(ref openapi.OperationRef, args map[string]any) (string, url.Values) {
	path := ref.Path
	query := url.Values{}

	for _, param := range ref.Op.Parameters {
		value, ok := args[param.Name]
		if !ok {
			continue
		}
		switch param.In {
		case "path":
			path = strings.ReplaceAll(path, "{"+param.Name+"}", stringify(value))
		case "query":
			query.Set(param.Name, stringify(value))
		}
	}
	return path, query
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// normalize decodes the response payload as JSON when it is JSON and falls
// back to the raw text otherwise. Both are successful outcomes.
func normalize(body []byte) types.Result {
	if len(body) > 0 && json.Valid(body) {
		return types.JSONResult(json.RawMessage(body))
	}
	return types.TextResult(string(body))
}
