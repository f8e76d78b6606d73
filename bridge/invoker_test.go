package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/BaSui01/apibridge/openapi"
	"github.com/BaSui01/apibridge/transport"
	"github.com/BaSui01/apibridge/types"
)

type fakeTransport struct {
	resp *transport.Response
	err  error

	called    int
	gotMethod transport.Method
	gotPath   string
	gotQuery  url.Values
	gotBody   any
}

func (f *fakeTransport) Send(_ context.Context, method transport.Method, path string, query url.Values, body any) (*transport.Response, error) {
	f.called++
	f.gotMethod = method
	f.gotPath = path
	f.gotQuery = query
	f.gotBody = body
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &transport.Response{Status: 200, Body: []byte(`{"ok":true}`)}, nil
}

func invokerDocument(t *testing.T) *openapi.Document {
	t.Helper()

	raw := `{
		"paths": {
			"/beacons/{id}/kill": {
				"post": {
					"operationId": "killBeacon",
					"parameters": [
						{"name": "id", "in": "path", "required": true, "schema": {"type": "string"}},
						{"name": "force", "in": "query", "schema": {"type": "boolean"}},
						{"name": "x-trace", "in": "header", "schema": {"type": "string"}}
					],
					"requestBody": {"content": {"application/json": {"schema": {"type": "object"}}}}
				}
			},
			"/beacons": {
				"get": {"operationId": "listBeacons"}
			},
			"/dup": {
				"get": {"operationId": "twice", "summary": "first"},
				"post": {"operationId": "twice", "summary": "second"}
			}
		}
	}`

	var doc openapi.Document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return &doc
}

func newTestBridge(t *testing.T, tr Transport) *Bridge {
	t.Helper()
	b := New(tr, nil)
	b.SetDocument(invokerDocument(t))
	return b
}

func TestInvoke_PathSubstitutionAndQuery(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{}
	b := newTestBridge(t, tr)

	result, err := b.Invoke(context.Background(), "killBeacon", map[string]any{
		"id":    "42",
		"force": true,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, tr.called)
	assert.Equal(t, transport.POST, tr.gotMethod)
	assert.Equal(t, "/beacons/42/kill", tr.gotPath)
	assert.Equal(t, "true", tr.gotQuery.Get("force"))
	assert.Nil(t, tr.gotBody)

	assert.Equal(t, types.ResultJSON, result.Kind)
	assert.JSONEq(t, `{"ok":true}`, string(result.JSON))
}

func TestInvoke_HeaderParametersIgnored(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{}
	b := newTestBridge(t, tr)

	_, err := b.Invoke(context.Background(), "killBeacon", map[string]any{
		"id":      "7",
		"x-trace": "abc",
	})
	require.NoError(t, err)
	assert.Empty(t, tr.gotQuery.Get("x-trace"))
	assert.Equal(t, "/beacons/7/kill", tr.gotPath)
}

func TestInvoke_MissingDeclaredParamsAreOmitted(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{}
	b := newTestBridge(t, tr)

	// Required id is absent: the placeholder stays literal and the remote
	// service gets to reject the call. No local enforcement.
	_, err := b.Invoke(context.Background(), "killBeacon", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "/beacons/{id}/kill", tr.gotPath)
	assert.Empty(t, tr.gotQuery)
}

func TestInvoke_RequestBodyPassthrough(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{}
	b := newTestBridge(t, tr)

	body := map[string]any{"note": "shutdown"}
	_, err := b.Invoke(context.Background(), "killBeacon", map[string]any{
		"id":          "42",
		"requestBody": body,
	})
	require.NoError(t, err)
	assert.Equal(t, body, tr.gotBody)
}

func TestInvoke_BodyForwardedEvenWhenUndeclared(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{}
	b := newTestBridge(t, tr)

	// listBeacons declares no body; the reserved key still becomes the
	// outgoing body and the transport drops it for GET.
	_, err := b.Invoke(context.Background(), "listBeacons", map[string]any{
		"requestBody": map[string]any{"x": 1},
	})
	require.NoError(t, err)
	assert.Equal(t, transport.GET, tr.gotMethod)
	assert.NotNil(t, tr.gotBody)
}

func TestInvoke_UnknownOperation(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{}
	b := newTestBridge(t, tr)

	_, err := b.Invoke(context.Background(), "selfDestruct", nil)
	require.Error(t, err)
	assert.Equal(t, types.ErrOperationNotFound, types.GetErrorCode(err))
	assert.Contains(t, err.Error(), "selfDestruct")
	assert.Zero(t, tr.called)
}

func TestInvoke_NotInitialized(t *testing.T) {
	t.Parallel()

	b := New(&fakeTransport{}, nil)
	_, err := b.Invoke(context.Background(), "listBeacons", nil)
	require.Error(t, err)
	assert.Equal(t, types.ErrNotInitialized, types.GetErrorCode(err))
}

func TestInvoke_DuplicateIDFirstMatchWins(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{}
	b := newTestBridge(t, tr)

	_, err := b.Invoke(context.Background(), "twice", nil)
	require.NoError(t, err)
	assert.Equal(t, transport.GET, tr.gotMethod)
}

func TestInvoke_TransportError(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{err: errors.New("dial tcp: connection refused")}
	b := newTestBridge(t, tr)

	_, err := b.Invoke(context.Background(), "listBeacons", nil)
	require.Error(t, err)
	assert.Equal(t, types.ErrRemoteCall, types.GetErrorCode(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestInvoke_InvocationIDCorrelatesLogsAndError(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	tr := &fakeTransport{err: errors.New("dial tcp: connection refused")}
	b := New(tr, zap.New(core))
	b.SetDocument(invokerDocument(t))

	_, err := b.Invoke(context.Background(), "listBeacons", nil)
	require.Error(t, err)

	entries := logs.FilterMessage("remote call failed").All()
	require.Len(t, entries, 1)

	id, ok := entries[0].ContextMap()["invocation_id"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, id)
	assert.Equal(t, "listBeacons", entries[0].ContextMap()["operation_id"])

	// The same id appears in the error message so a consumer-reported
	// failure can be matched to its log line.
	assert.Contains(t, err.Error(), id)
}

func TestInvoke_RemoteStatusError(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{resp: &transport.Response{Status: 500, Body: []byte("internal error")}}
	b := newTestBridge(t, tr)

	_, err := b.Invoke(context.Background(), "listBeacons", nil)
	require.Error(t, err)

	assert.Equal(t, types.ErrRemoteCall, types.GetErrorCode(err))
	assert.Contains(t, err.Error(), "HTTP 500")
	assert.Contains(t, err.Error(), "internal error")

	var typed *types.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, 500, typed.HTTPStatus)
}

func TestInvoke_NonJSONResponseFallsBackToText(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{resp: &transport.Response{Status: 200, Body: []byte("pong")}}
	b := newTestBridge(t, tr)

	result, err := b.Invoke(context.Background(), "listBeacons", nil)
	require.NoError(t, err)
	assert.Equal(t, types.ResultText, result.Kind)
	assert.Equal(t, "pong", result.Text)
}

func TestInvoke_EmptyResponseBody(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{resp: &transport.Response{Status: 204}}
	b := newTestBridge(t, tr)

	result, err := b.Invoke(context.Background(), "listBeacons", nil)
	require.NoError(t, err)
	assert.Equal(t, types.ResultText, result.Kind)
	assert.Empty(t, result.Text)
}

func TestInvoke_NumericPathValue(t *testing.T) {
	t.Parallel()

	tr := &fakeTransport{}
	b := newTestBridge(t, tr)

	_, err := b.Invoke(context.Background(), "killBeacon", map[string]any{"id": float64(42)})
	require.NoError(t, err)
	assert.Equal(t, "/beacons/42/kill", tr.gotPath)
}
