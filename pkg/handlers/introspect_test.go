package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tablelens-ai/tablelens-engine/pkg/apperrors"
	"github.com/tablelens-ai/tablelens-engine/pkg/datasource"
	"github.com/tablelens-ai/tablelens-engine/pkg/models"
)

type stubIntrospector struct {
	tables []models.TableInput
	err    error
	closed bool
}

func (s *stubIntrospector) Introspect(ctx context.Context) ([]models.TableInput, error) {
	return s.tables, s.err
}

func (s *stubIntrospector) Close() error {
	s.closed = true
	return nil
}

func postIntrospect(t *testing.T, h *IntrospectHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/introspect", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Introspect(rec, req)
	return rec
}

func TestIntrospect_ReturnsTables(t *testing.T) {
	stub := &stubIntrospector{tables: []models.TableInput{
		models.NewTableInput("public.users", "CREATE TABLE public.users (id int)", "", "", ""),
	}}
	h := NewIntrospectHandler(zap.NewNop())
	h.connect = func(r *http.Request, req IntrospectRequest) (datasource.Introspector, error) {
		return stub, nil
	}

	rec := postIntrospect(t, h, `{"driver": "postgres", "connection_string": "postgres://x"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp IntrospectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Tables, 1)
	assert.Equal(t, "public.users", resp.Tables[0].Name)
	assert.True(t, stub.closed, "the introspector must be closed after the request")
}

func TestIntrospect_MissingConnectionString(t *testing.T) {
	h := NewIntrospectHandler(zap.NewNop())

	rec := postIntrospect(t, h, `{"driver": "postgres"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIntrospect_UnsupportedDriver(t *testing.T) {
	h := NewIntrospectHandler(zap.NewNop())
	h.connect = func(r *http.Request, req IntrospectRequest) (datasource.Introspector, error) {
		return nil, apperrors.ErrUnsupportedDriver
	}

	rec := postIntrospect(t, h, `{"driver": "oracle", "connection_string": "x"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported_driver")
}

func TestIntrospect_NoTables(t *testing.T) {
	h := NewIntrospectHandler(zap.NewNop())
	h.connect = func(r *http.Request, req IntrospectRequest) (datasource.Introspector, error) {
		return &stubIntrospector{err: apperrors.ErrNoTables}, nil
	}

	rec := postIntrospect(t, h, `{"driver": "postgres", "connection_string": "x"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIntrospect_ConnectionFailure(t *testing.T) {
	h := NewIntrospectHandler(zap.NewNop())
	h.connect = func(r *http.Request, req IntrospectRequest) (datasource.Introspector, error) {
		return nil, errors.New("dial tcp: connection refused")
	}

	rec := postIntrospect(t, h, `{"driver": "postgres", "connection_string": "x"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection_failed")
}
