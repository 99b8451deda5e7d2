package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveWithRequestID(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, uuid.UUID) {
	t.Helper()
	var seen uuid.UUID
	handler := RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		id, err := GetRequestID(r)
		require.NoError(t, err)
		seen = id
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w, seen
}

func TestRequestID_GeneratesID(t *testing.T) {
	w, id := serveWithRequestID(t, httptest.NewRequest(http.MethodGet, "/candidates", nil))

	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, id.String(), w.Header().Get(RequestIDHeader))
}

func TestRequestID_ReusesIncomingID(t *testing.T) {
	incoming := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/candidates", nil)
	req.Header.Set(RequestIDHeader, incoming.String())

	w, id := serveWithRequestID(t, req)

	assert.Equal(t, incoming, id)
	assert.Equal(t, incoming.String(), w.Header().Get(RequestIDHeader))
}

func TestRequestID_ReplacesMalformedID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/candidates", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")

	w, id := serveWithRequestID(t, req)

	assert.NotEqual(t, uuid.Nil, id)
	assert.NotEqual(t, "not-a-uuid", w.Header().Get(RequestIDHeader))
}

func TestGetRequestID_Missing(t *testing.T) {
	_, err := GetRequestID(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Error(t, err)
}
