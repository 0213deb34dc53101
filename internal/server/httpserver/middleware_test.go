package httpserver

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/logging"
)

func TestRequestID_Generates(t *testing.T) {
	var seen string
	h := requestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	id := rr.Header().Get(requestIDHeader)
	assert.Equal(t, id, seen)
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestRequestID_KeepsClientValue(t *testing.T) {
	h := requestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "trace-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "trace-123", rr.Header().Get(requestIDHeader))
}

func TestRequestLogger_OmitsCredentials(t *testing.T) {
	var buf bytes.Buffer
	l := logging.NewJSONLogger(&buf, "debug")

	h := requestID(requestLogger(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/authenticate", bytes.NewBufferString(`{"password":"s3cr3t"}`))
	req.Header.Set(common.AuthorizationHeaderName, "Bearer abc.def.ghi")
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"level":"WARN"`)
	assert.NotContains(t, out, "s3cr3t")
	assert.NotContains(t, out, "abc.def.ghi")
}

func TestAccessTokenMiddleware_SetsAccountID(t *testing.T) {
	s := newTestServer(nil)

	var id int64
	var ok bool
	h := s.accessTokenMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok = AccountIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+validToken)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, ok)
	assert.Equal(t, int64(1), id)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{common.ErrorNotFound, http.StatusNotFound},
		{common.NewPersistenceError("update account", common.ErrNoRowsAffected), http.StatusNotFound},
		{common.NewPersistenceError("insert account", common.ErrorConflict), http.StatusConflict},
		{common.ErrorUnauthorized, http.StatusUnauthorized},
		{common.ErrorAccountDisabled, http.StatusForbidden},
		{common.ErrTokenExpired, http.StatusUnauthorized},
		{common.ErrInvalidToken, http.StatusUnauthorized},
		{common.ErrorInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			got, _ := errorStatus(tt.err)
			assert.Equal(t, tt.want, got)
		})
	}
}
