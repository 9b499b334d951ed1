package reqid_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/planty/pkg/reqid"
)

func run(header string) (seen string, rec *httptest.ResponseRecorder) {
	h := reqid.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = reqid.FromCtx(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(reqid.Header, header)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return seen, rec
}

func TestGeneratesID(t *testing.T) {
	seen, rec := run("")
	assert.Len(t, seen, 32)
	assert.Equal(t, seen, rec.Header().Get(reqid.Header))
}

func TestReusesInboundID(t *testing.T) {
	seen, _ := run("gateway-123")
	assert.Equal(t, "gateway-123", seen)
}

func TestReplacesUnsafeInboundID(t *testing.T) {
	seen, _ := run("bad id\twith spaces")
	assert.Len(t, seen, 32)

	seen, _ = run(strings.Repeat("x", 500))
	assert.Len(t, seen, 32)
}
