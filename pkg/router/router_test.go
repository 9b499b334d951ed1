package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/planty/pkg/router"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(r.Method + " " + chi.URLParam(r, "id")))
}

func tagger(tag string) router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Tag", tag)
			next.ServeHTTP(w, r)
		})
	}
}

func TestGroupsJoinPrefixesAndMiddleware(t *testing.T) {
	r := router.New()
	api := r.Group("/api/v0", tagger("api"))
	plants := api.Group("plants/", tagger("plants"))
	plants.Put("/{id}", "plants.update", ok)

	req := httptest.NewRequest(http.MethodPut, "/api/v0/plants/p9", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "PUT p9", rec.Body.String())
	assert.Equal(t, []string{"api", "plants"}, rec.Header().Values("X-Tag"))
}

func TestAllVerbsMount(t *testing.T) {
	r := router.New()
	g := r.Group("/orders")
	g.Get("/{id}", "orders.show", ok)
	g.Post("/", "orders.store", ok)
	g.Patch("/{id}", "orders.patch", ok)
	g.Delete("/{id}", "orders.destroy", ok)

	for _, m := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
		rec := httptest.NewRecorder()
		r.Handler().ServeHTTP(rec, httptest.NewRequest(m, "/orders/o1", nil))
		assert.Equal(t, m+" o1", rec.Body.String())
	}

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNamedRoutesAndURL(t *testing.T) {
	r := router.New()
	r.Group("/api/v0").Get("/plants/{id}", "plants.show", ok)

	url, err := r.URL("plants.show", map[string]string{"id": "42"})
	require.NoError(t, err)
	assert.Equal(t, "/api/v0/plants/42", url)

	_, err = r.URL("plants.show", nil)
	assert.Error(t, err)

	_, err = r.URL("missing", nil)
	assert.Error(t, err)
}

func TestRoutesListing(t *testing.T) {
	r := router.New()
	g := r.Group("/api")
	g.Post("/b", "b.store", ok)
	g.Get("/a", "a.index", ok)
	r.HandleFunc("/metrics", ok)

	routes := r.Routes()
	require.Len(t, routes, 3)
	assert.Equal(t, router.RouteInfo{Method: http.MethodGet, Path: "/api/a", Name: "a.index"}, routes[0])
	assert.Equal(t, "/api/b", routes[1].Path)
	assert.Equal(t, "*", routes[2].Method)
}
