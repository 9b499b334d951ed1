// Package kernel assembles the HTTP handler: the global middleware stack,
// the API routes and the operational endpoints around them.
//
//	k := kernel.NewHTTPKernel(kernel.Deps{Issuer: issuer, Controllers: ctrls, Limiter: limiter})
//	http.ListenAndServe(":8080", k.Handler())
package kernel

import (
	"net/http"
	"strings"
	"time"

	"github.com/shashiranjanraj/planty/app/graphql"
	"github.com/shashiranjanraj/planty/app/routes"
	"github.com/shashiranjanraj/planty/pkg/auth"
	gql "github.com/shashiranjanraj/planty/pkg/graphql"
	"github.com/shashiranjanraj/planty/pkg/logger"
	"github.com/shashiranjanraj/planty/pkg/metrics"
	"github.com/shashiranjanraj/planty/pkg/middleware"
	"github.com/shashiranjanraj/planty/pkg/ratelimit"
	"github.com/shashiranjanraj/planty/pkg/reqid"
	"github.com/shashiranjanraj/planty/pkg/response"
	"github.com/shashiranjanraj/planty/pkg/router"
	"github.com/shashiranjanraj/planty/pkg/ws"
)

// Deps is everything the kernel mounts. Catalog, Hub and StorageRoot are
// optional; their endpoints are skipped when unset.
type Deps struct {
	Issuer      *auth.Issuer
	Controllers routes.Controllers
	Limiter     ratelimit.Limiter
	RateLimit   int
	CORSOrigins []string

	Catalog     graphql.Catalog
	Hub         *ws.Hub
	StorageRoot string
}

type HTTPKernel struct {
	router *router.Router
}

func NewHTTPKernel(d Deps) (*HTTPKernel, error) {
	r := router.New()

	cors := middleware.DefaultCORSOptions()
	if len(d.CORSOrigins) > 0 {
		cors.AllowedOrigins = d.CORSOrigins
	}
	limit := d.RateLimit
	if limit <= 0 {
		limit = 120
	}
	limiter := d.Limiter
	if limiter == nil {
		limiter = ratelimit.NewMemory()
	}

	// Outermost first. The request id must be set before Logger reads it.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(cors))
	r.Use(middleware.RateLimit(limiter, limit, time.Minute))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Prometheus /metrics endpoint.
	r.HandleFunc("/metrics", metrics.Handler())
	r.Get("/health", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"status": "ok"})
	})

	routes.RegisterAPI(r, d.Issuer, d.Controllers)

	if d.Catalog != nil {
		schema, err := graphql.NewSchema(d.Catalog)
		if err != nil {
			return nil, err
		}
		r.HandleFunc(routes.Prefix+"/graphql", gql.Handler(schema))
	}
	if d.Hub != nil {
		r.Get("/ws/orders", "ws.orders", d.Hub.ServeHTTP)
	}
	if d.StorageRoot != "" {
		fs := http.StripPrefix("/storage/", http.FileServer(http.Dir(d.StorageRoot)))
		r.Get("/storage/*", "storage.files", func(w http.ResponseWriter, req *http.Request) {
			if strings.HasSuffix(req.URL.Path, "/") {
				response.NotFound(w)
				return
			}
			fs.ServeHTTP(w, req)
		})
	}

	logger.Debug("http kernel ready", "routes", len(r.Routes()))
	return &HTTPKernel{router: r}, nil
}

// Handler returns the fully wired http.Handler.
func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

// Router exposes the route table, for route:list.
func (k *HTTPKernel) Router() *router.Router { return k.router }
