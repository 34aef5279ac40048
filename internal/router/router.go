package router

import (
	"context"
	"net/http"
	"strings"
	"time"

	"stok/internal/handler"
	"stok/internal/middleware"

	"github.com/rs/zerolog"
)

const apiPrefix = "/api/v1"

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers groups the resource handlers served by the API.
type Handlers struct {
	Products *handler.ProductHandler
	Orders   *handler.OrderHandler
	Dealers  *handler.DealerHandler
}

// Options configures the optional parts of the router.
type Options struct {
	// UploadsDir is served read-only under UploadsPublicPath when set.
	UploadsDir        string
	UploadsPublicPath string

	// DB is pinged by the health endpoint when set.
	DB Pinger
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", health(opts.DB))

	mux.HandleFunc("GET "+apiPrefix+"/products", h.Products.List)
	mux.HandleFunc("POST "+apiPrefix+"/products", h.Products.Create)
	mux.HandleFunc("GET "+apiPrefix+"/products/{id}", h.Products.Get)
	mux.HandleFunc("PUT "+apiPrefix+"/products/{id}", h.Products.Update)
	mux.HandleFunc("DELETE "+apiPrefix+"/products/{id}", h.Products.Delete)

	mux.HandleFunc("GET "+apiPrefix+"/orders", h.Orders.List)
	mux.HandleFunc("POST "+apiPrefix+"/orders", h.Orders.Create)
	mux.HandleFunc("GET "+apiPrefix+"/orders/{id}", h.Orders.Get)
	mux.HandleFunc("PUT "+apiPrefix+"/orders/{id}", h.Orders.Update)
	mux.HandleFunc("DELETE "+apiPrefix+"/orders/{id}", h.Orders.Delete)

	mux.HandleFunc("GET "+apiPrefix+"/dealers", h.Dealers.List)
	mux.HandleFunc("POST "+apiPrefix+"/dealers", h.Dealers.Create)
	mux.HandleFunc("GET "+apiPrefix+"/dealers/{id}", h.Dealers.Get)
	mux.HandleFunc("PUT "+apiPrefix+"/dealers/{id}", h.Dealers.Update)
	mux.HandleFunc("DELETE "+apiPrefix+"/dealers/{id}", h.Dealers.Delete)
	mux.HandleFunc("POST "+apiPrefix+"/dealers/{id}/documents/{slot}", h.Dealers.UploadDocument)

	if opts.UploadsDir != "" {
		public := "/" + strings.Trim(opts.UploadsPublicPath, "/") + "/"
		mux.Handle("GET "+public, http.StripPrefix(public, http.FileServer(http.Dir(opts.UploadsDir))))
	}

	// Apply middleware in order: Recovery -> RequestID -> Logging -> CORS
	var handler http.Handler = mux
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status": "unavailable"}`))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	}
}
