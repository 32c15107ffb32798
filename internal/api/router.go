package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mino-dev/mino-web/internal/api/handlers"
	"github.com/mino-dev/mino-web/internal/api/middleware"
	"github.com/mino-dev/mino-web/internal/authprovider"
	"github.com/mino-dev/mino-web/internal/config"
	"github.com/mino-dev/mino-web/internal/metrics"
	"github.com/mino-dev/mino-web/internal/rpc"
	"github.com/mino-dev/mino-web/internal/service"
	"github.com/mino-dev/mino-web/internal/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

func NewRouter(
	services *service.Services,
	provider *authprovider.Client,
	hub *websocket.Hub,
	db *gorm.DB,
	cfg *config.Config,
	collector *metrics.Collector,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler(gatherer))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(provider, services.User, cfg)
	pageHandler := handlers.NewPageHandler()
	wsHandler := handlers.NewWebSocketHandler(hub, provider)

	secureCookies := !cfg.IsDevelopment()

	// Auth endpoints. The callback and error page are public by the route
	// classifier; login/logout manage their own session handling.
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Get("/login", authHandler.Login)
		r.Post("/dev-login", authHandler.DevLogin)
		r.Get("/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		// The error page is public and terminal; running it through the
		// session middleware could redirect right back to it.
		r.Get("/error", pageHandler.AuthError)
	})

	// RPC dispatch. Procedures authenticate through the context builder,
	// not the page middleware.
	rpcHandler := rpc.NewHandler(rpc.NewAppRouter(services), rpc.NewContextBuilder(provider, db), collector)
	r.Method(http.MethodGet, "/api/trpc/{procedure}", rpcHandler)
	r.Method(http.MethodPost, "/api/trpc/{procedure}", rpcHandler)

	// WebSocket endpoint (token-authenticated)
	r.Get("/ws", wsHandler.Handle)

	// Page routes, guarded by the session middleware.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(provider, collector, secureCookies))
		r.Get("/", pageHandler.Home)
		r.Get(middleware.RouteLogin, pageHandler.Login)
		r.Get(middleware.RouteProjects, pageHandler.Projects)
		// Catch-all keeps unknown paths behind the redirect policy too:
		// they are protected routes that happen not to exist.
		r.Get("/*", pageHandler.NotFound)
	})

	return r
}
