package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/vidtab/internal/accounts/service"
	"github.com/aussiebroadwan/vidtab/internal/accounts/store"
	"github.com/aussiebroadwan/vidtab/pkg/httpx"
	"github.com/aussiebroadwan/vidtab/pkg/slogx"
	"github.com/rs/cors"

	_ "github.com/aussiebroadwan/vidtab/api/accounts" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterConfig carries the HTTP-level settings.
type RouterConfig struct {
	BuildVersion   string
	CORSOrigins    []string
	MaxUploadBytes int64

	// Media serves uploaded files under /media/ when set.
	Media http.Handler
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	cfg       RouterConfig
	startTime time.Time
	logger    *slog.Logger

	store          store.Store
	TokenService   *service.TokenService
	AccountService *service.AccountService
}

func NewRouter(cfg RouterConfig, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:       http.NewServeMux(),
		cfg:       cfg,
		startTime: time.Now(),
		store:     st,
		logger:    logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}
	if len(cfg.CORSOrigins) > 0 {
		r.middlewares = append(r.middlewares, cors.New(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		}).Handler)
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSessions()
	r.registerProfile()
	r.registerMedia()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			VidTab Account Service API
//	@version		0.1.0
//	@description	User accounts for the video platform: registration, login and a rotating JWT access/refresh session.
//	@description
//	@description				Access and refresh tokens are HS256 JWTs signed with separate secrets.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/vidtab
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8000
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) session() httpx.Middleware {
	return SessionMiddleware(r.TokenService, r.AccountService)
}

func (r *Router) registerSessions() {
	h := &SessionsHandler{
		AccountService: r.AccountService,
		MaxUploadBytes: r.cfg.MaxUploadBytes,
	}

	// Credential endpoints - strict rate limit by IP
	r.Mux.Handle("POST /api/v1/users/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/v1/users/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/v1/users/refresh-token",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /api/v1/users/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			r.session(),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerProfile() {
	h := &ProfileHandler{
		AccountService: r.AccountService,
		MaxUploadBytes: r.cfg.MaxUploadBytes,
	}

	// Mutations - moderate rate limit by account
	mutations := map[string]http.HandlerFunc{
		"POST /api/v1/users/change-password": h.HandleChangePassword,
		"PATCH /api/v1/users/update-account":  h.HandleUpdateAccount,
		"PATCH /api/v1/users/avatar":          h.HandleAvatar,
		"PATCH /api/v1/users/cover-image":     h.HandleCoverImage,
	}
	for pattern, handler := range mutations {
		r.Mux.Handle(pattern, httpx.Chain(handler,
			r.session(),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		))
	}

	// Reads - lenient rate limit by account
	reads := map[string]http.HandlerFunc{
		"GET /api/v1/users/current-user": h.HandleCurrentUser,
		"GET /api/v1/users/history":      h.HandleWatchHistory,
		"GET /api/v1/users/c/{username}": h.HandleChannel,
	}
	for pattern, handler := range reads {
		r.Mux.Handle(pattern, httpx.Chain(handler,
			r.session(),
			httpx.RateLimitByAccount(httpx.LenientLimit),
		))
	}
}

func (r *Router) registerMedia() {
	if r.cfg.Media == nil {
		return
	}
	r.Mux.Handle("GET /media/",
		httpx.Chain(http.StripPrefix("/media", r.cfg.Media),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.cfg.BuildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.cfg.BuildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
