package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/ssobridge/internal/sso/service"
	"github.com/aussiebroadwan/ssobridge/internal/sso/session"
	"github.com/aussiebroadwan/ssobridge/internal/sso/store"
	"github.com/aussiebroadwan/ssobridge/pkg/httpx"
	"github.com/aussiebroadwan/ssobridge/pkg/slogx"

	_ "github.com/aussiebroadwan/ssobridge/api/sso" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store      store.Store
	adminToken string
	cookieOpts session.CookieOptions
	stateTTL   time.Duration

	FlowService         *service.FlowService
	ProviderService     *service.ProviderService
	GroupMappingService *service.GroupMappingService
	GroupService        *service.GroupService
	SessionService      *service.SessionService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	adminToken string,
	cookieOpts session.CookieOptions,
	stateTTL time.Duration,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		adminToken:   adminToken,
		cookieOpts:   cookieOpts,
		stateTTL:     stateTTL,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerOAuth2()
	r.registerProviders()
	r.registerGroupMappings()
	r.registerGroups()
	r.registerSessions()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			SSO Bridge API
//	@version		0.1.0
//	@description	Delegated login service: drives the OAuth2 authorization-code flow against
//	@description	configured identity providers, maps identity and group claims onto local
//	@description	accounts, and establishes local sessions.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/ssobridge
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	AdminAuth
//	@in							header
//	@name						Authorization
//	@description				Static admin token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerOAuth2() {
	h := &OAuth2Handler{
		FlowService: r.FlowService,
		CookieOpts:  r.cookieOpts,
		StateTTL:    r.stateTTL,
	}

	// GET /oauth2/init/{providerID} - moderate limit; each hit mints a state secret
	r.Mux.Handle("GET /oauth2/init/{providerID}",
		httpx.Chain(http.HandlerFunc(h.HandleInit),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// GET /oauth2/callback/{providerID} - moderate limit (one per flow)
	r.Mux.Handle("GET /oauth2/callback/{providerID}",
		httpx.Chain(http.HandlerFunc(h.HandleCallback),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerProviders() {
	h := &ProvidersHandler{
		ProviderService: r.ProviderService,
		Secrets:         r.FlowService.Secrets,
		BaseURL:         r.FlowService.BaseURL,
	}

	admin := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			adminAuth(r.adminToken),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("POST /v1/providers", admin(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /v1/providers", admin(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("GET /v1/providers/{id}", admin(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("PUT /v1/providers/{id}", admin(http.HandlerFunc(h.HandleUpdate)))
	r.Mux.Handle("DELETE /v1/providers/{id}", admin(http.HandlerFunc(h.HandleDelete)))
}

func (r *Router) registerGroupMappings() {
	h := &GroupMappingsHandler{GroupMappingService: r.GroupMappingService}

	admin := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			adminAuth(r.adminToken),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("POST /v1/providers/{id}/mappings", admin(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /v1/providers/{id}/mappings", admin(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("PUT /v1/mappings/{id}", admin(http.HandlerFunc(h.HandleUpdate)))
	r.Mux.Handle("DELETE /v1/mappings/{id}", admin(http.HandlerFunc(h.HandleDelete)))
}

func (r *Router) registerGroups() {
	h := &GroupsHandler{GroupService: r.GroupService}

	admin := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			adminAuth(r.adminToken),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("POST /v1/groups", admin(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /v1/groups", admin(http.HandlerFunc(h.HandleList)))
}

func (r *Router) registerSessions() {
	h := &SessionHandler{
		SessionService: r.SessionService,
		CookieOpts:     r.cookieOpts,
	}

	r.Mux.Handle("GET /v1/session",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/session",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
