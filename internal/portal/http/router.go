package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/halcyonstudio/portal/internal/portal/service"
	"github.com/halcyonstudio/portal/internal/portal/store"
	"github.com/halcyonstudio/portal/pkg/httpx"
	"github.com/halcyonstudio/portal/pkg/jwtx"
	"github.com/halcyonstudio/portal/pkg/slogx"

	_ "github.com/halcyonstudio/portal/api/portal" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store           store.Store
	AccessService   *service.AccessService
	UserService     *service.UserService
	ProposalService *service.ProposalService
	InvoiceService  *service.InvoiceService
	AssetService    *service.AssetService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAccess()
	r.registerPublic()
	r.registerProposals()
	r.registerInvoices()
	r.registerAssets()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Halcyon Studio Portal API
//	@version		0.1.0
//	@description	Client portal backend for a small studio: staff manage proposals, invoices
//	@description	and onboarding assets, and clients view what they were sent through short
//	@description	shareable access codes instead of accounts.
//
//	@contact.name				Halcyon Studio
//	@contact.url				https://github.com/halcyonstudio/portal
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /auth/login - strict rate limit by IP (authentication attempts)
	loginHandler := &LoginHandler{UserService: r.UserService}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerAccess() {
	// POST /access/validate - strict rate limit by IP (codes are guessable
	// in principle, so brute force is the main concern here)
	validateHandler := &AccessValidateHandler{AccessService: r.AccessService}
	r.Mux.Handle("POST /v1/access/validate",
		httpx.Chain(validateHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerPublic() {
	h := &PublicViewHandler{
		AccessService:   r.AccessService,
		ProposalService: r.ProposalService,
		InvoiceService:  r.InvoiceService,
	}

	// Public viewer pages - high limit, still per IP
	r.Mux.Handle("GET /v1/public/proposals/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleProposal),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /v1/public/invoices/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleInvoice),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerProposals() {
	h := &ProposalsHandler{ProposalService: r.ProposalService}

	securedWrite := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope("portal:write"),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}
	securedRead := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope("portal:read"),
			httpx.RateLimitByUser(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("POST /v1/proposals", securedWrite(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /v1/proposals", securedRead(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("GET /v1/proposals/{id}", securedRead(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("PATCH /v1/proposals/{id}/status", securedWrite(http.HandlerFunc(h.HandleUpdateStatus)))
	r.Mux.Handle("DELETE /v1/proposals/{id}", securedWrite(http.HandlerFunc(h.HandleDelete)))
}

func (r *Router) registerInvoices() {
	h := &InvoicesHandler{InvoiceService: r.InvoiceService}

	securedWrite := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope("portal:write"),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}
	securedRead := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope("portal:read"),
			httpx.RateLimitByUser(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("POST /v1/invoices", securedWrite(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /v1/invoices", securedRead(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("GET /v1/invoices/{id}", securedRead(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("GET /v1/invoices/{id}/pdf", securedRead(http.HandlerFunc(h.HandlePDF)))
	r.Mux.Handle("PATCH /v1/invoices/{id}/status", securedWrite(http.HandlerFunc(h.HandleUpdateStatus)))
	r.Mux.Handle("DELETE /v1/invoices/{id}", securedWrite(http.HandlerFunc(h.HandleDelete)))
}

func (r *Router) registerAssets() {
	h := &AssetsHandler{AssetService: r.AssetService}

	securedWrite := httpx.Chain(http.HandlerFunc(h.HandleCreate),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope("portal:write"),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
	securedList := httpx.Chain(http.HandlerFunc(h.HandleList),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope("portal:read"),
		httpx.RateLimitByUser(httpx.LenientLimit),
	)
	securedDelete := httpx.Chain(http.HandlerFunc(h.HandleDelete),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope("portal:write"),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)

	r.Mux.Handle("POST /v1/assets", securedWrite)
	r.Mux.Handle("GET /v1/assets", securedList)
	r.Mux.Handle("DELETE /v1/assets/{id}", securedDelete)
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
