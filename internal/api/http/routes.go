package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"walletscope/internal/api/http/handlers"
	"walletscope/internal/api/http/mw"
	"walletscope/internal/metrics"
)

func BuildRouter(
	h *handlers.Handler,
	logMW *mw.LoggingMiddleware,
	gzipMW *mw.GzipMiddleware,
	rateLimitMW *mw.RateLimitMiddleware,
	jwtMW *mw.JWTMiddleware,
	corsMW *mw.CORSMiddleware,
) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	if logMW != nil {
		r.Use(logMW.Handler)
	}
	if gzipMW != nil {
		r.Use(gzipMW.Handler)
	}
	if corsMW != nil {
		r.Use(corsMW.Handler())
	}

	// tech endpoints, no auth
	r.Get("/healthz", h.Healthz)
	r.Get("/readiness", h.Readiness)
	r.Mount("/metrics", metrics.Handler())

	// wallet API behind rate limit and jwt
	r.Route("/api", func(apiR chi.Router) {
		if rateLimitMW != nil {
			apiR.Use(rateLimitMW.Handler)
		}
		if jwtMW != nil {
			apiR.Use(jwtMW.Handler)
		}

		apiR.Post("/scan", h.Scan)
		apiR.Route("/wallets/{address}", func(wr chi.Router) {
			wr.Get("/", h.Wallet)
			wr.Get("/transfers", h.Transfers)
			wr.Get("/risk", h.Risk)
			wr.Get("/alerts", h.Alerts)
			wr.Delete("/", h.Forget)
		})
	})

	return r
}
