package httpadapter

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/drivesight/drivesight/internal/core/ports"
)

// Telemetry receives HTTP-layer observations that the pipeline observer
// cannot see: cache lookups and reported confidence.
type Telemetry interface {
	RecordCacheLookup(service string, hit bool)
	ObserveConfidence(confidence int)
}

// Deps carries everything the router serves. Signs, Analytics, Cache,
// Telemetry, IdentifyLimiter and Metrics are optional; the corresponding
// endpoints degrade to placeholder behavior when absent.
type Deps struct {
	Identifier      ports.SignIdentifier
	Signs           ports.SignRepository
	Analytics       ports.AnalyticsStore
	Cache           ports.ResultCache
	CacheTTL        time.Duration
	Telemetry       Telemetry
	IdentifyLimiter *rate.Limiter
	Metrics         http.Handler
}

type Router struct {
	identifier ports.SignIdentifier
	signs      ports.SignRepository
	analytics  ports.AnalyticsStore
	cache      ports.ResultCache
	cacheTTL   time.Duration
	telemetry  Telemetry
	limiter    *rate.Limiter
	metrics    http.Handler
}

func NewRouter(deps Deps) *Router {
	return &Router{
		identifier: deps.Identifier,
		signs:      deps.Signs,
		analytics:  deps.Analytics,
		cache:      deps.Cache,
		cacheTTL:   deps.CacheTTL,
		telemetry:  deps.Telemetry,
		limiter:    deps.IdentifyLimiter,
		metrics:    deps.Metrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", rt.health)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics)
	}

	mux.Handle("POST /api/sign/identify", rateLimitMiddleware(rt.limiter, http.HandlerFunc(rt.identifySign)))
	mux.HandleFunc("GET /api/sign", rt.getAllSigns)
	mux.HandleFunc("POST /api/sign", rt.createSign)
	mux.HandleFunc("GET /api/sign/{id}", rt.getSignByID)
	mux.HandleFunc("GET /api/sign/category/{category}", rt.getSignsByCategory)

	mux.HandleFunc("POST /api/auth/signup", rt.signup)
	mux.HandleFunc("POST /api/auth/login", rt.login)
	mux.HandleFunc("POST /api/auth/refresh", rt.refreshToken)
	mux.HandleFunc("POST /api/auth/logout", rt.logout)

	mux.HandleFunc("GET /api/questions/{state}", rt.getQuestionsByState)
	mux.HandleFunc("GET /api/questions/{state}/categories", rt.getQuestionCategories)
	mux.HandleFunc("GET /api/questions/{state}/category/{category}", rt.getQuestionsByCategory)
	mux.HandleFunc("POST /api/questions", rt.createQuestion)

	mux.HandleFunc("POST /api/analytics/performance", rt.submitPerformance)
	mux.HandleFunc("GET /api/analytics/stats", rt.getStats)
	mux.HandleFunc("GET /api/analytics/progress", rt.getProgress)

	return requestIDMiddleware(accessLogMiddleware(mux))
}

func (rt *Router) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
