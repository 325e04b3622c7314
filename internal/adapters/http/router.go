// Package httpadapter exposes login and permission-aware search over
// HTTP. Every search request is authenticated before any retrieval
// backend is touched.
package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/ekipteam/ekip/internal/core/domain"
	"github.com/ekipteam/ekip/internal/core/ports"
	"github.com/ekipteam/ekip/internal/observability/metrics"
)

type Router struct {
	auth    ports.Authenticator
	search  ports.SearchService
	metrics *metrics.Set
	limiter *rate.Limiter
}

type Config struct {
	// RateLimitRPS caps request throughput across all callers. Zero
	// disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(auth ports.Authenticator, search ports.SearchService, m *metrics.Set, cfg Config) *Router {
	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = int(cfg.RateLimitRPS)
			if burst < 1 {
				burst = 1
			}
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}
	return &Router{auth: auth, search: search, metrics: m, limiter: limiter}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", rt.health)
	mux.HandleFunc("/api/auth/login", rt.login)
	mux.Handle("/api/search", rt.requireAuth(http.HandlerFunc(rt.searchHandler)))
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	handler := rt.rateLimitMiddleware(mux)
	handler = rt.accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email is required"})
		return
	}

	token, user, err := rt.auth.Login(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"user":         user,
	})
}

func (rt *Router) searchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, domain.WrapError(domain.ErrUnauthorized, "search", errMissingIdentity))
		return
	}

	var req struct {
		Query            string `json:"query"`
		DepartmentFilter string `json:"department_filter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	result, err := rt.search.Search(r.Context(), user, req.Query, req.DepartmentFilter)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.ObserveSearch(result.ChunksFound, result.Fallback)
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
