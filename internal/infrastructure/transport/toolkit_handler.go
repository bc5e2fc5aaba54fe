package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"devkit/app/usecase"
	"devkit/internal/domain/entity"
	"devkit/internal/infrastructure/metrics"
	"devkit/internal/infrastructure/ratelimit"
)

const maxBodyBytes = 1 << 20

type ToolkitHandler struct {
	tools    usecase.ToolUsecase
	limiter  ratelimit.Limiter
	policy   ratelimit.Policy
	logger   *slog.Logger
	upgrader websocket.Upgrader
	// pongWait bounds how long a websocket peer may stay silent.
	pongWait time.Duration
}

// NewToolkitHandler builds the API handler. limiter may be nil to disable rate limiting.
func NewToolkitHandler(
	tools usecase.ToolUsecase,
	limiter ratelimit.Limiter,
	policy ratelimit.Policy,
	logger *slog.Logger,
) *ToolkitHandler {
	return &ToolkitHandler{
		tools:    tools,
		limiter:  limiter,
		policy:   policy,
		logger:   logger,
		pongWait: defaultPongWait,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Middleware для метрик
func (h *ToolkitHandler) withMetrics(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}

		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rw, r)

		metrics.ObserveHTTPRequest(r.Method, path, strconv.Itoa(rw.status), time.Since(start), rw.status >= 400)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withRateLimit applies the policy to tools that call the completion service.
func (h *ToolkitHandler) withRateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.limiter == nil || !h.policy.Enabled() || mux.Vars(r)["tool"] == string(entity.ToolBase64) {
			next(w, r)
			return
		}

		decision := h.limiter.Allow(ratelimit.ClientKey(r), h.policy.Limit, h.policy.Window)
		remaining := h.policy.Limit - decision.Count
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(h.policy.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !decision.WindowEnd.IsZero() {
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.WindowEnd.Unix(), 10))
		}
		if !decision.Allowed {
			metrics.IncRateLimitHit(mux.Vars(r)["tool"])
			writeError(w, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
			return
		}
		next(w, r)
	}
}

func (h *ToolkitHandler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/tools", h.withMetrics(h.handleCatalog)).Methods(http.MethodGet)
	api.HandleFunc("/tools/k8s/estimate", h.withMetrics(h.handleEstimate)).Methods(http.MethodGet)
	api.HandleFunc("/tools/{tool}", h.withMetrics(h.withRateLimit(h.handleInvoke))).Methods(http.MethodPost)
	api.HandleFunc("/ws", h.handleWorkspace).Methods(http.MethodGet)
	api.HandleFunc("/health", h.withMetrics(h.handleHealth)).Methods(http.MethodGet)

	// Prometheus
	r.Handle("/metrics", promhttp.Handler())
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// GET /api/v1/tools
func (h *ToolkitHandler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tools.Catalog())
}

// POST /api/v1/tools/{tool}
func (h *ToolkitHandler) handleInvoke(w http.ResponseWriter, r *http.Request) {
	tool, err := entity.ParseToolType(mux.Vars(r)["tool"])
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("bad request body: %w", err))
		return
	}

	res, err := h.tools.Invoke(r.Context(), tool, body)
	if err != nil {
		if errors.Is(err, usecase.ErrBadPayload) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		h.logger.Error("invoke tool failed", "tool", tool, "err", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	status := http.StatusOK
	if res.Failed() {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

// GET /api/v1/tools/k8s/estimate?replicas=N
func (h *ToolkitHandler) handleEstimate(w http.ResponseWriter, r *http.Request) {
	replicas := entity.DefaultK8sManifestRequest().Replicas
	if raw := r.URL.Query().Get("replicas"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid replicas %q", raw))
			return
		}
		replicas = n
	}
	writeJSON(w, http.StatusOK, h.tools.EstimateResources(replicas))
}

// GET /api/v1/ws
func (h *ToolkitHandler) handleWorkspace(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	session := newWorkspaceSession(conn, h.tools, h.logger, h.pongWait)
	session.run(r.Context())
}

// GET /api/v1/health
func (h *ToolkitHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"ok": true,
		"ts": time.Now().UTC(),
	}
	writeJSON(w, http.StatusOK, status)
}
