package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/gemscreener/internal/api/handlers"
	"github.com/wonny/gemscreener/pkg/logger"
)

// Handlers groups the API handlers
type Handlers struct {
	Results *handlers.ResultsHandler
	Score   *handlers.ScoreHandler
	Config  *handlers.ConfigHandler
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Results (latest in-memory runs)
	api.HandleFunc("/results", h.Results.ListResults).Methods("GET")
	api.HandleFunc("/results/{market}", h.Results.GetResult).Methods("GET")
	api.HandleFunc("/results/{market}/picks", h.Results.GetPicks).Methods("GET")
	api.HandleFunc("/results/{market}/gems", h.Results.GetHiddenGems).Methods("GET")
	api.HandleFunc("/results/{market}/rejections", h.Results.GetRejections).Methods("GET")
	api.HandleFunc("/daily", h.Results.GetDaily).Methods("GET")

	// On-demand scoring
	if h.Score != nil {
		api.HandleFunc("/score/{market}/{ticker}", h.Score.ScoreTicker).Methods("GET")
	}

	// Strategy config
	api.HandleFunc("/config", h.Config.GetConfig).Methods("GET")
	api.HandleFunc("/config/benchmarks/{sector}", h.Config.GetBenchmark).Methods("GET")

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "gemscreener-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start).String(),
			}).Debug("HTTP request")
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
