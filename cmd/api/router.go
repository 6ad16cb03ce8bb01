package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/FACorreiaa/mtr03-counter/pkg/middleware"
)

// NewRouter creates and configures the HTTP router
func NewRouter(d *Dependencies) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthCheckHandler).Methods(http.MethodGet)

	d.ReportHandler.RegisterRoutes(r)

	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Logging(d.Logger, d.Metrics))
	r.Use(middleware.RateLimit(d.Config.Server.RateLimitPerSecond, d.Config.Server.RateLimitBurst))

	return middleware.CORS(d.Config.Server.CORSOrigins, r)
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "mtr03-counter",
	})
}
