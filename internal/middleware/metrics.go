package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis command failures by command name.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "picstream_redis_errors_total",
	Help: "Total number of Redis command errors",
}, []string{"command"})

// CascadeStepFailures counts best-effort account-deletion steps that failed.
var CascadeStepFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "picstream_cascade_step_failures_total",
	Help: "Total number of account-deletion cascade steps that failed",
}, []string{"step"})

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the Fiber handler collecting per-request metrics.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
