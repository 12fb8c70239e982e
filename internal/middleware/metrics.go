package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the per-app HTTP collector and the registry it writes to.
type Metrics struct {
	prom     *fiberprometheus.FiberPrometheus
	registry *prometheus.Registry
}

// InitMetrics creates HTTP request metrics for serviceName on a fresh registry,
// so several apps in one process never collide on collector registration.
func InitMetrics(serviceName string) *Metrics {
	registry := prometheus.NewRegistry()
	return &Metrics{
		prom:     fiberprometheus.NewWithRegistry(registry, serviceName, "pulse", "http", nil),
		registry: registry,
	}
}

// MetricsMiddleware records request count, latency and in-flight requests.
func MetricsMiddleware(m *Metrics) fiber.Handler {
	return m.prom.Middleware
}

// MetricsHandler exposes the HTTP collectors together with the process-wide
// default registry (domain counters, Go runtime).
func MetricsHandler(m *Metrics) fiber.Handler {
	gatherers := prometheus.Gatherers{prometheus.DefaultGatherer, m.registry}
	return adaptor.HTTPHandler(promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{}))
}
