package remoteauth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics for the package.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "remoteauth").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to register on.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures metrics creation.
type MetricsOption func(*MetricsConfig)

// WithMetricsNamespace sets the metrics namespace.
func WithMetricsNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithMetricsConstLabels sets constant labels for all metrics.
func WithMetricsConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithMetricsRegistry sets the Prometheus registry.
func WithMetricsRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// Metrics holds the Prometheus instruments for the authentication layer.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	operationsTotal  *prometheus.CounterVec
	tokenRequests    *prometheus.CounterVec
	userRefreshTotal prometheus.Counter
}

// NewMetrics creates and registers the authentication metrics.
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := MetricsConfig{
		Namespace: "remoteauth",
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.Registry)
	return &Metrics{
		operationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "operations_total",
			Help:        "Sign-in/sign-out operations by operation and result status.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"operation", "status"}),
		tokenRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "token_requests_total",
			Help:        "Access token requests by result status.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"status"}),
		userRefreshTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "user_refresh_total",
			Help:        "Authenticated user snapshot refreshes.",
			ConstLabels: cfg.ConstLabels,
		}),
	}
}

func (m *Metrics) observeOperation(operation string, status Status) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(operation, string(status)).Inc()
}

func (m *Metrics) observeTokenRequest(status TokenStatus) {
	if m == nil {
		return
	}
	m.tokenRequests.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) observeUserRefresh() {
	if m == nil {
		return
	}
	m.userRefreshTotal.Inc()
}
