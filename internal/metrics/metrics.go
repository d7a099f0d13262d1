package metrics

import (
	"context"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type Metrics struct {
	HTTPRequests    metric.Int64Counter
	HTTPDuration    metric.Float64Histogram
	LoginAttempts   metric.Int64Counter
	PostsCreated    metric.Int64Counter
	CommentsCreated metric.Int64Counter
	Moderations     metric.Int64Counter
}

// Setup creates the meters on a fresh Prometheus registry and returns the
// handler that exposes it.
func Setup(serviceName string) (*Metrics, http.Handler, error) {
	registry := promclient.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter(serviceName)

	m := &Metrics{}

	m.HTTPRequests, err = meter.Int64Counter(
		"blog_http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.HTTPDuration, err = meter.Float64Histogram(
		"blog_http_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.LoginAttempts, err = meter.Int64Counter(
		"blog_login_attempts_total",
		metric.WithDescription("Login attempts by outcome"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.PostsCreated, err = meter.Int64Counter(
		"blog_posts_created_total",
		metric.WithDescription("Total number of posts created"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.CommentsCreated, err = meter.Int64Counter(
		"blog_comments_created_total",
		metric.WithDescription("Total number of comments submitted"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.Moderations, err = meter.Int64Counter(
		"blog_comment_moderations_total",
		metric.WithDescription("Comment approvals and unapprovals"),
	)
	if err != nil {
		return nil, nil, err
	}

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m, handler, nil
}

func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	labels := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status", status),
	)

	m.HTTPRequests.Add(ctx, 1, labels)
	m.HTTPDuration.Record(ctx, duration.Seconds(), labels)
}

// RecordLogin counts a login attempt; outcome is "success", "failure" or "rate_limited".
func (m *Metrics) RecordLogin(ctx context.Context, outcome string) {
	m.LoginAttempts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) RecordPostCreated(ctx context.Context, published bool) {
	m.PostsCreated.Add(ctx, 1, metric.WithAttributes(attribute.Bool("published", published)))
}

func (m *Metrics) RecordCommentCreated(ctx context.Context) {
	m.CommentsCreated.Add(ctx, 1)
}

func (m *Metrics) RecordModeration(ctx context.Context, approved bool) {
	m.Moderations.Add(ctx, 1, metric.WithAttributes(attribute.Bool("approved", approved)))
}
