package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, route, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, route, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// LoginAttempts counts logins by result (success, failure).
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_login_attempts_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)

	// ArticleViews counts article reads served through the API.
	ArticleViews = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_article_views_total",
			Help: "Total number of article views",
		},
	)

	// ScheduledPublished counts drafts published by the scheduler.
	ScheduledPublished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_scheduled_articles_published_total",
			Help: "Total number of scheduled drafts published",
		},
	)
)

var initOnce sync.Once

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, LoginAttempts, ArticleViews, ScheduledPublished)
	})
}

// RecordRequest records duration and count for an HTTP request. path should be a route pattern.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// RecordLogin increments the login counter for success or failure.
func RecordLogin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	LoginAttempts.WithLabelValues(result).Inc()
}

// IncArticleViews increments the article view counter.
func IncArticleViews() {
	ArticleViews.Inc()
}

// AddScheduledPublished adds n to the scheduled publish counter.
func AddScheduledPublished(n int) {
	if n > 0 {
		ScheduledPublished.Add(float64(n))
	}
}
