// Package metrics collects Prometheus metrics for the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the domain-event side of the collector, used by handlers.
type Recorder interface {
	UserRegistered()
	TokenIssued(reused bool)
	RecipeCreated()
	ImageUploaded()
}

// Collector is the Prometheus implementation of Recorder plus HTTP metrics.
type Collector struct {
	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	usersCreated   prometheus.Counter
	tokensIssued   *prometheus.CounterVec
	recipesCreated prometheus.Counter
	imagesUploaded prometheus.Counter
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipe_api_http_requests_total",
			Help: "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status_code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recipe_api_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		usersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipe_api_users_registered_total",
			Help: "Users created through the registration endpoint.",
		}),
		tokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipe_api_tokens_issued_total",
			Help: "Successful token requests, split by whether an existing token was returned.",
		}, []string{"reused"}),
		recipesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipe_api_recipes_created_total",
			Help: "Recipes created.",
		}),
		imagesUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipe_api_images_uploaded_total",
			Help: "Recipe images stored.",
		}),
	}

	reg.MustRegister(
		c.requests,
		c.duration,
		c.usersCreated,
		c.tokensIssued,
		c.recipesCreated,
		c.imagesUploaded,
	)

	return c
}

func (c *Collector) UserRegistered() { c.usersCreated.Inc() }

func (c *Collector) TokenIssued(reused bool) {
	c.tokensIssued.WithLabelValues(strconv.FormatBool(reused)).Inc()
}

func (c *Collector) RecipeCreated() { c.recipesCreated.Inc() }

func (c *Collector) ImageUploaded() { c.imagesUploaded.Inc() }

// Middleware records request counts and latency labelled by chi route pattern,
// so /recipe/recipe/1 and /recipe/recipe/2 share a series.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		c.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		c.duration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// Handler returns the Prometheus scrape handler.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Noop discards every event.
type Noop struct{}

func (Noop) UserRegistered()  {}
func (Noop) TokenIssued(bool) {}
func (Noop) RecipeCreated()   {}
func (Noop) ImageUploaded()   {}
