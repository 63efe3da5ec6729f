// Package metrics exposes Prometheus counters for the authentication flows.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the set of events the HTTP layer reports.
type Recorder interface {
	RecordRegistration(outcome string)
	RecordLogin(outcome string)
	RecordTokenRejection(reason string)
	RecordHTTPStatus(statusCode int)
}

// Collector implements Recorder with Prometheus counters.
type Collector struct {
	registrations   *prometheus.CounterVec
	logins          *prometheus.CounterVec
	tokenRejections *prometheus.CounterVec
	httpStatus      *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "credgate_registrations_total",
			Help: "Registration attempts by outcome.",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "credgate_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		tokenRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "credgate_token_rejections_total",
			Help: "Requests refused by the authentication gate, by reason.",
		}, []string{"reason"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "credgate_http_responses_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
	}

	reg.MustRegister(c.registrations, c.logins, c.tokenRejections, c.httpStatus)
	return c
}

func (c *Collector) RecordRegistration(outcome string) {
	c.registrations.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordLogin(outcome string) {
	c.logins.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordTokenRejection(reason string) {
	c.tokenRejections.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler returns the Prometheus scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards every event.
type Nop struct{}

func (Nop) RecordRegistration(string)   {}
func (Nop) RecordLogin(string)          {}
func (Nop) RecordTokenRejection(string) {}
func (Nop) RecordHTTPStatus(int)        {}
