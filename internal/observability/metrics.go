package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "account_security"

// Metrics holds the Prometheus collectors of the service.
type Metrics struct {
	Commands         *prometheus.CounterVec
	CommandDuration  *prometheus.HistogramVec
	DispatchFailures *prometheus.CounterVec
	EventsPublished  *prometheus.CounterVec
	Requests         *prometheus.CounterVec
	Errors           *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Commands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands handled, by command and outcome",
		}, []string{"command", "outcome"}),
		CommandDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Time spent handling a command including commit",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
		DispatchFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_dispatch_failures_total",
			Help:      "Commands whose data committed but whose events were not all published",
		}, []string{"command"}),
		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events handed to the bus, by event and outcome",
		}, []string{"event", "outcome"}),
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by route, method and status",
		}, []string{"path", "method", "status"}),
		Errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "HTTP error responses, by route, method and error code",
		}, []string{"path", "method", "code"}),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, _ time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.Errors.WithLabelValues(path, method, code).Inc()
}

// ObserveCommand records one handled command.
func (m *Metrics) ObserveCommand(name string, err error, took time.Duration) {
	if m == nil {
		return
	}
	m.Commands.WithLabelValues(name, outcome(err)).Inc()
	m.CommandDuration.WithLabelValues(name).Observe(took.Seconds())
}

// RecordDispatchFailure counts a committed command with unpublished events.
func (m *Metrics) RecordDispatchFailure(command string) {
	if m == nil {
		return
	}
	m.DispatchFailures.WithLabelValues(command).Inc()
}

// ObservePublish satisfies events.PublishObserver.
func (m *Metrics) ObservePublish(name string, err error) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(name, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
