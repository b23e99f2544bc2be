package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds all ExoMetrics application metrics.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// gRPC health surface
	GRPCRequestsTotal   CounterVec
	GRPCRequestDuration HistogramVec

	// Comparison engine
	ComparisonsTotal   CounterVec
	ComparisonDuration HistogramVec
	MetricRowsBuilt    CounterVec

	// Catalog
	CatalogPlanets        GaugeVec
	CatalogRefreshTotal   CounterVec
	CatalogRefreshSeconds HistogramVec
	ArchiveFetchDuration  HistogramVec
	ExportsTotal          CounterVec

	// Infrastructure
	DBQueryDuration        HistogramVec
	CacheHitsTotal         CounterVec
	CacheMissesTotal       CounterVec
	EventsPublishedTotal   CounterVec
	MessageProcessDuration HistogramVec

	// Health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

var (
	DefaultHTTPDurationBuckets    = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultCompareDurationBuckets = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5}
	DefaultRefreshDurationBuckets = []float64{1, 5, 10, 30, 60, 120, 300, 600}
	DefaultDBDurationBuckets      = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewAppMetrics registers every application metric on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "In-flight HTTP requests", "method")

	m.GRPCRequestsTotal = collector.RegisterCounter("grpc_requests_total", "Total gRPC calls", "service", "method", "code")
	m.GRPCRequestDuration = collector.RegisterHistogram("grpc_request_duration_seconds", "gRPC call duration", DefaultHTTPDurationBuckets, "service", "method")

	m.ComparisonsTotal = collector.RegisterCounter("comparisons_total", "Earth comparisons computed", "source", "cached")
	m.ComparisonDuration = collector.RegisterHistogram("comparison_duration_seconds", "Time spent building a comparison", DefaultCompareDurationBuckets, "source")
	m.MetricRowsBuilt = collector.RegisterCounter("metric_rows_total", "Metric rows derived", "metric")

	m.CatalogPlanets = collector.RegisterGauge("catalog_planets", "Planets currently in the catalog", "source")
	m.CatalogRefreshTotal = collector.RegisterCounter("catalog_refresh_total", "Catalog refresh attempts", "outcome")
	m.CatalogRefreshSeconds = collector.RegisterHistogram("catalog_refresh_duration_seconds", "Catalog refresh duration", DefaultRefreshDurationBuckets, "outcome")
	m.ArchiveFetchDuration = collector.RegisterHistogram("archive_fetch_duration_seconds", "Exoplanet archive fetch duration", DefaultRefreshDurationBuckets, "status")
	m.ExportsTotal = collector.RegisterCounter("exports_total", "Catalog exports produced", "target", "status")

	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "operation")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.EventsPublishedTotal = collector.RegisterCounter("events_published_total", "Catalog events published", "topic", "status")
	m.MessageProcessDuration = collector.RegisterHistogram("mq_process_duration_seconds", "Message processing duration", DefaultHTTPDurationBuckets, "topic")

	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_code")

	return m
}

// NewNoopAppMetrics returns AppMetrics whose vectors discard every sample.
func NewNoopAppMetrics() *AppMetrics {
	return NewAppMetrics(NewNoopCollector())
}

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// Helpers. Every helper accepts a nil *AppMetrics.

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// TrackInFlight adjusts the in-flight gauge for method by delta (+1 or -1).
func TrackInFlight(metrics *AppMetrics, method string, delta int) {
	if metrics == nil {
		return
	}
	g := metrics.HTTPActiveRequests.WithLabelValues(method)
	if delta > 0 {
		g.Inc()
	} else {
		g.Dec()
	}
}

func RecordGRPCRequest(metrics *AppMetrics, service, method, code string, duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.GRPCRequestsTotal.WithLabelValues(service, method, code).Inc()
	metrics.GRPCRequestDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

// RecordComparison counts one comparison. source is "catalog" or "adhoc".
func RecordComparison(metrics *AppMetrics, source string, cached bool, rows []string, duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.ComparisonsTotal.WithLabelValues(source, strconv.FormatBool(cached)).Inc()
	metrics.ComparisonDuration.WithLabelValues(source).Observe(duration.Seconds())
	for _, r := range rows {
		metrics.MetricRowsBuilt.WithLabelValues(r).Inc()
	}
}

func RecordRefresh(metrics *AppMetrics, outcome string, planets int, duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.CatalogRefreshTotal.WithLabelValues(outcome).Inc()
	metrics.CatalogRefreshSeconds.WithLabelValues(outcome).Observe(duration.Seconds())
	if planets > 0 {
		RecordCatalogSize(metrics, "archive", planets)
	}
}

// RecordCatalogSize sets the planet count last written by source, e.g.
// "archive" or "seed".
func RecordCatalogSize(metrics *AppMetrics, source string, planets int) {
	if metrics == nil {
		return
	}
	metrics.CatalogPlanets.WithLabelValues(source).Set(float64(planets))
}

func RecordArchiveFetch(metrics *AppMetrics, duration time.Duration, err error) {
	if metrics == nil {
		return
	}
	metrics.ArchiveFetchDuration.WithLabelValues(status(err)).Observe(duration.Seconds())
}

func RecordExport(metrics *AppMetrics, target string, err error) {
	if metrics == nil {
		return
	}
	metrics.ExportsTotal.WithLabelValues(target, status(err)).Inc()
}

func RecordDBQuery(metrics *AppMetrics, operation string, duration time.Duration, err error) {
	if metrics == nil {
		return
	}
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("postgres", "query_error").Inc()
	}
}

func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if metrics == nil {
		return
	}
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordEvent(metrics *AppMetrics, topic string, err error) {
	if metrics == nil {
		return
	}
	metrics.EventsPublishedTotal.WithLabelValues(topic, status(err)).Inc()
}

func RecordMessageProcessed(metrics *AppMetrics, topic string, duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.MessageProcessDuration.WithLabelValues(topic).Observe(duration.Seconds())
}

func RecordHealth(metrics *AppMetrics, component string, up bool) {
	if metrics == nil {
		return
	}
	v := 0.0
	if up {
		v = 1
	}
	metrics.HealthCheckStatus.WithLabelValues(component).Set(v)
}

func RecordError(metrics *AppMetrics, component, code string) {
	if metrics == nil {
		return
	}
	metrics.ErrorsTotal.WithLabelValues(component, code).Inc()
}

//Personal.AI order the ending
