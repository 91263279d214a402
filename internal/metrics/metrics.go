// Package metrics exposes Prometheus collectors for the resolver service.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	resolverVisitsTotal       *prometheus.CounterVec
	resolverChainLength       prometheus.Histogram
	resolverFetchSeconds      prometheus.Histogram
	resolverCacheLookupsTotal *prometheus.CounterVec
	resolverDownloadsTotal    *prometheus.CounterVec
	resolverResolutionsTotal  *prometheus.CounterVec
	resolverActiveResolutions prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		resolverVisitsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkweaver_visits_total",
				Help: "Total redirect-chain visits, labeled by outcome kind.",
			},
			[]string{"kind"},
		)

		resolverChainLength = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "linkweaver_redirect_chain_length",
				Help:    "Number of visits per resolved origin URL.",
				Buckets: prometheus.LinearBuckets(1, 1, 10),
			},
		)

		resolverFetchSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "linkweaver_fetch_duration_seconds",
				Help:    "Duration of individual manual-redirect fetches.",
				Buckets: prometheus.DefBuckets,
			},
		)

		resolverCacheLookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkweaver_cache_lookups_total",
				Help: "Redirect-chain cache lookups, labeled by result.",
			},
			[]string{"result"},
		)

		resolverDownloadsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkweaver_downloads_total",
				Help: "Download attempts, labeled by result variant.",
			},
			[]string{"result"},
		)

		resolverResolutionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkweaver_resolutions_total",
				Help: "Completed resource resolutions, labeled by status.",
			},
			[]string{"status"},
		)

		resolverActiveResolutions = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "linkweaver_active_resolutions",
				Help: "Resolutions currently running.",
			},
		)
	})
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// RecordVisit counts one redirect-chain visit by outcome kind.
func RecordVisit(kind string) {
	Init()
	resolverVisitsTotal.WithLabelValues(kind).Inc()
}

// RecordRedirectChain observes the hop count of a completed chain.
func RecordRedirectChain(visits int) {
	Init()
	resolverChainLength.Observe(float64(visits))
}

// RecordFetchDuration observes one fetch duration.
func RecordFetchDuration(d time.Duration) {
	Init()
	resolverFetchSeconds.Observe(d.Seconds())
}

// RecordCacheLookup counts a cache hit or miss.
func RecordCacheLookup(hit bool) {
	Init()
	result := "miss"
	if hit {
		result = "hit"
	}
	resolverCacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordDownload counts one download attempt by result variant.
func RecordDownload(result string) {
	Init()
	resolverDownloadsTotal.WithLabelValues(result).Inc()
}

// RecordResolution counts one finished resolution by status.
func RecordResolution(status string) {
	Init()
	resolverResolutionsTotal.WithLabelValues(status).Inc()
}

// ResolutionStarted increments the active-resolution gauge and returns a
// function that decrements it.
func ResolutionStarted() func() {
	Init()
	resolverActiveResolutions.Inc()
	return resolverActiveResolutions.Dec
}
