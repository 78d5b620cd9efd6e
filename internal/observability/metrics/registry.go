package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Newsletter metrics track e-mail dispatch behaviour
var (
	// NewsletterDispatchTotal counts dispatches by mode (individual|batch|sandbox) and result
	NewsletterDispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsletter_dispatch_total",
			Help: "Total number of newsletter dispatches by mode and result",
		},
		[]string{"mode", "result"},
	)

	// NewsletterRecipientsTotal counts recipients by outcome (sent|failed|sandboxed)
	NewsletterRecipientsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsletter_recipients_total",
			Help: "Total number of newsletter recipients by outcome",
		},
		[]string{"result"},
	)

	// NewsletterDispatchDuration measures one full dispatch including every provider call
	NewsletterDispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsletter_dispatch_duration_seconds",
			Help:    "Newsletter dispatch duration in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"mode"},
	)
)

// Subscriber metrics
var (
	// SubscriptionsTotal counts sign-up attempts by result (created|reactivated|duplicate|invalid)
	SubscriptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriptions_total",
			Help: "Total number of subscribe requests by result",
		},
		[]string{"result"},
	)

	// SubscribersGauge is the current number of subscribers per status
	SubscribersGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "subscribers",
			Help: "Current number of subscribers by status",
		},
		[]string{"status"},
	)
)

// Import metrics
var (
	// ArticlesImportedTotal counts imported feed items by outcome (inserted|duplicated|invalid)
	ArticlesImportedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_imported_total",
			Help: "Total number of feed items processed by the importer",
		},
		[]string{"outcome"},
	)

	// FeedImportDuration measures a single feed import
	FeedImportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_import_duration_seconds",
			Help:    "Time taken to import one feed",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	// FeedImportErrors counts failed feed imports by error type
	FeedImportErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_import_errors_total",
			Help: "Total number of failed feed imports",
		},
		[]string{"error_type"},
	)
)
