package metrics

import "time"

// RecordDispatch records one newsletter dispatch.
// Result should be "success" or "failure".
func RecordDispatch(mode, result string) {
	NewsletterDispatchTotal.WithLabelValues(mode, result).Inc()
}

// RecordRecipients adds n recipients with the given outcome.
func RecordRecipients(result string, n int) {
	if n <= 0 {
		return
	}
	NewsletterRecipientsTotal.WithLabelValues(result).Add(float64(n))
}

// RecordDispatchDuration records how long a dispatch took.
func RecordDispatchDuration(mode string, d time.Duration) {
	NewsletterDispatchDuration.WithLabelValues(mode).Observe(d.Seconds())
}

// RecordSubscription records the outcome of a subscribe request.
func RecordSubscription(result string) {
	SubscriptionsTotal.WithLabelValues(result).Inc()
}

// UpdateSubscribers sets the subscriber gauge for status.
func UpdateSubscribers(status string, count int64) {
	SubscribersGauge.WithLabelValues(status).Set(float64(count))
}

// RecordFeedImport records the breakdown of one feed import.
func RecordFeedImport(duration time.Duration, inserted, duplicated, invalid int) {
	FeedImportDuration.Observe(duration.Seconds())
	ArticlesImportedTotal.WithLabelValues("inserted").Add(float64(inserted))
	ArticlesImportedTotal.WithLabelValues("duplicated").Add(float64(duplicated))
	ArticlesImportedTotal.WithLabelValues("invalid").Add(float64(invalid))
}

// RecordFeedImportError records a failed feed import.
func RecordFeedImportError(errorType string) {
	FeedImportErrors.WithLabelValues(errorType).Inc()
}
