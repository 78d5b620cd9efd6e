// Package metrics provides the business Prometheus metrics of the newsletter service.
//
// HTTP request metrics live next to the HTTP middleware; this package covers:
//   - newsletter dispatches and per-recipient outcomes
//   - subscriber sign-ups and list size
//   - feed imports
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "byte-highlight/internal/observability/metrics"
//
//	metrics.RecordDispatch("batch", "success")
//	metrics.RecordRecipients("sent", 120)
package metrics
