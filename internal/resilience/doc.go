// Package resilience groups the fault tolerance helpers used around outbound
// calls: circuit breakers for the e-mail provider, intro writers, feed fetches
// and alert webhooks, and retry with exponential backoff for transient errors.
//
//	cb := circuitbreaker.New(circuitbreaker.EmailAPIConfig())
//	_, err := cb.Execute(func() (interface{}, error) {
//	    return nil, send()
//	})
//
//	err = retry.WithBackoff(ctx, retry.DBStartupConfig(), func() error {
//	    return db.PingContext(ctx)
//	})
package resilience
