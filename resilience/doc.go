// Package resilience guards the proxy's outbound calls.
//
// The upstream solve call runs behind a CircuitBreaker and a Timeout
// composed by an Executor; the token handshake runs behind a Timeout;
// renderer calls are capped by a Bulkhead and retried on transient
// failures with Retry; inbound requests are throttled by a RateLimiter.
//
//	exec := resilience.NewExecutor(
//	    resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	        Name:        "upstream",
//	        MaxFailures: 5,
//	    })),
//	    resilience.WithTimeout("upstream.solve", 10*time.Second),
//	)
//
//	err := exec.Execute(ctx, func(ctx context.Context) error {
//	    doc, err = client.Solve(ctx, tok, q)
//	    return err
//	})
package resilience
