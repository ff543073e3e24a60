// Package httputil provides HTTP helpers shared by the backend client and the
// preview server.
//
// # Retry
//
// [Backoff.Retry] re-runs an operation that failed with a transient error.
// Only errors wrapped in [RetryableError] are retried; everything else is
// returned immediately:
//
//	err := httputil.DefaultBackoff.Retry(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// Callers decide what is transient. The backend client wraps network errors,
// 5xx and 429 responses, and retries only idempotent GET requests. A 429
// carries the server's Retry-After in [RetryableError.After].
//
// # Request IDs
//
// [NewRequestID] returns a random UUID used in the [RequestIDHeader] header
// of outgoing requests and of preview server responses, so a request can be
// traced through the console and backend logs.
package httputil
