// Package httputil holds the retry policy shared by HTTP clients, currently
// the remote draft store.
//
// Transport failures and transient statuses are wrapped with [Retryable];
// everything else fails fast:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    defer resp.Body.Close()
//	    if httputil.TransientStatus(resp.StatusCode) {
//	        return httputil.Retryable(fmt.Errorf("status %d", resp.StatusCode))
//	    }
//	    return nil
//	})
//
// The delay doubles after every failed attempt.
package httputil
