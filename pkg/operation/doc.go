// Package operation wraps every request/response interaction with the backend
// so call sites don't repeat try/classify/notify logic.
//
// A call site supplies a Func (usually a closure over an apiclient verb) and a
// Policy, and gets back an Outcome. Classification is total:
//
//   - the transport answered 2xx: Success, Data holds the decoded JSON payload
//     (nil when the body was empty or null);
//   - the transport answered with another status: Err of kind backend, with the
//     message taken from the response body when present;
//   - the call itself failed (network, timeout, undecodable payload, panic):
//     Err of kind transport.
//
// Execute then enqueues at most one notification, according to the policy,
// and returns. It never panics and never returns an error value.
//
//	res := operation.Execute[Pet](ctx, sink, func(ctx context.Context) (*apiclient.Response, error) {
//	    return api.Post(ctx, "/Users/me/animals", pet)
//	}, operation.Create("pet").WithSuccess("Pet added"))
//	if !res.Success {
//	    return
//	}
//
// Go runs the same flow on a goroutine and returns a Pending handle.
package operation
