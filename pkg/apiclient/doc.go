// Package apiclient is the HTTP transport used by the operation layer.
//
// Client exposes the four REST verbs plus HealthCheck. It returns a *Response
// for every call the backend answered, whatever the status code, and an error
// only when the round trip itself failed (DNS, refused connection, timeout,
// body encoding). Classification of 4xx/5xx answers belongs to the operation
// package.
//
//	api, err := apiclient.New("http://localhost:3001/api",
//	    apiclient.WithTimeout(10*time.Second),
//	    apiclient.WithTokenSource(func(context.Context) (string, error) { return token, nil }),
//	)
//	resp, err := api.Get(ctx, "/veterinarians")
package apiclient
