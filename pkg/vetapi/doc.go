// Package vetapi exposes the clinic backend resources as typed calls, each
// routed through the operation layer with the notification policy its screen
// expects. Reads are mostly quiet on success; writes confirm success and
// report failures.
//
//	api := vetapi.New(httpClient, sink, log)
//	res := api.Pets.Add(ctx, vetapi.Record{"name": "Rex", "species": "dog"})
//	if res.Success {
//	    id := res.Value()["id"]
//	}
//
// Every call accepts CallOption values (Verbose, ShowErrors, Silent) that
// override the default policy for that call only.
package vetapi
