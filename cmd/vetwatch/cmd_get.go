package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/dmitrymomot/vetkit/pkg/apiclient"
	"github.com/dmitrymomot/vetkit/pkg/operation"
)

type outcomeJSON struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *errorJSON      `json:"error,omitempty"`
}

type errorJSON struct {
	Kind       operation.ErrorKind `json:"kind"`
	StatusCode int                 `json:"status_code,omitempty"`
	Message    string              `json:"message"`
}

func (a *app) getCmd() *cli.Command {
	var (
		entity  string
		verbose bool
	)

	return &cli.Command{
		Name:      "get",
		Usage:     "Fetch a path from the REST API and print the outcome",
		UsageText: "vetwatch get [--entity pets] <path>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "entity",
				Usage:       "entity label used in notification texts",
				Value:       "data",
				Destination: &entity,
			},
			&cli.BoolFlag{
				Name:        "verbose",
				Usage:       "notify on success too",
				Destination: &verbose,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			path := c.Args().First()
			if path == "" {
				return fmt.Errorf("get: path argument is required")
			}

			policy := operation.Fetch(entity)
			if verbose {
				policy.NotifyOnSuccess = true
			}

			out := operation.Run[json.RawMessage](ctx, operation.NewExecutor(a.sink, a.log),
				func(ctx context.Context) (*apiclient.Response, error) {
					return a.api.Get(ctx, path)
				}, policy)

			if err := a.printOutcome(c, out); err != nil {
				return err
			}
			if !out.Success {
				return errRequestFailed
			}
			return nil
		},
	}
}

func (a *app) printOutcome(c *cli.Command, out operation.Outcome[json.RawMessage]) error {
	w := c.Root().Writer

	res := outcomeJSON{Success: out.Success}
	if out.Data != nil {
		res.Data = *out.Data
	}
	if out.Err != nil {
		res.Error = &errorJSON{Kind: out.Err.Kind, StatusCode: out.Err.StatusCode, Message: out.Err.Message}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}

	for _, e := range a.sink.List() {
		printEntry(w, e)
	}
	return nil
}
