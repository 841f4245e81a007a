package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/dmitrymomot/vetkit/pkg/health"
)

func (a *app) healthCmd() *cli.Command {
	return &cli.Command{
		Name:      "health",
		Usage:     "Check that the backend answers its health endpoint",
		UsageText: "vetwatch health",
		Action: func(ctx context.Context, c *cli.Command) error {
			out := health.NewMonitor(a.api).Check(ctx)
			w := c.Root().Writer

			if !out.Success {
				fmt.Fprintf(w, "unhealthy: %s\n", out.Err.Message)
				return errUnhealthy
			}

			status := "ok"
			if out.Data != nil && out.Data.Status != "" {
				status = out.Data.Status
			}
			fmt.Fprintf(w, "healthy: %s\n", status)
			return nil
		},
	}
}
