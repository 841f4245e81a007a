package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dmitrymomot/vetkit/pkg/health"
	"github.com/dmitrymomot/vetkit/pkg/logger"
	"github.com/dmitrymomot/vetkit/pkg/realtime"
	"github.com/dmitrymomot/vetkit/pkg/signalr"
)

const stopTimeout = 5 * time.Second

func (a *app) watchCmd() *cli.Command {
	var limit time.Duration

	return &cli.Command{
		Name:      "watch",
		Usage:     "Connect to the realtime hub and print notifications as they arrive",
		UsageText: "vetwatch watch [--for 10m]",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:        "for",
				Usage:       "stop after this long (0 runs until interrupted)",
				Destination: &limit,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if limit > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, limit)
				defer cancel()
			}
			return a.watch(ctx, c)
		},
	}
}

func (a *app) watch(ctx context.Context, c *cli.Command) error {
	w := c.Root().Writer

	dialOpts := []signalr.Option{signalr.WithLogger(a.log)}
	if a.cfg.Realtime.SkipNegotiation {
		dialOpts = append(dialOpts, signalr.WithSkipNegotiation())
	}

	rt, err := realtime.New(
		a.cfg.RealtimeURL(),
		signalr.NewDialer(dialOpts...),
		health.NewMonitor(a.api),
		a.sink,
		realtime.WithLogger(a.log),
	)
	if err != nil {
		return err
	}

	feed := a.sink.Subscribe(ctx)

	var startOpts []realtime.StartOption
	if a.tokens != nil {
		startOpts = append(startOpts, realtime.WithOAuth2TokenSource(a.tokens))
	}
	if err := rt.Start(ctx, startOpts...); err != nil {
		return err
	}
	fmt.Fprintf(w, "realtime: %s\n", rt.State())

	defer func() {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
		defer cancel()
		if err := rt.Stop(stopCtx); err != nil {
			a.log.WarnContext(stopCtx, "realtime stop failed", logger.Error(err))
		}
	}()

	for e := range feed {
		printEntry(w, e)
	}
	return nil
}
