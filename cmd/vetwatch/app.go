package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/vetkit/pkg/apiclient"
	"github.com/dmitrymomot/vetkit/pkg/config"
	"github.com/dmitrymomot/vetkit/pkg/logger"
	"github.com/dmitrymomot/vetkit/pkg/notifications"
)

var (
	errUnhealthy     = errors.New("backend is unhealthy")
	errRequestFailed = errors.New("request failed")
)

type flags struct {
	ConfigPath string
	APIURL     string
	HubURL     string
	Token      string
	LogLevel   string
	LogFormat  string
}

// app holds the components built in Before and shared by every command.
type app struct {
	flags flags

	cfg    config.Config
	log    *slog.Logger
	api    *apiclient.Client
	sink   *notifications.Sink
	tokens oauth2.TokenSource // nil without a configured token
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	a := &app{}

	root := &cli.Command{
		Name:      "vetwatch",
		Usage:     "Check and watch the veterinary clinic backend",
		UsageText: "vetwatch [global options] command [command options]",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to a YAML config file",
				Sources:     cli.EnvVars("VET_CONFIG"),
				Destination: &a.flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "api-url",
				Usage:       "REST API base URL (overrides VET_API_URL)",
				Destination: &a.flags.APIURL,
			},
			&cli.StringFlag{
				Name:        "hub-url",
				Usage:       "realtime hub URL (overrides VET_REALTIME_URL)",
				Destination: &a.flags.HubURL,
			},
			&cli.StringFlag{
				Name:        "token",
				Usage:       "bearer token for API and hub calls (overrides VET_API_TOKEN)",
				Destination: &a.flags.Token,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Destination: &a.flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-format",
				Usage:       "log format (text, json)",
				Destination: &a.flags.LogFormat,
			},
		},
		Before: a.setup,
		After: func(context.Context, *cli.Command) error {
			if a.sink != nil {
				a.sink.Close()
			}
			return nil
		},
		Commands: []*cli.Command{
			a.healthCmd(),
			a.watchCmd(),
			a.getCmd(),
		},
	}

	return root
}

func (a *app) setup(ctx context.Context, c *cli.Command) (context.Context, error) {
	var opts []config.LoadOption
	if a.flags.ConfigPath != "" {
		opts = append(opts, config.WithFile(a.flags.ConfigPath))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return ctx, fmt.Errorf("load config: %w", err)
	}

	if a.flags.APIURL != "" {
		cfg.API.URL = a.flags.APIURL
	}
	if a.flags.HubURL != "" {
		cfg.Realtime.URL = a.flags.HubURL
	}
	if a.flags.Token != "" {
		cfg.API.Token = a.flags.Token
	}
	if a.flags.LogLevel != "" {
		cfg.Log.Level = a.flags.LogLevel
	}
	if a.flags.LogFormat != "" {
		cfg.Log.Format = a.flags.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return ctx, err
	}
	a.cfg = cfg

	a.log = logger.New(append(cfg.LoggerOptions(), logger.WithOutput(c.Root().ErrWriter))...)

	a.sink = notifications.NewSink(
		notifications.WithDefaultDuration(cfg.Notifications.TTL),
		notifications.WithMaxEntries(cfg.Notifications.Max),
		notifications.WithLogger(a.log),
	)

	apiOpts := []apiclient.Option{
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithHealthPath(cfg.API.HealthPath),
		apiclient.WithLogger(a.log),
	}
	if cfg.API.Token != "" {
		a.tokens = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.API.Token, TokenType: "Bearer"})
		apiOpts = append(apiOpts, apiclient.WithOAuth2TokenSource(a.tokens))
	}
	a.api, err = apiclient.New(cfg.API.URL, apiOpts...)
	if err != nil {
		return ctx, err
	}

	return ctx, nil
}

func printEntry(w io.Writer, e notifications.Entry) {
	fmt.Fprintf(w, "%s  %-7s  %s\n", e.CreatedAt.Format("15:04:05"), e.Severity, e.Message)
}
