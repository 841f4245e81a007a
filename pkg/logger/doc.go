// Package logger builds *slog.Logger instances from functional options and
// exposes attribute helpers so every package names its log fields the same way.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment("production", "vetwatch"),
//	)
//	logger.SetAsDefault(log)
//
//	log.Warn("realtime connection failed",
//	    logger.Component("realtime"),
//	    logger.Error(err),
//	)
//
// New defaults to JSON output at INFO level on stdout. WithEnvironment switches
// development environments to text output at DEBUG level.
package logger
