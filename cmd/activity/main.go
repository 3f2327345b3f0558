// Command activity runs one session setup against the host platform, or the
// simulated backend when not embedded, and prints the resulting snapshot.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout)
	switch {
	case err == nil:
	case errors.Is(err, pflag.ErrHelp):
		os.Exit(2)
	case errors.Is(err, errSetupFailed):
		os.Exit(1)
	default:
		log.Error().Err(err).Msg("activity")
		os.Exit(1)
	}
}
