package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/jrsteele09/activity-session/exchange"
	"github.com/jrsteele09/activity-session/internal/config"
	apperrors "github.com/jrsteele09/activity-session/internal/errors"
	"github.com/jrsteele09/activity-session/sdk"
	"github.com/jrsteele09/activity-session/sdk/ipcsdk"
	"github.com/jrsteele09/activity-session/sdk/mocksdk"
	"github.com/jrsteele09/activity-session/session"
	"github.com/jrsteele09/activity-session/sessionvalue"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

var errSetupFailed = errors.New("session setup failed")

const frameIDParam = "frame_id"

type options struct {
	authenticate bool
	scopes       []string
	serverURL    string
	query        url.Values
	redisURL     string
	sessionScope string
	embedded     bool
	timeout      time.Duration
	verbose      bool
}

func parseFlags(args []string, cfg config.Config) (options, error) {
	var (
		opts     options
		rawQuery string
	)
	flags := pflag.NewFlagSet("activity", pflag.ContinueOnError)
	flags.BoolVar(&opts.authenticate, "authenticate", false, "run the OAuth2 exchange after the SDK is ready")
	flags.StringSliceVar(&opts.scopes, "scope", nil, "scopes to request (default identify,guilds)")
	flags.StringVar(&opts.serverURL, "server-url", cfg.GetTokenServerURL(), "base URL of the token exchange server")
	flags.StringVar(&opts.redisURL, "redis-url", cfg.GetRedisURL(), "redis URL for shared simulated session values (default in-memory)")
	flags.StringVar(&opts.sessionScope, "session", "local", "namespace of simulated session values in redis")
	flags.BoolVar(&opts.embedded, "embedded", cfg.IsEmbedded(), "connect to the running host over IPC instead of simulating it")
	flags.DurationVar(&opts.timeout, "timeout", 0, "abort setup after this long (0 waits indefinitely)")
	flags.StringVar(&rawQuery, "query", "", "launch query overriding simulated session values, e.g. user_id=abc&guild_id=def")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log status transitions")
	if err := flags.Parse(args); err != nil {
		return options{}, err
	}

	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return options{}, apperrors.Wrapf(err, "parse --query")
	}
	opts.query = query

	// A host launch carries frame_id; the flag and EMBEDDED take precedence.
	if !flags.Changed("embedded") && !cfg.EmbeddedConfigured() && query.Has(frameIDParam) {
		opts.embedded = true
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg := config.Load()
	opts, err := parseFlags(args, cfg)
	if err != nil {
		return err
	}

	logger := log.Logger.Level(zerolog.InfoLevel)
	if opts.verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}

	clientID := cfg.GetClientID()
	if clientID == "" && opts.embedded {
		return apperrors.ErrMissingClientID
	}

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	client, closeClient, err := newSDK(ctx, clientID, opts, cfg, logger)
	if err != nil {
		return err
	}
	defer closeClient()

	controller, err := session.NewController(client, exchange.NewTokenClient(opts.serverURL), clientID, session.WithLogger(logger))
	if err != nil {
		return err
	}
	controller.Subscribe(func(s session.Snapshot) {
		logger.Debug().Str("status", string(s.Status)).Bool("authenticated", s.Authenticated).Msg("session")
	})

	snapshot := controller.Activate(ctx, session.Options{Authenticate: opts.authenticate, Scope: opts.scopes})

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot); err != nil {
		return err
	}
	if snapshot.Status == session.StatusError {
		return fmt.Errorf("%w: %s", errSetupFailed, snapshot.Error)
	}
	return nil
}

// newSDK picks the host backend: the IPC connection when embedded, the
// simulated backend otherwise.
func newSDK(ctx context.Context, clientID string, opts options, cfg config.Config, logger zerolog.Logger) (sdk.Client, func(), error) {
	if opts.embedded {
		client, err := ipcsdk.Dial(ctx, clientID, ipcsdk.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return client, func() { _ = client.Close() }, nil
	}

	var store sessionvalue.Store = sessionvalue.NewMemoryStore()
	closeStore := func() {}
	if opts.redisURL != "" {
		redisClient, err := sessionvalue.ConnectRedis(ctx, opts.redisURL)
		if err != nil {
			return nil, nil, err
		}
		closeStore = func() { _ = redisClient.Close() }
		if store, err = sessionvalue.NewRedisStore(redisClient, opts.sessionScope, cfg.GetSessionValueTTL()); err != nil {
			closeStore()
			return nil, nil, err
		}
	}

	values, err := sessionvalue.NewSource(store, sessionvalue.WithOverrides(opts.query))
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	client, err := mocksdk.New(clientID, values, mocksdk.WithLogger(logger))
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return client, closeStore, nil
}
