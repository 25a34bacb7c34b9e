package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/prohmpiriya/glownatura-admin/internal/apierror"
	"github.com/prohmpiriya/glownatura-admin/internal/repository"
	"github.com/prohmpiriya/glownatura-admin/internal/session"
	"github.com/prohmpiriya/glownatura-admin/internal/state"
	"github.com/prohmpiriya/glownatura-admin/internal/transport"
	"github.com/prohmpiriya/glownatura-admin/pkg/config"
	"github.com/prohmpiriya/glownatura-admin/pkg/logger"
	pkgredis "github.com/prohmpiriya/glownatura-admin/pkg/redis"
	"github.com/prohmpiriya/glownatura-admin/pkg/retry"
	"go.uber.org/zap"
)

// app is everything a command needs
type app struct {
	repos  *repository.Repositories
	sess   *session.Session
	nav    *navigator
	notify state.Notifier
	log    *logger.Logger
	out    io.Writer
	errOut io.Writer
	poll   time.Duration
}

func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger, stdout, stderr io.Writer) (*app, func(), error) {
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	sess := session.New(store, session.Options{
		Key:    cfg.Session.Key,
		TTL:    cfg.Session.TTL,
		Logger: log,
	})
	if err := sess.Init(ctx); err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("failed to restore session: %w", err)
	}

	nav := newNavigator(stderr)
	client := transport.New(transport.Config{
		BaseURL:       cfg.API.BaseURL,
		Timeout:       cfg.API.Timeout,
		UserAgent:     cfg.API.UserAgent,
		RedirectDelay: cfg.API.RedirectDelay,
		Retry: retry.Config{
			MaxRetries:      cfg.API.RetryMax,
			InitialInterval: cfg.API.RetryInitialInterval,
			MaxInterval:     cfg.API.RetryMaxInterval,
			JitterFactor:    0.2,
		},
	}, sess, transport.WithLogger(log), transport.WithNavigator(nav))

	a := &app{
		repos:  repository.New(client, sess),
		sess:   sess,
		nav:    nav,
		notify: newNotifier(stderr),
		log:    log,
		out:    stdout,
		errOut: stderr,
		poll:   cfg.Poll.PendingReviewsInterval,
	}
	return a, closeStore, nil
}

func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (session.Store, func(), error) {
	switch cfg.Session.Store {
	case config.StoreMemory:
		return session.NewMemoryStore(), func() {}, nil
	case config.StoreRedis:
		client, err := pkgredis.NewClient(ctx, &pkgredis.Config{
			Host:          cfg.Redis.Host,
			Port:          cfg.Redis.Port,
			Password:      cfg.Redis.Password,
			DB:            cfg.Redis.DB,
			PoolSize:      cfg.Redis.PoolSize,
			DialTimeout:   cfg.Redis.DialTimeout,
			ReadTimeout:   cfg.Redis.ReadTimeout,
			WriteTimeout:  cfg.Redis.WriteTimeout,
			MaxRetries:    1,
			RetryInterval: time.Second,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Debug("using redis session store", zap.String("addr", cfg.Redis.Addr()))
		return session.NewRedisStore(client.Client(), ""), func() { client.Close() }, nil
	default:
		log.Debug("using file session store", zap.String("path", cfg.Session.File))
		return session.NewFileStore(cfg.Session.File), func() {}, nil
	}
}

// execute runs the command named by args and returns the exit code
func (a *app) execute(ctx context.Context, args []string) int {
	name, cmd, rest, ok := lookup(args)
	if !ok {
		fmt.Fprintf(a.errOut, "unknown command: %v\n\n", args)
		usage(a.errOut)
		return 2
	}

	view := cmd.view
	if view == "" {
		view = name
	}
	a.nav.Show(view)

	err := cmd.run(ctx, a, rest)
	if err == nil {
		return 0
	}
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	a.fail(cmd.op, view, err)
	return 1
}

func (a *app) fail(op apierror.Operation, view string, err error) {
	if _, ok := apierror.As(err); !ok {
		fmt.Fprintf(a.errOut, "Error: %v\n", err)
		return
	}

	d := apierror.Describe(op, err)
	fmt.Fprintf(a.errOut, "%s: %s\n", d.Title, d.Description)
	a.log.Debug("command failed", zap.String("code", apierror.CodeOf(err)), zap.Error(err))

	if apierror.IsUnauthorized(err) && !transport.IsAuthView(view) {
		a.nav.Redirect(transport.ViewLogin)
	}
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("glowctl "+name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

func (a *app) stateOptions() state.Options {
	return state.Options{Notifier: a.notify, Logger: a.log}
}
