package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/leasekit/pkg/activity"
	"github.com/dmitrymomot/leasekit/pkg/config"
	"github.com/dmitrymomot/leasekit/pkg/logger"
	"github.com/dmitrymomot/leasekit/pkg/redis"
	"github.com/dmitrymomot/leasekit/pkg/session"
)

type sessionFlags struct {
	email    string
	name     string
	role     string
	remember bool
	redis    bool
	profile  string
}

func newSessionCmd(flags *globalFlags) *cobra.Command {
	sf := &sessionFlags{}

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Drive a session from the terminal",
		Long: "Signs in, then treats every line typed on stdin as a key press. " +
			"Type 'status' to check the session, 'logout' to sign out and 'exit' to close the tab. " +
			"With --redis the persistent tier lives in Redis and survives restarts.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cfg appConfig
			if err := config.Load(&cfg); err != nil {
				return err
			}
			log := flags.logger(cfg.Env)
			return runSession(cmd.Context(), cfg, sf, cmd.InOrStdin(), cmd.OutOrStdout(), log)
		},
	}

	cmd.Flags().StringVar(&sf.email, "email", "", "identity email (required unless a persistent session exists)")
	cmd.Flags().StringVar(&sf.name, "name", "", "identity display name")
	cmd.Flags().StringVar(&sf.role, "role", "", "identity role tag")
	cmd.Flags().BoolVar(&sf.remember, "remember", false, "create a persistent session instead of an ephemeral one")
	cmd.Flags().BoolVar(&sf.redis, "redis", false, "keep the persistent tier in Redis (REDIS_URL)")
	cmd.Flags().StringVar(&sf.profile, "profile", "default", "browser profile name, namespaces Redis keys")

	return cmd
}

// lockedWriter serializes writes from the Run loop and the stdin loop.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func runSession(ctx context.Context, cfg appConfig, sf *sessionFlags, in io.Reader, out io.Writer, log *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out = &lockedWriter{w: out}

	var browser session.Storage = session.NewMemoryStorage()
	if sf.redis {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()
		browser = session.NewRedisStorage(client, session.WithRedisPrefix(cfg.Session.KeyPrefix+":"+sf.profile))
	}

	bus := activity.NewMemoryBus(16)
	defer bus.Close()

	mgr := session.NewFromConfig(cfg.Session, session.NewMemoryStorage(), browser,
		session.WithActivityBus(bus),
		session.WithLogger(log),
		session.WithNavigator(session.NavigatorFunc(func(_ context.Context, path string) error {
			fmt.Fprintf(out, "-> %s\n", path)
			return nil
		})),
		session.WithStateListener(func(s session.State, st session.Status) {
			fmt.Fprintf(out, "state: %s %s\n", s, st.Identity.Email)
		}),
	)

	if status := mgr.Check(ctx); !status.Authenticated {
		id := session.Identity{Email: sf.email, Name: sf.name, Role: sf.role}
		start := mgr.SignIn
		if sf.remember {
			start = mgr.Remember
		}
		if err := start(ctx, id, "cli-"+sf.profile); err != nil {
			return err
		}
	}

	runErr := make(chan error, 1)
	go func() { runErr <- mgr.Run(ctx) }()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case "status":
			st := mgr.Check(ctx)
			fmt.Fprintf(out, "authenticated=%t tier=%s email=%s\n", st.Authenticated, st.Tier, st.Identity.Email)
		case "logout":
			if err := mgr.SignOut(ctx); err != nil {
				return err
			}
		case "exit":
			return closeSession(ctx, mgr, cancel, runErr, log)
		default:
			if err := bus.Publish(ctx, activity.Signal{Kind: activity.KeyPress, At: time.Now()}); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	return closeSession(ctx, mgr, cancel, runErr, log)
}

func closeSession(ctx context.Context, mgr *session.Manager, cancel context.CancelFunc, runErr <-chan error, log *slog.Logger) error {
	err := mgr.Close(ctx)
	cancel()
	if rerr := <-runErr; rerr != nil && !errors.Is(rerr, context.Canceled) {
		log.Warn("session loop stopped", logger.Error(rerr))
	}
	return err
}
