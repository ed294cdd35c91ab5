package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/salt-detective/internal/chem"
	"github.com/robalobadob/salt-detective/internal/game"
	"github.com/robalobadob/salt-detective/internal/httpserver"
	"github.com/robalobadob/salt-detective/internal/pick"
	"github.com/robalobadob/salt-detective/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Port string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the game over HTTP",
		Long: `Start the JSON API. Each browser gets its own session and round.

Configuration comes from the environment (a .env file is loaded first):
PORT, LOG_LEVEL, APP_ENV, CLIENT_ORIGIN, CATALOG_FILE, REQUEST_TIMEOUT,
SESSION_SECRET, SESSION_TTL, COOKIE_NAME.

Example:
  saltdetective serve
  saltdetective serve --port 8080 --catalog ./salts.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Port, "port", "", "listen port (overrides PORT)")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, opts *ServeOptions) error {
	cfg := opts.Config
	if opts.Port != "" {
		cfg.Port = opts.Port
	}
	// JSON lines for the server, like any other service log.
	log.Logger = zerolog.New(cmd.ErrOrStderr()).With().Timestamp().Logger()

	cat, err := chem.Load(cfg.CatalogFile)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	log.Info().Int("salts", cat.Len()).Str("file", cfg.CatalogFile).Msg("catalog loaded")

	st := store.NewMemoryStore(engineFactory(cat, pick.Random()))
	go janitor(ctx, st, cfg.SessionTTL)

	srv := httpserver.New(st, cfg)
	log.Info().Str("port", cfg.Port).Msg("starting salt-detective")
	if err := srv.Start(ctx, cfg.Addr()); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

// engineFactory builds per-session engines that log solved rounds.
func engineFactory(cat *chem.Catalog, p pick.Picker) store.Factory {
	return func() *game.Engine {
		e := game.New(cat, p)
		e.Subscribe(logSolved)
		return e
	}
}

func logSolved(ev game.RoundSolved) {
	log.Info().
		Str("round", ev.RoundID).
		Str("salt", ev.Salt.Name).
		Int("tests", ev.Tests).
		Int("guesses", ev.Guesses).
		Dur("took", ev.Duration).
		Msg("round solved")
}

// janitor drops sessions idle for longer than ttl until ctx is done.
func janitor(ctx context.Context, st store.Store, ttl time.Duration) {
	every := ttl / 4
	if every < time.Minute {
		every = time.Minute
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := st.Prune(ctx, now.Add(-ttl))
			if err != nil {
				log.Warn().Err(err).Msg("prune sessions")
				continue
			}
			if n > 0 {
				log.Debug().Int("pruned", n).Int("live", st.Len()).Msg("sessions pruned")
			}
		}
	}
}
