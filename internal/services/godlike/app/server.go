// Package app hosts the Discord bot and its operator HTTP endpoint.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/louisbranch/godlike/internal/platform/telemetry/metrics"
	"github.com/louisbranch/godlike/internal/platform/timeouts"
	"github.com/louisbranch/godlike/internal/random"
	"github.com/louisbranch/godlike/internal/services/godlike/character"
	"github.com/louisbranch/godlike/internal/services/godlike/roll"
	"github.com/louisbranch/godlike/internal/services/godlike/sheet"
	"github.com/louisbranch/godlike/internal/services/godlike/storage/sqlite"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Config defines the inputs of the bot process.
type Config struct {
	Token string
	// GuildID registers commands in one guild. Empty registers them globally.
	GuildID string
	DBPath  string
	// HTTPAddr serves /up and /metrics. Empty disables the operator endpoint.
	HTTPAddr          string
	SheetTimeout      time.Duration
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	Logger            zerolog.Logger
}

// Discord is the part of *discordgo.Session the server drives.
type Discord interface {
	Responder
	AddHandler(handler interface{}) func()
	Open() error
	Close() error
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// Server runs the bot and the operator endpoint.
type Server struct {
	guildID         string
	shutdownTimeout time.Duration
	logger          zerolog.Logger

	store      *sqlite.Store
	discord    Discord
	appID      func() string
	sheets     *sheet.Hub
	handler    *Handler
	metrics    *metrics.Metrics
	httpServer *http.Server
}

// NewServer opens the store and builds the bot services.
func NewServer(ctx context.Context, config Config) (*Server, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	token := strings.TrimSpace(config.Token)
	if token == "" {
		return nil, errors.New("discord token is required")
	}
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds

	server, err := newServer(config, dg)
	if err != nil {
		return nil, err
	}
	server.appID = func() string {
		if dg.State == nil || dg.State.User == nil {
			return ""
		}
		return dg.State.User.ID
	}
	return server, nil
}

func newServer(config Config, discord Discord) (*Server, error) {
	if config.ReadHeaderTimeout <= 0 {
		config.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = timeouts.Shutdown
	}
	if config.SheetTimeout <= 0 {
		config.SheetTimeout = timeouts.SheetSession
	}

	store, err := sqlite.Open(config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	src, err := random.NewSource()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("seed dice: %w", err)
	}

	m := metrics.New()
	logger := config.Logger
	characters := character.NewService(store, logger.With().Str("component", "character").Logger())
	rolls := roll.NewService(src, store,
		roll.WithLogger(logger.With().Str("component", "roll").Logger()),
		roll.WithMetrics(m),
	)
	sheets := sheet.NewHub(characters,
		sheet.WithTimeout(config.SheetTimeout),
		sheet.WithMetrics(m),
		sheet.WithLogger(logger.With().Str("component", "sheet").Logger()),
	)

	s := &Server{
		guildID:         strings.TrimSpace(config.GuildID),
		shutdownTimeout: config.ShutdownTimeout,
		logger:          logger,
		store:           store,
		discord:         discord,
		appID:           func() string { return "" },
		sheets:          sheets,
		handler:         NewHandler(rolls, characters, sheets, m, logger),
		metrics:         m,
	}
	if addr := strings.TrimSpace(config.HTTPAddr); addr != "" {
		s.httpServer = &http.Server{
			Addr:              addr,
			Handler:           s.operatorHandler(),
			ReadHeaderTimeout: config.ReadHeaderTimeout,
		}
	}
	return s, nil
}

// Run builds the server and serves until ctx ends.
func Run(ctx context.Context, config Config) error {
	server, err := NewServer(ctx, config)
	if err != nil {
		return fmt.Errorf("init godlike server: %w", err)
	}
	defer server.Close()

	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("serve godlike: %w", err)
	}
	return nil
}

// Serve connects the bot and the operator endpoint and blocks until ctx
// ends or either fails.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("godlike server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.serveDiscord(gctx)
	})
	if s.httpServer != nil {
		g.Go(func() error {
			return s.serveHTTP(gctx)
		})
	}
	return g.Wait()
}

func (s *Server) serveDiscord(ctx context.Context) error {
	remove := s.discord.AddHandler(func(dg *discordgo.Session, ic *discordgo.InteractionCreate) {
		s.dispatch(ctx, dg, ic.Interaction)
	})
	defer remove()

	if err := s.discord.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	defer func() {
		if err := s.discord.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("close discord gateway")
		}
	}()

	if err := s.registerCommands(); err != nil {
		return err
	}
	s.logger.Info().Str("guild_id", s.guildID).Msg("godlike bot connected")

	<-ctx.Done()
	return nil
}

func (s *Server) dispatch(ctx context.Context, r Responder, i *discordgo.Interaction) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.StoreOperation)
	defer cancel()
	s.handler.Handle(ctx, r, i)
}

func (s *Server) registerCommands() error {
	appID := s.appID()
	if appID == "" {
		return errors.New("discord application id is unknown")
	}
	registered, err := s.discord.ApplicationCommandBulkOverwrite(appID, s.guildID, Commands())
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	s.logger.Info().Int("commands", len(registered)).Msg("commands registered")
	return nil
}

func (s *Server) serveHTTP(ctx context.Context) error {
	serveErr := make(chan error, 1)
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("operator endpoint listening")
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

func (s *Server) operatorHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		if err := s.store.Ping(r.Context()); err != nil {
			s.logger.Warn().Err(err).Msg("store ping")
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", s.metrics.Handler())
	return mux
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.sheets != nil {
		s.sheets.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("close store")
		}
	}
}
