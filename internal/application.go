package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/muesli/termenv"
	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe/internal/config"
	"github.com/rocketscienceinc/tictactoe/internal/metrics"
	"github.com/rocketscienceinc/tictactoe/internal/repository"
	"github.com/rocketscienceinc/tictactoe/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe/internal/usecase"
	"github.com/rocketscienceinc/tictactoe/transport/rest"
	"github.com/rocketscienceinc/tictactoe/transport/terminal"
	"github.com/rocketscienceinc/tictactoe/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the HTTP and WebSocket servers until ctx is done or one of them fails.
func RunApp(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	errg, ctx := errgroup.WithContext(ctx)

	sessionRepo, closeRepo, err := newSessionRepository(ctx, errg, logger, conf)
	if err != nil {
		return err
	}
	defer closeRepo()

	recorder := metrics.NewRecorder()
	sessionManager := usecase.NewSessionManager(logger, sessionRepo, newBot(conf), recorder)

	restServer := rest.New(logger, sessionManager, recorder.Handler(), conf.AllowedOrigins)
	wsServer := websocket.New(logger, sessionManager, conf.AllowedOrigins)

	errg.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if err := restServer.Start(ctx, conf.HTTPPort); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	errg.Go(func() error {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		if err := wsServer.Start(ctx, conf.SocketPort); err != nil {
			return fmt.Errorf("WebSocket server error: %w", err)
		}
		return nil
	})

	if err = errg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

// RunTerminal - plays on the terminal against an in-memory store, no listeners are started.
func RunTerminal(ctx context.Context, logger *slog.Logger, conf *config.Config, in io.Reader, out io.Writer) error {
	sessionRepo := repository.NewMemorySessionRepository(logger, 0)
	sessionManager := usecase.NewSessionManager(logger, sessionRepo, newBot(conf), metrics.NewRecorder())

	game := terminal.New(logger, sessionManager, in, termenv.NewOutput(out))
	if err := game.Run(ctx); err != nil {
		return fmt.Errorf("terminal game failed: %w", err)
	}

	return nil
}

func newBot(conf *config.Config) *tictactoe.Bot {
	if conf.BotSeed != 0 {
		return tictactoe.NewSeededBot(conf.BotSeed)
	}

	return tictactoe.NewBot()
}

func newSessionRepository(
	ctx context.Context,
	errg *errgroup.Group,
	logger *slog.Logger,
	conf *config.Config,
) (repository.SessionRepository, func(), error) {
	log := logger.With("component", "app")

	switch conf.Storage {
	case config.StorageRedis:
		redisAddrString := conf.Redis.GetRedisAddr()
		if conf.Redis.Host == "" {
			return nil, nil, ErrAddrNotFound
		}

		client, err := storage.New(ctx, storage.Options{
			Addr:     redisAddrString,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		closeFn := func() {
			if err := client.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}

		log.Info("Using redis session storage", "addr", redisAddrString)

		return repository.NewSessionRepository(client, conf.SessionTTL), closeFn, nil
	default:
		memoryRepo := repository.NewMemorySessionRepository(logger, conf.SessionTTL)
		if conf.SessionTTL > 0 {
			errg.Go(func() error {
				return memoryRepo.Run(ctx, conf.SessionTTL/4)
			})
		}

		log.Info("Using in-memory session storage")

		return memoryRepo, func() {}, nil
	}
}
