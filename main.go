package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	app "github.com/rocketscienceinc/tictactoe/internal"
	"github.com/rocketscienceinc/tictactoe/internal/config"
)

var (
	configPath = "config.yml"
	play       = false
)

func init() {
	pflag.StringVarP(&configPath, "config", "c", configPath, "path to the yaml config file, env only when missing")
	pflag.BoolVarP(&play, "play", "p", play, "play in the terminal instead of serving")
	pflag.Parse()
}

// main - is the entry point of the application. It initializes the configuration, logger, and runs the application.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	conf := config.MustLoad(configPath)

	if play {
		// keep the board on stdout readable
		logger := initLogger(conf, os.Stderr)
		if err := app.RunTerminal(ctx, logger, conf, os.Stdin, os.Stdout); err != nil {
			panic(fmt.Errorf("terminal run failed: %w", err))
		}
		return
	}

	logger := initLogger(conf, os.Stdout)
	if err := app.RunApp(ctx, logger, conf); err != nil {
		panic(fmt.Errorf("app run failed: %w", err))
	}
}

// initialize logger.
func initLogger(conf *config.Config, w io.Writer) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
