package main

import (
    "context"
    "errors"
    "flag"
    "fmt"
    "log/slog"
    "net"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/jaminalder/ultimate-tic-tac-toe/internal/app"
    "github.com/jaminalder/ultimate-tic-tac-toe/internal/config"
    "github.com/jaminalder/ultimate-tic-tac-toe/internal/web"
)

func main() {
    configPath := flag.String("config", "config.yml", "path to yaml config (optional)")
    flag.Parse()

    conf := config.MustLoad(*configPath)
    logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: conf.Level()}))

    if err := run(logger, conf); err != nil {
        logger.Error("server stopped", "error", err)
        os.Exit(1)
    }
}

func run(logger *slog.Logger, conf *config.Config) error {
    log := logger.With("component", "main")

    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()

    svc := app.NewService(logger)
    svc.SetSubscriberBuffer(conf.SSE.SubscriberBuffer)

    srv := &http.Server{
        Addr:         conf.HTTP.Addr,
        Handler:      web.NewServer(svc, logger, conf.SSE.Heartbeat),
        ReadTimeout:  conf.HTTP.ReadTimeout,
        WriteTimeout: conf.HTTP.WriteTimeout,
        IdleTimeout:  conf.HTTP.IdleTimeout,
        BaseContext:  func(_ net.Listener) context.Context { return ctx },
    }

    errCh := make(chan error, 1)
    go func() {
        log.Info("Starting HTTP server", "addr", conf.HTTP.Addr)
        if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            errCh <- err
        }
        close(errCh)
    }()

    select {
    case err := <-errCh:
        if err != nil {
            return fmt.Errorf("http server: %w", err)
        }
        return nil
    case <-ctx.Done():
        log.Info("Received signal, shutting down")
    }

    shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := srv.Shutdown(shutdownCtx); err != nil {
        return fmt.Errorf("shutdown: %w", err)
    }
    return nil
}
