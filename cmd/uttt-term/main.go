package main

import (
    "flag"
    "fmt"
    "log/slog"
    "os"

    "github.com/jaminalder/ultimate-tic-tac-toe/internal/config"
    "github.com/jaminalder/ultimate-tic-tac-toe/internal/domain"
    "github.com/jaminalder/ultimate-tic-tac-toe/internal/term"
)

func main() {
    configPath := flag.String("config", "config.yml", "path to yaml config (optional)")
    flag.Parse()

    conf := config.MustLoad(*configPath)
    // Logs go to stderr so they never interleave with the board.
    logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: conf.Level()}))

    loop := term.NewLoop(domain.NewSession(), os.Stdout, logger)
    if err := loop.Run(os.Stdin); err != nil {
        fmt.Fprintf(os.Stderr, "uttt-term: %v\n", err)
        os.Exit(1)
    }
}
