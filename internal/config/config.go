package config

import (
    "errors"
    "fmt"
    "io/fs"
    "log/slog"
    "os"
    "strings"
    "time"

    "github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
    LogLevel string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
    HTTP     HTTP   `yaml:"http"`
    SSE      SSE    `yaml:"sse"`
}

type HTTP struct {
    Addr        string        `yaml:"addr" env:"HTTP_ADDR" env-default:":8080"`
    ReadTimeout time.Duration `yaml:"read-timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
    // Zero disables the write deadline, which SSE streams need.
    WriteTimeout time.Duration `yaml:"write-timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"0s"`
    IdleTimeout  time.Duration `yaml:"idle-timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"30s"`
}

type SSE struct {
    Heartbeat        time.Duration `yaml:"heartbeat" env:"SSE_HEARTBEAT" env-default:"15s"`
    SubscriberBuffer int           `yaml:"subscriber-buffer" env:"SSE_SUBSCRIBER_BUFFER" env-default:"1"`
}

// Load reads the yaml file at path when it exists, then applies environment
// overrides and defaults. An empty or missing path means env only.
func Load(path string) (*Config, error) {
    conf := &Config{}

    if path != "" {
        _, err := os.Stat(path)
        switch {
        case err == nil:
            if err = cleanenv.ReadConfig(path, conf); err != nil {
                return nil, fmt.Errorf("unable to load config file: %w", err)
            }
            return conf, nil
        case !errors.Is(err, fs.ErrNotExist):
            return nil, fmt.Errorf("unable to stat config file: %w", err)
        }
    }

    if err := cleanenv.ReadEnv(conf); err != nil {
        return nil, fmt.Errorf("unable to read environment: %w", err)
    }
    return conf, nil
}

// MustLoad - load configuration or panic.
func MustLoad(path string) *Config {
    conf, err := Load(path)
    if err != nil {
        panic(err)
    }
    return conf
}

// Level maps LogLevel onto a slog level; unknown values mean info.
func (that *Config) Level() slog.Level {
    switch strings.ToLower(that.LogLevel) {
    case "debug":
        return slog.LevelDebug
    case "warn":
        return slog.LevelWarn
    case "error":
        return slog.LevelError
    default:
        return slog.LevelInfo
    }
}
