package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mfscraper/internal/components/chrono"
	"mfscraper/internal/components/configutil"
	"mfscraper/internal/components/restyutil"
	"mfscraper/internal/components/serviceutil"
	"mfscraper/internal/components/telemetry"
	"mfscraper/internal/scrapers/moneyforward"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	configName  = "mfscraper.json5"
	serviceName = "mfscraper"

	perfStatsInterval = time.Second * 30
)

// Config is read from mfscraper.json5, environment variables override the
// credentials so they can be kept out of files.
type Config struct {
	Username          string           `env:"MFSCRAPER_USERNAME" json:"username"`
	Password          string           `env:"MFSCRAPER_PASSWORD" json:"password"`
	BaseUrl           string           `env:"MFSCRAPER_BASE_URL" json:"base_url"`
	IdentityUrl       string           `env:"MFSCRAPER_IDENTITY_URL" json:"identity_url"`
	TimeoutSeconds    int              `json:"timeout_seconds"`
	RequestsPerSecond float64          `json:"requests_per_second"`
	BypassCloudflare  bool             `json:"bypass_cloudflare"`
	Telemetry         telemetry.Config `json:"telemetry"`
}

func (c Config) Validate() error {
	if c.Username == "" || c.Password == "" {
		return errors.New("username and password must be set")
	}
	if c.TimeoutSeconds < 0 || c.RequestsPerSecond < 0 {
		return errors.New("timeout_seconds and requests_per_second cannot be negative")
	}
	return nil
}

func (c Config) ClientOptions() moneyforward.ClientOptions {
	return moneyforward.ClientOptions{
		Username:          c.Username,
		Password:          c.Password,
		BaseUrl:           c.BaseUrl,
		IdentityUrl:       c.IdentityUrl,
		Timeout:           time.Duration(c.TimeoutSeconds) * time.Second,
		RequestsPerSecond: c.RequestsPerSecond,
		BypassCloudflare:  c.BypassCloudflare,
	}
}

// loadConfig merges, in increasing priority: the config file (optional when it
// is searched for and the environment provides everything), a .env file in the working directory and
// the process environment.
func loadConfig(path string) (Config, error) {
	var (
		cfg Config
		err error
	)
	if path != "" {
		cfg, err = configutil.ReadConfig[Config](path)
	} else {
		cfg, err = configutil.ReadRecursively[Config](configName)
	}
	switch {
	case err == nil:
	case path == "" && errors.Is(err, fs.ErrNotExist):
		slog.Debug("no config file found, reading the environment only", "name", configName)
	case errors.Is(err, fs.ErrNotExist):
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	default:
		return Config{}, err
	}

	// variables already set in the environment take priority over .env
	err = godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	err = env.Parse(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	return cfg, cfg.Validate()
}

// session returns a logged in client, the returned function flushes telemetry
// and should be deferred.
func session(ctx context.Context) (*moneyforward.Client, func()) {
	cfg, err := loadConfig(*configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	providers, err := telemetry.Setup(ctx, serviceName, cfg.Telemetry)
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	flush := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		err := providers.Shutdown(ctx)
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	}

	if cfg.Telemetry.Otlp.Metrics.Enabled() {
		err = telemetry.InstrumentPerfStats(ctx, perfStatsInterval)
		if err != nil {
			slog.Warn("failed to instrument perf stats", "err", err)
		}
	}

	opts := cfg.ClientOptions()
	if *dumpHttp != "" {
		output, err := restyutil.NewFilesystemOutput(*dumpHttp)
		if err != nil {
			serviceutil.Fatal("failed to create http dump directory", err)
		}
		opts.HttpDump = output
	}

	client, err := moneyforward.NewClient(opts, chrono.NewStandardImpl(), telemetry.NewSlogAPI())
	if err != nil {
		serviceutil.Fatal("failed to create client", err)
	}

	slog.Info("logging in", "username", cfg.Username)
	err = client.Login(ctx)
	if err != nil {
		flush()
		serviceutil.Fatal("failed to login", err)
	}
	return client, flush
}
