package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/2beens/weighttracker/internal"
	"github.com/2beens/weighttracker/internal/config"
	"github.com/2beens/weighttracker/internal/logging"
	"github.com/2beens/weighttracker/pkg"

	log "github.com/sirupsen/logrus"
)

func main() {
	fmt.Println("starting ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	log.Warnf("---->> running in [%s] environment", *env)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	if cfg.LogsPath != "" {
		logsDir := filepath.Dir(cfg.LogsPath)
		if exists, err := pkg.PathExists(logsDir, true); err != nil {
			log.Fatalf("check logs dir: %s", err)
		} else if !exists {
			if err := os.MkdirAll(logsDir, 0o755); err != nil {
				log.Fatalf("create logs dir [%s]: %s", logsDir, err)
			}
		}
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		Environment:      *env,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        os.Getenv("SENTRY_DSN"),
		SentryServerName: "weight-tracker",
		RotateMaxSizeMB:  cfg.LogMaxSizeMB,
		RotateMaxBackups: cfg.LogMaxBackups,
		RotateMaxAgeDays: cfg.LogMaxAgeDays,
	})

	log.Debugf("using port: %d", cfg.Port)
	log.Debugf("using server logs path: [%s]", cfg.LogsPath)
	log.Debugf("using timezone: [%s]", cfg.Timezone)

	redisPassword := os.Getenv("WEIGHT_TRACKER_REDIS_PASS")
	if redisPassword == "" {
		log.Warnln("redis password not set. use WEIGHT_TRACKER_REDIS_PASS")
	}

	postgresPassword := os.Getenv("WEIGHT_TRACKER_PG_PASS")
	if postgresPassword == "" {
		log.Warnln("postgres password not set. use WEIGHT_TRACKER_PG_PASS")
	}

	honeycombEnabled := os.Getenv("HONEYCOMB_ENABLED") == "true"
	if honeycombEnabled {
		if honeycombApiKey := os.Getenv("HONEYCOMB_API_KEY"); honeycombApiKey == "" {
			log.Warnln("HONEYCOMB_API_KEY env var not set")
		}
	} else {
		log.Debugln("honeycomb tracing disabled")
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server, err := internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			RedisPassword:           redisPassword,
			PostgresPassword:        postgresPassword,
			HoneycombTracingEnabled: honeycombEnabled,
		},
	)
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	server.Serve(cfg.Host, cfg.Port)

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, shutting down ...", receivedSig)
	cancel()

	if err := server.GracefulShutdown(); err != nil {
		log.Errorf("graceful shutdown: %s", err)
	}
}
