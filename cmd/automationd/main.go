package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/streamspace/automationd/internal/config"
	"github.com/streamspace/automationd/internal/dispatcher"
	"github.com/streamspace/automationd/internal/hooks"
	"github.com/streamspace/automationd/internal/instance"
	"github.com/streamspace/automationd/internal/kinds"
	"github.com/streamspace/automationd/internal/logger"

	"github.com/streamspace/automationd/internal/ingress/cron"
	"github.com/streamspace/automationd/internal/ingress/webhook"
	"github.com/streamspace/automationd/internal/jobs/basic"
	"github.com/streamspace/automationd/internal/transport/inproc"
	"github.com/streamspace/automationd/internal/transport/nats"
	"github.com/streamspace/automationd/internal/transport/redis"
)

func main() {
	logLevel := getEnv("LOG_LEVEL", "info")
	logPretty := getEnv("LOG_PRETTY", "false") == "true"
	logger.Initialize(logLevel, logPretty)

	configPath := getEnv("CONFIG_FILE", "./automationd.yaml")
	shutdownTimeout := time.Duration(getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 30)) * time.Second

	log := logger.Component("main")

	raw, err := os.ReadFile(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config_file", configPath).Msg("failed to read configuration file")
	}

	doc, err := config.ParseYAML(raw)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse configuration document")
	}

	specs, err := config.Bind(kinds.Default, doc)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to bind configuration")
	}

	mgr := instance.NewManager()
	hookRegistry := hooks.New()
	d := dispatcher.New(mgr, hookRegistry)

	// Plugin packages register their Kind in their own init(); factories
	// need a live Dispatcher (and, for jobs, the Hook Registry), so they
	// are registered here rather than from init().
	instance.RegisterFactory("triggers/http_webhook", webhook.NewFactory(d))
	instance.RegisterFactory("triggers/cron", cron.NewFactory(d))
	instance.RegisterFactory("mq/nats", nats.NewFactory(d))
	instance.RegisterFactory("mq/redis", redis.NewFactory(d))
	instance.RegisterFactory("mq/inproc", inproc.NewFactory(d))
	instance.RegisterFactory("jobs/basic", basic.NewFactory(kinds.Default, hookRegistry))

	log.Info().Str("config_file", configPath).Int("spec_count", len(specs)).Msg("starting instances")

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()
	if err := mgr.Start(startCtx, kinds.Default, specs); err != nil {
		log.Fatal().Err(err).Msg("failed to start instances")
	}
	log.Info().Int("instance_count", len(mgr.Instances())).Msg("all instances ready")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("received shutdown signal, closing instances")

	closeCtx, cancelClose := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelClose()
	if err := mgr.Close(closeCtx); err != nil {
		log.Error().Err(err).Msg("one or more instances failed to close cleanly")
	}
	log.Info().Msg("shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
