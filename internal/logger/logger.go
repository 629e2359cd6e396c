package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Global logger instance
var (
	Log zerolog.Logger
)

// Initialize sets up the global logger with configuration
func Initialize(level string, pretty bool) {
	// Parse log level
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	// Configure output format
	if pretty {
		// Pretty console output for development
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	}

	// Set global logger
	Log = log.With().
		Str("service", "automationd").
		Logger()

	Log.Info().
		Str("level", logLevel.String()).
		Bool("pretty", pretty).
		Msg("Logger initialized")
}

// GetLogger returns the global logger instance
func GetLogger() *zerolog.Logger {
	return &Log
}

// Component returns a child logger scoped to a named subsystem, e.g. a
// component_namespace such as "triggers" or "mq".
func Component(name string) *zerolog.Logger {
	l := Log.With().Str("component", name).Logger()
	return &l
}

// Kind returns a child logger scoped to a specific Kind, identified by its
// component namespace and plugin type.
func Kind(namespace, pluginType string) *zerolog.Logger {
	l := Log.With().Str("component_namespace", namespace).Str("plugin_type", pluginType).Logger()
	return &l
}

// Instance returns a child logger scoped to a running Instance, identified
// by its Kind and instance name.
func Instance(namespace, pluginType, name string) *zerolog.Logger {
	l := Log.With().
		Str("component_namespace", namespace).
		Str("plugin_type", pluginType).
		Str("instance", name).
		Logger()
	return &l
}
