// Package serve implements the HTTP API server command.
package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/naturecast/naturecast-go/internal/conf"
	"github.com/naturecast/naturecast-go/internal/gbif"
	"github.com/naturecast/naturecast-go/internal/httpcontroller"
	"github.com/naturecast/naturecast-go/internal/logging"
	"github.com/naturecast/naturecast-go/internal/narration"
	"github.com/naturecast/naturecast-go/internal/observability/metrics"
	"github.com/naturecast/naturecast-go/internal/session"
	"github.com/naturecast/naturecast-go/internal/species"
	"github.com/naturecast/naturecast-go/internal/weather"
)

// shutdownTimeout bounds how long in-flight requests may run after SIGTERM.
const shutdownTimeout = 10 * time.Second

// Command creates the serve command which runs the HTTP API server.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long:  "Start the JSON API serving species resolution and encounter sessions.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the serve command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.WebServer.Host, "host", viper.GetString("webserver.host"), "Address to bind the HTTP server to")
	cmd.Flags().StringVar(&settings.WebServer.Port, "port", viper.GetString("webserver.port"), "Port to listen on")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}

// runServer wires the full service graph and blocks until shutdown.
func runServer(settings *conf.Settings) error {
	registry := prometheus.NewRegistry()

	gbifMetrics, err := metrics.NewGBIFMetrics(registry)
	if err != nil {
		return fmt.Errorf("error creating upstream metrics: %w", err)
	}
	resolverMetrics, err := metrics.NewResolverMetrics(registry)
	if err != nil {
		return fmt.Errorf("error creating resolver metrics: %w", err)
	}

	client, err := gbif.NewClient(gbif.Config{
		Endpoint:         settings.GBIF.Endpoint,
		Timeout:          time.Duration(settings.GBIF.TimeoutSeconds) * time.Second,
		ResultLimit:      settings.GBIF.ResultLimit,
		MaxRetries:       settings.GBIF.MaxRetries,
		FailureThreshold: settings.GBIF.FailureThreshold,
		OpenWindow:       time.Duration(settings.GBIF.OpenSeconds) * time.Second,
	}, gbifMetrics)
	if err != nil {
		return fmt.Errorf("error creating occurrence client: %w", err)
	}

	resolver := species.NewResolver(species.Config{
		DesiredCount:     settings.Resolver.DesiredCount,
		NarrowRadiusKm:   settings.Resolver.NarrowRadiusKm,
		ExpandedRadiusKm: settings.Resolver.ExpandedRadiusKm,
		CacheMaxPerClass: settings.Resolver.CacheMaxPerClass,
		CooldownWindow:   time.Duration(settings.Resolver.CooldownHours) * time.Hour,
	}, client, resolverMetrics)

	var weatherSource session.WeatherSource
	if settings.Weather.Provider != "none" {
		weatherService, err := weather.NewService(settings)
		if err != nil {
			return fmt.Errorf("error creating weather service: %w", err)
		}
		weatherSource = weatherService
	}

	narrator, err := narration.NewGenerator(settings)
	if err != nil {
		return fmt.Errorf("error creating narration generator: %w", err)
	}

	sessions := session.NewService(resolver, weatherSource, narrator)
	server := httpcontroller.New(settings, sessions, resolver, client, registry)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logging.Info("Shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(ctx)
}
