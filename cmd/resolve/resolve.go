// Package resolve implements the one-shot species resolution command.
package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/naturecast/naturecast-go/internal/conf"
	"github.com/naturecast/naturecast-go/internal/errors"
	"github.com/naturecast/naturecast-go/internal/gbif"
	"github.com/naturecast/naturecast-go/internal/species"
	"github.com/naturecast/naturecast-go/internal/taxonomy"
)

// Command creates the resolve command which performs a single species
// resolution and prints the result to stdout as JSON.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		lat   float64
		lon   float64
		class string
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a species for a coordinate",
		Long:  "Run the resolution cascade once for the given coordinate and print the result as JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(settings, lat, lon, class, all)
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", viper.GetFloat64("resolve.lat"), "Latitude of the observation point")
	cmd.Flags().Float64Var(&lon, "lon", viper.GetFloat64("resolve.lon"), "Longitude of the observation point")
	cmd.Flags().StringVar(&class, "class", "", "Taxonomic class (birds, mammals, fish, reptiles, amphibians); random when empty")
	cmd.Flags().BoolVar(&all, "all", false, "Print the full candidate list instead of a single selection")
	if err := cmd.MarkFlagRequired("lat"); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.MarkFlagRequired("lon"); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// runResolve builds the resolver, runs the cascade once and prints JSON.
func runResolve(settings *conf.Settings, lat, lon float64, class string, all bool) error {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return errors.ValidationError(fmt.Sprintf("coordinate out of range: (%f, %f)", lat, lon))
	}

	client, err := gbif.NewClient(gbif.Config{
		Endpoint:         settings.GBIF.Endpoint,
		Timeout:          time.Duration(settings.GBIF.TimeoutSeconds) * time.Second,
		ResultLimit:      settings.GBIF.ResultLimit,
		MaxRetries:       settings.GBIF.MaxRetries,
		FailureThreshold: settings.GBIF.FailureThreshold,
		OpenWindow:       time.Duration(settings.GBIF.OpenSeconds) * time.Second,
	}, nil)
	if err != nil {
		return fmt.Errorf("error creating occurrence client: %w", err)
	}
	defer client.Close()

	resolver := species.NewResolver(species.Config{
		DesiredCount:     settings.Resolver.DesiredCount,
		NarrowRadiusKm:   settings.Resolver.NarrowRadiusKm,
		ExpandedRadiusKm: settings.Resolver.ExpandedRadiusKm,
		CacheMaxPerClass: settings.Resolver.CacheMaxPerClass,
		CooldownWindow:   time.Duration(settings.Resolver.CooldownHours) * time.Hour,
	}, client, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	if all {
		taxClass, ok := taxonomy.ClassByName(class)
		if class == "" {
			taxClass = taxonomy.RandomClass()
		} else if !ok {
			return fmt.Errorf("unknown taxonomic class: %s", class)
		}
		candidates := resolver.Resolve(ctx, lat, lon, taxClass)
		return encoder.Encode(candidates)
	}

	candidate, err := resolver.SelectSpecies(ctx, lat, lon, class)
	if err != nil {
		return err
	}
	return encoder.Encode(candidate)
}
