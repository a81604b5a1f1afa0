// Package search implements the one-shot CLI search command.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wildscout/wildscout-go/internal/app"
	"github.com/wildscout/wildscout-go/internal/conf"
	"github.com/wildscout/wildscout-go/internal/search"
)

const searchTimeout = 60 * time.Second

// Command creates the search command.
func Command(settings *conf.Settings) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search [location]",
		Short: "Search for wildlife sightings near a location",
		Long: "Run one search against the configured sighting sources and print " +
			"the classified results. The location is free text (\"Central Park\") " +
			"or a raw \"lat,lon\" pair.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(settings, strings.Join(args, " "), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}

func runSearch(settings *conf.Settings, location string, asJSON bool) error {
	application, err := app.New(settings)
	if err != nil {
		return err
	}
	defer application.Close()

	ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
	defer cancel()

	// The local CLI is the operator's own tool; the free-tier limit only
	// applies to API callers.
	result, err := application.Search.Search(ctx, search.Query{LocationText: location},
		search.AuthState{IsAuthenticated: true, CallerID: "cli"})
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(result, location)
	return nil
}

func printResult(result *search.Result, location string) {
	if result.NoMatch {
		fmt.Printf("No location match for %q\n", location)
		return
	}

	fmt.Printf("Found %d sightings within %.1f km of %s (%.4f, %.4f)\n\n",
		len(result.Sightings), result.RadiusKm, location, result.Center.Lat, result.Center.Lon)

	for i, s := range result.Sightings {
		tags := make([]string, 0, 2)
		if s.IsDangerous {
			tags = append(tags, "dangerous")
		}
		if s.Rarity != "" {
			tags = append(tags, string(s.Rarity))
		}

		fmt.Printf("%2d. %s", i+1, s.CommonName)
		if s.ScientificName != "" {
			fmt.Printf(" (%s)", s.ScientificName)
		}
		fmt.Printf("  %.2f km  [%s]  via %s\n", s.DistanceKm, strings.Join(tags, ", "), s.Source)
	}

	if len(result.SourceCounts) > 0 {
		fmt.Println()
		for _, sc := range result.SourceCounts {
			fmt.Printf("%s: %d records\n", sc.Source, sc.Count)
		}
	}
}
