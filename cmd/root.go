// Package cmd wires the CLI commands together.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	searchcmd "github.com/wildscout/wildscout-go/cmd/search"
	"github.com/wildscout/wildscout-go/cmd/serve"
	"github.com/wildscout/wildscout-go/internal/conf"
)

// RootCommand creates and returns the root command.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wildscout",
		Short: "WildScout CLI",
		Long:  "Location-based wildlife sighting search across iNaturalist, eBird and GBIF.",
	}

	setupFlags(rootCmd, settings)

	rootCmd.AddCommand(
		serve.Command(settings),
		searchcmd.Command(settings),
	)

	return rootCmd
}

// setupFlags configures global flags shared by all subcommands.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().Float64Var(&settings.Search.DefaultRadius, "radius", viper.GetFloat64("search.defaultradius"), "Default search radius")
	rootCmd.PersistentFlags().StringVar(&settings.Search.DefaultUnit, "unit", viper.GetString("search.defaultunit"), "Radius unit (km or miles)")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		cobra.CheckErr(err)
	}
}
