package main

import (
	"fmt"
	"timegate/internal/config"
	"timegate/internal/geofence"

	"github.com/spf13/cobra"
)

// checkCommand constructs the 'check' subcommand that validates a coordinate
// against the configured geofence regions without starting the server.
func checkCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validates a coordinate against the configured geofence regions",
		Run: func(cmd *cobra.Command, args []string) {
			lat, _ := cmd.Flags().GetFloat64("lat")
			lon, _ := cmd.Flags().GetFloat64("lon")

			res := geofence.FromConfig(cfg).Validate(lat, lon)
			if res.Admitted {
				fmt.Printf("admitted: region %q, distance %.0fm\n", //nolint: forbidigo
					res.Region, res.DistanceMeters)

				return
			}
			fmt.Printf("rejected: closest region %q at %.0fm, allowed radius %.0fm\n", //nolint: forbidigo
				res.Region, res.DistanceMeters, res.AllowedRadiusMeters)
		},
	}

	cmd.Flags().Float64("lat", 0, "Latitude in decimal degrees")
	cmd.Flags().Float64("lon", 0, "Longitude in decimal degrees")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")

	return cmd
}
