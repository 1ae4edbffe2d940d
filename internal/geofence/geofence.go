// Package geofence decides whether reported coordinates fall inside one of
// the configured circular regions. Validation is pure and stateless: the
// region set is copied at construction and never mutated, so a single
// Validator is safe for concurrent use across requests.
package geofence

import (
	"math"
	"slices"
	"timegate/internal/config"
)

// EarthRadiusMeters is the mean Earth radius used by the Haversine distance.
const EarthRadiusMeters = 6371000

// DynamicRegionName is the marker region reported when validation is
// bypassed, either because dynamic mode is enabled or because no regions
// are configured.
const DynamicRegionName = "dynamic"

// Region is a named circular boundary around a reference point.
type Region struct {
	Name         string  `json:"name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radiusMeters"`
}

// Result is the outcome of a validation. When Admitted is true, Region names
// the first configured region containing the point. When false, Region names
// the closest configured region so the caller knows how far outside the
// boundary they are. DistanceMeters is carried in both cases and is rounded
// to the nearest meter for reporting.
type Result struct {
	Admitted            bool    `json:"admitted"`
	Region              string  `json:"region"`
	DistanceMeters      float64 `json:"distanceMeters"`
	AllowedRadiusMeters float64 `json:"allowedRadiusMeters"`
}

// Validator checks coordinates against an immutable region set.
type Validator struct {
	regions []Region
	dynamic bool
}

// New builds a Validator over a private copy of regions. When dynamic is
// true the geofence is disabled and every coordinate is admitted; callers
// should surface that mode loudly at startup.
func New(regions []Region, dynamic bool) *Validator {
	return &Validator{regions: slices.Clone(regions), dynamic: dynamic}
}

// FromConfig builds a Validator from the application configuration.
func FromConfig(cfg *config.Config) *Validator {
	regions := make([]Region, 0, len(cfg.Geofence.Regions))
	for _, r := range cfg.Geofence.Regions {
		regions = append(regions, Region{
			Name:         r.Name,
			Latitude:     r.Latitude,
			Longitude:    r.Longitude,
			RadiusMeters: r.RadiusMeters,
		})
	}

	return New(regions, cfg.Geofence.Dynamic)
}

// Dynamic reports whether the validator admits unconditionally. An empty
// region set behaves the same as the explicit dynamic flag.
func (v *Validator) Dynamic() bool { return v.dynamic || len(v.regions) == 0 }

// Regions returns a copy of the configured region list in its original order.
func (v *Validator) Regions() []Region { return slices.Clone(v.regions) }

// Validate decides admission for the given coordinate.
//
// Regions are checked in configuration order and the first region whose
// center is within its radius of the point wins (boundary inclusive). This
// is a first-match policy: on overlap the earlier-configured region is
// reported. When no region admits the point, the minimum-distance region is
// reported as closest; exact distance ties resolve to the first tying region
// in configuration order.
func (v *Validator) Validate(lat, lon float64) Result {
	if v.Dynamic() {
		return Result{Admitted: true, Region: DynamicRegionName}
	}

	var closest Region
	minDist := math.Inf(1)
	for _, r := range v.regions {
		d := Haversine(lat, lon, r.Latitude, r.Longitude)
		if d <= r.RadiusMeters {
			return Result{
				Admitted:            true,
				Region:              r.Name,
				DistanceMeters:      math.Round(d),
				AllowedRadiusMeters: r.RadiusMeters,
			}
		}
		// strict comparison keeps the first of exact ties
		if d < minDist {
			minDist = d
			closest = r
		}
	}

	return Result{
		Region:              closest.Name,
		DistanceMeters:      math.Round(minDist),
		AllowedRadiusMeters: closest.RadiusMeters,
	}
}

// Haversine returns the great-circle distance in meters between two points
// given as latitude/longitude pairs in decimal degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180

	phi1 := lat1 * degToRad
	phi2 := lat2 * degToRad
	deltaPhi := (lat2 - lat1) * degToRad
	deltaLambda := (lon2 - lon1) * degToRad

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)

	return 2 * EarthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
