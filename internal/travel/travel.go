// Package travel computes travel distance and time between visit locations.
package travel

import (
	"context"
	"math"
)

// Leg sources
const (
	SourceProvider = "provider" // external routing API
	SourceEstimate = "estimate" // haversine estimate
	SourceCache    = "cache"    // earlier result from the cache
	SourceUnknown  = "unknown"  // a stop has no coordinates
)

const (
	earthRadiusM = 6371000.0
	// roadFactor straight-line to road distance ratio used by the estimate
	roadFactor = 1.3
)

// Point WGS84 coordinates
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Leg travel between two points
type Leg struct {
	DistanceM int    `json:"distance_m"`
	DurationS int    `json:"duration_s"`
	Source    string `json:"source"`
}

// Provider resolves the travel leg between two points.
type Provider interface {
	Leg(ctx context.Context, from, to Point) (Leg, error)
}

// HaversineMeters great-circle distance between a and b.
func HaversineMeters(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusM * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Estimate road distance and driving time at speedKMH.
func Estimate(from, to Point, speedKMH float64) Leg {
	if speedKMH <= 0 {
		speedKMH = 30
	}
	meters := HaversineMeters(from, to) * roadFactor
	seconds := meters / (speedKMH * 1000 / 3600)
	return Leg{
		DistanceM: int(math.Round(meters)),
		DurationS: int(math.Round(seconds)),
		Source:    SourceEstimate,
	}
}

// Haversine provider backed only by Estimate.
type Haversine struct {
	SpeedKMH float64
}

// Leg implements Provider.
func (h Haversine) Leg(_ context.Context, from, to Point) (Leg, error) {
	return Estimate(from, to, h.SpeedKMH), nil
}
