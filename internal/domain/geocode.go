package domain

import (
	"context"
	"fmt"
	"log/slog"
	"math"
)

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Geocoder resolves between free-text locations and coordinates.
type Geocoder interface {
	// ForwardGeocode converts a location name to coordinates.
	ForwardGeocode(ctx context.Context, location string) (GeocodingResult, error)

	// ReverseGeocode converts coordinates to place details.
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}

// EnrichPlaces returns a copy of ds whose records carry the reverse-geocoded
// address of their coordinates in Place. Each distinct coordinate is looked up
// once. Lookup failures are logged and leave Place empty. A nil geocoder
// returns ds unchanged.
func EnrichPlaces(ctx context.Context, ds *Dataset, geocoder Geocoder, logger *slog.Logger) *Dataset {
	if geocoder == nil || ds == nil {
		return ds
	}

	out := *ds
	out.Records = make([]FloodRecord, len(ds.Records))
	copy(out.Records, ds.Records)

	places := make(map[string]string)
	var failed int
	for i := range out.Records {
		rec := &out.Records[i]
		key := coordKey(rec.Latitude, rec.Longitude)
		if place, ok := places[key]; ok {
			rec.Place = place
			continue
		}
		if ctx.Err() != nil {
			break
		}
		result, err := geocoder.ReverseGeocode(ctx, rec.Latitude, rec.Longitude)
		if err != nil {
			failed++
			logger.Warn("reverse geocoding failed",
				"record_id", rec.ID,
				"lat", rec.Latitude,
				"lon", rec.Longitude,
				"error", err,
			)
			places[key] = ""
			continue
		}
		places[key] = result.FormattedAddress
		rec.Place = result.FormattedAddress
	}

	logger.Info("reverse geocoding complete",
		"records", len(out.Records),
		"coordinates", len(places),
		"failed", failed,
	)
	return &out
}

func coordKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two coordinates.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}
