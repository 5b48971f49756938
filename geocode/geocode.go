package geocode

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
	"googlemaps.github.io/maps"
)

// AddressLookup turns a map position into a street address.
type AddressLookup interface {
	Address(ctx context.Context, p orb.Point) (string, error)
}

// Geocoder reverse geocodes with the Google Maps API.
type Geocoder struct {
	client *maps.Client
}

// New returns nil without an API key, so callers can treat geocoding as optional.
func New(apiKey string) (*Geocoder, error) {
	if apiKey == "" {
		return nil, nil
	}
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &Geocoder{client: client}, nil
}

// Address returns the formatted address of the first reverse geocoding result for p.
func (g *Geocoder) Address(ctx context.Context, p orb.Point) (string, error) {
	req := &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: p.Lat(), Lng: p.Lon()},
	}

	results, err := g.client.ReverseGeocode(ctx, req)
	if err != nil {
		return "", fmt.Errorf("reverse geocoding %v: %w", p, err)
	}
	if len(results) == 0 {
		return "", nil
	}
	return results[0].FormattedAddress, nil
}
