package mapview

import (
	"github.com/paulmach/orb"
)

// Viewport is the initial camera handed to the widget before it loads.
type Viewport struct {
	Style   string    `json:"style"`
	Center  orb.Point `json:"center"`
	Zoom    float64   `json:"zoom"`
	Pitch   float64   `json:"pitch"`
	Bearing float64   `json:"bearing"`
}

// Marker is the visual of one taxi.
type Marker struct {
	TaxiID      string      `json:"taxiId"`
	DisplayName string      `json:"displayName"`
	Position    orb.Point   `json:"position"`
	Style       MarkerStyle `json:"style"`
}

// FlyTo is a camera transition towards Center.
type FlyTo struct {
	TaxiID  string    `json:"taxiId"`
	Center  orb.Point `json:"center"`
	Zoom    float64   `json:"zoom"`
	Pitch   float64   `json:"pitch"`
	Bearing float64   `json:"bearing"`
}

// Widget is the interactive map running outside the process (the browser).
// A View owns its widget for the widget's whole lifetime.
type Widget interface {
	Init(Viewport) error
	AddMarker(Marker) error
	UpdateMarker(Marker) error
	RemoveMarker(taxiID string) error
	FlyTo(FlyTo) error
	Close() error
}
