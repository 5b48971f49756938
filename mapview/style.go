package mapview

import "go-fleetmap/types"

// MarkerStyle is how a taxi marker is drawn by the map widget.
type MarkerStyle struct {
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// markerStyles must hold one entry per value of types.AllStatuses.
var markerStyles = map[types.TaxiStatus]MarkerStyle{
	types.StatusAvailable: {Color: "#22c55e", Icon: "taxi-available"},
}

// StyleFor returns the marker style of status. ok is false for a status without a style.
func StyleFor(status types.TaxiStatus) (style MarkerStyle, ok bool) {
	style, ok = markerStyles[status]
	return style, ok
}
