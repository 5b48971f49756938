package types

import "github.com/paulmach/orb"

// Zone is a commune of the map. OccupancyCount is overwritten by the aggregator only.
type Zone struct {
	ID             string    `json:"id" yaml:"id"`
	Name           string    `json:"name" yaml:"name"`
	Center         orb.Point `json:"center" yaml:"center"` // [lon, lat]
	OccupancyCount int       `json:"occupancyCount" yaml:"-"`
}

// MapDocument is the JSON form of a console's zones and taxis.
type MapDocument struct {
	Zones    []Zone `json:"zones"`
	Entities []Taxi `json:"entities"`
}
