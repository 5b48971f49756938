package zones

import (
	"github.com/paulmach/orb"

	"go-fleetmap/types"
)

// brussels holds the 19 communes of the Brussels-Capital Region with an approximate center.
var brussels = []types.Zone{
	{ID: "anderlecht", Name: "Anderlecht", Center: orb.Point{4.3075, 50.8365}},
	{ID: "auderghem", Name: "Auderghem", Center: orb.Point{4.4266, 50.8156}},
	{ID: "berchem-sainte-agathe", Name: "Berchem-Sainte-Agathe", Center: orb.Point{4.2925, 50.8650}},
	{ID: "bruxelles", Name: "Bruxelles", Center: orb.Point{4.3517, 50.8466}},
	{ID: "etterbeek", Name: "Etterbeek", Center: orb.Point{4.3890, 50.8333}},
	{ID: "evere", Name: "Evere", Center: orb.Point{4.4036, 50.8707}},
	{ID: "forest", Name: "Forest", Center: orb.Point{4.3245, 50.8103}},
	{ID: "ganshoren", Name: "Ganshoren", Center: orb.Point{4.3087, 50.8714}},
	{ID: "ixelles", Name: "Ixelles", Center: orb.Point{4.3720, 50.8270}},
	{ID: "jette", Name: "Jette", Center: orb.Point{4.3260, 50.8790}},
	{ID: "koekelberg", Name: "Koekelberg", Center: orb.Point{4.3290, 50.8620}},
	{ID: "molenbeek-saint-jean", Name: "Molenbeek-Saint-Jean", Center: orb.Point{4.3220, 50.8550}},
	{ID: "saint-gilles", Name: "Saint-Gilles", Center: orb.Point{4.3450, 50.8270}},
	{ID: "saint-josse-ten-noode", Name: "Saint-Josse-ten-Noode", Center: orb.Point{4.3730, 50.8530}},
	{ID: "schaerbeek", Name: "Schaerbeek", Center: orb.Point{4.3780, 50.8670}},
	{ID: "uccle", Name: "Uccle", Center: orb.Point{4.3370, 50.8000}},
	{ID: "watermael-boitsfort", Name: "Watermael-Boitsfort", Center: orb.Point{4.4150, 50.7990}},
	{ID: "woluwe-saint-lambert", Name: "Woluwe-Saint-Lambert", Center: orb.Point{4.4300, 50.8470}},
	{ID: "woluwe-saint-pierre", Name: "Woluwe-Saint-Pierre", Center: orb.Point{4.4430, 50.8300}},
}

// Default returns a fresh registry of the Brussels communes.
func Default() *Registry {
	r, err := NewRegistry(brussels)
	if err != nil {
		// compiled-in list, cannot fail
		panic(err)
	}
	return r
}
