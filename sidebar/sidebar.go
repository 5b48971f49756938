package sidebar

import (
	"fmt"
	"sort"
	"time"

	"github.com/paulmach/orb"
	"github.com/samber/lo"

	"go-fleetmap/selection"
	"go-fleetmap/types"
)

type Kind string

const (
	KindFilter Kind = "filter"
	KindList   Kind = "list"
	KindStats  Kind = "stats"
)

// ParseKind maps a view name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindFilter, KindList, KindStats:
		return k, nil
	}
	return "", fmt.Errorf("unknown sidebar view %q", s)
}

// Input is the read-only snapshot a sidebar view is built from.
type Input struct {
	Zones   []types.Zone
	Taxis   []types.Taxi
	Visible []types.Taxi
	Filters selection.Filters
}

type ZoneItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
	Active bool   `json:"active"`
}

type StatusItem struct {
	Status types.TaxiStatus `json:"status"`
	Count  int              `json:"count"`
	Active bool             `json:"active"`
}

type FilterView struct {
	Zones       []ZoneItem   `json:"zones"`
	Statuses    []StatusItem `json:"statuses"`
	AllSelected bool         `json:"allSelected"`
	SearchQuery string       `json:"searchQuery"`
}

type ListItem struct {
	ID          string           `json:"id"`
	DisplayName string           `json:"displayName"`
	ZoneID      string           `json:"zoneId"`
	ZoneName    string           `json:"zoneName"`
	Status      types.TaxiStatus `json:"status"`
	Position    orb.Point        `json:"position"`
	LastUpdated time.Time        `json:"lastUpdated"`
	Selected    bool             `json:"selected"`
}

type ListView struct {
	Items       []ListItem `json:"items"`
	SearchQuery string     `json:"searchQuery"`
}

type ZoneCount struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type StatsView struct {
	Total       int                      `json:"total"`
	Visible     int                      `json:"visible"`
	ByZone      []ZoneCount              `json:"byZone"`
	ByStatus    map[types.TaxiStatus]int `json:"byStatus"`
	BusiestZone *ZoneCount               `json:"busiestZone"`
	Bounds      *orb.Bound               `json:"bounds"` // of the visible taxis
}

// Build renders the view of kind from in.
func Build(kind Kind, in Input) (any, error) {
	switch kind {
	case KindFilter:
		return Filter(in), nil
	case KindList:
		return List(in), nil
	case KindStats:
		return Stats(in), nil
	}
	return nil, fmt.Errorf("unknown sidebar view %q", kind)
}

func Filter(in Input) FilterView {
	active := lo.SliceToMap(in.Filters.ActiveZoneIDs, func(id string) (string, struct{}) {
		return id, struct{}{}
	})
	activeStatuses := lo.SliceToMap(in.Filters.ActiveStatuses, func(s types.TaxiStatus) (types.TaxiStatus, struct{}) {
		return s, struct{}{}
	})
	statusCounts := lo.CountValuesBy(in.Taxis, func(t types.Taxi) types.TaxiStatus {
		return t.Status
	})

	v := FilterView{
		Zones:       make([]ZoneItem, 0, len(in.Zones)),
		Statuses:    make([]StatusItem, 0, len(types.AllStatuses)),
		SearchQuery: in.Filters.SearchQuery,
	}
	for _, z := range in.Zones {
		_, on := active[z.ID]
		v.Zones = append(v.Zones, ZoneItem{ID: z.ID, Name: z.Name, Count: z.OccupancyCount, Active: on})
	}
	v.AllSelected = len(in.Zones) > 0 && lo.EveryBy(v.Zones, func(z ZoneItem) bool { return z.Active })

	for _, s := range types.AllStatuses {
		_, on := activeStatuses[s]
		v.Statuses = append(v.Statuses, StatusItem{Status: s, Count: statusCounts[s], Active: on})
	}
	return v
}

func List(in Input) ListView {
	names := lo.SliceToMap(in.Zones, func(z types.Zone) (string, string) {
		return z.ID, z.Name
	})
	selected := ""
	if in.Filters.SelectedID != nil {
		selected = *in.Filters.SelectedID
	}

	items := lo.Map(in.Visible, func(t types.Taxi, _ int) ListItem {
		return ListItem{
			ID:          t.ID,
			DisplayName: t.DisplayName,
			ZoneID:      t.ZoneID,
			ZoneName:    names[t.ZoneID],
			Status:      t.Status,
			Position:    t.Position,
			LastUpdated: t.LastUpdated,
			Selected:    in.Filters.SelectedID != nil && t.ID == selected,
		}
	})
	return ListView{Items: items, SearchQuery: in.Filters.SearchQuery}
}

func Stats(in Input) StatsView {
	v := StatsView{
		Total:   len(in.Taxis),
		Visible: len(in.Visible),
		ByZone:  make([]ZoneCount, 0, len(in.Zones)),
		ByStatus: lo.CountValuesBy(in.Taxis, func(t types.Taxi) types.TaxiStatus {
			return t.Status
		}),
	}
	for _, z := range in.Zones {
		v.ByZone = append(v.ByZone, ZoneCount{ID: z.ID, Name: z.Name, Count: z.OccupancyCount})
	}
	sort.SliceStable(v.ByZone, func(i, j int) bool {
		if v.ByZone[i].Count != v.ByZone[j].Count {
			return v.ByZone[i].Count > v.ByZone[j].Count
		}
		return v.ByZone[i].Name < v.ByZone[j].Name
	})
	if len(v.ByZone) > 0 && v.ByZone[0].Count > 0 {
		busiest := v.ByZone[0]
		v.BusiestZone = &busiest
	}

	if len(in.Visible) > 0 {
		points := lo.Map(in.Visible, func(t types.Taxi, _ int) orb.Point { return t.Position })
		b := orb.MultiPoint(points).Bound()
		v.Bounds = &b
	}
	return v
}
