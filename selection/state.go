package selection

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"go-fleetmap/types"
)

// State is the filter and selection state of one console page.
// It is not safe for concurrent use; the owning console serialises access.
type State struct {
	activeZones    map[string]struct{}
	activeStatuses map[types.TaxiStatus]struct{}
	selectedID     string
	hasSelection   bool
	searchQuery    string
}

// Filters is a serialisable copy of a State.
type Filters struct {
	ActiveZoneIDs  []string           `json:"activeZoneIds"`
	ActiveStatuses []types.TaxiStatus `json:"activeStatuses"`
	SelectedID     *string            `json:"selectedTaxiId"`
	SearchQuery    string             `json:"searchQuery"`
}

func New() *State {
	return &State{
		activeZones:    make(map[string]struct{}),
		activeStatuses: make(map[types.TaxiStatus]struct{}),
	}
}

// Select marks id as the selected taxi. The id is not checked against the fleet.
func (s *State) Select(id string) {
	s.selectedID = id
	s.hasSelection = true
}

func (s *State) Deselect() {
	s.selectedID = ""
	s.hasSelection = false
}

func (s *State) Selected() (string, bool) {
	return s.selectedID, s.hasSelection
}

func (s *State) ToggleZoneFilter(zoneID string) {
	if _, ok := s.activeZones[zoneID]; ok {
		delete(s.activeZones, zoneID)
		return
	}
	s.activeZones[zoneID] = struct{}{}
}

// SelectAllZones replaces the zone filter with ids.
func (s *State) SelectAllZones(ids []string) {
	s.activeZones = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.activeZones[id] = struct{}{}
	}
}

func (s *State) ClearAllZones() {
	s.activeZones = make(map[string]struct{})
}

func (s *State) ZoneActive(zoneID string) bool {
	_, ok := s.activeZones[zoneID]
	return ok
}

// SetStatusFilter replaces the status filter with the single value status.
func (s *State) SetStatusFilter(status types.TaxiStatus) {
	s.activeStatuses = map[types.TaxiStatus]struct{}{status: {}}
}

func (s *State) ClearStatusFilter() {
	s.activeStatuses = make(map[types.TaxiStatus]struct{})
}

func (s *State) StatusActive(status types.TaxiStatus) bool {
	_, ok := s.activeStatuses[status]
	return ok
}

// SetSearchQuery stores text as is; case folding happens when matching.
func (s *State) SetSearchQuery(text string) {
	s.searchQuery = text
}

func (s *State) SearchQuery() string {
	return s.searchQuery
}

// Visible returns the taxis passing the zone, status and search filters, in input order.
func (s *State) Visible(taxis []types.Taxi, zs []types.Zone) []types.Taxi {
	zoneNames := lo.SliceToMap(zs, func(z types.Zone) (string, string) {
		return z.ID, z.Name
	})
	query := strings.ToLower(s.searchQuery)

	return lo.Filter(taxis, func(t types.Taxi, _ int) bool {
		return s.passes(t, zoneNames, query)
	})
}

// Passes reports whether a single taxi is visible under the current filters.
func (s *State) Passes(t types.Taxi, zs []types.Zone) bool {
	zoneNames := lo.SliceToMap(zs, func(z types.Zone) (string, string) {
		return z.ID, z.Name
	})
	return s.passes(t, zoneNames, strings.ToLower(s.searchQuery))
}

func (s *State) passes(t types.Taxi, zoneNames map[string]string, query string) bool {
	if len(s.activeZones) > 0 {
		if _, ok := s.activeZones[t.ZoneID]; !ok {
			return false
		}
	}
	if len(s.activeStatuses) > 0 {
		if _, ok := s.activeStatuses[t.Status]; !ok {
			return false
		}
	}
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.DisplayName), query) ||
		strings.Contains(strings.ToLower(t.ID), query) ||
		strings.Contains(strings.ToLower(zoneNames[t.ZoneID]), query)
}

func (s *State) Snapshot() Filters {
	f := Filters{
		ActiveZoneIDs:  lo.Keys(s.activeZones),
		ActiveStatuses: lo.Keys(s.activeStatuses),
		SearchQuery:    s.searchQuery,
	}
	sort.Strings(f.ActiveZoneIDs)
	sort.Slice(f.ActiveStatuses, func(i, j int) bool {
		return f.ActiveStatuses[i] < f.ActiveStatuses[j]
	})
	if s.hasSelection {
		id := s.selectedID
		f.SelectedID = &id
	}
	return f
}
