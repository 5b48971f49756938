package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"go-fleetmap/console"
	"go-fleetmap/geocode"
	"go-fleetmap/mapview"
	"go-fleetmap/types"
)

const geocodeTimeout = 5 * time.Second

type selectRequest struct {
	TaxiID *string `json:"taxiId"`
}

type selectedResponse struct {
	Taxi     types.Taxi    `json:"taxi"`
	ZoneName string        `json:"zoneName"`
	Address  string        `json:"address,omitempty"`
	FlyTo    mapview.FlyTo `json:"flyTo"`
}

// SelectTaxi selects {"taxiId": "..."} or deselects with {"taxiId": null}.
func SelectTaxi(c *gin.Context, m *console.Manager) {
	cons, ok := lookupConsole(c, m)
	if !ok {
		return
	}
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON", "details": err.Error()})
		return
	}

	if req.TaxiID == nil || *req.TaxiID == "" {
		cons.Deselect()
	} else {
		cons.Select(*req.TaxiID)
	}
	c.JSON(http.StatusOK, cons.Filters())
}

// GetSelected returns the selected taxi with its fly-to target, and its street address
// when a geocoder is configured. Geocoding failures only drop the address.
func GetSelected(c *gin.Context, m *console.Manager, geo geocode.AddressLookup) {
	cons, ok := lookupConsole(c, m)
	if !ok {
		return
	}
	taxi, ok := cons.SelectedTaxi()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "No taxi selected",
			"details": "the selection is empty or refers to a taxi that no longer exists",
		})
		return
	}
	target, _ := cons.FlyTo()

	resp := selectedResponse{Taxi: taxi, FlyTo: target}
	if z, found := lo.Find(cons.Zones(), func(z types.Zone) bool { return z.ID == taxi.ZoneID }); found {
		resp.ZoneName = z.Name
	}

	if geo != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), geocodeTimeout)
		defer cancel()
		addr, err := geo.Address(ctx, taxi.Position)
		if err != nil {
			log.WithError(err).WithField("taxi_id", taxi.ID).Warn("Reverse geocoding failed")
		} else {
			resp.Address = addr
		}
	}
	c.JSON(http.StatusOK, resp)
}

func ToggleZone(c *gin.Context, m *console.Manager) {
	cons, ok := lookupConsole(c, m)
	if !ok {
		return
	}
	zoneID := c.Param("zoneId")
	if !lo.ContainsBy(cons.Zones(), func(z types.Zone) bool { return z.ID == zoneID }) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Zone not found", "details": zoneID})
		return
	}
	cons.ToggleZoneFilter(zoneID)
	c.JSON(http.StatusOK, cons.Filters())
}

func SelectAllZones(c *gin.Context, m *console.Manager) {
	cons, ok := lookupConsole(c, m)
	if !ok {
		return
	}
	cons.SelectAllZones()
	c.JSON(http.StatusOK, cons.Filters())
}

func ClearZones(c *gin.Context, m *console.Manager) {
	cons, ok := lookupConsole(c, m)
	if !ok {
		return
	}
	cons.ClearAllZones()
	c.JSON(http.StatusOK, cons.Filters())
}

// SetStatusFilter replaces the status filter with {"status": "..."}.
func SetStatusFilter(c *gin.Context, m *console.Manager) {
	cons, ok := lookupConsole(c, m)
	if !ok {
		return
	}
	var req struct {
		Status types.TaxiStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON", "details": err.Error()})
		return
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status", "details": string(req.Status)})
		return
	}
	cons.SetStatusFilter(req.Status)
	c.JSON(http.StatusOK, cons.Filters())
}

func ClearStatusFilter(c *gin.Context, m *console.Manager) {
	cons, ok := lookupConsole(c, m)
	if !ok {
		return
	}
	cons.ClearStatusFilter()
	c.JSON(http.StatusOK, cons.Filters())
}

// SetSearch stores {"query": "..."} verbatim; an empty query disables the search.
func SetSearch(c *gin.Context, m *console.Manager) {
	cons, ok := lookupConsole(c, m)
	if !ok {
		return
	}
	var req struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON", "details": err.Error()})
		return
	}
	cons.SetSearchQuery(req.Query)
	c.JSON(http.StatusOK, cons.Filters())
}
