package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"go-fleetmap/console"
	"go-fleetmap/types"
)

type createSessionRequest struct {
	Count    *int               `json:"count"`
	Document *types.MapDocument `json:"document"`
}

type sessionResponse struct {
	ID       string            `json:"id"`
	Ticks    int               `json:"ticks"`
	Filters  any               `json:"filters"`
	Document types.MapDocument `json:"document"`
}

func sessionBody(cons *console.Console) sessionResponse {
	return sessionResponse{
		ID:       cons.ID(),
		Ticks:    cons.Ticks(),
		Filters:  cons.Filters(),
		Document: cons.Document(),
	}
}

// lookupConsole answers 404 and returns false when the :id session does not exist.
func lookupConsole(c *gin.Context, m *console.Manager) (*console.Console, bool) {
	cons, err := m.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Session not found",
			"details": err.Error(),
		})
		return nil, false
	}
	return cons, true
}

// CreateSession opens a console, either generated (optional "count") or from a "document".
func CreateSession(c *gin.Context, m *console.Manager) {
	var req createSessionRequest
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body", "details": err.Error()})
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON", "details": err.Error()})
			return
		}
	}

	var cons *console.Console
	switch {
	case req.Document != nil:
		cons, err = m.CreateFromDocument(*req.Document)
	case req.Count != nil:
		cons, err = m.Create(*req.Count)
	default:
		cons, err = m.Create(-1)
	}
	if errors.Is(err, console.ErrInvalidDocument) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid map document", "details": err.Error()})
		return
	}
	if err != nil {
		log.WithError(err).Error("Failed to open console")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open session", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, sessionBody(cons))
}

func ListSessions(c *gin.Context, m *console.Manager) {
	type item struct {
		ID    string `json:"id"`
		Ticks int    `json:"ticks"`
		Taxis int    `json:"taxis"`
	}
	consoles := m.List()
	out := make([]item, 0, len(consoles))
	for _, cons := range consoles {
		_, total := cons.Occupancy()
		out = append(out, item{ID: cons.ID(), Ticks: cons.Ticks(), Taxis: total})
	}
	c.JSON(http.StatusOK, out)
}

func GetSession(c *gin.Context, m *console.Manager) {
	cons, ok := lookupConsole(c, m)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sessionBody(cons))
}

// DeleteSession is the page teardown: the tick job is cancelled and the widget released.
func DeleteSession(c *gin.Context, m *console.Manager) {
	if err := m.Remove(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found", "details": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// TickSession runs one simulation step right away.
func TickSession(c *gin.Context, m *console.Manager) {
	cons, ok := lookupConsole(c, m)
	if !ok {
		return
	}
	cons.Tick()
	c.JSON(http.StatusOK, sessionBody(cons))
}

func GetZones(c *gin.Context, m *console.Manager) {
	cons, ok := lookupConsole(c, m)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, cons.Zones())
}

// GetTaxis returns the whole fleet, or the filtered one with ?visible=true.
func GetTaxis(c *gin.Context, m *console.Manager) {
	cons, ok := lookupConsole(c, m)
	if !ok {
		return
	}
	taxis := cons.Taxis()
	if c.Query("visible") == "true" {
		taxis = cons.Visible()
	}
	if taxis == nil {
		taxis = []types.Taxi{}
	}
	c.JSON(http.StatusOK, taxis)
}
