package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-fleetmap/db"
)

// GetLatestOccupancy returns the most recent persisted snapshot of a session.
// Snapshots outlive their session, so the session does not have to be open.
func GetLatestOccupancy(c *gin.Context, store db.Store) {
	sessionID := c.Param("sessionId")
	snap, err := store.LatestOccupancy(c.Request.Context(), sessionID)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No occupancy snapshot", "details": sessionID})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read occupancy", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}
