package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-fleetmap/console"
	"go-fleetmap/sidebar"
)

// GetSidebar renders one of the filter, list or stats views.
func GetSidebar(c *gin.Context, m *console.Manager) {
	cons, ok := lookupConsole(c, m)
	if !ok {
		return
	}
	kind, err := sidebar.ParseKind(c.Param("view"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown sidebar view", "details": err.Error()})
		return
	}
	view, err := sidebar.Build(kind, cons.SidebarInput())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build sidebar view", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}
