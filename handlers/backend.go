package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-fleetmap/backend"
)

// backendStatus maps a backend failure to the status the console answers with.
func backendStatus(err error) int {
	var se *backend.StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

func listResource(ctx context.Context, bc *backend.Client, r backend.Resource) (any, error) {
	switch r {
	case backend.Drivers:
		return backend.List[backend.Driver](ctx, bc, r)
	case backend.Vehicles:
		return backend.List[backend.Vehicle](ctx, bc, r)
	case backend.Shifts:
		return backend.List[backend.Shift](ctx, bc, r)
	default:
		return backend.List[backend.MediaFile](ctx, bc, r)
	}
}

func getResource(ctx context.Context, bc *backend.Client, r backend.Resource, id string) (any, error) {
	switch r {
	case backend.Drivers:
		return backend.Get[backend.Driver](ctx, bc, r, id)
	case backend.Vehicles:
		return backend.Get[backend.Vehicle](ctx, bc, r, id)
	case backend.Shifts:
		return backend.Get[backend.Shift](ctx, bc, r, id)
	default:
		return backend.Get[backend.MediaFile](ctx, bc, r, id)
	}
}

// ListBackend proxies GET /backend/:resource to the fleet backend.
func ListBackend(c *gin.Context, bc *backend.Client) {
	r, err := backend.ParseResource(c.Param("resource"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown resource", "details": err.Error()})
		return
	}
	items, err := listResource(c.Request.Context(), bc, r)
	if err != nil {
		c.JSON(backendStatus(err), gin.H{"error": "Backend request failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetBackend proxies GET /backend/:resource/:id to the fleet backend.
func GetBackend(c *gin.Context, bc *backend.Client) {
	r, err := backend.ParseResource(c.Param("resource"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown resource", "details": err.Error()})
		return
	}
	item, err := getResource(c.Request.Context(), bc, r, c.Param("id"))
	if err != nil {
		c.JSON(backendStatus(err), gin.H{"error": "Backend request failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}
