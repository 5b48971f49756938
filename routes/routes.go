package routes

import (
	"net/http"

	"github.com/easonlin404/limit"
	"github.com/gin-gonic/gin"

	"go-fleetmap/backend"
	"go-fleetmap/console"
	"go-fleetmap/db"
	"go-fleetmap/geocode"
	"go-fleetmap/handlers"
)

// Deps are the services the handlers are injected with.
type Deps struct {
	Manager       *console.Manager
	Store         db.Store
	Geocoder      geocode.AddressLookup // nil disables reverse geocoding
	Backend       *backend.Client
	ClientURL     string
	ExportDir     string
	MaxConcurrent int
}

// cors allows the console SPA at clientURL to call the API.
func cors(clientURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := clientURL
		if origin == "" {
			origin = "*"
		}
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.Default()
	if d.MaxConcurrent > 0 {
		r.Use(limit.Limit(d.MaxConcurrent))
	}
	r.Use(cors(d.ClientURL))

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Hello, welcome to Go Fleetmap!",
		})
	})

	m := d.Manager
	upgrader := handlers.NewUpgrader(d.ClientURL)

	api := r.Group("/api/fleetmap")
	{
		api.POST("/sessions", func(c *gin.Context) { handlers.CreateSession(c, m) })
		api.GET("/sessions", func(c *gin.Context) { handlers.ListSessions(c, m) })
		api.GET("/sessions/:id", func(c *gin.Context) { handlers.GetSession(c, m) })
		api.DELETE("/sessions/:id", func(c *gin.Context) { handlers.DeleteSession(c, m) })
		api.POST("/sessions/:id/tick", func(c *gin.Context) { handlers.TickSession(c, m) })
		api.GET("/sessions/:id/zones", func(c *gin.Context) { handlers.GetZones(c, m) })
		api.GET("/sessions/:id/taxis", func(c *gin.Context) { handlers.GetTaxis(c, m) })

		api.POST("/sessions/:id/select", func(c *gin.Context) { handlers.SelectTaxi(c, m) })
		api.GET("/sessions/:id/selected", func(c *gin.Context) { handlers.GetSelected(c, m, d.Geocoder) })
		api.POST("/sessions/:id/filters/zones/:zoneId/toggle", func(c *gin.Context) { handlers.ToggleZone(c, m) })
		api.PUT("/sessions/:id/filters/zones", func(c *gin.Context) { handlers.SelectAllZones(c, m) })
		api.DELETE("/sessions/:id/filters/zones", func(c *gin.Context) { handlers.ClearZones(c, m) })
		api.PUT("/sessions/:id/filters/status", func(c *gin.Context) { handlers.SetStatusFilter(c, m) })
		api.DELETE("/sessions/:id/filters/status", func(c *gin.Context) { handlers.ClearStatusFilter(c, m) })
		api.PUT("/sessions/:id/search", func(c *gin.Context) { handlers.SetSearch(c, m) })

		api.GET("/sessions/:id/sidebar/:view", func(c *gin.Context) { handlers.GetSidebar(c, m) })
		api.POST("/sessions/:id/export", func(c *gin.Context) { handlers.ExportSession(c, m, d.ExportDir) })
		api.GET("/sessions/:id/ws", func(c *gin.Context) { handlers.ServeMapSocket(c, m, &upgrader) })

		api.GET("/occupancy/:sessionId/latest", func(c *gin.Context) { handlers.GetLatestOccupancy(c, d.Store) })

		api.GET("/backend/:resource", func(c *gin.Context) { handlers.ListBackend(c, d.Backend) })
		api.GET("/backend/:resource/:id", func(c *gin.Context) { handlers.GetBackend(c, d.Backend) })
	}

	return r
}
