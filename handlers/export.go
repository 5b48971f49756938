package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"go-fleetmap/console"
)

// ExportSession writes the session's MapDocument to <dir>/fleetmap_<id>.json.
func ExportSession(c *gin.Context, m *console.Manager, dir string) {
	cons, ok := lookupConsole(c, m)
	if !ok {
		return
	}
	logger := log.WithField("session_id", cons.ID())
	doc := cons.Document()

	jsonData, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		logger.WithError(err).Error("Marshaling map document for export")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to format map document",
			"details": err.Error(),
		})
		return
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.WithError(err).Error("Creating export directory")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create export directory",
			"details": err.Error(),
		})
		return
	}

	filename := filepath.Join(dir, fmt.Sprintf("fleetmap_%s.json", cons.ID()))
	file, err := os.Create(filename)
	if err != nil {
		logger.WithError(err).WithField("file", filename).Error("Creating export file")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create export file",
			"details": err.Error(),
		})
		return
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			logger.WithError(cerr).WithField("file", filename).Warn("Closing export file")
		}
	}()

	if _, err := file.Write(jsonData); err != nil {
		logger.WithError(err).WithField("file", filename).Error("Writing export file")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to write data to export file",
			"details": err.Error(),
		})
		return
	}

	logger.WithFields(log.Fields{"file": filename, "taxis": len(doc.Entities)}).Info("Exported map document")
	c.JSON(http.StatusOK, gin.H{
		"message":  fmt.Sprintf("Successfully exported %d taxis.", len(doc.Entities)),
		"filename": filename,
		"count":    len(doc.Entities),
	})
}
