package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"go-fleetmap/console"
	"go-fleetmap/mapview"
)

const writeWait = 5 * time.Second

// Commands sent to the browser map.
const (
	cmdInit         = "init"
	cmdMarkerAdd    = "marker.add"
	cmdMarkerUpdate = "marker.update"
	cmdMarkerRemove = "marker.remove"
	cmdFlyTo        = "flyTo"
)

// Events received from the browser map.
const (
	evLoaded = "loaded"
	evClick  = "click"
)

type outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type inbound struct {
	Type   string `json:"type"`
	TaxiID string `json:"taxiId,omitempty"`
}

// NewUpgrader accepts connections from clientURL only, or from any origin when it is empty.
func NewUpgrader(clientURL string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return clientURL == "" || origin == "" || origin == clientURL
		},
	}
}

// socketWidget is the browser map seen through a websocket connection.
type socketWidget struct {
	conn      *websocket.Conn
	mu        sync.Mutex // one writer at a time
	closeOnce sync.Once
}

func newSocketWidget(conn *websocket.Conn) *socketWidget {
	return &socketWidget{conn: conn}
}

func (w *socketWidget) send(kind string, data any) error {
	payload, err := json.Marshal(outbound{Type: kind, Data: data})
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return w.conn.WriteMessage(websocket.TextMessage, payload)
}

func (w *socketWidget) Init(vp mapview.Viewport) error {
	return w.send(cmdInit, vp)
}

func (w *socketWidget) AddMarker(m mapview.Marker) error {
	return w.send(cmdMarkerAdd, m)
}

func (w *socketWidget) UpdateMarker(m mapview.Marker) error {
	return w.send(cmdMarkerUpdate, m)
}

func (w *socketWidget) RemoveMarker(taxiID string) error {
	return w.send(cmdMarkerRemove, gin.H{"taxiId": taxiID})
}

func (w *socketWidget) FlyTo(f mapview.FlyTo) error {
	return w.send(cmdFlyTo, f)
}

func (w *socketWidget) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		err = w.conn.Close()
	})
	return err
}

// ServeMapSocket attaches the browser map of a page to its console and pumps the
// widget events until the connection drops. Dropping the connection of the current
// widget tears the session down like DELETE /sessions/:id.
func ServeMapSocket(c *gin.Context, m *console.Manager, upgrader *websocket.Upgrader) {
	cons, ok := lookupConsole(c, m)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		log.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	logger := log.WithField("session_id", cons.ID())
	widget := newSocketWidget(conn)
	if err := cons.AttachWidget(widget); err != nil {
		logger.WithError(err).Warn("Attaching map widget")
		widget.Close()
		return
	}
	logger.Info("Map widget connected")

	defer func() {
		detached := cons.DetachWidget(widget)
		widget.Close()
		logger.Info("Map widget disconnected")
		if !detached {
			// replaced by a newer socket, or the session is already gone
			return
		}
		// The page unmounted: cancel its tick and drop the session.
		if err := m.Remove(cons.ID()); err != nil && !errors.Is(err, console.ErrUnknownSession) {
			logger.WithError(err).Warn("Removing session after disconnect")
		}
	}()

	for {
		var ev inbound
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WithError(err).Warn("Map widget read failed")
			}
			return
		}
		switch ev.Type {
		case evLoaded:
			cons.MarkLoaded()
		case evClick:
			action := cons.HandleClick(mapview.ClickEvent{TaxiID: ev.TaxiID})
			logger.WithFields(log.Fields{"taxi_id": ev.TaxiID, "action": action.String()}).Debug("Map click")
		default:
			logger.WithField("type", ev.Type).Debug("Ignoring unknown widget event")
		}
	}
}
