package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/paulmach/orb"

	"go-fleetmap/backend"
	"go-fleetmap/console"
	"go-fleetmap/cronjobs"
	"go-fleetmap/db"
	"go-fleetmap/mapview"
	"go-fleetmap/processor"
	"go-fleetmap/selection"
	"go-fleetmap/sidebar"
	"go-fleetmap/types"
)

type fakeGeocoder struct{}

func (fakeGeocoder) Address(context.Context, orb.Point) (string, error) {
	return "Place Flagey 1, 1050 Ixelles", nil
}

type testEnv struct {
	router    *gin.Engine
	manager   *console.Manager
	scheduler *cronjobs.Scheduler
	store     *db.MemoryStore
	dir       string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/drivers":
			w.Write([]byte(`[{"id":1,"firstName":"Jean","lastName":"Dupont"}]`))
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}))
	t.Cleanup(upstream.Close)

	// never started: jobs are registered but do not fire
	sched := cronjobs.NewScheduler()
	env := &testEnv{
		manager:   console.NewManager(sched, console.ManagerOptions{TaxiCount: 10, Seed: 1}),
		scheduler: sched,
		store:     db.NewMemoryStore(),
		dir:       t.TempDir(),
	}
	env.router = SetupRouter(Deps{
		Manager:       env.manager,
		Store:         env.store,
		Geocoder:      fakeGeocoder{},
		Backend:       backend.NewClient(upstream.URL + "/api"),
		ExportDir:     env.dir,
		MaxConcurrent: 10,
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, "/api/fleetmap"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding %q: %v", w.Body.String(), err)
	}
	return out
}

type sessionBody struct {
	ID       string            `json:"id"`
	Ticks    int               `json:"ticks"`
	Document types.MapDocument `json:"document"`
}

func (e *testEnv) createSession(t *testing.T, body any) sessionBody {
	t.Helper()
	w := e.do(t, http.MethodPost, "/sessions", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create session: %d %s", w.Code, w.Body.String())
	}
	return decode[sessionBody](t, w)
}

func testDocument() types.MapDocument {
	return types.MapDocument{
		Zones: []types.Zone{
			{ID: "a", Name: "Ixelles", Center: orb.Point{4.372, 50.827}},
			{ID: "b", Name: "Uccle", Center: orb.Point{4.337, 50.800}},
		},
		Entities: []types.Taxi{
			{ID: "t1", DisplayName: "Jean Dupont", Position: orb.Point{4.372, 50.827}, ZoneID: "a", Status: types.StatusAvailable},
			{ID: "t2", DisplayName: "Marie Peeters", Position: orb.Point{4.337, 50.800}, ZoneID: "b", Status: types.StatusAvailable},
		},
	}
}

func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t)

	s := env.createSession(t, nil)
	if len(s.Document.Entities) != 10 || len(s.Document.Zones) != 19 {
		t.Fatalf("unexpected document: %d taxis, %d zones", len(s.Document.Entities), len(s.Document.Zones))
	}

	sized := env.createSession(t, gin.H{"count": 3})
	if len(sized.Document.Entities) != 3 {
		t.Errorf("expected 3 taxis, got %d", len(sized.Document.Entities))
	}

	w := env.do(t, http.MethodPost, "/sessions/"+s.ID+"/tick", nil)
	if w.Code != http.StatusOK || decode[sessionBody](t, w).Ticks != 1 {
		t.Errorf("tick: %d %s", w.Code, w.Body.String())
	}

	if w := env.do(t, http.MethodGet, "/sessions", nil); len(decode[[]gin.H](t, w)) != 2 {
		t.Errorf("expected 2 sessions: %s", w.Body.String())
	}

	if w := env.do(t, http.MethodDelete, "/sessions/"+s.ID, nil); w.Code != http.StatusNoContent {
		t.Errorf("delete: %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/sessions/"+s.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("deleted session still answers %d", w.Code)
	}
	if w := env.do(t, http.MethodDelete, "/sessions/"+s.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete: %d", w.Code)
	}
}

func TestCreateFromDocument(t *testing.T) {
	env := newTestEnv(t)
	s := env.createSession(t, gin.H{"document": testDocument()})

	zones := decode[[]types.Zone](t, env.do(t, http.MethodGet, "/sessions/"+s.ID+"/zones", nil))
	if len(zones) != 2 || zones[0].OccupancyCount != 1 || zones[1].OccupancyCount != 1 {
		t.Errorf("unexpected zones %+v", zones)
	}

	bad := testDocument()
	bad.Entities[1].ID = "t1"
	if w := env.do(t, http.MethodPost, "/sessions", gin.H{"document": bad}); w.Code != http.StatusBadRequest {
		t.Errorf("duplicate ids: %d %s", w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/api/fleetmap/sessions", strings.NewReader("{"))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("broken JSON: %d", w.Code)
	}
}

func TestFiltersAndSidebar(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t, gin.H{"document": testDocument()}).ID

	w := env.do(t, http.MethodPost, "/sessions/"+id+"/filters/zones/a/toggle", nil)
	f := decode[selection.Filters](t, w)
	if len(f.ActiveZoneIDs) != 1 || f.ActiveZoneIDs[0] != "a" {
		t.Errorf("unexpected filters %+v", f)
	}
	visible := decode[[]types.Taxi](t, env.do(t, http.MethodGet, "/sessions/"+id+"/taxis?visible=true", nil))
	if len(visible) != 1 || visible[0].ID != "t1" {
		t.Errorf("unexpected visible taxis %+v", visible)
	}
	if all := decode[[]types.Taxi](t, env.do(t, http.MethodGet, "/sessions/"+id+"/taxis", nil)); len(all) != 2 {
		t.Errorf("expected the whole fleet, got %d", len(all))
	}

	if w := env.do(t, http.MethodPost, "/sessions/"+id+"/filters/zones/nowhere/toggle", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown zone: %d", w.Code)
	}

	f = decode[selection.Filters](t, env.do(t, http.MethodPut, "/sessions/"+id+"/filters/zones", nil))
	if len(f.ActiveZoneIDs) != 2 {
		t.Errorf("select all: %+v", f)
	}
	f = decode[selection.Filters](t, env.do(t, http.MethodDelete, "/sessions/"+id+"/filters/zones", nil))
	if len(f.ActiveZoneIDs) != 0 {
		t.Errorf("clear all: %+v", f)
	}

	if w := env.do(t, http.MethodPut, "/sessions/"+id+"/filters/status", gin.H{"status": "asleep"}); w.Code != http.StatusBadRequest {
		t.Errorf("unknown status: %d", w.Code)
	}
	f = decode[selection.Filters](t, env.do(t, http.MethodPut, "/sessions/"+id+"/filters/status", gin.H{"status": "available"}))
	if len(f.ActiveStatuses) != 1 {
		t.Errorf("status filter: %+v", f)
	}
	f = decode[selection.Filters](t, env.do(t, http.MethodDelete, "/sessions/"+id+"/filters/status", nil))
	if len(f.ActiveStatuses) != 0 {
		t.Errorf("clear status: %+v", f)
	}

	env.do(t, http.MethodPut, "/sessions/"+id+"/search", gin.H{"query": "MARIE"})
	list := decode[sidebar.ListView](t, env.do(t, http.MethodGet, "/sessions/"+id+"/sidebar/list", nil))
	if len(list.Items) != 1 || list.Items[0].ID != "t2" || list.Items[0].ZoneName != "Uccle" {
		t.Errorf("unexpected list %+v", list)
	}

	stats := decode[sidebar.StatsView](t, env.do(t, http.MethodGet, "/sessions/"+id+"/sidebar/stats", nil))
	if stats.Total != 2 || stats.Visible != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if w := env.do(t, http.MethodGet, "/sessions/"+id+"/sidebar/chart", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown view: %d", w.Code)
	}
}

func TestSelection(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t, gin.H{"document": testDocument()}).ID

	if w := env.do(t, http.MethodGet, "/sessions/"+id+"/selected", nil); w.Code != http.StatusNotFound {
		t.Errorf("no selection: %d", w.Code)
	}

	f := decode[selection.Filters](t, env.do(t, http.MethodPost, "/sessions/"+id+"/select", gin.H{"taxiId": "t1"}))
	if f.SelectedID == nil || *f.SelectedID != "t1" {
		t.Fatalf("select: %+v", f)
	}

	type selected struct {
		Taxi     types.Taxi    `json:"taxi"`
		ZoneName string        `json:"zoneName"`
		Address  string        `json:"address"`
		FlyTo    mapview.FlyTo `json:"flyTo"`
	}
	got := decode[selected](t, env.do(t, http.MethodGet, "/sessions/"+id+"/selected", nil))
	if got.Taxi.ID != "t1" || got.ZoneName != "Ixelles" || got.Address == "" {
		t.Errorf("unexpected selection %+v", got)
	}
	if got.FlyTo.Center != got.Taxi.Position || got.FlyTo.Zoom != mapview.DefaultFlyToZoom {
		t.Errorf("unexpected fly-to %+v", got.FlyTo)
	}

	env.do(t, http.MethodPost, "/sessions/"+id+"/select", gin.H{"taxiId": "ghost"})
	if w := env.do(t, http.MethodGet, "/sessions/"+id+"/selected", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown selection: %d", w.Code)
	}

	f = decode[selection.Filters](t, env.do(t, http.MethodPost, "/sessions/"+id+"/select", gin.H{"taxiId": nil}))
	if f.SelectedID != nil {
		t.Errorf("deselect: %+v", f)
	}
}

func TestExportAndOccupancy(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t, gin.H{"document": testDocument()}).ID

	w := env.do(t, http.MethodPost, "/sessions/"+id+"/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export: %d %s", w.Code, w.Body.String())
	}
	data, err := os.ReadFile(filepath.Join(env.dir, "fleetmap_"+id+".json"))
	if err != nil {
		t.Fatal(err)
	}
	var doc types.MapDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Entities) != 2 {
		t.Errorf("exported %d taxis", len(doc.Entities))
	}

	if w := env.do(t, http.MethodGet, "/occupancy/"+id+"/latest", nil); w.Code != http.StatusNotFound {
		t.Errorf("no snapshot yet: %d", w.Code)
	}
	if _, err := processor.PersistOccupancy(context.Background(), env.store, env.manager.List(), time.Now); err != nil {
		t.Fatal(err)
	}
	snap := decode[types.OccupancySnapshot](t, env.do(t, http.MethodGet, "/occupancy/"+id+"/latest", nil))
	if snap.Total != 2 || snap.Counts["a"] != 1 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestBackendProxy(t *testing.T) {
	env := newTestEnv(t)

	drivers := decode[[]backend.Driver](t, env.do(t, http.MethodGet, "/backend/drivers", nil))
	if len(drivers) != 1 || drivers[0].ID != "1" {
		t.Errorf("unexpected drivers %+v", drivers)
	}
	if w := env.do(t, http.MethodGet, "/backend/vehicles/9", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing vehicle: %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/backend/payments", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown resource: %d", w.Code)
	}
}

type command struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func readCommand(t *testing.T, conn *websocket.Conn) command {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var cmd command
	if err := conn.ReadJSON(&cmd); err != nil {
		t.Fatalf("reading command: %v", err)
	}
	return cmd
}

func (e *testEnv) dialMap(t *testing.T, id string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(e.router)
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/fleetmap/sessions/" + id + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	return conn
}

func TestMapSocket(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t, gin.H{"document": testDocument()}).ID

	conn := env.dialMap(t, id)
	defer conn.Close()

	if cmd := readCommand(t, conn); cmd.Type != "init" {
		t.Fatalf("expected init first, got %s", cmd.Type)
	}

	if err := conn.WriteJSON(gin.H{"type": "loaded"}); err != nil {
		t.Fatal(err)
	}
	added := map[string]bool{}
	for i := 0; i < 2; i++ {
		cmd := readCommand(t, conn)
		if cmd.Type != "marker.add" {
			t.Fatalf("expected marker.add, got %s", cmd.Type)
		}
		var m mapview.Marker
		if err := json.Unmarshal(cmd.Data, &m); err != nil {
			t.Fatal(err)
		}
		added[m.TaxiID] = true
	}
	if !added["t1"] || !added["t2"] {
		t.Errorf("unexpected markers %v", added)
	}

	if err := conn.WriteJSON(gin.H{"type": "click", "taxiId": "t2"}); err != nil {
		t.Fatal(err)
	}
	cmd := readCommand(t, conn)
	if cmd.Type != "flyTo" {
		t.Fatalf("expected flyTo, got %s", cmd.Type)
	}
	var fly mapview.FlyTo
	if err := json.Unmarshal(cmd.Data, &fly); err != nil {
		t.Fatal(err)
	}
	if fly.TaxiID != "t2" {
		t.Errorf("flew to %s", fly.TaxiID)
	}

	env.do(t, http.MethodPost, "/sessions/"+id+"/filters/zones/a/toggle", nil)
	cmd = readCommand(t, conn)
	if cmd.Type != "marker.remove" || !strings.Contains(string(cmd.Data), "t2") {
		t.Errorf("expected t2 removed, got %s %s", cmd.Type, cmd.Data)
	}
}

func TestSocketDisconnectEndsSession(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t, gin.H{"document": testDocument()}).ID
	job := "tick:" + id
	if !env.scheduler.Scheduled(job) {
		t.Fatal("tick job not scheduled on create")
	}

	conn := env.dialMap(t, id)
	if cmd := readCommand(t, conn); cmd.Type != "init" {
		t.Fatalf("expected init, got %s", cmd.Type)
	}
	if err := conn.WriteJSON(gin.H{"type": "loaded"}); err != nil {
		t.Fatal(err)
	}
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for env.scheduler.Scheduled(job) && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if env.scheduler.Scheduled(job) {
		t.Fatal("tick job still scheduled after the map disconnected")
	}
	if _, err := env.manager.Get(id); !errors.Is(err, console.ErrUnknownSession) {
		t.Errorf("session survived the disconnect: %v", err)
	}
	if w := env.do(t, http.MethodGet, "/sessions/"+id, nil); w.Code != http.StatusNotFound {
		t.Errorf("GET after disconnect: %d", w.Code)
	}
}

func TestReplacedSocketKeepsSession(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t, gin.H{"document": testDocument()}).ID

	first := env.dialMap(t, id)
	readCommand(t, first)
	second := env.dialMap(t, id)
	defer second.Close()
	readCommand(t, second)

	// attaching the second widget closes the first connection server side
	first.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ignored command
	for first.ReadJSON(&ignored) == nil {
	}
	first.Close()

	time.Sleep(50 * time.Millisecond)
	if !env.scheduler.Scheduled("tick:" + id) {
		t.Error("a replaced socket tore the session down")
	}
}

func TestUnknownSession(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/sessions/nope", "/sessions/nope/zones", "/sessions/nope/sidebar/stats", "/sessions/nope/ws"} {
		if w := env.do(t, http.MethodGet, path, nil); w.Code != http.StatusNotFound {
			t.Errorf("%s: %d", path, w.Code)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/fleetmap/sessions", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("preflight: %d %v", w.Code, w.Header())
	}
}
