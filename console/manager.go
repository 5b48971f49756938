package console

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"go-fleetmap/mapview"
	"go-fleetmap/types"
	"go-fleetmap/zones"
)

var (
	ErrUnknownSession  = errors.New("unknown session")
	ErrClosed          = errors.New("console closed")
	// ErrInvalidDocument wraps every reason a MapDocument is refused.
	ErrInvalidDocument = errors.New("invalid map document")
)

// DefaultTickInterval is the period of the position simulation.
const DefaultTickInterval = 2 * time.Second

// Scheduler runs named recurring jobs.
type Scheduler interface {
	Every(name string, interval time.Duration, fn func()) error
	Cancel(name string)
}

type ManagerOptions struct {
	TaxiCount     int
	TickInterval  time.Duration
	Registry      *zones.Registry
	Seed          int64 // 0 seeds every console from the clock
	Now           func() time.Time
	View          mapview.Options
	RandomBearing bool
}

// Manager keeps one console per open map page and their tick jobs.
type Manager struct {
	mu        sync.RWMutex
	consoles  map[string]*Console
	scheduler Scheduler
	opts      ManagerOptions
	created   int64
}

func NewManager(s Scheduler, opts ManagerOptions) *Manager {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.Registry == nil {
		opts.Registry = zones.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		consoles:  make(map[string]*Console),
		scheduler: s,
		opts:      opts,
	}
}

// Create opens a console with count generated taxis. A negative count uses the configured default.
func (m *Manager) Create(count int) (*Console, error) {
	if count < 0 {
		count = m.opts.TaxiCount
	}
	id := uuid.NewString()
	c := New(id, m.consoleOptions(count))
	if err := m.register(c); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateFromDocument opens a console on the zones and taxis of doc.
func (m *Manager) CreateFromDocument(doc types.MapDocument) (*Console, error) {
	id := uuid.NewString()
	c, err := FromDocument(id, doc, m.consoleOptions(0))
	if err != nil {
		return nil, err
	}
	if err := m.register(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (m *Manager) consoleOptions(count int) Options {
	m.mu.Lock()
	m.created++
	n := m.created
	m.mu.Unlock()

	seed := m.opts.Seed + n
	if m.opts.Seed == 0 {
		seed = m.opts.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	view := m.opts.View
	if m.opts.RandomBearing {
		// separate source: camera draws must not shift the simulation's sequence
		view.Bearing = mapview.RandomBearing(rand.New(rand.NewSource(^seed)))
	}
	return Options{
		TaxiCount: count,
		Registry:  m.opts.Registry,
		Rand:      rng,
		Now:       m.opts.Now,
		View:      view,
	}
}

func (m *Manager) register(c *Console) error {
	m.mu.Lock()
	m.consoles[c.ID()] = c
	m.mu.Unlock()

	if m.scheduler == nil {
		return nil
	}
	if err := m.scheduler.Every(tickJobName(c.ID()), m.opts.TickInterval, c.Tick); err != nil {
		m.mu.Lock()
		delete(m.consoles, c.ID())
		m.mu.Unlock()
		c.Close()
		return fmt.Errorf("scheduling tick for session %s: %w", c.ID(), err)
	}

	log.WithFields(log.Fields{
		"session_id": c.ID(),
		"taxis":      len(c.Taxis()),
		"interval":   m.opts.TickInterval.String(),
	}).Info("Console opened")
	return nil
}

func (m *Manager) Get(id string) (*Console, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.consoles[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrUnknownSession)
	}
	return c, nil
}

// List returns the open consoles ordered by creation time.
func (m *Manager) List() []*Console {
	m.mu.RLock()
	out := make([]*Console, 0, len(m.consoles))
	for _, c := range m.consoles {
		out = append(out, c)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].ID() < out[j].ID()
		}
		return out[i].CreatedAt().Before(out[j].CreatedAt())
	})
	return out
}

// Remove tears a console down: its timer is cancelled before its widget is released.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	c, ok := m.consoles[id]
	delete(m.consoles, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrUnknownSession)
	}

	if m.scheduler != nil {
		m.scheduler.Cancel(tickJobName(id))
	}
	c.Close()
	log.WithField("session_id", id).Info("Console closed")
	return nil
}

// Shutdown removes every console.
func (m *Manager) Shutdown() {
	for _, c := range m.List() {
		if err := m.Remove(c.ID()); err != nil {
			log.WithError(err).Warn("Removing console on shutdown")
		}
	}
}

func tickJobName(id string) string {
	return "tick:" + id
}
