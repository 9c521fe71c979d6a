package pwa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mr1hm/go-flood-alerts/internal/observability"
)

const DefaultPollInterval = time.Minute

var (
	ErrInvalidOutcome = errors.New("install outcome must be accepted or dismissed")
	ErrAlreadyStarted = errors.New("pwa: manager already started")
)

type InstallOutcome string

const (
	InstallAccepted  InstallOutcome = "accepted"
	InstallDismissed InstallOutcome = "dismissed"
)

type Option func(*Manager)

func WithClock(c clockwork.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

func WithPollInterval(d time.Duration) Option {
	return func(m *Manager) { m.pollInterval = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func WithMetrics(metrics *observability.Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// Manager serves the manifest, tracks the deployed build version so clients
// can tell when a new service worker is waiting, and counts install prompt
// outcomes. It is owned by main and runs between Start and Stop.
type Manager struct {
	manifest     Manifest
	source       VersionSource
	clock        clockwork.Clock
	pollInterval time.Duration
	logger       *slog.Logger
	metrics      *observability.Metrics

	mu       sync.RWMutex
	version  string
	installs map[InstallOutcome]int
	started  bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewManager(manifest Manifest, source VersionSource, opts ...Option) *Manager {
	m := &Manager{
		manifest:     manifest,
		source:       source,
		clock:        clockwork.NewRealClock(),
		pollInterval: DefaultPollInterval,
		logger:       slog.Default(),
		installs:     make(map[InstallOutcome]int),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start loads the current version and keeps polling the source until Stop
// or ctx is cancelled. A failed first load is returned.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true
	m.mu.Unlock()

	if err := m.refresh(ctx); err != nil {
		return fmt.Errorf("load build version: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.cancel = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	go m.poll(ctx)
	return nil
}

func (m *Manager) poll(ctx context.Context) {
	defer m.wg.Done()

	ticker := m.clock.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if err := m.refresh(ctx); err != nil {
				m.logger.Warn("version poll failed", "error", err)
			}
		}
	}
}

func (m *Manager) refresh(ctx context.Context) error {
	v, err := m.source.Version(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	prev := m.version
	m.version = v
	m.mu.Unlock()

	if prev != "" && prev != v {
		m.logger.Info("new build version detected", "previous", prev, "version", v)
	}
	return nil
}

// Stop ends version polling. Safe to call more than once, or without Start.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

func (m *Manager) Manifest() Manifest {
	return m.manifest
}

func (m *Manager) Version() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// UpdateAvailable reports whether a client running clientVersion should
// activate the waiting service worker.
func (m *Manager) UpdateAvailable(clientVersion string) bool {
	current := m.Version()
	return clientVersion != "" && current != "" && clientVersion != current
}

func (m *Manager) RecordInstall(outcome InstallOutcome) error {
	if outcome != InstallAccepted && outcome != InstallDismissed {
		return ErrInvalidOutcome
	}

	m.mu.Lock()
	m.installs[outcome]++
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.PWAInstalls.WithLabelValues(string(outcome)).Inc()
	}
	return nil
}

// Installs returns the number of recorded outcomes of each kind.
func (m *Manager) Installs() map[InstallOutcome]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[InstallOutcome]int, len(m.installs))
	for k, v := range m.installs {
		out[k] = v
	}
	return out
}
