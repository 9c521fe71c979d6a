package feed

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mr1hm/go-flood-alerts/internal/models"
	"github.com/mr1hm/go-flood-alerts/internal/observability"
)

// MaxAlerts caps the alert list; the oldest alerts are dropped first.
const MaxAlerts = 10

const (
	DefaultConnectDelay    = time.Second
	DefaultRefreshInterval = 30 * time.Second
	DefaultReconnectDelay  = 2 * time.Second
)

var ErrAlreadyStarted = errors.New("feed: simulator already started")

// Publisher receives every snapshot the simulator produces. Broadcast must not block.
type Publisher interface {
	Broadcast(s models.Snapshot)
}

type Option func(*Simulator)

func WithClock(c clockwork.Clock) Option {
	return func(s *Simulator) { s.clock = c }
}

func WithRand(r *rand.Rand) Option {
	return func(s *Simulator) { s.rng = r }
}

// WithSeed makes mock generation reproducible.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed)))
}

func WithIDFunc(f func() string) Option {
	return func(s *Simulator) { s.newID = f }
}

func WithDelays(connect, refresh, reconnect time.Duration) Option {
	return func(s *Simulator) {
		s.connectDelay = connect
		s.refreshInterval = refresh
		s.reconnectDelay = reconnect
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(s *Simulator) { s.metrics = m }
}

func WithPublisher(p Publisher) Option {
	return func(s *Simulator) { s.publisher = p }
}

// Simulator stands in for a live alert backend. It owns a snapshot of alerts
// and statistics, regenerates it on a fixed interval and lets callers add
// alerts, patch statistics and force a reconnect.
type Simulator struct {
	clock           clockwork.Clock
	rng             *rand.Rand
	newID           func() string
	connectDelay    time.Duration
	refreshInterval time.Duration
	reconnectDelay  time.Duration
	logger          *slog.Logger
	metrics         *observability.Metrics
	publisher       Publisher

	mu      sync.Mutex
	state   models.Snapshot
	started bool

	// ctx is the simulator lifetime. Every scheduled continuation waits on it.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(opts ...Option) *Simulator {
	s := &Simulator{
		clock:           clockwork.NewRealClock(),
		newID:           uuid.NewString,
		connectDelay:    DefaultConnectDelay,
		refreshInterval: DefaultRefreshInterval,
		reconnectDelay:  DefaultReconnectDelay,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.state = models.Snapshot{
		Alerts:     []models.Alert{},
		LastUpdate: s.clock.Now(),
	}
	return s
}

// Start marks the feed disconnected, connects it after the connect delay and
// begins the periodic refresh. The simulator runs until Stop is called or ctx
// is cancelled. It may only be started once.
func (s *Simulator) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true
	if s.ctx.Err() != nil {
		return nil
	}

	s.state.IsConnected = false
	s.publishLocked()

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("feed simulator started",
		"connect_delay", s.connectDelay,
		"refresh_interval", s.refreshInterval,
	)
	return nil
}

func (s *Simulator) run(ctx context.Context) {
	defer s.wg.Done()

	connect := s.clock.NewTimer(s.connectDelay)
	defer connect.Stop()
	ticker := s.clock.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.cancel()
			return
		case <-s.ctx.Done():
			return
		case <-connect.Chan():
			s.refresh("connect")
		case <-ticker.Chan():
			s.refresh("tick")
		}
	}
}

// refresh replaces the whole snapshot with generated values and marks the feed connected.
func (s *Simulator) refresh(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return
	}

	snap := Generate(s.rng, s.clock.Now())
	snap.IsConnected = true
	s.state = snap
	s.publishLocked()

	if s.metrics != nil {
		s.metrics.FeedRefreshes.Inc()
	}
	s.logger.Debug("feed refreshed", "reason", reason, "alerts", len(snap.Alerts))
}

// Reconnect marks the feed disconnected right away and regenerates a connected
// snapshot once the reconnect delay has passed. It does not touch the periodic
// refresh; whichever lands last wins. After Stop it does nothing.
func (s *Simulator) Reconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return
	}

	s.state.IsConnected = false
	s.publishLocked()
	if s.metrics != nil {
		s.metrics.FeedReconnects.Inc()
	}
	s.logger.Info("feed reconnecting", "delay", s.reconnectDelay)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := s.clock.NewTimer(s.reconnectDelay)
		defer timer.Stop()

		select {
		case <-s.ctx.Done():
		case <-timer.Chan():
			s.refresh("reconnect")
		}
	}()
}

// AddAlert assigns an id and timestamp to in, puts it at the head of the alert
// list and bumps the alert counters. The list never grows past MaxAlerts.
func (s *Simulator) AddAlert(in models.NewAlert) models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	alert := models.Alert{
		ID:          s.newID(),
		Type:        in.Type,
		Title:       in.Title,
		Location:    in.Location,
		Time:        now,
		Reports:     in.Reports,
		Distance:    in.Distance,
		Coordinates: in.Coordinates,
	}

	alerts := make([]models.Alert, 0, min(len(s.state.Alerts)+1, MaxAlerts))
	alerts = append(alerts, alert)
	alerts = append(alerts, s.state.Alerts...)
	if len(alerts) > MaxAlerts {
		alerts = alerts[:MaxAlerts]
	}
	s.state.Alerts = alerts

	s.state.Statistics.ActiveAlerts++
	if alert.Type == models.AlertTypeCritical {
		s.state.Statistics.CriticalAlerts++
	}
	s.state.LastUpdate = now
	s.publishLocked()

	if s.metrics != nil {
		s.metrics.AlertsAdded.WithLabelValues(string(alert.Type)).Inc()
	}
	return alert
}

// UpdateStatistics merges the non-nil fields of u into the current statistics.
// Values are not validated.
func (s *Simulator) UpdateStatistics(u models.StatisticsUpdate) models.Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Statistics = u.Apply(s.state.Statistics)
	s.state.LastUpdate = s.clock.Now()
	s.publishLocked()
	return s.state.Statistics
}

// Snapshot returns a copy of the current feed state.
func (s *Simulator) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Stop cancels the refresh loop and any pending reconnect, then waits for
// them to exit. Safe to call more than once.
func (s *Simulator) Stop() {
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Simulator) publishLocked() {
	if s.metrics != nil {
		connected := 0.0
		if s.state.IsConnected {
			connected = 1
		}
		s.metrics.FeedConnected.Set(connected)
		s.metrics.FeedAlerts.Set(float64(len(s.state.Alerts)))
	}
	if s.publisher != nil {
		s.publisher.Broadcast(s.state.Clone())
	}
}
