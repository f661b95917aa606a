// Package session ties one host connection to one tab-view aggregation
// pipeline: an aggregator, its validated inbound path, and an intent
// dispatcher bound to the connection's bridge adapter. Sessions live for
// one tab view; the host creates a fresh one per navigation.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/glasspane/dashboard/internal/bridge"
	"github.com/glasspane/dashboard/internal/domain/aggregator"
	"github.com/glasspane/dashboard/internal/domain/intent"
	"github.com/glasspane/dashboard/internal/domain/tabdata"
	"github.com/glasspane/dashboard/internal/infrastructure/logging"
	"github.com/glasspane/dashboard/internal/infrastructure/monitoring"
	"github.com/glasspane/dashboard/internal/platform"
)

// Session is one tab-view pipeline.
type Session struct {
	ID         string
	Platform   platform.Platform
	CreatedAt  time.Time
	Aggregator *aggregator.Aggregator
	Inbound    *bridge.Inbound
	Dispatcher *intent.Dispatcher

	firstPaint sync.Once
}

// FirstPaint relays the initial layout height to the host exactly once.
// Later calls are no-ops; continuous resize goes through the dispatcher
// directly.
func (s *Session) FirstPaint(height int) error {
	var err error
	s.firstPaint.Do(func() {
		err = s.Dispatcher.SetSize(context.Background(), height)
	})
	return err
}

// Manager owns all live tab sessions.
type Manager struct {
	sessions sync.Map
	count    int64
	mu       sync.Mutex

	matrix   platform.Matrix
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	reporter intent.Reporter
}

// NewManager creates a session manager with the given capability matrix.
func NewManager(matrix platform.Matrix, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewDefault()
	}
	return &Manager{
		matrix: matrix,
		logger: logger,
	}
}

// WithMetrics attaches a metrics collector.
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// WithReporter attaches a breakage-report collector shared by all
// sessions.
func (m *Manager) WithReporter(r intent.Reporter) *Manager {
	m.reporter = r
	return m
}

// Create builds a session for the given bridge adapter.
func (m *Manager) Create(adapter bridge.Adapter) *Session {
	agg := aggregator.New()
	p := adapter.Platform()

	dispatcher := intent.NewDispatcher(adapter, m.matrix.For(p), m.logger)
	if m.reporter != nil {
		dispatcher = dispatcher.WithReporter(m.reporter)
	}

	s := &Session{
		ID:         uuid.New().String(),
		Platform:   p,
		CreatedAt:  time.Now(),
		Aggregator: agg,
		Inbound:    bridge.NewInbound(agg, m.logger).WithMetrics(m.metrics),
		Dispatcher: dispatcher,
	}

	if m.metrics != nil {
		start := s.CreatedAt
		metrics := m.metrics
		agg.OnReady(func(*tabdata.Snapshot) {
			metrics.RecordSnapshotReady(time.Since(start))
		})
	}

	m.sessions.Store(s.ID, s)
	m.adjustCount(1)
	m.logger.Info("tab session created",
		zap.String("session_id", s.ID),
		zap.String("platform", string(p)),
	)
	return s
}

// Get retrieves a session by ID.
func (m *Manager) Get(id string) (*Session, bool) {
	val, ok := m.sessions.Load(id)
	if !ok {
		return nil, false
	}
	return val.(*Session), true
}

// List returns all live sessions.
func (m *Manager) List() []*Session {
	var sessions []*Session
	m.sessions.Range(func(_, value any) bool {
		sessions = append(sessions, value.(*Session))
		return true
	})
	return sessions
}

// Close removes a session. The aggregator is simply dropped; fields are
// never torn down within a session's lifetime.
func (m *Manager) Close(id string) bool {
	if _, ok := m.sessions.LoadAndDelete(id); !ok {
		return false
	}
	m.adjustCount(-1)
	m.logger.Info("tab session closed", zap.String("session_id", id))
	return true
}

// Count reports the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int(m.count)
}

func (m *Manager) adjustCount(delta int64) {
	m.mu.Lock()
	m.count += delta
	count := int(m.count)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.SetTabsActive(count)
		if delta > 0 {
			m.metrics.IncTabsTotal()
		}
	}
}
