package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/turingviz"
	"github.com/aretw0/turingviz/internal/logging"
	"github.com/aretw0/turingviz/pkg/domain"
	"github.com/aretw0/turingviz/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a distributed session lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
//
// A session is the persisted checkpoint of a machine run. Manager rebuilds
// the machine from its definition on every access, so no machine outlives
// the request that opened it.
type Manager struct {
	store  ports.SessionStore
	loader ports.MachineLoader

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker      ports.DistributedLocker // Optional distributed locker
	lockTTL     time.Duration
	machineOpts []turingviz.Option
	logger      *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithMachineOptions are applied to every machine the Manager builds
// (e.g. metrics hooks).
func WithMachineOptions(opts ...turingviz.Option) Option {
	return func(m *Manager) {
		m.machineOpts = append(m.machineOpts, opts...)
	}
}

// NewManager creates a new Session Manager over a session store and a
// definition loader.
func NewManager(store ports.SessionStore, loader ports.MachineLoader, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		loader:  loader,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Create starts a new session for machineID with the given input.
func (m *Manager) Create(ctx context.Context, machineID, input string) (*domain.Session, error) {
	return m.CreateWithID(ctx, uuid.NewString(), machineID, input)
}

// CreateWithID is Create with a caller-chosen ID. An existing session with
// that ID is replaced.
func (m *Manager) CreateWithID(ctx context.Context, sessionID, machineID, input string) (*domain.Session, error) {
	machine, err := m.build(ctx, machineID)
	if err != nil {
		return nil, err
	}
	machine.Restart(ctx, input)

	var s *domain.Session
	err = m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		cp, trace := machine.Checkpoint()
		s = domain.NewSession(sessionID, machineID, input, cp)
		s.Trace = trace
		return m.store.Save(ctx, s)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	m.logger.Debug("session created", "session_id", sessionID, "machine", machineID)
	return s, nil
}

// LoadOrStart loads a session. If it does not exist, it is created for
// machineID and input. Concurrent callers see exactly one creation.
func (m *Manager) LoadOrStart(ctx context.Context, sessionID, machineID, input string) (*domain.Session, error) {
	var s *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		s, err = m.store.Load(ctx, sessionID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to check session existence: %w", err)
		}

		machine, err := m.build(ctx, machineID)
		if err != nil {
			return err
		}
		machine.Restart(ctx, input)
		cp, trace := machine.Checkpoint()
		s = domain.NewSession(sessionID, machineID, input, cp)
		s.Trace = trace

		// Persist immediately to reserve the ID
		if err := m.store.Save(ctx, s); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	return s, err
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	var s *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		s, err = m.store.Load(ctx, sessionID)
		return err
	})
	return s, err
}

// Open rebuilds the machine of a session, positioned on its checkpoint.
// The returned machine is detached: changes are not persisted.
func (m *Manager) Open(ctx context.Context, sessionID string) (*turingviz.Machine, *domain.Session, error) {
	s, err := m.Load(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	machine, err := m.restore(ctx, s)
	if err != nil {
		return nil, nil, err
	}
	return machine, s, nil
}

// Update opens the session machine under the session lock, applies fn and
// persists the resulting checkpoint. fn's error aborts without saving.
func (m *Manager) Update(ctx context.Context, sessionID string, fn func(context.Context, *turingviz.Machine) error) (*domain.Session, error) {
	var s *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		s, err = m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		machine, err := m.restore(ctx, s)
		if err != nil {
			return err
		}
		if err := fn(ctx, machine); err != nil {
			return err
		}

		s.Current, s.Trace = machine.Checkpoint()
		s.Input = machine.Input()
		s.UpdatedAt = time.Now().UTC()
		return m.store.Save(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Save persists the session.
func (m *Manager) Save(ctx context.Context, s *domain.Session) error {
	return m.WithLock(ctx, s.ID, func(ctx context.Context) error {
		return m.store.Save(ctx, s)
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// Loader returns the definition loader.
func (m *Manager) Loader() ports.MachineLoader {
	return m.loader
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	// Distributed Locking
	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (m *Manager) build(ctx context.Context, machineID string) (*turingviz.Machine, error) {
	def, err := m.loader.Get(ctx, machineID)
	if err != nil {
		return nil, err
	}
	opts := append([]turingviz.Option{turingviz.WithLogger(m.logger)}, m.machineOpts...)
	return turingviz.New(def, opts...)
}

func (m *Manager) restore(ctx context.Context, s *domain.Session) (*turingviz.Machine, error) {
	machine, err := m.build(ctx, s.MachineID)
	if err != nil {
		return nil, err
	}
	if err := machine.Resume(s.Input, s.Current, s.Trace); err != nil {
		return nil, fmt.Errorf("session %s: %w", s.ID, err)
	}
	return machine, nil
}
