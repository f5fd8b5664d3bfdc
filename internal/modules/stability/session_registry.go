package stability

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/modules/trit"
)

var (
	// ErrSessionNotFound is returned for an unknown session ID
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionLimit is returned when the registry is full
	ErrSessionLimit = errors.New("session limit reached")
)

// SessionListener receives lifecycle notifications from the registry.
// Calls are made while the affected session is locked; implementations must not
// call back into the registry.
type SessionListener interface {
	SessionCreated(info SessionInfo)
	SessionRun(info SessionInfo, report Report)
	LeakCorrected(sessionID string, ev CorrectionEvent)
	SessionDeleted(sessionID string)
}

// CreateRequest describes a new session
type CreateRequest struct {
	Initial int     `json:"initial" msgpack:"initial"`
	Seed    *uint64 `json:"seed,omitempty" msgpack:"seed,omitempty"`
	Params  *Params `json:"params,omitempty" msgpack:"params,omitempty"`
}

// SessionInfo is a read-only snapshot of a session
type SessionInfo struct {
	ID           string    `json:"id" msgpack:"id"`
	CreatedAt    time.Time `json:"created_at" msgpack:"created_at"`
	Seed         uint64    `json:"seed" msgpack:"seed"`
	Params       Params    `json:"params" msgpack:"params"`
	State        string    `json:"state" msgpack:"state"`
	Bits         trit.Pair `json:"bits" msgpack:"bits"`
	Coherence    float64   `json:"coherence" msgpack:"coherence"`
	Corrections  uint64    `json:"corrections" msgpack:"corrections"`
	TotalSteps   uint64    `json:"total_steps" msgpack:"total_steps"`
	MetricFactor float64   `json:"metric_factor" msgpack:"metric_factor"`
	Charge       float64   `json:"charge" msgpack:"charge"`
	Runs         int       `json:"runs" msgpack:"runs"`
	LastRun      *Report   `json:"last_run,omitempty" msgpack:"last_run,omitempty"`
}

// RunResult pairs a session with the report of one run
type RunResult struct {
	SessionID string `json:"session_id" msgpack:"session_id"`
	Report    Report `json:"report" msgpack:"report"`
}

type session struct {
	mu        sync.Mutex
	id        string
	createdAt time.Time
	seed      uint64
	corrector *Corrector
	runs      int
	lastRun   *Report
}

func (s *session) info() SessionInfo {
	state := s.corrector.State()
	return SessionInfo{
		ID:           s.id,
		CreatedAt:    s.createdAt,
		Seed:         s.seed,
		Params:       s.corrector.Params(),
		State:        state.String(),
		Bits:         s.corrector.Bits(),
		Coherence:    s.corrector.Coherence(),
		Corrections:  s.corrector.Corrections(),
		TotalSteps:   s.corrector.TotalSteps(),
		MetricFactor: s.corrector.MetricFactor(),
		Charge:       state.Charge(),
		Runs:         s.runs,
		LastRun:      s.lastRun,
	}
}

// SessionRegistry holds independent corrector sessions in process memory.
// Each session owns its own cell and corrector; access to a session is serialised.
type SessionRegistry struct {
	sessions      map[string]*session
	defaultParams Params
	defaultSeed   *uint64
	maxSessions   int
	listener      SessionListener
	mu            sync.RWMutex
	log           zerolog.Logger
}

// NewSessionRegistry creates a registry. maxSessions <= 0 means unlimited.
func NewSessionRegistry(defaultParams Params, maxSessions int, log zerolog.Logger) *SessionRegistry {
	return &SessionRegistry{
		sessions:      make(map[string]*session),
		defaultParams: defaultParams,
		maxSessions:   maxSessions,
		log:           log.With().Str("repository", "stability_sessions").Logger(),
	}
}

// SetListener registers the lifecycle listener (may be nil)
func (r *SessionRegistry) SetListener(l SessionListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listener = l
}

// SetDefaultSeed makes sessions created without an explicit seed use seed
// instead of a fresh random one. Pass nil to restore random seeding.
func (r *SessionRegistry) SetDefaultSeed(seed *uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultSeed = seed
}

// Create builds a new session around a fresh cell.
// Returns trit.ErrInvalidState for a bad initial value.
func (r *SessionRegistry) Create(req CreateRequest) (SessionInfo, error) {
	cell, err := trit.New(req.Initial)
	if err != nil {
		return SessionInfo{}, err
	}

	params := r.defaultParams
	if req.Params != nil {
		params = *req.Params
	}

	r.mu.RLock()
	defaultSeed := r.defaultSeed
	r.mu.RUnlock()

	var seed uint64
	switch {
	case req.Seed != nil:
		seed = *req.Seed
	case defaultSeed != nil:
		seed = *defaultSeed
	default:
		seed, err = trit.NewSeed()
		if err != nil {
			return SessionInfo{}, fmt.Errorf("failed to generate seed: %w", err)
		}
	}

	s := &session{
		id:        uuid.New().String(),
		createdAt: time.Now().UTC(),
		seed:      seed,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.maxSessions > 0 && len(r.sessions) >= r.maxSessions {
		return SessionInfo{}, fmt.Errorf("%w (%d)", ErrSessionLimit, r.maxSessions)
	}

	id := s.id
	opts := []Option{
		WithParams(params),
		WithSeed(seed),
		WithLogger(r.log.With().Str("session", id).Logger()),
		// Resolved per correction so SetListener reaches existing sessions
		WithObserver(ObserverFunc(func(ev CorrectionEvent) {
			if listener := r.currentListener(); listener != nil {
				listener.LeakCorrected(id, ev)
			}
		})),
	}

	corrector, err := NewCorrector(cell, opts...)
	if err != nil {
		return SessionInfo{}, err
	}
	s.corrector = corrector
	r.sessions[s.id] = s

	info := s.info()
	r.log.Info().Str("session", s.id).Int("initial", req.Initial).Uint64("seed", seed).Msg("Session created")
	if r.listener != nil {
		r.listener.SessionCreated(info)
	}
	return info, nil
}

func (r *SessionRegistry) currentListener() SessionListener {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listener
}

func (r *SessionRegistry) lookup(id string) (*session, SessionListener, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, r.listener, nil
}

// Get returns a snapshot of one session
func (r *SessionRegistry) Get(id string) (SessionInfo, error) {
	s, _, err := r.lookup(id)
	if err != nil {
		return SessionInfo{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info(), nil
}

// List returns snapshots of all sessions, oldest first
func (r *SessionRegistry) List() []SessionInfo {
	r.mu.RLock()
	all := make([]*session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.mu.RUnlock()

	out := make([]SessionInfo, 0, len(all))
	for _, s := range all {
		s.mu.Lock()
		out = append(out, s.info())
		s.mu.Unlock()
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Run advances one session by steps
func (r *SessionRegistry) Run(id string, steps uint32) (Report, SessionInfo, error) {
	s, listener, err := r.lookup(id)
	if err != nil {
		return Report{}, SessionInfo{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	report := s.corrector.Run(steps)
	s.runs++
	s.lastRun = &report

	info := s.info()
	if listener != nil {
		listener.SessionRun(info, report)
	}
	return report, info, nil
}

// InjectLeak forces one session's cell into the forbidden pair. The next Run
// detects and repairs it.
func (r *SessionRegistry) InjectLeak(id string) (SessionInfo, error) {
	s, _, err := r.lookup(id)
	if err != nil {
		return SessionInfo{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.corrector.InjectLeak()
	r.log.Debug().Str("session", id).Msg("Leak injected")
	return s.info(), nil
}

// RunAll advances every session by steps
func (r *SessionRegistry) RunAll(steps uint32) []RunResult {
	sessions := r.List()
	results := make([]RunResult, 0, len(sessions))
	for _, info := range sessions {
		report, _, err := r.Run(info.ID, steps)
		if err != nil {
			// Deleted between List and Run
			continue
		}
		results = append(results, RunResult{SessionID: info.ID, Report: report})
	}
	return results
}

// Delete removes a session
func (r *SessionRegistry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(r.sessions, id)

	r.log.Info().Str("session", id).Msg("Session deleted")
	if r.listener != nil {
		r.listener.SessionDeleted(id)
	}
	return nil
}

// Count returns the number of live sessions
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
