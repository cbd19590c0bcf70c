package session

import (
	"errors"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/xtding233/rngcrack/internal/config"
	"github.com/xtding233/rngcrack/internal/crack"
)

var ErrSessionNotFound = errors.New("session not found")

var (
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rngcrack_sessions_active",
		Help: "Sessions currently held by the store",
	})
	sessionsEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rngcrack_sessions_evicted_total",
		Help: "Sessions dropped to make room for new ones",
	})
)

// Session is one tracked generator. mu serialises every engine call.
type Session struct {
	ID      string
	Profile string
	Params  config.EngineParams
	Created time.Time

	mu     sync.Mutex
	engine *crack.Engine
	resets []crack.Reason
	exec   *crack.Executor
	actor  *remoteActor
}

// maxResets bounds the reset history kept per session.
const maxResets = 16

func (s *Session) recordReset(r crack.Reason) {
	s.resets = append(s.resets, r)
	if n := len(s.resets); n > maxResets {
		s.resets = s.resets[n-maxResets:]
	}
}

// Store keeps the most recently used sessions.
type Store struct {
	cache *lru.Cache[string, *Session]
}

func NewStore(size int) (*Store, error) {
	c, err := lru.New[string, *Session](size)
	if err != nil {
		return nil, err
	}
	return &Store{cache: c}, nil
}

func (st *Store) Put(s *Session) {
	if st.cache.Add(s.ID, s) {
		sessionsEvicted.Inc()
	}
	sessionsActive.Set(float64(st.cache.Len()))
}

func (st *Store) Get(id string) (*Session, error) {
	s, ok := st.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (st *Store) Remove(id string) error {
	if !st.cache.Remove(id) {
		return ErrSessionNotFound
	}
	sessionsActive.Set(float64(st.cache.Len()))
	return nil
}

func (st *Store) Len() int { return st.cache.Len() }
