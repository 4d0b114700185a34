package session

import (
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

// Store keeps live sessions in memory with a TTL, so abandoned browser tabs
// do not pin image bytes forever. Each access refreshes the expiry.
type Store struct {
	invoker  Invoker
	ttl      time.Duration
	sessions *gocache.Cache
}

// NewStore creates a session store. Sessions idle longer than ttl are evicted.
func NewStore(invoker Invoker, ttl time.Duration) *Store {
	return &Store{
		invoker:  invoker,
		ttl:      ttl,
		sessions: gocache.New(ttl, ttl/2),
	}
}

// Create registers a fresh session and returns it.
func (st *Store) Create() *Session {
	id := uuid.NewString()
	s := New(id, st.invoker)
	st.sessions.Set(id, s, st.ttl)
	log.Debug().Str("session", id).Msg("Session created")
	return s
}

// Get returns the session with the given id, refreshing its TTL.
func (st *Store) Get(id string) (*Session, bool) {
	v, ok := st.sessions.Get(id)
	if !ok {
		return nil, false
	}
	st.sessions.Set(id, v, st.ttl)
	return v.(*Session), true
}

// Count returns the number of live sessions.
func (st *Store) Count() int {
	return st.sessions.ItemCount()
}
