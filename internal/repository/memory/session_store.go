package memory

import (
	"time"

	"campusbot/internal/models"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// SessionStore is the keyed registry of per-conversation state. Idle
// sessions expire after the configured timeout; the cache janitor sweeps
// them in the background. Map operations are guarded by the cache itself,
// so unrelated session ids never block each other; mutation of one
// session is serialized by that session's own lock.
type SessionStore struct {
	cache   *cache.Cache
	timeout time.Duration
	logger  *zap.Logger
}

// SessionSummary is the per-session view exposed by Stats.
type SessionSummary struct {
	ID            string
	HistoryLength int
	AwaitingSlot  bool
	LastActivity  time.Time
	AgeMinutes    float64
}

func NewSessionStore(timeout, sweepInterval time.Duration, logger *zap.Logger) *SessionStore {
	return &SessionStore{
		cache:   cache.New(timeout, sweepInterval),
		timeout: timeout,
		logger:  logger,
	}
}

// GetOrCreate returns the session for id, creating it with defaults on
// first use. Creation is atomic under concurrent callers: exactly one
// session object ever exists per live id.
func (s *SessionStore) GetOrCreate(id string) *models.Session {
	for {
		if x, found := s.cache.Get(id); found {
			return x.(*models.Session)
		}
		session := models.NewSession(id, time.Now())
		if err := s.cache.Add(id, session, cache.DefaultExpiration); err == nil {
			s.logger.Debug("Created session", zap.String("session_id", id))
			return session
		}
		// Lost the creation race, loop and fetch the winner.
	}
}

// WithSession runs fn with exclusive access to the session for id, then
// refreshes its expiry. All state-machine mutation goes through here so
// that requests on one id are processed in arrival order.
func (s *SessionStore) WithSession(id string, fn func(*models.Session) error) error {
	session := s.GetOrCreate(id)
	session.Lock()
	defer session.Unlock()

	err := fn(session)

	session.LastActivity = time.Now()
	s.cache.Set(id, session, cache.DefaultExpiration)
	return err
}

// Delete removes one session immediately.
func (s *SessionStore) Delete(id string) bool {
	if _, found := s.cache.Get(id); !found {
		return false
	}
	s.cache.Delete(id)
	return true
}

// SweepExpired evicts idle sessions past the timeout. The janitor does
// this periodically; stats calls it eagerly so counts are accurate.
func (s *SessionStore) SweepExpired() {
	before := s.cache.ItemCount()
	s.cache.DeleteExpired()
	if removed := before - s.cache.ItemCount(); removed > 0 {
		s.logger.Info("Swept expired sessions",
			zap.Int("removed", removed),
			zap.Int("active", s.cache.ItemCount()),
		)
	}
}

// Stats reports the active session count and per-session summaries.
func (s *SessionStore) Stats() (int, []SessionSummary) {
	s.SweepExpired()

	items := s.cache.Items()
	summaries := make([]SessionSummary, 0, len(items))
	now := time.Now()
	for id, item := range items {
		session := item.Object.(*models.Session)
		session.Lock()
		summaries = append(summaries, SessionSummary{
			ID:            truncateID(id),
			HistoryLength: len(session.History),
			AwaitingSlot:  session.AwaitingSlot(),
			LastActivity:  session.LastActivity,
			AgeMinutes:    now.Sub(session.CreatedAt).Minutes(),
		})
		session.Unlock()
	}
	return len(summaries), summaries
}

func truncateID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}
