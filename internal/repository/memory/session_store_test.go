package memory

import (
	"runtime"
	"sync"
	"testing"
	"time"

	"campusbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetOrCreateReturnsSameSession(t *testing.T) {
	store := NewSessionStore(time.Minute, time.Minute, zap.NewNop())

	first := store.GetOrCreate("abc")
	second := store.GetOrCreate("abc")
	assert.Same(t, first, second)

	other := store.GetOrCreate("def")
	assert.NotSame(t, first, other)
}

func TestConcurrentGetOrCreateIsAtomic(t *testing.T) {
	store := NewSessionStore(time.Minute, time.Minute, zap.NewNop())

	const goroutines = 50
	sessions := make([]*models.Session, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sessions[i] = store.GetOrCreate("same-id")
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		assert.Same(t, sessions[0], sessions[i])
	}
}

func TestWithSessionSerializesAccess(t *testing.T) {
	store := NewSessionStore(time.Minute, time.Minute, zap.NewNop())

	var value int
	const goroutines = 100
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.WithSession("s", func(_ *models.Session) error {
				v := value
				runtime.Gosched()
				value = v + 1
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines, value)
}

func TestSessionsExpireAfterTimeout(t *testing.T) {
	store := NewSessionStore(20*time.Millisecond, time.Minute, zap.NewNop())

	store.GetOrCreate("short-lived")
	count, _ := store.Stats()
	assert.Equal(t, 1, count)

	time.Sleep(60 * time.Millisecond)
	store.SweepExpired()

	count, _ = store.Stats()
	assert.Equal(t, 0, count)
}

func TestWithSessionRefreshesExpiry(t *testing.T) {
	store := NewSessionStore(50*time.Millisecond, time.Minute, zap.NewNop())

	store.GetOrCreate("active")
	for i := 0; i < 4; i++ {
		time.Sleep(30 * time.Millisecond)
		err := store.WithSession("active", func(_ *models.Session) error { return nil })
		require.NoError(t, err)
	}

	count, _ := store.Stats()
	assert.Equal(t, 1, count)
}

func TestDelete(t *testing.T) {
	store := NewSessionStore(time.Minute, time.Minute, zap.NewNop())

	store.GetOrCreate("abc")
	assert.True(t, store.Delete("abc"))
	assert.False(t, store.Delete("abc"))
	assert.False(t, store.Delete("never-existed"))
}

func TestStatsSummaries(t *testing.T) {
	store := NewSessionStore(time.Minute, time.Minute, zap.NewNop())

	err := store.WithSession("0123456789", func(session *models.Session) error {
		session.AppendExchange("question", "answer", 6)
		session.PendingSlot = models.SlotCourseCode
		return nil
	})
	require.NoError(t, err)

	count, summaries := store.Stats()
	require.Equal(t, 1, count)
	require.Len(t, summaries, 1)

	summary := summaries[0]
	assert.Equal(t, "01234567...", summary.ID)
	assert.Equal(t, 2, summary.HistoryLength)
	assert.True(t, summary.AwaitingSlot)
	assert.False(t, summary.LastActivity.IsZero())
}
