package websvc_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/fishpizzaria/internal/domain"
	"github.com/mkrupp/fishpizzaria/internal/svc/websvc"
)

func TestAuthState_Empty(t *testing.T) {
	t.Parallel()

	state := websvc.NewAuthState()

	user, ok := state.User()
	assert.False(t, ok)
	assert.Equal(t, domain.User{}, user)
	assert.False(t, state.IsAuthenticated())
}

func TestAuthState_IsAuthenticatedFollowsUser(t *testing.T) {
	t.Parallel()

	state := websvc.NewAuthState()
	state.Insert(domain.User{ID: "1", Name: "Ana", Email: "a@b.com"})

	user, ok := state.User()
	require.True(t, ok)
	assert.Equal(t, domain.User{ID: "1", Name: "Ana", Email: "a@b.com"}, user)
	assert.True(t, state.IsAuthenticated())

	// no shape validation: an empty record still counts as a user
	state.Insert(domain.User{})
	assert.True(t, state.IsAuthenticated())
}

func TestAuthState_Subscribe(t *testing.T) {
	t.Parallel()

	state := websvc.NewAuthState()

	var (
		mu       sync.Mutex
		notified []domain.User
	)

	unsubscribe := state.Subscribe(func(user domain.User, authenticated bool) {
		mu.Lock()
		defer mu.Unlock()

		assert.True(t, authenticated)
		notified = append(notified, user)
	})

	ana := domain.User{ID: "1", Name: "Ana", Email: "a@b.com"}
	bia := domain.User{ID: "2", Name: "Bia", Email: "b@b.com"}

	state.Insert(ana)
	state.Insert(ana)
	state.Insert(bia)

	unsubscribe()
	state.Insert(ana)

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, []domain.User{ana, bia}, notified)
}

func TestAuthState_SubscriberMayReadState(t *testing.T) {
	t.Parallel()

	state := websvc.NewAuthState()

	var seen bool

	state.Subscribe(func(domain.User, bool) {
		seen = state.IsAuthenticated()
	})

	state.Insert(domain.User{ID: "1"})

	assert.True(t, seen)
}

func TestAuthState_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	state := websvc.NewAuthState()

	var wg sync.WaitGroup

	for i := range 50 {
		wg.Add(2)

		go func() {
			defer wg.Done()
			state.Insert(domain.User{ID: string(rune('a' + i%26))})
		}()

		go func() {
			defer wg.Done()
			_, _ = state.User()
		}()
	}

	wg.Wait()

	assert.True(t, state.IsAuthenticated())
}
