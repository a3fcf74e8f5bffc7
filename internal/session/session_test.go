package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskboard/internal/constants"
	"github.com/yukikurage/taskboard/internal/kvstore"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/repository"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type sessionTestEnv struct {
	kv       kvstore.Store
	users    repository.UserRepository
	notifier *Notifier
	store    *Store
	member   *models.User
}

func setupSessionTestEnv(t *testing.T, opts ...Option) sessionTestEnv {
	t.Helper()

	kv := kvstore.NewMemoryStore()
	users := repository.NewUserRepository(kv, zap.NewNop())
	member := &models.User{
		Name:     "Grace",
		Email:    "grace@example.com",
		Password: "correct-horse",
		Role:     models.RoleTeamMember,
	}
	require.NoError(t, users.Create(member))

	notifier := NewNotifier()
	opts = append([]Option{WithNotifier(notifier, "profile-1")}, opts...)

	return sessionTestEnv{
		kv:       kv,
		users:    users,
		notifier: notifier,
		store:    NewStore(kv, users, zap.NewNop(), opts...),
		member:   member,
	}
}

func receive(t *testing.T, changes <-chan Change, within time.Duration) Change {
	t.Helper()
	select {
	case change, ok := <-changes:
		require.True(t, ok, "watch channel closed unexpectedly")
		return change
	case <-time.After(within):
		t.Fatalf("no change observed within %s", within)
		return Change{}
	}
}

func TestCurrentUser_NoneWhenAbsent(t *testing.T) {
	env := setupSessionTestEnv(t)

	user, ok := env.store.CurrentUser()
	assert.False(t, ok)
	assert.Nil(t, user)
}

func TestCurrentUser_MalformedTreatedAsAbsent(t *testing.T) {
	env := setupSessionTestEnv(t)

	for _, raw := range []string{"{broken", "null", `{"name":"no id"}`} {
		require.NoError(t, env.kv.Set(constants.KeyCurrentUser, raw))
		user, ok := env.store.CurrentUser()
		assert.False(t, ok, raw)
		assert.Nil(t, user, raw)
	}
}

// unreadableStore fails every read
type unreadableStore struct {
	kvstore.Store
}

func (unreadableStore) Get(string) (string, bool, error) {
	return "", false, errors.New("disk unavailable")
}

func TestCurrentUser_UnreadableLogsWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	kv := unreadableStore{Store: kvstore.NewMemoryStore()}
	store := NewStore(kv, repository.NewUserRepository(kv, zap.NewNop()), zap.New(core))

	_, ok := store.CurrentUser()

	assert.False(t, ok)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
}

func TestLogin(t *testing.T) {
	env := setupSessionTestEnv(t)

	t.Run("unknown email", func(t *testing.T) {
		_, err := env.store.Login("nobody@example.com", "correct-horse")
		assert.ErrorIs(t, err, ErrUserNotFound)
		_, ok := env.store.CurrentUser()
		assert.False(t, ok)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.store.Login("grace@example.com", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		_, ok := env.store.CurrentUser()
		assert.False(t, ok)
	})

	t.Run("email match is exact", func(t *testing.T) {
		_, err := env.store.Login("GRACE@example.com", "correct-horse")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("correct credentials", func(t *testing.T) {
		user, err := env.store.Login("grace@example.com", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, env.member.ID, user.ID)

		current, ok := env.store.CurrentUser()
		require.True(t, ok)
		assert.Equal(t, env.member.ID, current.ID)
	})
}

func TestLogout_Idempotent(t *testing.T) {
	env := setupSessionTestEnv(t)

	_, err := env.store.Login("grace@example.com", "correct-horse")
	require.NoError(t, err)

	env.store.Logout()
	_, ok := env.store.CurrentUser()
	assert.False(t, ok)

	assert.NotPanics(t, env.store.Logout)
	_, ok = env.store.CurrentUser()
	assert.False(t, ok)
}

func TestWatch_LocalSignalIsImmediate(t *testing.T) {
	// a long poll interval proves the change arrived through the notifier
	env := setupSessionTestEnv(t, WithPollInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := env.store.Watch(ctx)

	_, err := env.store.Login("grace@example.com", "correct-horse")
	require.NoError(t, err)

	change := receive(t, changes, time.Second)
	require.NotNil(t, change.User)
	assert.Equal(t, env.member.ID, change.User.ID)

	env.store.Logout()
	change = receive(t, changes, time.Second)
	assert.Nil(t, change.User)
}

func TestWatch_PollingSeesExternalWrites(t *testing.T) {
	env := setupSessionTestEnv(t, WithPollInterval(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := env.store.Watch(ctx)

	// another tab of the same profile signs in without any local signal
	otherTab := NewStore(env.kv, env.users, zap.NewNop())
	_, err := otherTab.Login("grace@example.com", "correct-horse")
	require.NoError(t, err)

	change := receive(t, changes, time.Second)
	require.NotNil(t, change.User)
	assert.Equal(t, env.member.ID, change.User.ID)

	otherTab.Logout()
	change = receive(t, changes, time.Second)
	assert.Nil(t, change.User)
}

func TestWatch_StopsOnCancel(t *testing.T) {
	env := setupSessionTestEnv(t, WithPollInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	changes := env.store.Watch(ctx)
	assert.Equal(t, 1, env.notifier.subscriberCount("profile-1"))

	cancel()

	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("watch channel was not closed after cancel")
	}

	assert.Eventually(t, func() bool {
		return env.notifier.subscriberCount("profile-1") == 0
	}, time.Second, 10*time.Millisecond)
}

func TestWithPollInterval_IgnoresNonPositive(t *testing.T) {
	env := setupSessionTestEnv(t, WithPollInterval(0))
	assert.Equal(t, constants.DefaultPollInterval, env.store.PollInterval())
}
