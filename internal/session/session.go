// Package session tracks which user, if any, is signed in to a profile.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/taskboard/internal/constants"
	"github.com/yukikurage/taskboard/internal/kvstore"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrUserNotFound       = errors.New("no account found with this email address")
	ErrInvalidCredentials = errors.New("invalid password")
)

// Change is emitted by Watch whenever the persisted current-user record changes.
// User is nil after a sign-out.
type Change struct {
	User *models.User
	At   time.Time
}

// Store owns the "currentUser" record of one profile.
type Store struct {
	kv           kvstore.Store
	users        repository.UserRepository
	log          *zap.Logger
	notifier     *Notifier
	profileID    string
	pollInterval time.Duration
}

// Option configures a Store
type Option func(*Store)

// WithNotifier publishes sign-in and sign-out on n under profileID and lets
// Watch react to them without waiting for the next poll.
func WithNotifier(n *Notifier, profileID string) Option {
	return func(s *Store) {
		s.notifier = n
		s.profileID = profileID
	}
}

// WithPollInterval sets how often Watch re-reads the persisted record.
// Non-positive values keep the default.
func WithPollInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// NewStore creates a Store reading users from users and the session record from kv.
func NewStore(kv kvstore.Store, users repository.UserRepository, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		kv:           kv,
		users:        users,
		log:          logger,
		pollInterval: constants.DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PollInterval is the upper bound on how stale a Watch observer can be.
func (s *Store) PollInterval() time.Duration {
	return s.pollInterval
}

// CurrentUser returns the signed-in user. Absent, unreadable and malformed
// records all report false.
func (s *Store) CurrentUser() (*models.User, bool) {
	return s.decode(s.raw())
}

// Login looks the email up among registered users and, when the password
// matches, persists that user as the current one.
func (s *Store) Login(email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.Password != password {
		return nil, ErrInvalidCredentials
	}

	if err := s.SetCurrent(user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetCurrent persists user as the signed-in identity
func (s *Store) SetCurrent(user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode current user: %w", err)
	}
	if err := s.kv.Set(constants.KeyCurrentUser, string(data)); err != nil {
		return fmt.Errorf("failed to save current user: %w", err)
	}
	s.publish()
	return nil
}

// Logout clears the current-user record. It never fails; a storage error is
// logged and otherwise ignored.
func (s *Store) Logout() {
	if err := s.kv.Remove(constants.KeyCurrentUser); err != nil {
		s.log.Warn("failed to clear current user", zap.Error(err))
	}
	s.publish()
}

// Watch reports changes of the current-user record until ctx is done, then
// closes the channel. The record is re-read every PollInterval so changes made
// by other writers are seen within that delay; local sign-ins and sign-outs
// are reported immediately. Only transitions are sent, never the initial state.
func (s *Store) Watch(ctx context.Context) <-chan Change {
	changes := make(chan Change, 1)

	var signal <-chan struct{}
	cancel := func() {}
	if s.notifier != nil {
		signal, cancel = s.notifier.Subscribe(s.profileID)
	}

	last := s.raw()

	go func() {
		defer close(changes)
		defer cancel()

		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			case <-signal:
			}

			current := s.raw()
			if current == last {
				continue
			}
			last = current

			user, _ := s.decode(current)
			select {
			case changes <- Change{User: user, At: time.Now()}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return changes
}

func (s *Store) raw() string {
	value, ok, err := s.kv.Get(constants.KeyCurrentUser)
	if err != nil {
		s.log.Warn("failed to read current user", zap.Error(err))
		return ""
	}
	if !ok {
		return ""
	}
	return value
}

func (s *Store) decode(raw string) (*models.User, bool) {
	if raw == "" {
		return nil, false
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.log.Warn("treating unparsable current user as signed out",
			zap.Error(fmt.Errorf("%w: %v", repository.ErrStoreParse, err)))
		return nil, false
	}
	if user.ID == "" {
		return nil, false
	}
	return &user, true
}

func (s *Store) publish() {
	if s.notifier != nil {
		s.notifier.Publish(s.profileID)
	}
}
