// Package workspace assembles the per-profile data layer: repositories,
// the session store and the services built on them.
package workspace

import (
	"time"

	"github.com/yukikurage/taskboard/internal/constants"
	"github.com/yukikurage/taskboard/internal/kvstore"
	"github.com/yukikurage/taskboard/internal/repository"
	"github.com/yukikurage/taskboard/internal/services"
	"github.com/yukikurage/taskboard/internal/session"
	"go.uber.org/zap"
)

// Workspace is everything a request needs to act on one profile
type Workspace struct {
	ProfileID   string
	Users       repository.UserRepository
	Tasks       repository.TaskRepository
	Session     *session.Store
	Auth        *services.AuthService
	TaskService *services.TaskService
}

// Factory opens workspaces over a shared kvstore.Provider. Opening is cheap:
// nothing is cached, every read goes back to the store.
type Factory struct {
	provider     kvstore.Provider
	notifier     *session.Notifier
	aiService    *services.AIService
	pollInterval time.Duration
	repoOpts     []repository.Option
	log          *zap.Logger
}

// Option configures a Factory
type Option func(*Factory)

// WithAIService enables AI task drafting
func WithAIService(ai *services.AIService) Option {
	return func(f *Factory) {
		f.aiService = ai
	}
}

// WithPollInterval sets the session watch poll interval
func WithPollInterval(d time.Duration) Option {
	return func(f *Factory) {
		if d > 0 {
			f.pollInterval = d
		}
	}
}

// WithRepositoryOptions passes id generator and clock overrides to every repository
func WithRepositoryOptions(opts ...repository.Option) Option {
	return func(f *Factory) {
		f.repoOpts = append(f.repoOpts, opts...)
	}
}

// NewFactory creates a Factory
func NewFactory(provider kvstore.Provider, logger *zap.Logger, opts ...Option) *Factory {
	f := &Factory{
		provider:     provider,
		notifier:     session.NewNotifier(),
		pollInterval: constants.DefaultPollInterval,
		log:          logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// AIEnabled reports whether task drafting is available
func (f *Factory) AIEnabled() bool {
	return f.aiService != nil
}

// Open returns the workspace of profileID
func (f *Factory) Open(profileID string) *Workspace {
	log := f.log.With(zap.String("profile_id", profileID))
	kv := f.provider.Profile(profileID)

	users := repository.NewUserRepository(kv, log, f.repoOpts...)
	tasks := repository.NewTaskRepository(kv, log, f.repoOpts...)
	sess := session.NewStore(kv, users, log,
		session.WithNotifier(f.notifier, profileID),
		session.WithPollInterval(f.pollInterval),
	)

	return &Workspace{
		ProfileID:   profileID,
		Users:       users,
		Tasks:       tasks,
		Session:     sess,
		Auth:        services.NewAuthService(users, sess, log),
		TaskService: services.NewTaskService(tasks, users, f.aiService, log),
	}
}
