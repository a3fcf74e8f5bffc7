package repository

import (
	"github.com/yukikurage/taskboard/internal/constants"
	"github.com/yukikurage/taskboard/internal/kvstore"
	"github.com/yukikurage/taskboard/internal/models"
	"go.uber.org/zap"
)

// KVUserRepository is a UserRepository persisting users as one JSON array
type KVUserRepository struct {
	store kvstore.Store
	log   *zap.Logger
	opts  options
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(store kvstore.Store, logger *zap.Logger, opts ...Option) UserRepository {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &KVUserRepository{store: store, log: logger, opts: o}
}

// Create creates a new user. ID and CreatedAt are assigned when empty.
func (r *KVUserRepository) Create(user *models.User) error {
	users, err := loadCollection[models.User](r.store, constants.KeyUsers, r.log)
	if err != nil {
		return err
	}

	for _, existing := range users {
		if existing.Email == user.Email {
			return ErrEmailTaken
		}
	}

	if user.ID == "" {
		user.ID = r.opts.newID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.opts.now()
	}

	users = append(users, *user)
	return saveCollection(r.store, constants.KeyUsers, users)
}

// List returns every user; read failures yield an empty list
func (r *KVUserRepository) List() []models.User {
	users, err := loadCollection[models.User](r.store, constants.KeyUsers, r.log)
	if err != nil {
		r.log.Error("failed to load users", zap.Error(err))
		return []models.User{}
	}
	return users
}

// ListByRole returns the users holding role
func (r *KVUserRepository) ListByRole(role models.Role) []models.User {
	all := r.List()
	result := make([]models.User, 0, len(all))
	for _, user := range all {
		if user.Role == role {
			result = append(result, user)
		}
	}
	return result
}

// FindByID finds a user by ID
func (r *KVUserRepository) FindByID(id string) (*models.User, error) {
	for _, user := range r.List() {
		if user.ID == id {
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}

// FindByEmail finds a user by email
func (r *KVUserRepository) FindByEmail(email string) (*models.User, error) {
	for _, user := range r.List() {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}
