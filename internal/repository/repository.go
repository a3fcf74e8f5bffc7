package repository

import (
	"errors"
	"time"

	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/utils"
)

var (
	// ErrTaskNotFound is returned when an operation references a task id absent from the collection.
	ErrTaskNotFound = errors.New("task not found")
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned by UserRepository.Create when the email is already registered.
	ErrEmailTaken = errors.New("user with this email already exists")
	// ErrStoreParse marks persisted data that was present but could not be decoded.
	ErrStoreParse = errors.New("stored collection is not valid JSON")
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create appends a new task stamped with a fresh id and createdAt = updatedAt = now
	Create(fields NewTask) (*models.Task, error)

	// ListAll returns every task in insertion order
	ListAll() []models.Task

	// ListByStatus returns the tasks whose status equals status
	ListByStatus(status models.TaskStatus) []models.Task

	// ListByAssignee returns the tasks assigned to userID
	ListByAssignee(userID string) []models.Task

	// FindByID finds a task by ID
	FindByID(id string) (*models.Task, error)

	// UpdateStatus sets the status of a task and bumps updatedAt
	UpdateStatus(id string, status models.TaskStatus) error

	// Delete removes a task from the collection
	Delete(id string) error
}

// NewTask holds the caller-supplied fields of a task
type NewTask struct {
	Title         string
	Description   string
	Status        models.TaskStatus
	AssignedTo    string
	CreatedBy     string
	CreatedByName string
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create registers a user, rejecting duplicate emails before anything is written
	Create(user *models.User) error

	// List returns every registered user in signup order
	List() []models.User

	// ListByRole returns the users holding role
	ListByRole(role models.Role) []models.User

	// FindByID finds a user by ID
	FindByID(id string) (*models.User, error)

	// FindByEmail finds a user by exact email match
	FindByEmail(email string) (*models.User, error)
}

// Option customises the identifier and clock collaborators of a repository
type Option func(*options)

type options struct {
	newID func() string
	now   func() time.Time
}

func defaultOptions() options {
	return options{
		newID: utils.NewID,
		now:   utils.Now,
	}
}

// WithIDGenerator replaces the identifier generator
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		o.newID = fn
	}
}

// WithClock replaces the timestamp source
func WithClock(fn func() time.Time) Option {
	return func(o *options) {
		o.now = fn
	}
}
