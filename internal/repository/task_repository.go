package repository

import (
	"github.com/yukikurage/taskboard/internal/constants"
	"github.com/yukikurage/taskboard/internal/kvstore"
	"github.com/yukikurage/taskboard/internal/models"
	"go.uber.org/zap"
)

// KVTaskRepository is a TaskRepository persisting the whole task list as one
// JSON array. Every mutation rewrites the entire array with no compare-and-swap,
// so concurrent writers on the same profile overwrite each other.
type KVTaskRepository struct {
	store kvstore.Store
	log   *zap.Logger
	opts  options
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(store kvstore.Store, logger *zap.Logger, opts ...Option) TaskRepository {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &KVTaskRepository{store: store, log: logger, opts: o}
}

// Create creates a new task
func (r *KVTaskRepository) Create(fields NewTask) (*models.Task, error) {
	tasks, err := r.load()
	if err != nil {
		return nil, err
	}

	now := r.opts.now()
	task := models.Task{
		ID:            r.opts.newID(),
		Title:         fields.Title,
		Description:   fields.Description,
		Status:        fields.Status,
		AssignedTo:    fields.AssignedTo,
		CreatedBy:     fields.CreatedBy,
		CreatedByName: fields.CreatedByName,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	tasks = append(tasks, task)
	if err := saveCollection(r.store, constants.KeyTasks, tasks); err != nil {
		return nil, err
	}

	return &task, nil
}

// ListAll returns every task; read failures yield an empty list
func (r *KVTaskRepository) ListAll() []models.Task {
	tasks, err := r.load()
	if err != nil {
		r.log.Error("failed to load tasks", zap.Error(err))
		return []models.Task{}
	}
	return tasks
}

// ListByStatus filters ListAll by exact status match
func (r *KVTaskRepository) ListByStatus(status models.TaskStatus) []models.Task {
	return r.filter(func(t models.Task) bool {
		return t.Status == status
	})
}

// ListByAssignee filters ListAll by exact assignee match
func (r *KVTaskRepository) ListByAssignee(userID string) []models.Task {
	return r.filter(func(t models.Task) bool {
		return t.AssignedTo == userID
	})
}

// FindByID finds a task by ID
func (r *KVTaskRepository) FindByID(id string) (*models.Task, error) {
	for _, task := range r.ListAll() {
		if task.ID == id {
			return &task, nil
		}
	}
	return nil, ErrTaskNotFound
}

// UpdateStatus updates the status in place, keeping the task's position
func (r *KVTaskRepository) UpdateStatus(id string, status models.TaskStatus) error {
	tasks, err := r.load()
	if err != nil {
		return err
	}

	idx := indexOfTask(tasks, id)
	if idx < 0 {
		return ErrTaskNotFound
	}

	tasks[idx].Status = status
	tasks[idx].UpdatedAt = r.opts.now()

	return saveCollection(r.store, constants.KeyTasks, tasks)
}

// Delete removes a task
func (r *KVTaskRepository) Delete(id string) error {
	tasks, err := r.load()
	if err != nil {
		return err
	}

	idx := indexOfTask(tasks, id)
	if idx < 0 {
		return ErrTaskNotFound
	}

	remaining := make([]models.Task, 0, len(tasks)-1)
	remaining = append(remaining, tasks[:idx]...)
	remaining = append(remaining, tasks[idx+1:]...)

	return saveCollection(r.store, constants.KeyTasks, remaining)
}

func (r *KVTaskRepository) load() ([]models.Task, error) {
	return loadCollection[models.Task](r.store, constants.KeyTasks, r.log)
}

func (r *KVTaskRepository) filter(keep func(models.Task) bool) []models.Task {
	all := r.ListAll()
	result := make([]models.Task, 0, len(all))
	for _, task := range all {
		if keep(task) {
			result = append(result, task)
		}
	}
	return result
}

func indexOfTask(tasks []models.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
