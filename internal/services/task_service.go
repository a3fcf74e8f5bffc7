package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/taskboard/internal/constants"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrNotTeamLead            = errors.New("only team leads can perform this action")
	ErrTaskPermissionDenied   = errors.New("only a team lead or the assignee can change this task")
	ErrTitleRequired          = errors.New("title is required")
	ErrDescriptionRequired    = errors.New("description is required")
	ErrAssigneeRequired       = errors.New("assignee is required")
	ErrInvalidStatus          = errors.New("status must be pending, in_progress or completed")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo  repository.TaskRepository
	userRepo  repository.UserRepository
	aiService *AIService
	log       *zap.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, aiService *AIService, logger *zap.Logger) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		userRepo:  userRepo,
		aiService: aiService,
		log:       logger,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Status     *models.TaskStatus
	AssignedTo string
	Search     string
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	AssignedTo  string
}

// TaskStats holds the dashboard counters for one user
type TaskStats struct {
	Total                 int `json:"total"`
	Pending               int `json:"pending"`
	InProgress            int `json:"in_progress"`
	Completed             int `json:"completed"`
	PendingAssignedToMe   int `json:"pending_assigned_to_me"`
	CompletedAssignedToMe int `json:"completed_assigned_to_me"`
	PendingCreatedByMe    int `json:"pending_created_by_me"`
	CompletedCreatedByMe  int `json:"completed_created_by_me"`
}

// ListTasks returns tasks in stored order matching every provided filter
func (s *TaskService) ListTasks(input ListTasksInput) []models.Task {
	var tasks []models.Task
	switch {
	case input.Status != nil:
		tasks = s.taskRepo.ListByStatus(*input.Status)
	case input.AssignedTo != "":
		tasks = s.taskRepo.ListByAssignee(input.AssignedTo)
	default:
		tasks = s.taskRepo.ListAll()
	}

	term := strings.ToLower(strings.TrimSpace(input.Search))
	result := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if input.AssignedTo != "" && task.AssignedTo != input.AssignedTo {
			continue
		}
		if term != "" && !matchesSearch(task, term) {
			continue
		}
		result = append(result, task)
	}
	return result
}

// GetTask returns a task by ID
func (s *TaskService) GetTask(taskID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// CreateTask validates the input and creates a task owned by actor
func (s *TaskService) CreateTask(actor *models.User, input CreateTaskInput) (*models.Task, error) {
	if !actor.IsTeamLead() {
		return nil, ErrNotTeamLead
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	if strings.TrimSpace(input.AssignedTo) == "" {
		return nil, ErrAssigneeRequired
	}

	if input.Status == "" {
		input.Status = models.TaskStatusPending
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	task, err := s.taskRepo.Create(repository.NewTask{
		Title:         title,
		Description:   description,
		Status:        input.Status,
		AssignedTo:    input.AssignedTo,
		CreatedBy:     actor.ID,
		CreatedByName: actor.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.log.Info("task created",
		zap.String("task_id", task.ID),
		zap.String("assigned_to", task.AssignedTo),
		zap.String("created_by", task.CreatedBy))
	return task, nil
}

// UpdateStatus moves a task to status. Any status may follow any other.
func (s *TaskService) UpdateStatus(actor *models.User, taskID string, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	task, err := s.GetTask(taskID)
	if err != nil {
		return nil, err
	}

	if !CanChangeStatus(actor, task) {
		return nil, ErrTaskPermissionDenied
	}

	if err := s.taskRepo.UpdateStatus(taskID, status); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			// deleted by another tab between the read and the write
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.GetTask(taskID)
}

// DeleteTask deletes a task; only team leads may delete
func (s *TaskService) DeleteTask(actor *models.User, taskID string) error {
	if !actor.IsTeamLead() {
		return ErrNotTeamLead
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.log.Info("task deleted", zap.String("task_id", taskID), zap.String("deleted_by", actor.ID))
	return nil
}

// Stats computes the dashboard counters for actor. Created-by counters are
// only filled in for team leads.
func (s *TaskService) Stats(actor *models.User) TaskStats {
	var stats TaskStats
	for _, task := range s.taskRepo.ListAll() {
		stats.Total++
		mine := task.AssignedTo == actor.ID
		created := actor.IsTeamLead() && task.CreatedBy == actor.ID

		switch task.Status {
		case models.TaskStatusPending:
			stats.Pending++
			if mine {
				stats.PendingAssignedToMe++
			}
			if created {
				stats.PendingCreatedByMe++
			}
		case models.TaskStatusInProgress:
			stats.InProgress++
		case models.TaskStatusCompleted:
			stats.Completed++
			if mine {
				stats.CompletedAssignedToMe++
			}
			if created {
				stats.CompletedCreatedByMe++
			}
		}
	}
	return stats
}

// UserName resolves a display name. Tasks may reference users that no longer
// resolve; those get a placeholder.
func (s *TaskService) UserName(userID string) string {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return constants.UnknownUserName
	}
	return user.Name
}

// UserNames resolves every user once, for rendering lists of tasks
func (s *TaskService) UserNames() func(string) string {
	names := make(map[string]string)
	for _, user := range s.userRepo.List() {
		names[user.ID] = user.Name
	}
	return func(userID string) string {
		if name, ok := names[userID]; ok {
			return name
		}
		return constants.UnknownUserName
	}
}

// CanChangeStatus reports whether actor may move task between states
func CanChangeStatus(actor *models.User, task *models.Task) bool {
	return actor.IsTeamLead() || task.AssignedTo == actor.ID
}

// GenerateTasks uses AI to draft tasks from free text. Drafts are not saved.
func (s *TaskService) GenerateTasks(ctx context.Context, actor *models.User, text string) ([]GeneratedTask, error) {
	if !actor.IsTeamLead() {
		return nil, ErrNotTeamLead
	}
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	aiTasks, err := s.aiService.GenerateTasksFromText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		return nil, fmt.Errorf("AI generated too many tasks (max %d)", constants.MaxAIGeneratedTasks)
	}

	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	for _, aiTask := range aiTasks {
		aiTask.Title = strings.TrimSpace(aiTask.Title)
		if aiTask.Title == "" {
			continue
		}
		if strings.TrimSpace(aiTask.Description) == "" {
			aiTask.Description = aiTask.Title
		}
		validTasks = append(validTasks, aiTask)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validTasks, nil
}

func matchesSearch(task models.Task, term string) bool {
	return strings.Contains(strings.ToLower(task.Title), term) ||
		strings.Contains(strings.ToLower(task.Description), term)
}
