package dto

import (
	"time"

	"github.com/yukikurage/taskboard/internal/models"
)

// UserDTO represents a user in API responses. The password never leaves the store.
type UserDTO struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Status         models.TaskStatus `json:"status"`
	AssignedTo     string            `json:"assignedTo"`
	AssignedToName string            `json:"assignedToName"`
	CreatedBy      string            `json:"createdBy"`
	CreatedByName  string            `json:"createdByName"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int       `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// SessionDTO describes the sign-in state of a profile
type SessionDTO struct {
	Authenticated bool     `json:"authenticated"`
	User          *UserDTO `json:"user,omitempty"`
	Redirect      string   `json:"redirect,omitempty"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	items := make([]UserDTO, len(users))
	for i, user := range users {
		items[i] = ToUserDTO(user)
	}
	return items
}

// ToTaskDTO converts a Task model to TaskDTO. nameOf resolves user ids to
// display names; the denormalized creator name wins when present.
func ToTaskDTO(task models.Task, nameOf func(string) string) TaskDTO {
	createdByName := task.CreatedByName
	if createdByName == "" {
		createdByName = nameOf(task.CreatedBy)
	}

	return TaskDTO{
		ID:             task.ID,
		Title:          task.Title,
		Description:    task.Description,
		Status:         task.Status,
		AssignedTo:     task.AssignedTo,
		AssignedToName: nameOf(task.AssignedTo),
		CreatedBy:      task.CreatedBy,
		CreatedByName:  createdByName,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
	}
}

// ToTaskListResponse converts one page of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, nameOf func(string) string, page, pageSize, totalCount int) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task, nameOf)
	}

	totalPages := totalCount / pageSize
	if totalCount%pageSize > 0 {
		totalPages++
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
