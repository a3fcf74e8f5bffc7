package constants

import "time"

// Session and context keys
const (
	SessionCookieName     = "taskboard_session"
	ContextKeyProfileID   = "profile_id"
	ContextKeyWorkspace   = "workspace"
	ContextKeyCurrentUser = "current_user"
	ContextKeyTask        = "task"
)

// Keys of the per-profile key-value store
const (
	KeyUsers       = "users"
	KeyTasks       = "tasks"
	KeyCurrentUser = "currentUser"
)

// Navigation targets returned to clients on auth-state transitions
const (
	RedirectLogin    = "/login"
	RedirectTaskList = "/dashboard/all-tasks"
)

const (
	MinPasswordLength   = 8
	DefaultPollInterval = time.Second
	ProfileCookieMaxAge = 86400 * 365

	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 200

	MaxAIGeneratedTasks = 20

	UnknownUserName = "Unknown User"
)
