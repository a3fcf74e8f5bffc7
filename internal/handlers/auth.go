package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard/internal/constants"
	"github.com/yukikurage/taskboard/internal/dto"
	apierrors "github.com/yukikurage/taskboard/internal/errors"
	"github.com/yukikurage/taskboard/internal/middleware"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/services"
	"github.com/yukikurage/taskboard/internal/workspace"
	"go.uber.org/zap"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	log *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		log: logger,
	}
}

// Signup registers a new user and signs them in to the profile.
func (h *AuthHandler) Signup(c *gin.Context) {
	type SignupRequest struct {
		Name     string      `json:"name" binding:"required"`
		Email    string      `json:"email" binding:"required"`
		Password string      `json:"password" binding:"required"`
		Role     models.Role `json:"role" binding:"required"`
	}

	ws, ok := workspaceOrAbort(c)
	if !ok {
		return
	}

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := ws.Auth.Signup(services.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	userDTO := dto.ToUserDTO(*user)
	c.JSON(http.StatusCreated, dto.SessionDTO{
		Authenticated: true,
		User:          &userDTO,
		Redirect:      constants.RedirectTaskList,
	})
}

// Login authenticates a user and records them as the profile's current user.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	ws, ok := workspaceOrAbort(c)
	if !ok {
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := ws.Auth.Login(services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	userDTO := dto.ToUserDTO(*user)
	c.JSON(http.StatusOK, dto.SessionDTO{
		Authenticated: true,
		User:          &userDTO,
		Redirect:      constants.RedirectTaskList,
	})
}

// Logout clears the profile's current user. Logging out twice is fine.
func (h *AuthHandler) Logout(c *gin.Context) {
	ws, ok := workspaceOrAbort(c)
	if !ok {
		return
	}

	ws.Auth.Logout()

	c.JSON(http.StatusOK, dto.SessionDTO{
		Authenticated: false,
		Redirect:      constants.RedirectLogin,
	})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	userDTO := dto.ToUserDTO(*user)
	c.JSON(http.StatusOK, dto.SessionDTO{
		Authenticated: true,
		User:          &userDTO,
	})
}

// ListUsers returns the profile's users, optionally filtered by role.
// The assignee picker asks for role=team_member.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	ws, ok := workspaceOrAbort(c)
	if !ok {
		return
	}

	var users []models.User
	if roleStr := c.Query("role"); roleStr != "" {
		role := models.Role(roleStr)
		if !role.Valid() {
			apierrors.BadRequest(c, services.ErrInvalidRole.Error())
			return
		}
		users = ws.Auth.ListUsersByRole(role)
	} else {
		users = ws.Auth.ListUsers()
	}

	c.JSON(http.StatusOK, gin.H{
		"users": dto.ToUserDTOs(users),
	})
}

func (h *AuthHandler) respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrEmailRequired),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrInvalidRole):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, apierrors.ErrCodeEmailTaken, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.LoginRejected(c, apierrors.ErrCodeUserNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.LoginRejected(c, apierrors.ErrCodeInvalidCredentials, err.Error())
	case errors.Is(err, services.ErrFailedToCreateUser):
		apierrors.InternalError(c, err.Error())
	default:
		h.log.Error("auth request failed", zap.Error(err))
		apierrors.InternalError(c, "Internal server error")
	}
}

func workspaceOrAbort(c *gin.Context) (*workspace.Workspace, bool) {
	ws, exists := middleware.GetWorkspace(c)
	if !exists {
		apierrors.InternalError(c, "Workspace not initialized")
		return nil, false
	}
	return ws, true
}
