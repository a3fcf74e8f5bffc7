package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard/internal/constants"
	apierrors "github.com/yukikurage/taskboard/internal/errors"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/utils"
	"github.com/yukikurage/taskboard/internal/workspace"
)

// Profile makes sure the client carries a profile id in its session cookie.
// The profile plays the part of a browser profile: every request bearing the
// same cookie reads and writes the same keyspace.
func Profile() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		profileID, _ := session.Get(constants.ContextKeyProfileID).(string)

		if profileID == "" {
			profileID = utils.NewID()
			session.Set(constants.ContextKeyProfileID, profileID)
			if err := session.Save(); err != nil {
				apierrors.InternalError(c, "Failed to initialize profile")
				c.Abort()
				return
			}
		}

		c.Set(constants.ContextKeyProfileID, profileID)
		c.Next()
	}
}

// OpenWorkspace opens the workspace of the request's profile
func OpenWorkspace(factory *workspace.Factory) gin.HandlerFunc {
	return func(c *gin.Context) {
		profileID, exists := GetProfileID(c)
		if !exists {
			apierrors.InternalError(c, "Profile not initialized")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyWorkspace, factory.Open(profileID))
		c.Next()
	}
}

// RequireAuth checks that a user is signed in to the profile
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, exists := GetWorkspace(c)
		if !exists {
			apierrors.InternalError(c, "Workspace not initialized")
			c.Abort()
			return
		}

		user, ok := ws.Session.CurrentUser()
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		// Store the user in context for easy access in handlers
		c.Set(constants.ContextKeyCurrentUser, user)
		c.Next()
	}
}

// RequireTeamLead rejects users that are not team leads. Must run after RequireAuth.
func RequireTeamLead() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := GetCurrentUser(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if !user.IsTeamLead() {
			apierrors.Forbidden(c, apierrors.ErrCodeTeamLeadOnly, "Only team leads can perform this action")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetProfileID retrieves the profile id from context
func GetProfileID(c *gin.Context) (string, bool) {
	value, exists := c.Get(constants.ContextKeyProfileID)
	if !exists {
		return "", false
	}
	profileID, ok := value.(string)
	return profileID, ok && profileID != ""
}

// GetWorkspace retrieves the profile workspace from context
func GetWorkspace(c *gin.Context) (*workspace.Workspace, bool) {
	value, exists := c.Get(constants.ContextKeyWorkspace)
	if !exists {
		return nil, false
	}
	ws, ok := value.(*workspace.Workspace)
	return ws, ok
}

// GetCurrentUser retrieves the signed-in user from context
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyCurrentUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
