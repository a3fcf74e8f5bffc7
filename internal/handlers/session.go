package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard/internal/constants"
	"github.com/yukikurage/taskboard/internal/dto"
	"github.com/yukikurage/taskboard/internal/models"
	"go.uber.org/zap"
)

const sessionEvent = "session"

// SessionHandler streams sign-in changes of the profile to open tabs.
type SessionHandler struct {
	log *zap.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		log: logger,
	}
}

// Events sends the current sign-in state, then one "session" event per change
// until the client goes away. A tab that sees authenticated=false should
// follow the redirect to the login view.
func (h *SessionHandler) Events(c *gin.Context) {
	ws, ok := workspaceOrAbort(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	changes := ws.Session.Watch(ctx)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	user, _ := ws.Session.CurrentUser()
	h.send(c, user)

	for {
		select {
		case <-ctx.Done():
			h.log.Debug("session stream closed", zap.String("profile_id", ws.ProfileID))
			return
		case change, open := <-changes:
			if !open {
				return
			}
			h.send(c, change.User)
		}
	}
}

func (h *SessionHandler) send(c *gin.Context, user *models.User) {
	c.SSEvent(sessionEvent, sessionState(user))
	c.Writer.Flush()
}

func sessionState(user *models.User) dto.SessionDTO {
	if user == nil {
		return dto.SessionDTO{Authenticated: false, Redirect: constants.RedirectLogin}
	}
	userDTO := dto.ToUserDTO(*user)
	return dto.SessionDTO{Authenticated: true, User: &userDTO}
}
