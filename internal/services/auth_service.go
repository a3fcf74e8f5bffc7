package services

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/yukikurage/taskboard/internal/constants"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/repository"
	"github.com/yukikurage/taskboard/internal/session"
	"go.uber.org/zap"
)

var (
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = session.ErrInvalidCredentials
	ErrPasswordTooShort   = errors.New("password too short")
	ErrUserNotFound       = session.ErrUserNotFound
	ErrUnknownUser        = errors.New("user not found")
	ErrNameRequired       = errors.New("name is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidEmail       = errors.New("email address is not valid")
	ErrInvalidRole        = errors.New("role must be team_lead or team_member")
	ErrFailedToCreateUser = errors.New("failed to create user")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	session  *session.Store
	log      *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, sessionStore *session.Store, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		session:  sessionStore,
		log:      logger,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

// Signup registers a new user and signs them in.
func (s *AuthService) Signup(input SignupInput) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, ErrInvalidEmail
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if !input.Role.Valid() {
		return nil, ErrInvalidRole
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: input.Password,
		Role:     input.Role,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		s.log.Error("signup: create user", zap.Error(err))
		return nil, ErrFailedToCreateUser
	}

	if err := s.session.SetCurrent(user); err != nil {
		// the account exists; the caller can still log in explicitly
		s.log.Warn("signup: store current user", zap.Error(err), zap.String("user_id", user.ID))
	}

	s.log.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	user, err := s.session.Login(strings.TrimSpace(input.Email), input.Password)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) && !errors.Is(err, ErrInvalidCredentials) {
			s.log.Error("login failed", zap.Error(err))
		}
		return nil, err
	}
	return user, nil
}

// Logout signs the current user out.
func (s *AuthService) Logout() {
	s.session.Logout()
}

// CurrentUser returns the signed-in user of the profile.
func (s *AuthService) CurrentUser() (*models.User, bool) {
	return s.session.CurrentUser()
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ListUsers returns every registered user.
func (s *AuthService) ListUsers() []models.User {
	return s.userRepo.List()
}

// ListUsersByRole returns the users holding role; team members make up the assignee list.
func (s *AuthService) ListUsersByRole(role models.Role) []models.User {
	return s.userRepo.ListByRole(role)
}
