package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskboard/internal/kvstore"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/repository"
	"github.com/yukikurage/taskboard/internal/session"
	"go.uber.org/zap"
)

type serviceTestEnv struct {
	kv          kvstore.Store
	users       repository.UserRepository
	tasks       repository.TaskRepository
	session     *session.Store
	authService *AuthService
	taskService *TaskService
}

func setupServiceTestEnv(t *testing.T) serviceTestEnv {
	t.Helper()

	logger := zap.NewNop()
	kv := kvstore.NewMemoryStore()
	users := repository.NewUserRepository(kv, logger)
	tasks := repository.NewTaskRepository(kv, logger)
	sess := session.NewStore(kv, users, logger)

	return serviceTestEnv{
		kv:          kv,
		users:       users,
		tasks:       tasks,
		session:     sess,
		authService: NewAuthService(users, sess, logger),
		taskService: NewTaskService(tasks, users, nil, logger),
	}
}

func (env serviceTestEnv) signup(t *testing.T, name, email string, role models.Role) *models.User {
	t.Helper()
	user, err := env.authService.Signup(SignupInput{
		Name:     name,
		Email:    email,
		Password: "password123",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}
