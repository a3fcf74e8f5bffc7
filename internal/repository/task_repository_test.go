package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/taskboard/internal/constants"
	"github.com/yukikurage/taskboard/internal/kvstore"
	"github.com/yukikurage/taskboard/internal/models"
	"go.uber.org/zap"
)

// fakeClock advances by one second on every call
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time {
	c.current = c.current.Add(time.Second)
	return c.current
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// failingStore fails every call with err
type failingStore struct {
	err error
}

func (s failingStore) Get(string) (string, bool, error) { return "", false, s.err }
func (s failingStore) Set(string, string) error         { return s.err }
func (s failingStore) Remove(string) error              { return s.err }

type TaskRepositoryTestSuite struct {
	suite.Suite
	store kvstore.Store
	clock *fakeClock
	repo  TaskRepository
}

func (suite *TaskRepositoryTestSuite) SetupTest() {
	suite.store = kvstore.NewMemoryStore()
	suite.clock = &fakeClock{current: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
	suite.repo = NewTaskRepository(suite.store, zap.NewNop(),
		WithIDGenerator(sequentialIDs("task")),
		WithClock(suite.clock.Now),
	)
}

func (suite *TaskRepositoryTestSuite) createTask(title, assignee string, status models.TaskStatus) *models.Task {
	task, err := suite.repo.Create(NewTask{
		Title:         title,
		Description:   "x",
		Status:        status,
		AssignedTo:    assignee,
		CreatedBy:     "u1",
		CreatedByName: "Lead",
	})
	suite.Require().NoError(err)
	return task
}

func (suite *TaskRepositoryTestSuite) TestCreate_StampsTimestamps() {
	task := suite.createTask("Write spec", "u2", models.TaskStatusPending)

	suite.Equal("task-1", task.ID)
	suite.Equal(task.CreatedAt, task.UpdatedAt)
	suite.Equal("Lead", task.CreatedByName)

	all := suite.repo.ListAll()
	suite.Require().Len(all, 1)
	suite.Equal(*task, all[0])
}

func (suite *TaskRepositoryTestSuite) TestListAll_EmptyWhenMissing() {
	suite.Empty(suite.repo.ListAll())
	suite.NotNil(suite.repo.ListAll())
}

func (suite *TaskRepositoryTestSuite) TestListAll_MalformedDataTreatedAsEmpty() {
	suite.Require().NoError(suite.store.Set(constants.KeyTasks, "{not json"))
	suite.Empty(suite.repo.ListAll())

	// the next write replaces the unreadable value
	suite.createTask("Fresh", "u2", models.TaskStatusPending)
	suite.Len(suite.repo.ListAll(), 1)
}

func (suite *TaskRepositoryTestSuite) TestUpdateStatus_PreservesPosition() {
	first := suite.createTask("First", "u2", models.TaskStatusPending)
	suite.createTask("Second", "u3", models.TaskStatusPending)
	suite.createTask("Third", "u2", models.TaskStatusInProgress)

	suite.Require().NoError(suite.repo.UpdateStatus(first.ID, models.TaskStatusCompleted))

	all := suite.repo.ListAll()
	suite.Require().Len(all, 3)
	suite.Equal([]string{"First", "Second", "Third"}, []string{all[0].Title, all[1].Title, all[2].Title})
	suite.Equal(models.TaskStatusCompleted, all[0].Status)
	suite.True(all[0].UpdatedAt.After(all[0].CreatedAt))
}

func (suite *TaskRepositoryTestSuite) TestUpdateStatus_AnyTransitionAllowed() {
	task := suite.createTask("Reopen me", "u2", models.TaskStatusCompleted)

	suite.Require().NoError(suite.repo.UpdateStatus(task.ID, models.TaskStatusPending))
	suite.Require().NoError(suite.repo.UpdateStatus(task.ID, models.TaskStatusPending))
	suite.Require().NoError(suite.repo.UpdateStatus(task.ID, models.TaskStatusCompleted))

	updated, err := suite.repo.FindByID(task.ID)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusCompleted, updated.Status)
	suite.False(updated.UpdatedAt.Before(updated.CreatedAt))
}

func (suite *TaskRepositoryTestSuite) TestUpdateStatus_NotFoundLeavesCollectionUnchanged() {
	suite.createTask("Only", "u2", models.TaskStatusPending)
	before := suite.repo.ListAll()

	err := suite.repo.UpdateStatus("missing", models.TaskStatusCompleted)
	suite.ErrorIs(err, ErrTaskNotFound)
	suite.Equal(before, suite.repo.ListAll())
}

func (suite *TaskRepositoryTestSuite) TestDelete() {
	first := suite.createTask("First", "u2", models.TaskStatusPending)
	suite.createTask("Second", "u2", models.TaskStatusPending)

	suite.Require().NoError(suite.repo.Delete(first.ID))

	all := suite.repo.ListAll()
	suite.Require().Len(all, 1)
	suite.Equal("Second", all[0].Title)

	// deleting again reports NotFound and does not mutate
	suite.ErrorIs(suite.repo.Delete(first.ID), ErrTaskNotFound)
	suite.Equal(all, suite.repo.ListAll())
}

func (suite *TaskRepositoryTestSuite) TestListByStatusAndAssignee() {
	suite.createTask("A", "u2", models.TaskStatusPending)
	suite.createTask("B", "u3", models.TaskStatusPending)
	suite.createTask("C", "u2", models.TaskStatusCompleted)

	suite.Len(suite.repo.ListByStatus(models.TaskStatusPending), 2)
	suite.Len(suite.repo.ListByStatus(models.TaskStatusCompleted), 1)
	suite.Empty(suite.repo.ListByStatus(models.TaskStatusInProgress))

	assigned := suite.repo.ListByAssignee("u2")
	suite.Require().Len(assigned, 2)
	suite.Equal("A", assigned[0].Title)
	suite.Equal("C", assigned[1].Title)
}

func (suite *TaskRepositoryTestSuite) TestCompletingTaskMovesItBetweenStatusLists() {
	task := suite.createTask("Write spec", "u2", models.TaskStatusPending)

	pending := suite.repo.ListByStatus(models.TaskStatusPending)
	suite.Require().Len(pending, 1)
	suite.Equal(task.ID, pending[0].ID)

	suite.Require().NoError(suite.repo.UpdateStatus(task.ID, models.TaskStatusCompleted))

	suite.Empty(suite.repo.ListByStatus(models.TaskStatusPending))
	completed := suite.repo.ListByStatus(models.TaskStatusCompleted)
	suite.Require().Len(completed, 1)
	suite.Equal("Write spec", completed[0].Title)
	suite.Equal("x", completed[0].Description)
	suite.Equal("u2", completed[0].AssignedTo)
}

func (suite *TaskRepositoryTestSuite) TestLastWriteWins() {
	// two repositories over the same store model two tabs of one profile
	other := NewTaskRepository(suite.store, zap.NewNop(), WithIDGenerator(sequentialIDs("other")))
	task := suite.createTask("Shared", "u2", models.TaskStatusPending)

	suite.Require().NoError(other.UpdateStatus(task.ID, models.TaskStatusInProgress))
	suite.Require().NoError(suite.repo.UpdateStatus(task.ID, models.TaskStatusCompleted))

	latest, err := other.FindByID(task.ID)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusCompleted, latest.Status)
}

func TestTaskRepositorySuite(t *testing.T) {
	suite.Run(t, new(TaskRepositoryTestSuite))
}

func TestTaskRepository_BackendFailure(t *testing.T) {
	backendErr := errors.New("disk on fire")
	repo := NewTaskRepository(failingStore{err: backendErr}, zap.NewNop())

	assert.Empty(t, repo.ListAll())

	_, err := repo.Create(NewTask{Title: "t"})
	assert.ErrorIs(t, err, backendErr)

	assert.ErrorIs(t, repo.UpdateStatus("any", models.TaskStatusCompleted), backendErr)
	assert.ErrorIs(t, repo.Delete("any"), backendErr)

	_, err = repo.FindByID("any")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
