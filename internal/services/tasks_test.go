package services_test

import (
	"fmt"
	"testing"
	"time"

	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/services"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type TaskServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *services.TaskServiceImpl

	ownerA uuid.UUID
	ownerB uuid.UUID
}

func (suite *TaskServiceTestSuite) SetupSuite() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = db.Exec(`
		CREATE TABLE tasks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			created_at DATETIME
		)
	`).Error
	suite.Require().NoError(err)

	suite.db = db
	suite.service = services.NewTaskService()
	suite.ownerA = uuid.Must(uuid.NewV4())
	suite.ownerB = uuid.Must(uuid.NewV4())
}

func (suite *TaskServiceTestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM tasks")
}

func (suite *TaskServiceTestSuite) seedTask(owner uuid.UUID, title, description, status string, createdAt time.Time) models.Task {
	task := models.Task{
		ID:          uuid.Must(uuid.NewV4()),
		UserID:      owner,
		Title:       title,
		Description: description,
		Status:      status,
		CreatedAt:   createdAt,
	}
	suite.Require().NoError(suite.db.Create(&task).Error)
	return task
}

func (suite *TaskServiceTestSuite) TestCreateAssignsServerFields() {
	task, err := suite.service.CreateTask(suite.db, suite.ownerA, "  Buy Milk  ", "2 liters")
	suite.Require().NoError(err)

	suite.NotEqual(uuid.Nil, task.ID)
	suite.Equal(suite.ownerA, task.UserID)
	suite.Equal("Buy Milk", task.Title)
	suite.Equal("2 liters", task.Description)
	suite.Equal(models.StatusPending, task.Status)
	suite.False(task.CreatedAt.IsZero())
}

func (suite *TaskServiceTestSuite) TestCreateEmptyTitle() {
	_, err := suite.service.CreateTask(suite.db, suite.ownerA, "   ", "")
	suite.ErrorIs(err, services.ErrEmptyTitle)

	var count int64
	suite.db.Model(&models.Task{}).Count(&count)
	suite.EqualValues(0, count)
}

func (suite *TaskServiceTestSuite) TestListNewestFirst() {
	base := time.Now().Add(-time.Hour)
	oldest := suite.seedTask(suite.ownerA, "first", "", "pending", base)
	middle := suite.seedTask(suite.ownerA, "second", "", "pending", base.Add(time.Minute))
	newest := suite.seedTask(suite.ownerA, "third", "", "pending", base.Add(2*time.Minute))

	list, err := suite.service.ListTasks(suite.db, suite.ownerA, services.ListQuery{})
	suite.Require().NoError(err)

	suite.Require().Len(list.Items, 3)
	suite.Equal(newest.ID, list.Items[0].ID)
	suite.Equal(middle.ID, list.Items[1].ID)
	suite.Equal(oldest.ID, list.Items[2].ID)
}

func (suite *TaskServiceTestSuite) TestListPaginationMath() {
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		suite.seedTask(suite.ownerA, fmt.Sprintf("task %d", i), "", "pending", base.Add(time.Duration(i)*time.Second))
	}

	list, err := suite.service.ListTasks(suite.db, suite.ownerA, services.ListQuery{Page: 1, Limit: 10})
	suite.Require().NoError(err)
	suite.Len(list.Items, 10)
	suite.EqualValues(25, list.Total)
	suite.Equal(3, list.Pages)
	suite.Equal("task 24", list.Items[0].Title)

	last, err := suite.service.ListTasks(suite.db, suite.ownerA, services.ListQuery{Page: 3, Limit: 10})
	suite.Require().NoError(err)
	suite.Len(last.Items, 5)

	beyond, err := suite.service.ListTasks(suite.db, suite.ownerA, services.ListQuery{Page: 4, Limit: 10})
	suite.Require().NoError(err)
	suite.Empty(beyond.Items)
	suite.EqualValues(25, beyond.Total)
	suite.Equal(3, beyond.Pages)
}

func (suite *TaskServiceTestSuite) TestListEmpty() {
	list, err := suite.service.ListTasks(suite.db, suite.ownerA, services.ListQuery{})
	suite.Require().NoError(err)
	suite.Empty(list.Items)
	suite.EqualValues(0, list.Total)
	suite.Equal(0, list.Pages)
}

func (suite *TaskServiceTestSuite) TestListClampsPaging() {
	suite.seedTask(suite.ownerA, "only", "", "pending", time.Now())

	list, err := suite.service.ListTasks(suite.db, suite.ownerA, services.ListQuery{Page: -3, Limit: 0})
	suite.Require().NoError(err)
	suite.Len(list.Items, 1)
	suite.Equal(1, list.Pages)
}

func (suite *TaskServiceTestSuite) TestListSearchCaseInsensitive() {
	now := time.Now()
	suite.seedTask(suite.ownerA, "Buy Milk", "", "pending", now)
	suite.seedTask(suite.ownerA, "Clean house", "also buy MILK there", "pending", now.Add(time.Second))
	suite.seedTask(suite.ownerA, "Unrelated", "nothing here", "pending", now.Add(2*time.Second))

	list, err := suite.service.ListTasks(suite.db, suite.ownerA, services.ListQuery{Search: "milk"})
	suite.Require().NoError(err)

	suite.Len(list.Items, 2, "search must match title OR description, case-insensitively")
	suite.EqualValues(2, list.Total)
}

func (suite *TaskServiceTestSuite) TestListStatusFilter() {
	now := time.Now()
	suite.seedTask(suite.ownerA, "a", "", "pending", now)
	suite.seedTask(suite.ownerA, "b", "", "done", now.Add(time.Second))
	suite.seedTask(suite.ownerA, "c", "", "done", now.Add(2*time.Second))

	done, err := suite.service.ListTasks(suite.db, suite.ownerA, services.ListQuery{Status: "done"})
	suite.Require().NoError(err)
	suite.Len(done.Items, 2)
	for _, task := range done.Items {
		suite.Equal(models.StatusDone, task.Status)
	}

	all, err := suite.service.ListTasks(suite.db, suite.ownerA, services.ListQuery{Status: "all"})
	suite.Require().NoError(err)
	suite.Len(all.Items, 3)

	unfiltered, err := suite.service.ListTasks(suite.db, suite.ownerA, services.ListQuery{})
	suite.Require().NoError(err)
	suite.Len(unfiltered.Items, 3)
}

func (suite *TaskServiceTestSuite) TestOwnershipIsolation() {
	task := suite.seedTask(suite.ownerA, "private", "", "pending", time.Now())

	list, err := suite.service.ListTasks(suite.db, suite.ownerB, services.ListQuery{})
	suite.Require().NoError(err)
	suite.Empty(list.Items, "owner B must never see owner A's tasks")

	status := models.StatusDone
	_, err = suite.service.UpdateTask(suite.db, suite.ownerB, task.ID, services.TaskPatch{Status: &status})
	suite.ErrorIs(err, services.ErrTaskNotFound, "foreign task must look missing, not forbidden")

	err = suite.service.DeleteTask(suite.db, suite.ownerB, task.ID)
	suite.ErrorIs(err, services.ErrTaskNotFound)

	// Owner A still has the row untouched.
	remaining, err := suite.service.ListTasks(suite.db, suite.ownerA, services.ListQuery{})
	suite.Require().NoError(err)
	suite.Len(remaining.Items, 1)
	suite.Equal(models.StatusPending, remaining.Items[0].Status)
}

func (suite *TaskServiceTestSuite) TestUpdatePartial() {
	task := suite.seedTask(suite.ownerA, "original", "keep me", "pending", time.Now())

	status := models.StatusDone
	updated, err := suite.service.UpdateTask(suite.db, suite.ownerA, task.ID, services.TaskPatch{Status: &status})
	suite.Require().NoError(err)

	suite.Equal(models.StatusDone, updated.Status)
	suite.Equal("original", updated.Title, "absent fields must be untouched")
	suite.Equal("keep me", updated.Description)

	title := "renamed"
	updated, err = suite.service.UpdateTask(suite.db, suite.ownerA, task.ID, services.TaskPatch{Title: &title})
	suite.Require().NoError(err)
	suite.Equal("renamed", updated.Title)
	suite.Equal(models.StatusDone, updated.Status)
}

func (suite *TaskServiceTestSuite) TestUpdateInvalidStatus() {
	task := suite.seedTask(suite.ownerA, "t", "", "pending", time.Now())

	bad := "archived"
	_, err := suite.service.UpdateTask(suite.db, suite.ownerA, task.ID, services.TaskPatch{Status: &bad})
	suite.ErrorIs(err, services.ErrInvalidStatus)
}

func (suite *TaskServiceTestSuite) TestUpdateEmptyTitle() {
	task := suite.seedTask(suite.ownerA, "t", "", "pending", time.Now())

	empty := "  "
	_, err := suite.service.UpdateTask(suite.db, suite.ownerA, task.ID, services.TaskPatch{Title: &empty})
	suite.ErrorIs(err, services.ErrEmptyTitle)
}

func (suite *TaskServiceTestSuite) TestUpdateMissing() {
	status := models.StatusDone
	_, err := suite.service.UpdateTask(suite.db, suite.ownerA, uuid.Must(uuid.NewV4()), services.TaskPatch{Status: &status})
	suite.ErrorIs(err, services.ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestDelete() {
	task := suite.seedTask(suite.ownerA, "t", "", "pending", time.Now())

	suite.Require().NoError(suite.service.DeleteTask(suite.db, suite.ownerA, task.ID))

	err := suite.service.DeleteTask(suite.db, suite.ownerA, task.ID)
	suite.ErrorIs(err, services.ErrTaskNotFound, "deletion is permanent; a second delete sees nothing")
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
