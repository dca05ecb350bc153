package services_test

import (
	"testing"

	"task-tracker/backend/internal/cache"
	"task-tracker/backend/internal/logger"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type countingTaskService struct {
	services.TaskService
	listCalls int
}

func (c *countingTaskService) ListTasks(db *gorm.DB, owner uuid.UUID, q services.ListQuery) (services.TaskList, error) {
	c.listCalls++
	return c.TaskService.ListTasks(db, owner, q)
}

type CachedTaskServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	inner   *countingTaskService
	service *services.CachedTaskService
	owner   uuid.UUID
}

func (suite *CachedTaskServiceTestSuite) SetupTest() {
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

	mr := miniredis.RunT(suite.T())
	cacheConfig := cache.DefaultCacheConfig()
	cacheConfig.Addr = mr.Addr()
	redisCache := cache.NewRedisCache(cacheConfig)
	suite.T().Cleanup(func() { redisCache.Close() })

	suite.db = db
	suite.inner = &countingTaskService{TaskService: services.NewTaskService()}
	suite.service = services.NewCachedTaskService(suite.inner, redisCache, logger.Nop())
	suite.owner = uuid.Must(uuid.NewV4())
}

func (suite *CachedTaskServiceTestSuite) TestListIsReadThrough() {
	_, err := suite.service.CreateTask(suite.db, suite.owner, "cached", "")
	suite.Require().NoError(err)
	suite.Require().Equal(0, suite.inner.listCalls)

	first, err := suite.service.ListTasks(suite.db, suite.owner, services.ListQuery{})
	suite.Require().NoError(err)
	suite.Equal(1, suite.inner.listCalls)
	suite.Len(first.Items, 1)

	second, err := suite.service.ListTasks(suite.db, suite.owner, services.ListQuery{})
	suite.Require().NoError(err)
	suite.Equal(1, suite.inner.listCalls, "second read must be served from cache")
	suite.Equal(first.Total, second.Total)
}

func (suite *CachedTaskServiceTestSuite) TestMutationInvalidatesOwnerEntries() {
	task, err := suite.service.CreateTask(suite.db, suite.owner, "first", "")
	suite.Require().NoError(err)

	_, err = suite.service.ListTasks(suite.db, suite.owner, services.ListQuery{})
	suite.Require().NoError(err)

	status := models.StatusDone
	_, err = suite.service.UpdateTask(suite.db, suite.owner, task.ID, services.TaskPatch{Status: &status})
	suite.Require().NoError(err)

	list, err := suite.service.ListTasks(suite.db, suite.owner, services.ListQuery{})
	suite.Require().NoError(err)
	suite.Equal(2, suite.inner.listCalls, "update must evict the cached list")
	suite.Equal(models.StatusDone, list.Items[0].Status)
}

func (suite *CachedTaskServiceTestSuite) TestDistinctQueriesCacheSeparately() {
	for i := 0; i < 3; i++ {
		_, err := suite.service.CreateTask(suite.db, suite.owner, "task", "")
		suite.Require().NoError(err)
	}

	_, err := suite.service.ListTasks(suite.db, suite.owner, services.ListQuery{Page: 1, Limit: 2})
	suite.Require().NoError(err)
	_, err = suite.service.ListTasks(suite.db, suite.owner, services.ListQuery{Page: 2, Limit: 2})
	suite.Require().NoError(err)
	suite.Equal(2, suite.inner.listCalls, "different pages are different cache keys")
}

func TestCachedTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CachedTaskServiceTestSuite))
}
