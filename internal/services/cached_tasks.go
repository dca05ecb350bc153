package services

import (
	"errors"
	"fmt"
	"time"

	"task-tracker/backend/internal/cache"
	"task-tracker/backend/internal/logger"
	"task-tracker/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const listCacheTTL = 5 * time.Minute

// CachedTaskService is a read-through cache over TaskService list queries.
// Keys are scoped per owner so invalidation after a mutation only touches
// that owner's entries. Cache failures degrade to the database.
type CachedTaskService struct {
	taskService TaskService
	cache       *cache.RedisCache
	log         *logger.Logger
}

func NewCachedTaskService(taskService TaskService, cacheInstance *cache.RedisCache, log *logger.Logger) *CachedTaskService {
	return &CachedTaskService{
		taskService: taskService,
		cache:       cacheInstance,
		log:         log,
	}
}

func listCacheKey(owner uuid.UUID, q ListQuery) string {
	return fmt.Sprintf("tasks:%s:p%d:l%d:q%s:f%s", owner, q.Page, q.Limit, q.Search, q.Status)
}

func ownerCachePattern(owner uuid.UUID) string {
	return fmt.Sprintf("tasks:%s:*", owner)
}

func (s *CachedTaskService) ListTasks(db *gorm.DB, owner uuid.UUID, q ListQuery) (TaskList, error) {
	q = q.Normalized()
	key := listCacheKey(owner, q)

	var cached TaskList
	if err := s.cache.Get(key, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn().Err(err).Str("key", key).Msg("task list cache read failed")
	}

	list, err := s.taskService.ListTasks(db, owner, q)
	if err != nil {
		return list, err
	}

	if err := s.cache.Set(key, list, listCacheTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("task list cache write failed")
	}

	return list, nil
}

func (s *CachedTaskService) CreateTask(db *gorm.DB, owner uuid.UUID, title, description string) (models.Task, error) {
	task, err := s.taskService.CreateTask(db, owner, title, description)
	if err != nil {
		return task, err
	}
	s.invalidate(owner)
	return task, nil
}

func (s *CachedTaskService) UpdateTask(db *gorm.DB, owner uuid.UUID, id uuid.UUID, patch TaskPatch) (models.Task, error) {
	task, err := s.taskService.UpdateTask(db, owner, id, patch)
	if err != nil {
		return task, err
	}
	s.invalidate(owner)
	return task, nil
}

func (s *CachedTaskService) DeleteTask(db *gorm.DB, owner uuid.UUID, id uuid.UUID) error {
	if err := s.taskService.DeleteTask(db, owner, id); err != nil {
		return err
	}
	s.invalidate(owner)
	return nil
}

func (s *CachedTaskService) invalidate(owner uuid.UUID) {
	if err := s.cache.DeletePattern(ownerCachePattern(owner)); err != nil {
		s.log.Warn().Err(err).Str("owner", owner.String()).Msg("task cache invalidation failed")
	}
}
