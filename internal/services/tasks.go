package services

import (
	"errors"
	"strings"
	"time"

	"task-tracker/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

var (
	ErrEmptyTitle    = errors.New("title is required")
	ErrInvalidStatus = errors.New("invalid task status")
	// ErrTaskNotFound is returned both when no row exists and when the row
	// belongs to another owner, so existence is never leaked.
	ErrTaskNotFound = errors.New("task not found")
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type ListQuery struct {
	Page   int
	Limit  int
	Search string
	Status string
}

// Normalized clamps out-of-range paging values to the defaults.
func (q ListQuery) Normalized() ListQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	return q
}

type TaskList struct {
	Items []models.Task `json:"items"`
	Total int64         `json:"total"`
	Pages int           `json:"pages"`
}

type TaskPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// TaskService implements owner-scoped task CRUD. Every query predicate
// includes the owner, which is the sole authorization mechanism: a row owned
// by someone else is indistinguishable from a missing row.
type TaskService interface {
	ListTasks(db *gorm.DB, owner uuid.UUID, q ListQuery) (TaskList, error)
	CreateTask(db *gorm.DB, owner uuid.UUID, title, description string) (models.Task, error)
	UpdateTask(db *gorm.DB, owner uuid.UUID, id uuid.UUID, patch TaskPatch) (models.Task, error)
	DeleteTask(db *gorm.DB, owner uuid.UUID, id uuid.UUID) error
}

type TaskServiceImpl struct{}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

func (s *TaskServiceImpl) ListTasks(db *gorm.DB, owner uuid.UUID, q ListQuery) (TaskList, error) {
	q = q.Normalized()

	scope := func() *gorm.DB {
		tx := db.Model(&models.Task{}).Where("user_id = ?", owner)
		if q.Search != "" {
			pattern := "%" + strings.ToLower(q.Search) + "%"
			tx = tx.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
		}
		if q.Status != "" && q.Status != "all" {
			tx = tx.Where("status = ?", q.Status)
		}
		return tx
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return TaskList{}, err
	}

	// Pre-allocate so an empty page serializes as [] rather than null.
	tasks := make([]models.Task, 0, q.Limit)
	err := scope().
		Order("created_at DESC").
		Order("id DESC").
		Limit(q.Limit).
		Offset((q.Page - 1) * q.Limit).
		Find(&tasks).Error
	if err != nil {
		return TaskList{}, err
	}

	pages := 0
	if total > 0 {
		pages = int((total + int64(q.Limit) - 1) / int64(q.Limit))
	}

	return TaskList{Items: tasks, Total: total, Pages: pages}, nil
}

// CreateTask assigns id, owner, status, and timestamp itself; callers cannot
// influence those fields.
func (s *TaskServiceImpl) CreateTask(db *gorm.DB, owner uuid.UUID, title, description string) (models.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Task{}, ErrEmptyTitle
	}

	task := models.Task{
		ID:          uuid.Must(uuid.NewV4()),
		UserID:      owner,
		Title:       title,
		Description: description,
		Status:      models.StatusPending,
		CreatedAt:   time.Now(),
	}

	if err := db.Create(&task).Error; err != nil {
		return models.Task{}, err
	}

	return task, nil
}

func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, owner uuid.UUID, id uuid.UUID, patch TaskPatch) (models.Task, error) {
	if patch.Status != nil && !models.ValidStatus(*patch.Status) {
		return models.Task{}, ErrInvalidStatus
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return models.Task{}, ErrEmptyTitle
	}

	var task models.Task
	if err := db.Where("id = ? AND user_id = ?", id, owner).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, err
	}

	updates := map[string]interface{}{}
	if patch.Title != nil {
		updates["title"] = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}

	if len(updates) > 0 {
		if err := db.Model(&task).Updates(updates).Error; err != nil {
			return models.Task{}, err
		}
		// Reload so callers get the authoritative post-update row.
		if err := db.Where("id = ? AND user_id = ?", id, owner).First(&task).Error; err != nil {
			return models.Task{}, err
		}
	}

	return task, nil
}

func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, owner uuid.UUID, id uuid.UUID) error {
	result := db.Where("id = ? AND user_id = ?", id, owner).Delete(&models.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
