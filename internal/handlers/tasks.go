package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"task-tracker/backend/internal/logger"
	"task-tracker/backend/internal/middleware"
	"task-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TaskHandler struct {
	db          *gorm.DB
	taskService services.TaskService
	log         *logger.Logger
}

func NewTaskHandler(db *gorm.DB, taskService services.TaskService, log *logger.Logger) *TaskHandler {
	return &TaskHandler{db: db, taskService: taskService, log: log}
}

type PaginationDetail struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
	Limit int   `json:"limit"`
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	owner, ok := currentUserID(c)
	if !ok {
		return
	}

	q := services.ListQuery{
		Page:   atoiOrZero(c.Query("page")),
		Limit:  atoiOrZero(c.Query("limit")),
		Search: c.Query("search"),
		Status: c.Query("status"),
	}.Normalized()

	list, err := h.taskService.ListTasks(h.db, owner, q)
	if err != nil {
		h.handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": list.Items,
		"pagination": PaginationDetail{
			Total: list.Total,
			Page:  q.Page,
			Pages: list.Pages,
			Limit: q.Limit,
		},
	})
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	owner, ok := currentUserID(c)
	if !ok {
		return
	}

	// Any client-supplied status, owner, or timestamp is dropped here; the
	// service is authoritative for those fields.
	var taskInput struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&taskInput); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Title is required",
		})
		return
	}

	task, err := h.taskService.CreateTask(h.db, owner, taskInput.Title, taskInput.Description)
	if err != nil {
		h.handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	owner, ok := currentUserID(c)
	if !ok {
		return
	}

	id := uuid.FromStringOrNil(c.Param("id"))

	var patch services.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request format",
		})
		return
	}

	task, err := h.taskService.UpdateTask(h.db, owner, id, patch)
	if err != nil {
		h.handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	owner, ok := currentUserID(c)
	if !ok {
		return
	}

	id := uuid.FromStringOrNil(c.Param("id"))

	if err := h.taskService.DeleteTask(h.db, owner, id); err != nil {
		h.handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}

func (h *TaskHandler) handleTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "task_not_found",
			"message": "Task not found",
		})
	case errors.Is(err, services.ErrEmptyTitle):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Title is required",
		})
	case errors.Is(err, services.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Status must be pending or done",
		})
	default:
		h.log.Error().Err(err).Msg("task request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// currentUserID reads the identity placed in the context by the auth
// middleware. A missing or unparsable value aborts with 401.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	idStr := c.GetString(middleware.ContextUserID)
	id := uuid.FromStringOrNil(idStr)
	if id == uuid.Nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":   "missing_token",
			"message": "Authentication required",
		})
		return uuid.Nil, false
	}
	return id, true
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
