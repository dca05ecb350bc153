package handlers

import (
	"errors"
	"net/http"
	"time"

	"task-tracker/backend/internal/logger"
	"task-tracker/backend/internal/middleware"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db           *gorm.DB
	authService  services.AuthService
	log          *logger.Logger
	cookieMaxAge time.Duration
	cookieSecure bool
}

func NewAuthHandler(db *gorm.DB, authService services.AuthService, log *logger.Logger, cookieMaxAge time.Duration, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		db:           db,
		authService:  authService,
		log:          log,
		cookieMaxAge: cookieMaxAge,
		cookieSecure: cookieSecure,
	}
}

type CredentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string     `json:"token"`
	User  UserDetail `json:"user"`
}

type UserDetail struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Email and password are required",
		})
		return
	}

	user, err := h.authService.RegisterUser(h.db, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingCredentials):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_request",
				"message": "Email and password are required",
			})
		case errors.Is(err, services.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "user_exists",
				"message": "An account with this email already exists",
			})
		default:
			h.log.Error().Err(err).Msg("registration failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	token, err := h.authService.IssueToken(user.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("token issue failed after registration")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, authResponseFor(user, token))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Email and password are required",
		})
		return
	}

	user, err := h.authService.LoginUser(h.db, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_credentials",
				"message": "Invalid email or password",
			})
			return
		}
		h.log.Error().Err(err).Msg("login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	token, err := h.authService.IssueToken(user.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("token issue failed on login")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, int(h.cookieMaxAge.Seconds()), "/", "", h.cookieSecure, true)

	c.JSON(http.StatusOK, authResponseFor(user, token))
}

func authResponseFor(user *models.User, token string) AuthResponse {
	return AuthResponse{
		Token: token,
		User: UserDetail{
			ID:    user.ID.String(),
			Email: user.Email,
		},
	}
}
