// api/handlers/auth_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Annany2002/projecthub-backend/api/middleware"
	"github.com/Annany2002/projecthub-backend/api/models"
	"github.com/Annany2002/projecthub-backend/config"
	"github.com/Annany2002/projecthub-backend/internal/auth"
	"github.com/Annany2002/projecthub-backend/internal/core"
	"github.com/Annany2002/projecthub-backend/internal/logger"
	"github.com/Annany2002/projecthub-backend/internal/storage"
)

var (
	customLog = logger.NewLogger()
)

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	Users *storage.UserRepo
	Cfg   *config.Config
}

// NewAuthHandler creates a new AuthHandler with dependencies.
func NewAuthHandler(users *storage.UserRepo, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		Users: users,
		Cfg:   cfg,
	}
}

// Login handles user login requests and issues JWT on success.
// Unknown email and wrong password are indistinguishable to the caller.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.Users.FindByEmail(c.Request.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			customLog.Warnf("Login failed for email %s: no active user", req.Email)
			_ = c.Error(auth.ErrInvalidLogin)
			return
		}
		_ = c.Error(err)
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		customLog.Warnf("Login attempt failed for user %d: invalid password", user.ID)
		_ = c.Error(auth.ErrInvalidLogin)
		return
	}

	tokenString, err := auth.GenerateJWT(user, h.Cfg.JWTSecret, h.Cfg.JWTExpiration)
	if err != nil {
		_ = c.Error(err)
		return
	}

	customLog.Printf("User %d logged in", user.ID)
	c.JSON(http.StatusOK, models.LoginResponse{Message: "Login successful", Token: tokenString, User: user})
}

// Me echoes the verified identity of the caller.
func (h *AuthHandler) Me(c *gin.Context) {
	claim, ok := middleware.Identity(c)
	if !ok {
		_ = c.Error(auth.ErrMissingIdentity)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Authenticated", "user": claim})
}

// bindJSON decodes the request body into req. Tag failures are attached as
// validator.ValidationErrors; malformed bodies as a *core.ValidationError.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		customLog.Debugf("%s binding error: %v", c.FullPath(), err)
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			_ = c.Error(vErrs)
		} else {
			_ = c.Error(core.NewValidationError("body", "Invalid request body"))
		}
		return false
	}
	return true
}
