// api/handlers/user_handler.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/projecthub-backend/api/models"
	"github.com/Annany2002/projecthub-backend/config"
	"github.com/Annany2002/projecthub-backend/internal/auth"
	"github.com/Annany2002/projecthub-backend/internal/core"
	"github.com/Annany2002/projecthub-backend/internal/domain"
	"github.com/Annany2002/projecthub-backend/internal/storage"
)

// UserHandler holds dependencies for user administration handlers.
type UserHandler struct {
	Users *storage.UserRepo
	Cfg   *config.Config
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *storage.UserRepo, cfg *config.Config) *UserHandler {
	return &UserHandler{Users: users, Cfg: cfg}
}

// Register creates a new user.
func (h *UserHandler) Register(c *gin.Context) {
	var req models.RegisterUserRequest
	if !bindJSON(c, &req) {
		return
	}

	role := domain.RoleUser
	if strings.TrimSpace(req.Role) != "" {
		parsed, ok := domain.ParseRole(req.Role)
		if !ok {
			_ = c.Error(invalidRole())
			return
		}
		role = parsed
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.Users.Create(c.Request.Context(), domain.NewUser{
		Name:         strings.TrimSpace(req.Name),
		UserName:     strings.TrimSpace(req.UserName),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hashedPassword,
		Role:         role,
	})
	if err != nil {
		customLog.Warnf("Failed to register user %s: %v", req.Email, err)
		_ = c.Error(err)
		return
	}

	customLog.Printf("Registered user %d (%s)", user.ID, user.Role)
	c.JSON(http.StatusCreated, models.UserResponse{Message: "User registered successfully", User: user})
}

// Edit updates an active user. The password is re-hashed only when supplied.
func (h *UserHandler) Edit(c *gin.Context) {
	var req models.EditUserRequest
	if !bindJSON(c, &req) {
		return
	}

	upd := domain.UserUpdate{
		ID:       req.ID,
		Name:     strings.TrimSpace(req.Name),
		UserName: strings.TrimSpace(req.UserName),
		Email:    strings.TrimSpace(req.Email),
	}
	if strings.TrimSpace(req.Role) != "" {
		parsed, ok := domain.ParseRole(req.Role)
		if !ok {
			_ = c.Error(invalidRole())
			return
		}
		upd.Role = parsed
	}
	if req.Password != "" {
		hashedPassword, err := auth.HashPassword(req.Password)
		if err != nil {
			_ = c.Error(err)
			return
		}
		upd.PasswordHash = hashedPassword
	}

	user, err := h.Users.Update(c.Request.Context(), upd)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.UserResponse{Message: "User updated successfully", User: user})
}

// Delete soft-deletes an active user.
func (h *UserHandler) Delete(c *gin.Context) {
	var req models.DeleteUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.Users.SoftDelete(c.Request.Context(), req.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	customLog.Printf("Soft-deleted user %d", user.ID)
	c.JSON(http.StatusOK, models.UserResponse{Message: "User deleted successfully", User: user})
}

// View returns a single active user.
func (h *UserHandler) View(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.Users.FindByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.UserResponse{Message: "User fetched successfully", User: user})
}

// List returns a filtered, sorted page of active users.
func (h *UserHandler) List(c *gin.Context) {
	spec, err := core.BuildQuerySpec(c.Request.URL.Query(), core.UserListSchema, core.BuildOptions{MaxLimit: h.Cfg.ListMaxLimit})
	if err != nil {
		_ = c.Error(err)
		return
	}

	page, err := h.Users.List(c.Request.Context(), spec)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.NewListResponse("Users fetched successfully", page))
}

func invalidRole() error {
	names := make([]string, len(domain.Roles))
	for i, r := range domain.Roles {
		names[i] = string(r)
	}
	return core.NewValidationError("role", "role must be one of "+strings.Join(names, ", "))
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, core.NewValidationError(name, name+" must be a positive integer")
	}
	return id, nil
}
