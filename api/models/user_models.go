// api/models/user_models.go
package models

import (
	"github.com/Annany2002/projecthub-backend/internal/core"
	"github.com/Annany2002/projecthub-backend/internal/domain"
	"github.com/Annany2002/projecthub-backend/internal/storage"
)

// --- User Request Structs ---

// RegisterUserRequest defines the body of POST /user/register. Role is
// optional and defaults to USER.
type RegisterUserRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	UserName string `json:"userName" binding:"required,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

// EditUserRequest defines the body of POST /user/edit. An empty password
// keeps the current one.
type EditUserRequest struct {
	ID       int64  `json:"id" binding:"required,gt=0"`
	Name     string `json:"name" binding:"required,max=100"`
	UserName string `json:"userName" binding:"required,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"omitempty,min=8"`
	Role     string `json:"role"`
}

// DeleteUserRequest defines the body of POST /user/delete.
type DeleteUserRequest struct {
	ID int64 `json:"id" binding:"required,gt=0"`
}

// --- Response Structs ---

// UserResponse wraps a single user.
type UserResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

// ListResponse is the paginated listing envelope.
type ListResponse[T any] struct {
	Message    string             `json:"message"`
	Data       []T                `json:"data"`
	Pagination storage.Pagination `json:"pagination"`
	Filters    core.Filters       `json:"filters"`
}

// NewListResponse builds the envelope from a storage page.
func NewListResponse[T any](message string, page *storage.Page[T]) ListResponse[T] {
	return ListResponse[T]{
		Message:    message,
		Data:       page.Rows,
		Pagination: page.Pagination,
		Filters:    page.Filters,
	}
}
