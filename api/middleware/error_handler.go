// api/middleware/error_handler.go
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Annany2002/projecthub-backend/internal/auth"
	"github.com/Annany2002/projecthub-backend/internal/core"
	"github.com/Annany2002/projecthub-backend/internal/storage"
)

// Machine-readable error codes returned in the "error" field.
const (
	CodeMissingToken       = "MISSING_TOKEN"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeMissingUserData    = "MISSING_USER_DATA"
	CodeMissingRole        = "MISSING_ROLE"
	CodeUnauthorizedRole   = "UNAUTHORIZED_ROLE"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeValidation         = "VALIDATION_ERROR"
	CodeConflict           = "CONFLICT"
	CodeNotFound           = "NOT_FOUND"
	CodeRateLimited        = "RATE_LIMITED"
	CodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrorHandler creates a Gin middleware for centralized error handling.
// Handlers and guards attach errors with c.Error; the last one decides the response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status, body := describeError(err)

		if status >= http.StatusInternalServerError {
			customLog.Errorf("[ErrorHandler] request_id=%s %s %s: %v (%T)", GetRequestID(c), c.Request.Method, c.Request.URL.Path, err, err)
		} else {
			customLog.Debugf("[ErrorHandler] request_id=%s status=%d: %v", GetRequestID(c), status, err)
		}

		if !c.Writer.Written() {
			c.AbortWithStatusJSON(status, body)
		} else {
			customLog.Warnf("[ErrorHandler] Response already written before handling error: %v", err)
		}
	}
}

func describeError(err error) (int, gin.H) {
	var (
		roleErr       *auth.RoleError
		validationErr *core.ValidationError
		bindErrs      validator.ValidationErrors
		tooLarge      *http.MaxBytesError
	)

	switch {
	case errors.Is(err, auth.ErrMissingCredential):
		return http.StatusUnauthorized, gin.H{"message": "Access denied. No token provided.", "error": CodeMissingToken}
	case errors.Is(err, auth.ErrInvalidCredential):
		return http.StatusUnauthorized, gin.H{"message": "Invalid or expired token.", "error": CodeInvalidToken}
	case errors.Is(err, auth.ErrMissingIdentity):
		return http.StatusUnauthorized, gin.H{"message": "User not authenticated", "error": CodeMissingUserData}
	case errors.Is(err, auth.ErrMissingRole):
		return http.StatusUnauthorized, gin.H{"message": "Role not found in token", "error": CodeMissingRole}
	case errors.As(err, &roleErr):
		return http.StatusForbidden, gin.H{
			"message":       "Insufficient permissions",
			"error":         CodeUnauthorizedRole,
			"userRole":      roleErr.Role,
			"requiredRoles": roleErr.Required,
		}
	case errors.Is(err, auth.ErrInsufficientRole):
		return http.StatusForbidden, gin.H{"message": "Insufficient permissions", "error": CodeUnauthorizedRole}
	case errors.Is(err, auth.ErrInvalidLogin):
		return http.StatusUnauthorized, gin.H{"message": "Invalid credentials", "error": CodeInvalidCredentials}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, gin.H{"message": "Too many requests. Please wait.", "error": CodeRateLimited}
	case errors.As(err, &validationErr):
		body := gin.H{"message": validationErr.Message, "error": CodeValidation}
		if len(validationErr.Required) > 0 {
			body["required"] = validationErr.Required
		}
		return http.StatusBadRequest, body
	case errors.As(err, &bindErrs):
		return http.StatusBadRequest, gin.H{"message": validationMessage(bindErrs), "error": CodeValidation}
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, gin.H{"message": "Request body too large", "error": CodePayloadTooLarge}
	case errors.Is(err, storage.ErrEmailExists):
		return http.StatusBadRequest, gin.H{"message": "Email already in use", "error": CodeConflict}
	case errors.Is(err, storage.ErrUserNameExists):
		return http.StatusBadRequest, gin.H{"message": "User already exists", "error": CodeConflict}
	case errors.Is(err, storage.ErrProjectExists):
		return http.StatusBadRequest, gin.H{"message": "Project with this title already exists for this user", "error": CodeConflict}
	case errors.Is(err, storage.ErrUserNotFound):
		return http.StatusNotFound, gin.H{"message": "User not found", "error": CodeNotFound}
	case errors.Is(err, storage.ErrProjectNotFound):
		return http.StatusNotFound, gin.H{"message": "Project not found", "error": CodeNotFound}
	default:
		// storage.ErrStorage and anything unexpected
		return http.StatusInternalServerError, gin.H{"message": "Server Error", "error": CodeInternal}
	}
}

// validationMessage turns binding tag failures into one readable sentence.
func validationMessage(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", field))
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be a valid email address", field))
		case "min":
			parts = append(parts, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "gt", "gte":
			parts = append(parts, fmt.Sprintf("%s must be a positive number", field))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of [%s]", field, fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(parts, "; ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
