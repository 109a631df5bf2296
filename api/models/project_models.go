// api/models/project_models.go
package models

import "github.com/Annany2002/projecthub-backend/internal/domain"

// Multipart field names of POST /project/register.
const (
	ProjectFieldFile     = "file"
	ProjectFieldUserID   = "userId"
	ProjectFieldTitle    = "title"
	ProjectFieldSemester = "semester"
	ProjectFieldLink     = "link"
)

// ProjectResponse is returned after a project is registered.
type ProjectResponse struct {
	Message      string          `json:"message"`
	Project      *domain.Project `json:"project"`
	FileUploaded bool            `json:"fileUploaded"`
}
