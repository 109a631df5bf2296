// internal/domain/models.go
package domain

import (
	"strings"
	"time"
)

// Role is a caller's permission label.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleUser}

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// Status values stored next to IsActive.
const (
	StatusDeleted = 0
	StatusActive  = 1
)

// IdentityClaim is the verified caller identity decoded from an access token.
// It is rebuilt on every request and never persisted.
type IdentityClaim struct {
	SubjectID   int64     `json:"id"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	DisplayName string    `json:"name"`
	IssuedAt    time.Time `json:"issuedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// User defines the structure for user data in the DB
type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	UserName     string    `db:"user_name" json:"userName"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	Status       int       `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// NewUser is a validated registration command.
type NewUser struct {
	Name         string
	UserName     string
	Email        string
	PasswordHash string
	Role         Role
}

// UserUpdate is a validated edit command. An empty PasswordHash keeps the stored one.
type UserUpdate struct {
	ID           int64
	Name         string
	UserName     string
	Email        string
	PasswordHash string
	Role         Role
}

// UserSummary is the public owner/creator view embedded in project responses.
type UserSummary struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	UserName string `db:"user_name" json:"userName"`
	Email    string `db:"email" json:"email,omitempty"`
}

// Project is a registered project with an optional uploaded file.
type Project struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	Title     string    `db:"title" json:"title"`
	Semester  *string   `db:"semester" json:"semester"`
	Link      *string   `db:"link" json:"link"`
	FilePath  *string   `db:"file_path" json:"filePath"`
	FileName  *string   `db:"file_name" json:"fileName"`
	FileSize  *int64    `db:"file_size" json:"fileSize"`
	MimeType  *string   `db:"mime_type" json:"mimeType"`
	CreatedBy int64     `db:"created_by" json:"createdBy"`
	UpdatedBy int64     `db:"updated_by" json:"updatedBy"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	User          *UserSummary `db:"-" json:"user,omitempty"`
	CreatedByUser *UserSummary `db:"-" json:"createdByUser,omitempty"`
}

// StoredFile describes an upload already written to disk.
type StoredFile struct {
	Path     string
	Name     string
	Size     int64
	MimeType string
}

// NewProject is a validated project registration command.
type NewProject struct {
	UserID    int64
	Title     string
	Semester  *string
	Link      *string
	File      *StoredFile
	CreatedBy int64
}
