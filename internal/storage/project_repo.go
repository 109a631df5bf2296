// internal/storage/project_repo.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Annany2002/projecthub-backend/internal/core"
	"github.com/Annany2002/projecthub-backend/internal/domain"
)

const projectsTable = "projects"

var projectColumns = []string{
	"id", "user_id", "title", "semester", "link", "file_path", "file_name", "file_size", "mime_type",
	"created_by", "updated_by", "is_active", "created_at", "updated_at",
}

// ProjectRepo reads and writes project records.
type ProjectRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// Create registers a project for an active owner. A second active project
// with the same title for the same owner is rejected with ErrProjectExists.
func (r *ProjectRepo) Create(ctx context.Context, np domain.NewProject) (*domain.Project, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var ownerCount int64
	if err := r.db.GetContext(ctx, &ownerCount,
		r.db.Rebind(`SELECT COUNT(*) FROM users WHERE id = ? AND is_active = ?`), np.UserID, true); err != nil {
		return nil, storageFault("check project owner", err)
	}
	if ownerCount == 0 {
		return nil, ErrUserNotFound
	}

	var dupCount int64
	if err := r.db.GetContext(ctx, &dupCount,
		r.db.Rebind(`SELECT COUNT(*) FROM projects WHERE user_id = ? AND title = ? AND is_active = ?`),
		np.UserID, np.Title, true); err != nil {
		return nil, storageFault("check project title", err)
	}
	if dupCount > 0 {
		return nil, ErrProjectExists
	}

	ts := now()
	p := &domain.Project{
		UserID:    np.UserID,
		Title:     np.Title,
		Semester:  np.Semester,
		Link:      np.Link,
		CreatedBy: np.CreatedBy,
		UpdatedBy: np.CreatedBy,
		IsActive:  true,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if np.File != nil {
		p.FilePath = &np.File.Path
		p.FileName = &np.File.Name
		p.FileSize = &np.File.Size
		p.MimeType = &np.File.MimeType
	}

	insertSQL := r.db.Rebind(`INSERT INTO projects (user_id, title, semester, link, file_path, file_name, file_size, mime_type,
		created_by, updated_by, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := r.db.QueryRowxContext(ctx, insertSQL,
		p.UserID, p.Title, p.Semester, p.Link, p.FilePath, p.FileName, p.FileSize, p.MimeType,
		p.CreatedBy, p.UpdatedBy, true, ts, ts,
	).Scan(&p.ID)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return nil, ErrProjectExists
		}
		return nil, storageFault("insert project", err)
	}

	if err := r.attachUsers(ctx, []*domain.Project{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// FindByID returns the active project with id, with owner and creator attached.
func (r *ProjectRepo) FindByID(ctx context.Context, id int64) (*domain.Project, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var p domain.Project
	err := r.db.GetContext(ctx, &p,
		r.db.Rebind(`SELECT id, user_id, title, semester, link, file_path, file_name, file_size, mime_type,
			created_by, updated_by, is_active, created_at, updated_at FROM projects WHERE id = ? AND is_active = ?`),
		id, true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, storageFault("find project", err)
	}
	if err := r.attachUsers(ctx, []*domain.Project{&p}); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns one page of active projects matching spec, each with its
// owner and creator attached.
func (r *ProjectRepo) List(ctx context.Context, spec *core.QuerySpec) (*Page[domain.Project], error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	page, err := ListPage[domain.Project](ctx, r.db, projectsTable, projectColumns, spec)
	if err != nil {
		return nil, err
	}
	refs := make([]*domain.Project, len(page.Rows))
	for i := range page.Rows {
		refs[i] = &page.Rows[i]
	}
	if err := r.attachUsers(ctx, refs); err != nil {
		return nil, err
	}
	return page, nil
}

func (r *ProjectRepo) attachUsers(ctx context.Context, projects []*domain.Project) error {
	seen := map[int64]bool{}
	var ids []int64
	for _, p := range projects {
		for _, id := range []int64{p.UserID, p.CreatedBy} {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	summaries, err := userSummaries(ctx, r.db, ids)
	if err != nil {
		return err
	}
	for _, p := range projects {
		p.User = summaries[p.UserID]
		if creator, ok := summaries[p.CreatedBy]; ok {
			// creator view omits email
			p.CreatedByUser = &domain.UserSummary{ID: creator.ID, Name: creator.Name, UserName: creator.UserName}
		}
	}
	return nil
}
