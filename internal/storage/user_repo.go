// internal/storage/user_repo.go
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

const usersTable = "users"

var userColumns = []string{
	"id", "name", "user_name", "email", "password_hash", "role",
	"is_active", "status", "created_at", "updated_at",
}

const selectUser = `SELECT id, name, user_name, email, password_hash, role, is_active, status, created_at, updated_at FROM users`

// UserRepo reads and writes user records. Every lookup is restricted to
// active rows; deleted users are invisible to it.
type UserRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// Create inserts a new active user after checking that no active user holds
// the same email or user name.
func (r *UserRepo) Create(ctx context.Context, nu domain.NewUser) (*domain.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.checkUnique(ctx, r.db, nu.Email, nu.UserName, 0); err != nil {
		return nil, err
	}

	ts := now()
	user := &domain.User{
		Name:         nu.Name,
		UserName:     nu.UserName,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		Role:         nu.Role,
		IsActive:     true,
		Status:       domain.StatusActive,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}

	insertSQL := r.db.Rebind(`INSERT INTO users (name, user_name, email, password_hash, role, is_active, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := r.db.QueryRowxContext(ctx, insertSQL,
		user.Name, user.UserName, user.Email, user.PasswordHash, string(user.Role),
		true, domain.StatusActive, ts, ts,
	).Scan(&user.ID)
	if err != nil {
		if conflict := userConflict(err); conflict != nil {
			return nil, conflict
		}
		return nil, storageFault("insert user", err)
	}
	return user, nil
}

// FindByID returns the active user with id.
func (r *UserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	return r.findOne(ctx, r.db, selectUser+` WHERE id = ? AND is_active = ?`, id, true)
}

// FindByEmail returns the active user with email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	return r.findOne(ctx, r.db, selectUser+` WHERE email = ? AND is_active = ?`, email, true)
}

// Update rewrites an active user's profile. The email and user name must not
// belong to another active user. An empty PasswordHash or Role keeps the
// stored value.
func (r *UserRepo) Update(ctx context.Context, upd domain.UserUpdate) (*domain.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, storageFault("begin user update", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	existing, err := r.findOne(ctx, tx, selectUser+` WHERE id = ? AND is_active = ?`, upd.ID, true)
	if err != nil {
		return nil, err
	}
	if err := r.checkUnique(ctx, tx, upd.Email, upd.UserName, upd.ID); err != nil {
		return nil, err
	}

	existing.Name = upd.Name
	existing.Email = upd.Email
	existing.UserName = upd.UserName
	if upd.PasswordHash != "" {
		existing.PasswordHash = upd.PasswordHash
	}
	if upd.Role != "" {
		existing.Role = upd.Role
	}
	existing.UpdatedAt = now()

	updateSQL := tx.Rebind(`UPDATE users SET name = ?, user_name = ?, email = ?, password_hash = ?, role = ?, updated_at = ?
		WHERE id = ? AND is_active = ?`)
	if _, err := tx.ExecContext(ctx, updateSQL,
		existing.Name, existing.UserName, existing.Email, existing.PasswordHash, string(existing.Role), existing.UpdatedAt,
		existing.ID, true,
	); err != nil {
		if conflict := userConflict(err); conflict != nil {
			return nil, conflict
		}
		return nil, storageFault("update user", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storageFault("commit user update", err)
	}
	return existing, nil
}

// SoftDelete marks an active user as deleted (is_active=false, status=0).
// The row is kept.
func (r *UserRepo) SoftDelete(ctx context.Context, id int64) (*domain.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	user, err := r.findOne(ctx, r.db, selectUser+` WHERE id = ? AND is_active = ?`, id, true)
	if err != nil {
		return nil, err
	}

	ts := now()
	result, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE users SET is_active = ?, status = ?, updated_at = ? WHERE id = ? AND is_active = ?`),
		false, domain.StatusDeleted, ts, id, true,
	)
	if err != nil {
		return nil, storageFault("delete user", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, storageFault("confirm user delete", err)
	}
	if rowsAffected == 0 {
		return nil, ErrUserNotFound
	}

	user.IsActive = false
	user.Status = domain.StatusDeleted
	user.UpdatedAt = ts
	return user, nil
}

// HasActiveAdmin reports whether at least one active ADMIN exists.
func (r *UserRepo) HasActiveAdmin(ctx context.Context) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var count int64
	err := r.db.GetContext(ctx, &count,
		r.db.Rebind(`SELECT COUNT(*) FROM users WHERE role = ? AND is_active = ?`),
		string(domain.RoleAdmin), true)
	if err != nil {
		return false, storageFault("count admins", err)
	}
	return count > 0, nil
}

// List returns one page of active users matching spec.
func (r *UserRepo) List(ctx context.Context, spec *core.QuerySpec) (*Page[domain.User], error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	return ListPage[domain.User](ctx, r.db, usersTable, userColumns, spec)
}

// userSummaries loads the public view of the given users, active or not, keyed by id.
func userSummaries(ctx context.Context, db *sqlx.DB, ids []int64) (map[int64]*domain.UserSummary, error) {
	out := make(map[int64]*domain.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT id, name, user_name, email FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, storageFault("build user summary query", err)
	}
	var rows []domain.UserSummary
	if err := db.SelectContext(ctx, &rows, db.Rebind(query), args...); err != nil {
		return nil, storageFault("load user summaries", err)
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}

func (r *UserRepo) findOne(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (*domain.User, error) {
	var user domain.User
	if err := sqlx.GetContext(ctx, q, &user, sqlx.Rebind(sqlx.BindType(r.db.DriverName()), query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, storageFault("find user", err)
	}
	return &user, nil
}

// checkUnique fails with ErrEmailExists or ErrUserNameExists when another
// active user (other than excludeID) already holds email or userName.
func (r *UserRepo) checkUnique(ctx context.Context, q sqlx.QueryerContext, email, userName string, excludeID int64) error {
	bind := sqlx.BindType(r.db.DriverName())

	var count int64
	if err := sqlx.GetContext(ctx, q, &count,
		sqlx.Rebind(bind, `SELECT COUNT(*) FROM users WHERE email = ? AND is_active = ? AND id <> ?`),
		email, true, excludeID); err != nil {
		return storageFault("check email", err)
	}
	if count > 0 {
		return ErrEmailExists
	}

	if err := sqlx.GetContext(ctx, q, &count,
		sqlx.Rebind(bind, `SELECT COUNT(*) FROM users WHERE user_name = ? AND is_active = ? AND id <> ?`),
		userName, true, excludeID); err != nil {
		return storageFault("check user name", err)
	}
	if count > 0 {
		return ErrUserNameExists
	}
	return nil
}
