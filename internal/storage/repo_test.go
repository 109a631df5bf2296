// internal/storage/repo_test.go
package storage

import (
	"context"
	"net/url"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/projecthub-backend/internal/core"
	"github.com/Annany2002/projecthub-backend/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	db, err := ConnectSQLite(ctx, filepath.Join(t.TempDir(), "test_projecthub.db"))
	require.NoError(t, err, "connect test db")
	require.NoError(t, EnsureSchema(ctx, db), "ensure schema")
	store := NewStore(db, 5*time.Second)
	t.Cleanup(func() { store.Close() })
	return store
}

func mustCreateUser(t *testing.T, s *Store, name, userName, email string, role domain.Role) *domain.User {
	t.Helper()
	u, err := s.Users.Create(context.Background(), domain.NewUser{
		Name: name, UserName: userName, Email: email, PasswordHash: "hash", Role: role,
	})
	require.NoError(t, err)
	return u
}

func TestUserRepoLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustCreateUser(t, s, "Ada", "ada", "ada@example.com", domain.RoleAdmin)
	assert.Positive(t, u.ID)
	assert.True(t, u.IsActive)
	assert.Equal(t, domain.StatusActive, u.Status)

	found, err := s.Users.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.Equal(t, domain.RoleAdmin, found.Role)
	assert.Equal(t, "hash", found.PasswordHash)
	assert.WithinDuration(t, u.CreatedAt, found.CreatedAt, time.Second)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := s.Users.Create(ctx, domain.NewUser{Name: "X", UserName: "other", Email: "ada@example.com", PasswordHash: "h", Role: domain.RoleUser})
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("duplicate user name", func(t *testing.T) {
		_, err := s.Users.Create(ctx, domain.NewUser{Name: "X", UserName: "ada", Email: "x@example.com", PasswordHash: "h", Role: domain.RoleUser})
		assert.ErrorIs(t, err, ErrUserNameExists)
	})

	t.Run("update keeps password when empty", func(t *testing.T) {
		updated, err := s.Users.Update(ctx, domain.UserUpdate{ID: u.ID, Name: "Ada L", UserName: "ada", Email: "ada@example.com"})
		require.NoError(t, err)
		assert.Equal(t, "Ada L", updated.Name)
		assert.Equal(t, "hash", updated.PasswordHash)
		assert.Equal(t, domain.RoleAdmin, updated.Role)
	})

	t.Run("update email conflict excludes own id", func(t *testing.T) {
		other := mustCreateUser(t, s, "Bob", "bob", "bob@example.com", domain.RoleUser)
		_, err := s.Users.Update(ctx, domain.UserUpdate{ID: other.ID, Name: "Bob", UserName: "bob", Email: "ada@example.com"})
		assert.ErrorIs(t, err, ErrEmailExists)

		updated, err := s.Users.Update(ctx, domain.UserUpdate{ID: other.ID, Name: "Bobby", UserName: "bob", Email: "bob@example.com", Role: domain.RoleAdmin, PasswordHash: "new"})
		require.NoError(t, err)
		assert.Equal(t, "new", updated.PasswordHash)
		assert.Equal(t, domain.RoleAdmin, updated.Role)
	})

	t.Run("soft delete", func(t *testing.T) {
		victim := mustCreateUser(t, s, "Eve", "eve", "eve@example.com", domain.RoleUser)
		deleted, err := s.Users.SoftDelete(ctx, victim.ID)
		require.NoError(t, err)
		assert.False(t, deleted.IsActive)
		assert.Equal(t, domain.StatusDeleted, deleted.Status)

		_, err = s.Users.FindByID(ctx, victim.ID)
		assert.ErrorIs(t, err, ErrUserNotFound)
		_, err = s.Users.SoftDelete(ctx, victim.ID)
		assert.ErrorIs(t, err, ErrUserNotFound)
		_, err = s.Users.Update(ctx, domain.UserUpdate{ID: victim.ID, Name: "Eve", UserName: "eve", Email: "eve@example.com"})
		assert.ErrorIs(t, err, ErrUserNotFound)

		// the row is kept, and its email may be reused by an active user
		var count int
		require.NoError(t, s.DB().Get(&count, `SELECT COUNT(*) FROM users WHERE id = ?`, victim.ID))
		assert.Equal(t, 1, count)
		again := mustCreateUser(t, s, "Eve 2", "eve", "eve@example.com", domain.RoleUser)
		assert.NotEqual(t, victim.ID, again.ID)
	})

	t.Run("has active admin", func(t *testing.T) {
		ok, err := s.Users.HasActiveAdmin(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestUserRepoListExcludesDeleted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "Ada", "ada", "ada@example.com", domain.RoleAdmin)
	gone := mustCreateUser(t, s, "Gone", "gone", "gone@example.com", domain.RoleUser)
	mustCreateUser(t, s, "Cy", "cy", "cy@example.com", domain.RoleUser)
	_, err := s.Users.SoftDelete(ctx, gone.ID)
	require.NoError(t, err)

	spec, err := core.BuildQuerySpec(url.Values{"search": {"example"}, "sortBy": {"name"}, "sortOrder": {"asc"}}, core.UserListSchema, core.BuildOptions{})
	require.NoError(t, err)
	page, err := s.Users.List(ctx, spec)
	require.NoError(t, err)

	require.Len(t, page.Rows, 2)
	assert.Equal(t, "Ada", page.Rows[0].Name)
	assert.Equal(t, "Cy", page.Rows[1].Name)
	assert.Equal(t, int64(2), page.Pagination.TotalRecords)
	for _, u := range page.Rows {
		assert.True(t, u.IsActive)
	}

	spec, err = core.BuildQuerySpec(url.Values{"role": {"user"}}, core.UserListSchema, core.BuildOptions{})
	require.NoError(t, err)
	page, err = s.Users.List(ctx, spec)
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "Cy", page.Rows[0].Name)
}

func TestUserRepoListSearchIsLiteral(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "Ada", "ada", "ada@example.com", domain.RoleUser)
	mustCreateUser(t, s, "Bob", "bob", "bob@example.com", domain.RoleUser)
	mustCreateUser(t, s, "Snake Case", "snake_case", "snake@example.com", domain.RoleUser)
	mustCreateUser(t, s, "Half Off", "half", "50%off@example.com", domain.RoleUser)

	testCases := []struct {
		search string
		want   []string
	}{
		{"_", []string{"snake_case"}},
		{"%", []string{"half"}},
		{"e_c", []string{"snake_case"}},
		{"!", nil},
	}
	for _, tc := range testCases {
		t.Run(tc.search, func(t *testing.T) {
			spec, err := core.BuildQuerySpec(url.Values{"search": {tc.search}, "sortBy": {"userName"}, "sortOrder": {"asc"}}, core.UserListSchema, core.BuildOptions{})
			require.NoError(t, err)
			page, err := s.Users.List(ctx, spec)
			require.NoError(t, err)

			var got []string
			for _, u := range page.Rows {
				got = append(got, u.UserName)
			}
			assert.Equal(t, tc.want, got)
			assert.Equal(t, int64(len(tc.want)), page.Pagination.TotalRecords)
		})
	}
}

func TestUserRepoListHugeLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c", "d"} {
		mustCreateUser(t, s, name, name, name+"@example.com", domain.RoleUser)
	}

	spec, err := core.BuildQuerySpec(url.Values{"limit": {"9223372036854775807"}}, core.UserListSchema, core.BuildOptions{})
	require.NoError(t, err)
	page, err := s.Users.List(ctx, spec)
	require.NoError(t, err)

	assert.Len(t, page.Rows, 4)
	assert.Equal(t, int64(4), page.Pagination.TotalRecords)
	assert.Equal(t, 1, page.Pagination.TotalPages)
	assert.False(t, page.Pagination.HasNextPage)

	_, err = core.BuildQuerySpec(url.Values{"limit": {"2"}, "page": {"9223372036854775807"}}, core.UserListSchema, core.BuildOptions{})
	var vErr *core.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestUserRepoListDateRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, s, "Ada", "ada", "ada@example.com", domain.RoleAdmin)

	today := time.Now().UTC().Format("2006-01-02")
	tomorrow := time.Now().UTC().Add(24 * time.Hour).Format("2006-01-02")

	spec, err := core.BuildQuerySpec(url.Values{"fromDate": {today}, "toDate": {today}}, core.UserListSchema, core.BuildOptions{})
	require.NoError(t, err)
	page, err := s.Users.List(ctx, spec)
	require.NoError(t, err)
	assert.Len(t, page.Rows, 1)

	spec, err = core.BuildQuerySpec(url.Values{"fromDate": {tomorrow}}, core.UserListSchema, core.BuildOptions{})
	require.NoError(t, err)
	page, err = s.Users.List(ctx, spec)
	require.NoError(t, err)
	assert.Empty(t, page.Rows)
}

func TestProjectRepo(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := mustCreateUser(t, s, "Ada", "ada", "ada@example.com", domain.RoleUser)
	admin := mustCreateUser(t, s, "Root", "root", "root@example.com", domain.RoleAdmin)
	semester := "Fall 2024"

	p, err := s.Projects.Create(ctx, domain.NewProject{
		UserID:    owner.ID,
		Title:     "Compiler",
		Semester:  &semester,
		File:      &domain.StoredFile{Path: "uploads/abc.pdf", Name: "report.pdf", Size: 42, MimeType: "application/pdf"},
		CreatedBy: admin.ID,
	})
	require.NoError(t, err)
	assert.Positive(t, p.ID)
	require.NotNil(t, p.User)
	assert.Equal(t, "ada@example.com", p.User.Email)
	require.NotNil(t, p.CreatedByUser)
	assert.Equal(t, "root", p.CreatedByUser.UserName)
	assert.Empty(t, p.CreatedByUser.Email)
	assert.Equal(t, admin.ID, p.UpdatedBy)
	require.NotNil(t, p.FileName)
	assert.Equal(t, "report.pdf", *p.FileName)

	_, err = s.Projects.Create(ctx, domain.NewProject{UserID: owner.ID, Title: "Compiler", CreatedBy: admin.ID})
	assert.ErrorIs(t, err, ErrProjectExists)

	_, err = s.Projects.Create(ctx, domain.NewProject{UserID: 9999, Title: "Orphan", CreatedBy: admin.ID})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = s.Projects.Create(ctx, domain.NewProject{UserID: admin.ID, Title: "Compiler", CreatedBy: admin.ID})
	require.NoError(t, err, "same title for a different owner is allowed")

	found, err := s.Projects.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Compiler", found.Title)
	require.NotNil(t, found.Semester)
	assert.Equal(t, semester, *found.Semester)
	assert.Nil(t, found.Link)

	_, err = s.Projects.FindByID(ctx, 12345)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	spec, err := core.BuildQuerySpec(url.Values{"userId": {strconv.FormatInt(owner.ID, 10)}, "search": {"comp"}}, core.ProjectListSchema, core.BuildOptions{})
	require.NoError(t, err)
	page, err := s.Projects.List(ctx, spec)
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, owner.ID, page.Rows[0].UserID)
	require.NotNil(t, page.Rows[0].User)
	assert.Equal(t, "Ada", page.Rows[0].User.Name)
}
