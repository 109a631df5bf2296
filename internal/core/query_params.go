// internal/core/query_params.go
package core

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Default pagination and sorting values applied when a parameter is absent or unusable.
const (
	DefaultLimit = 10
	DefaultPage  = 1
	DefaultSort  = "id"
	SortAsc      = "ASC"
	SortDesc     = "DESC"
)

const dateLayout = "2006-01-02"

// likeEscape is the ESCAPE character of search patterns.
const likeEscape = "!"

var likeEscaper = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

// Filter field names understood by BuildQuerySpec.
const (
	FilterRole     = "role"
	FilterFromDate = "fromDate"
	FilterToDate   = "toDate"
	FilterUserID   = "userId"
)

// Column maps an API field onto a SQL column. SearchExpr overrides the
// expression used for free-text search (e.g. casting an enum to text).
type Column struct {
	Name       string
	SearchExpr string
}

func (c Column) searchExpr() string {
	if c.SearchExpr != "" {
		return c.SearchExpr
	}
	return c.Name
}

// ListSchema is the allow-list a listing endpoint is built against. Every
// identifier that ends up in SQL comes from here, never from the request.
type ListSchema struct {
	Columns       map[string]Column
	SearchFields  []string
	SortFields    []string
	FilterFields  []string
	DefaultSort   string
	ActiveColumn  string
	CreatedColumn string
}

// UserListSchema drives GET /user/list.
var UserListSchema = ListSchema{
	Columns: map[string]Column{
		"id":        {Name: "id"},
		"name":      {Name: "name"},
		"userName":  {Name: "user_name"},
		"email":     {Name: "email"},
		"role":      {Name: "role", SearchExpr: "CAST(role AS TEXT)"},
		"createdAt": {Name: "created_at"},
		"updatedAt": {Name: "updated_at"},
	},
	SearchFields:  []string{"name", "userName", "email", "role"},
	SortFields:    []string{"id", "name", "userName", "email", "role", "createdAt", "updatedAt"},
	FilterFields:  []string{FilterRole, FilterFromDate, FilterToDate},
	DefaultSort:   DefaultSort,
	ActiveColumn:  "is_active",
	CreatedColumn: "created_at",
}

// ProjectListSchema drives GET /project/list.
var ProjectListSchema = ListSchema{
	Columns: map[string]Column{
		"id":        {Name: "id"},
		"title":     {Name: "title"},
		"semester":  {Name: "semester"},
		"link":      {Name: "link"},
		"userId":    {Name: "user_id"},
		"createdAt": {Name: "created_at"},
		"updatedAt": {Name: "updated_at"},
	},
	SearchFields:  []string{"title", "semester", "link"},
	SortFields:    []string{"id", "title", "semester", "createdAt", "updatedAt"},
	FilterFields:  []string{FilterUserID, FilterFromDate, FilterToDate},
	DefaultSort:   DefaultSort,
	ActiveColumn:  "is_active",
	CreatedColumn: "created_at",
}

// Validate checks that every column the schema can emit is a plain identifier
// and that its sort, search and default fields are all declared columns.
func (s ListSchema) Validate() error {
	for field, col := range s.Columns {
		if !IsValidIdentifier(col.Name) {
			return fmt.Errorf("schema column %q: invalid identifier %q", field, col.Name)
		}
	}
	for _, name := range []string{s.ActiveColumn, s.CreatedColumn} {
		if !IsValidIdentifier(name) {
			return fmt.Errorf("schema: invalid identifier %q", name)
		}
	}
	for _, list := range [][]string{s.SearchFields, s.SortFields, {s.DefaultSort}} {
		for _, field := range list {
			if _, ok := s.Columns[field]; !ok {
				return fmt.Errorf("schema: field %q is not a declared column", field)
			}
		}
	}
	return nil
}

func (s ListSchema) allowsFilter(name string) bool {
	return contains(s.FilterFields, name)
}

// Clause is a single predicate. Column is always an allow-listed SQL
// expression and Param names the bound value in QuerySpec.Args. A clause
// with Any set renders as a parenthesised OR of its members instead.
// Escape, when set, is the LIKE escape character.
type Clause struct {
	Column string
	Op     string
	Param  string
	Escape string
	Any    []Clause
}

// SQL renders the clause with sqlx-style named placeholders.
func (c Clause) SQL() string {
	if len(c.Any) > 0 {
		parts := make([]string, len(c.Any))
		for i, sub := range c.Any {
			parts[i] = sub.SQL()
		}
		return "(" + strings.Join(parts, " OR ") + ")"
	}
	if c.Escape != "" {
		return fmt.Sprintf("%s %s :%s ESCAPE '%s'", c.Column, c.Op, c.Param, c.Escape)
	}
	return fmt.Sprintf("%s %s :%s", c.Column, c.Op, c.Param)
}

// Filters echoes the effective values a listing was run with.
type Filters struct {
	Search    string `json:"search,omitempty"`
	Role      string `json:"role,omitempty"`
	UserID    int64  `json:"userId,omitempty"`
	FromDate  string `json:"fromDate,omitempty"`
	ToDate    string `json:"toDate,omitempty"`
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
}

// QuerySpec is the validated form of a listing request. It is built fresh
// per request and not modified afterwards.
type QuerySpec struct {
	Clauses    []Clause
	Args       map[string]interface{}
	SortColumn string
	SortOrder  string
	Limit      int
	Offset     int
	Page       int
	Filters    Filters
}

// Where renders the AND-combined clauses as a WHERE clause.
func (q *QuerySpec) Where() string {
	if len(q.Clauses) == 0 {
		return ""
	}
	parts := make([]string, len(q.Clauses))
	for i, c := range q.Clauses {
		parts[i] = c.SQL()
	}
	return "WHERE " + strings.Join(parts, " AND ")
}

// OrderBy renders the ORDER BY clause. A secondary id ordering keeps pages
// stable when the sort column has duplicates.
func (q *QuerySpec) OrderBy() string {
	if q.SortColumn == "id" {
		return fmt.Sprintf("ORDER BY id %s", q.SortOrder)
	}
	return fmt.Sprintf("ORDER BY %s %s, id %s", q.SortColumn, q.SortOrder, q.SortOrder)
}

// BuildOptions tunes BuildQuerySpec. MaxLimit of 0 leaves limit unbounded.
type BuildOptions struct {
	MaxLimit int
}

// BuildQuerySpec translates raw listing parameters into a QuerySpec using
// schema as the only source of identifiers. Unusable limit, page, sortBy and
// sortOrder values fall back to defaults; malformed dates and ids, and a page
// whose offset does not fit in an int, are reported as a *ValidationError.
func BuildQuerySpec(params url.Values, schema ListSchema, opts BuildOptions) (*QuerySpec, error) {
	spec := &QuerySpec{
		Args:  map[string]interface{}{},
		Limit: positiveInt(params.Get("limit"), DefaultLimit),
		Page:  positiveInt(params.Get("page"), DefaultPage),
	}
	if opts.MaxLimit > 0 && spec.Limit > opts.MaxLimit {
		spec.Limit = opts.MaxLimit
	}
	if spec.Page-1 > math.MaxInt/spec.Limit {
		return nil, NewValidationError("page", "page is out of range for the requested limit")
	}
	spec.Offset = (spec.Page - 1) * spec.Limit

	// Active-record filter: always first, never optional.
	spec.Clauses = append(spec.Clauses, Clause{Column: schema.ActiveColumn, Op: "=", Param: "is_active"})
	spec.Args["is_active"] = true

	if search := strings.TrimSpace(params.Get("search")); search != "" && len(schema.SearchFields) > 0 {
		group := Clause{}
		for _, field := range schema.SearchFields {
			group.Any = append(group.Any, Clause{
				Column: "LOWER(" + schema.Columns[field].searchExpr() + ")",
				Op:     "LIKE",
				Param:  "search",
				Escape: likeEscape,
			})
		}
		spec.Clauses = append(spec.Clauses, group)
		// literal substring match: user-typed % and _ are not wildcards
		spec.Args["search"] = "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		spec.Filters.Search = search
	}

	if schema.allowsFilter(FilterRole) {
		if role := strings.ToUpper(strings.TrimSpace(params.Get(FilterRole))); role != "" {
			spec.Clauses = append(spec.Clauses, Clause{Column: schema.Columns["role"].Name, Op: "=", Param: "role"})
			spec.Args["role"] = role
			spec.Filters.Role = role
		}
	}

	if schema.allowsFilter(FilterUserID) {
		if raw := strings.TrimSpace(params.Get(FilterUserID)); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id < 1 {
				return nil, NewValidationError(FilterUserID, "userId must be a positive integer")
			}
			spec.Clauses = append(spec.Clauses, Clause{Column: schema.Columns["userId"].Name, Op: "=", Param: "user_id"})
			spec.Args["user_id"] = id
			spec.Filters.UserID = id
		}
	}

	if schema.allowsFilter(FilterFromDate) {
		if raw := strings.TrimSpace(params.Get(FilterFromDate)); raw != "" {
			from, _, err := parseDate(raw)
			if err != nil {
				return nil, NewValidationError(FilterFromDate, "fromDate must be a date (YYYY-MM-DD) or RFC3339 timestamp")
			}
			spec.Clauses = append(spec.Clauses, Clause{Column: schema.CreatedColumn, Op: ">=", Param: "from_date"})
			spec.Args["from_date"] = from
			spec.Filters.FromDate = raw
		}
	}

	if schema.allowsFilter(FilterToDate) {
		if raw := strings.TrimSpace(params.Get(FilterToDate)); raw != "" {
			to, dateOnly, err := parseDate(raw)
			if err != nil {
				return nil, NewValidationError(FilterToDate, "toDate must be a date (YYYY-MM-DD) or RFC3339 timestamp")
			}
			op := "<="
			if dateOnly {
				// whole day inclusive
				to = to.Add(24 * time.Hour)
				op = "<"
			}
			spec.Clauses = append(spec.Clauses, Clause{Column: schema.CreatedColumn, Op: op, Param: "to_date"})
			spec.Args["to_date"] = to
			spec.Filters.ToDate = raw
		}
	}

	sortField := params.Get("sortBy")
	if !contains(schema.SortFields, sortField) {
		sortField = schema.DefaultSort
	}
	spec.SortColumn = schema.Columns[sortField].Name
	spec.Filters.SortBy = sortField

	spec.SortOrder = strings.ToUpper(strings.TrimSpace(params.Get("sortOrder")))
	if spec.SortOrder != SortAsc && spec.SortOrder != SortDesc {
		spec.SortOrder = SortDesc
	}
	spec.Filters.SortOrder = spec.SortOrder

	return spec, nil
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// parseDate accepts YYYY-MM-DD or RFC3339 and returns the instant in UTC.
func parseDate(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t.UTC(), true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), false, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
