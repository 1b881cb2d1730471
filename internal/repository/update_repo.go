package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/commonsfund/ledger/internal/domain"
)

type UpdateRepo struct {
	db *sql.DB
}

func NewUpdateRepo(db *sql.DB) *UpdateRepo {
	return &UpdateRepo{db: db}
}

func (r *UpdateRepo) Insert(u *domain.Update) error {
	var publishedAt any
	if u.PublishedAt != nil {
		publishedAt = u.PublishedAt.UTC().Format(time.RFC3339)
	}
	res, err := r.db.Exec(
		`INSERT INTO updates
		(collective_id, slug, title, html, is_private, published_at, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		u.CollectiveID, u.Slug, u.Title, u.HTML, boolToInt(u.IsPrivate),
		publishedAt, u.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert update: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	u.ID = id
	return nil
}

type UpdateFilter struct {
	CollectiveID int64
	// PublishedOnly hides drafts; non-admin callers always get this.
	PublishedOnly bool
	// IncludePrivate exposes private updates; admins only.
	IncludePrivate bool
	Page           int
	Limit          int
}

func (r *UpdateRepo) List(f UpdateFilter) ([]domain.Update, int, error) {
	var clauses []string
	var args []any

	if f.CollectiveID != 0 {
		clauses = append(clauses, "collective_id = ?")
		args = append(args, f.CollectiveID)
	}
	if f.PublishedOnly {
		clauses = append(clauses, "published_at IS NOT NULL")
	}
	if !f.IncludePrivate {
		clauses = append(clauses, "is_private = 0")
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM updates"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	offset := (f.Page - 1) * f.Limit

	query := `SELECT id, collective_id, slug, title, html, is_private,
			published_at, created_at
		FROM updates` + where +
		" ORDER BY published_at DESC, created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, f.Limit, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var updates []domain.Update
	for rows.Next() {
		var u domain.Update
		var isPrivate int
		var publishedAt sql.NullString
		var createdAt string
		if err := rows.Scan(&u.ID, &u.CollectiveID, &u.Slug, &u.Title, &u.HTML,
			&isPrivate, &publishedAt, &createdAt); err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		u.IsPrivate = isPrivate != 0
		u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		if publishedAt.Valid {
			t, _ := time.Parse(time.RFC3339, publishedAt.String)
			u.PublishedAt = &t
		}
		updates = append(updates, u)
	}
	return updates, total, rows.Err()
}
