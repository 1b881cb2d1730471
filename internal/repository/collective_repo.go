package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/commonsfund/ledger/internal/domain"
)

const collectiveColumns = `id, slug, name, type, currency, settings, tags,
	host_collective_id, is_active, created_at`

type CollectiveRepo struct {
	db *sql.DB
}

func NewCollectiveRepo(db *sql.DB) *CollectiveRepo {
	return &CollectiveRepo{db: db}
}

func (r *CollectiveRepo) Insert(c *domain.Collective) error {
	settings, err := c.EncodeSettings()
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	// A zero ID inserts NULL and lets SQLite assign the rowid; fixtures
	// carry explicit ids so their cross-references hold.
	res, err := r.db.Exec(
		`INSERT INTO collectives
		(id, slug, name, type, currency, settings, tags, host_collective_id,
		 is_active, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		zeroAsNull(c.ID), c.Slug, c.Name, string(c.Type), c.Currency, settings,
		strings.Join(c.Tags, ","), nullableID(c.HostCollectiveID),
		boolToInt(c.IsActive), c.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert collective: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	c.ID = id
	return nil
}

// GetBySlug returns the collective with the given slug, or sql.ErrNoRows.
func (r *CollectiveRepo) GetBySlug(slug string) (*domain.Collective, error) {
	row := r.db.QueryRow(
		"SELECT "+collectiveColumns+" FROM collectives WHERE slug = ?", slug,
	)
	return scanCollective(row)
}

// GetByID returns the collective with the given id, or sql.ErrNoRows.
func (r *CollectiveRepo) GetByID(id int64) (*domain.Collective, error) {
	row := r.db.QueryRow(
		"SELECT "+collectiveColumns+" FROM collectives WHERE id = ?", id,
	)
	return scanCollective(row)
}

type CollectiveFilter struct {
	Type             string
	HostCollectiveID int64
	Tag              string
	IsActive         *bool
	Search           string
	SortBy           string // createdAt | name | slug
	SortDesc         bool
	Page             int
	Limit            int
}

var collectiveSortColumns = map[string]string{
	"createdAt": "created_at",
	"name":      "name",
	"slug":      "slug",
}

func (r *CollectiveRepo) List(f CollectiveFilter) ([]domain.Collective, int, error) {
	where, args := buildCollectiveWhere(f)

	var total int
	countSQL := "SELECT COUNT(*) FROM collectives" + where
	if err := r.db.QueryRow(countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	orderCol, ok := collectiveSortColumns[f.SortBy]
	if !ok {
		orderCol = "created_at"
	}
	dir := "ASC"
	if f.SortDesc {
		dir = "DESC"
	}

	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	offset := (f.Page - 1) * f.Limit

	querySQL := fmt.Sprintf(
		"SELECT %s FROM collectives%s ORDER BY %s %s, id LIMIT ? OFFSET ?",
		collectiveColumns, where, orderCol, dir,
	)
	args = append(args, f.Limit, offset)

	rows, err := r.db.Query(querySQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var collectives []domain.Collective
	for rows.Next() {
		c, err := scanCollectiveRows(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		collectives = append(collectives, *c)
	}
	return collectives, total, rows.Err()
}

func buildCollectiveWhere(f CollectiveFilter) (string, []any) {
	var clauses []string
	var args []any

	if f.Type != "" {
		clauses = append(clauses, "type = ?")
		args = append(args, f.Type)
	}
	if f.HostCollectiveID != 0 {
		clauses = append(clauses, "host_collective_id = ?")
		args = append(args, f.HostCollectiveID)
	}
	if f.Tag != "" {
		// Tags are stored comma-joined; match the tag with list delimiters.
		clauses = append(clauses, "(',' || tags || ',') LIKE ?")
		args = append(args, "%,"+f.Tag+",%")
	}
	if f.IsActive != nil {
		clauses = append(clauses, "is_active = ?")
		args = append(args, boolToInt(*f.IsActive))
	}
	if f.Search != "" {
		clauses = append(clauses, "(slug LIKE ? OR name LIKE ?)")
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func scanCollectiveFields(s rowScanner) (*domain.Collective, error) {
	var c domain.Collective
	var typ, settings, tags, createdAt string
	var hostID sql.NullInt64
	var isActive int

	err := s.Scan(
		&c.ID, &c.Slug, &c.Name, &typ, &c.Currency, &settings, &tags,
		&hostID, &isActive, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	c.Type = domain.CollectiveType(typ)
	c.IsActive = isActive != 0
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	if hostID.Valid {
		v := hostID.Int64
		c.HostCollectiveID = &v
	}
	if tags != "" {
		c.Tags = strings.Split(tags, ",")
	}
	if settings != "" {
		if err := json.Unmarshal([]byte(settings), &c.Settings); err != nil {
			return nil, fmt.Errorf("decode settings: %w", err)
		}
	}

	return &c, nil
}

func scanCollective(row *sql.Row) (*domain.Collective, error) {
	return scanCollectiveFields(row)
}

func scanCollectiveRows(rows *sql.Rows) (*domain.Collective, error) {
	return scanCollectiveFields(rows)
}
