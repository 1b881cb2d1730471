package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/commonsfund/ledger/internal/domain"
)

type MemberRepo struct {
	db *sql.DB
}

func NewMemberRepo(db *sql.DB) *MemberRepo {
	return &MemberRepo{db: db}
}

func (r *MemberRepo) Insert(m *domain.Member) error {
	res, err := r.db.Exec(
		`INSERT INTO members
		(collective_id, member_collective_id, role, description, since)
		VALUES (?,?,?,?,?)`,
		m.CollectiveID, m.MemberCollectiveID, string(m.Role), m.Description,
		m.Since.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	m.ID = id
	return nil
}

// RolesForMember returns, keyed by collective id, the roles a member
// collective holds. The auth layer uses this to answer admin checks without
// a query per check.
func (r *MemberRepo) RolesForMember(memberCollectiveID int64) (map[int64][]domain.MemberRole, error) {
	rows, err := r.db.Query(
		"SELECT collective_id, role FROM members WHERE member_collective_id = ?",
		memberCollectiveID,
	)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	roles := make(map[int64][]domain.MemberRole)
	for rows.Next() {
		var collectiveID int64
		var role string
		if err := rows.Scan(&collectiveID, &role); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles[collectiveID] = append(roles[collectiveID], domain.MemberRole(role))
	}
	return roles, rows.Err()
}

type MemberFilter struct {
	CollectiveID int64
	Role         string
	Page         int
	Limit        int
}

func (r *MemberRepo) List(f MemberFilter) ([]domain.Member, int, error) {
	var clauses []string
	var args []any

	if f.CollectiveID != 0 {
		clauses = append(clauses, "collective_id = ?")
		args = append(args, f.CollectiveID)
	}
	if f.Role != "" {
		clauses = append(clauses, "role = ?")
		args = append(args, f.Role)
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM members"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	offset := (f.Page - 1) * f.Limit

	query := `SELECT id, collective_id, member_collective_id, role, description, since
		FROM members` + where + " ORDER BY since, id LIMIT ? OFFSET ?"
	args = append(args, f.Limit, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		var role, since string
		if err := rows.Scan(&m.ID, &m.CollectiveID, &m.MemberCollectiveID,
			&role, &m.Description, &since); err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		m.Role = domain.MemberRole(role)
		m.Since, _ = time.Parse(time.RFC3339, since)
		members = append(members, m)
	}
	return members, total, rows.Err()
}
