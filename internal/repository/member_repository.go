package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classtime/classtime-api/internal/models"
)

// MemberRepository handles persistence of classroom membership rows.
type MemberRepository struct {
	db *sqlx.DB
}

// NewMemberRepository constructs the repository.
func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// FindMember returns the membership row for (classroomID, userID).
// sql.ErrNoRows when the user is not a member.
func (r *MemberRepository) FindMember(ctx context.Context, classroomID, userID string) (*models.ClassroomMember, error) {
	const query = `SELECT id, classroom_id, user_id, role, created_at
        FROM classroom_members WHERE classroom_id = $1 AND user_id = $2 LIMIT 1`
	var member models.ClassroomMember
	if err := r.db.GetContext(ctx, &member, query, classroomID, userID); err != nil {
		return nil, err
	}
	return &member, nil
}

// Create inserts a membership row. A racing duplicate surfaces as
// ErrDuplicate via the unique (classroom_id, user_id) index.
func (r *MemberRepository) Create(ctx context.Context, member *models.ClassroomMember) error {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	if member.CreatedAt.IsZero() {
		member.CreatedAt = time.Now().UTC()
	}
	if member.Role == "" {
		member.Role = models.MemberRoleMember
	}
	const query = `INSERT INTO classroom_members (id, classroom_id, user_id, role, created_at)
        VALUES (:id, :classroom_id, :user_id, :role, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, member); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create classroom member: %w", err)
	}
	return nil
}

// ListByClassroom returns the roster with user info, admins first.
func (r *MemberRepository) ListByClassroom(ctx context.Context, classroomID string) ([]models.MemberDetail, error) {
	const query = `SELECT m.id, m.classroom_id, m.user_id, m.role, m.created_at,
        u.email, u.username, u.first_name, u.last_name
        FROM classroom_members m
        JOIN users u ON u.id = m.user_id
        WHERE m.classroom_id = $1
        ORDER BY (m.role = 'admin') DESC, m.created_at ASC`
	var members []models.MemberDetail
	if err := r.db.SelectContext(ctx, &members, query, classroomID); err != nil {
		return nil, fmt.Errorf("list classroom members: %w", err)
	}
	return members, nil
}
