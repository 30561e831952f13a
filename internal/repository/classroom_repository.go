package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classtime/classtime-api/internal/models"
)

const classroomColumns = "id, name, subject, description, creator_id, thumbnail, created_at, updated_at"

// ClassroomRepository handles persistence of classrooms.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository constructs the repository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

// Create inserts the classroom and its creator's admin member row in one
// transaction, so every classroom has an admin from the instant it exists.
func (r *ClassroomRepository) Create(ctx context.Context, classroom *models.Classroom) error {
	if classroom.ID == "" {
		classroom.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	classroom.CreatedAt = now
	classroom.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create classroom: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertClassroom = `INSERT INTO classrooms (id, name, subject, description, creator_id, thumbnail, created_at, updated_at)
        VALUES (:id, :name, :subject, :description, :creator_id, :thumbnail, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertClassroom, classroom); err != nil {
		return fmt.Errorf("create classroom: %w", err)
	}

	creatorMember := &models.ClassroomMember{
		ID:          uuid.NewString(),
		ClassroomID: classroom.ID,
		UserID:      classroom.CreatorID,
		Role:        models.MemberRoleAdmin,
		CreatedAt:   now,
	}
	const insertMember = `INSERT INTO classroom_members (id, classroom_id, user_id, role, created_at)
        VALUES (:id, :classroom_id, :user_id, :role, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertMember, creatorMember); err != nil {
		return fmt.Errorf("create creator membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create classroom: %w", err)
	}
	return nil
}

// FindByID returns a classroom by its ID.
func (r *ClassroomRepository) FindByID(ctx context.Context, id string) (*models.Classroom, error) {
	query := fmt.Sprintf("SELECT %s FROM classrooms WHERE id = $1 LIMIT 1", classroomColumns)
	var classroom models.Classroom
	if err := r.db.GetContext(ctx, &classroom, query, id); err != nil {
		return nil, err
	}
	return &classroom, nil
}

// ListByMember returns the classrooms a user belongs to, newest first.
func (r *ClassroomRepository) ListByMember(ctx context.Context, userID string) ([]models.Classroom, error) {
	const query = `SELECT c.id, c.name, c.subject, c.description, c.creator_id, c.thumbnail, c.created_at, c.updated_at
        FROM classrooms c
        JOIN classroom_members m ON m.classroom_id = c.id
        WHERE m.user_id = $1 ORDER BY m.created_at DESC`
	var classrooms []models.Classroom
	if err := r.db.SelectContext(ctx, &classrooms, query, userID); err != nil {
		return nil, fmt.Errorf("list user classrooms: %w", err)
	}
	return classrooms, nil
}
