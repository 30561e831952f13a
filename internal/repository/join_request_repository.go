package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classtime/classtime-api/internal/models"
)

const joinRequestColumns = "id, classroom_id, candidate_user_id, status, created_at, updated_at"

// JoinRequestRepository handles persistence of classroom join requests.
type JoinRequestRepository struct {
	db *sqlx.DB
}

// NewJoinRequestRepository constructs the repository.
func NewJoinRequestRepository(db *sqlx.DB) *JoinRequestRepository {
	return &JoinRequestRepository{db: db}
}

// FindByID returns a join request by its ID.
func (r *JoinRequestRepository) FindByID(ctx context.Context, id string) (*models.ClassroomJoinRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM classroom_join_requests WHERE id = $1 LIMIT 1", joinRequestColumns)
	var request models.ClassroomJoinRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// FindWaiting returns the waiting request for (classroomID, candidateID).
func (r *JoinRequestRepository) FindWaiting(ctx context.Context, classroomID, candidateID string) (*models.ClassroomJoinRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM classroom_join_requests
        WHERE classroom_id = $1 AND candidate_user_id = $2 AND status = $3 LIMIT 1`, joinRequestColumns)
	var request models.ClassroomJoinRequest
	if err := r.db.GetContext(ctx, &request, query, classroomID, candidateID, models.JoinRequestWaiting); err != nil {
		return nil, err
	}
	return &request, nil
}

// Create inserts a waiting join request; racing duplicates surface as
// ErrDuplicate through the partial unique index.
func (r *JoinRequestRepository) Create(ctx context.Context, request *models.ClassroomJoinRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	request.Status = models.JoinRequestWaiting
	request.CreatedAt = now
	request.UpdatedAt = now
	const query = `INSERT INTO classroom_join_requests (id, classroom_id, candidate_user_id, status, created_at, updated_at)
        VALUES (:id, :classroom_id, :candidate_user_id, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create join request: %w", err)
	}
	return nil
}

// Approve atomically creates the membership row and flips the request to
// approved, mirroring InvitationRepository.Accept.
func (r *JoinRequestRepository) Approve(ctx context.Context, request *models.ClassroomJoinRequest) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin approve join request: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`UPDATE classroom_join_requests SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`,
		request.ID, models.JoinRequestApproved, now, models.JoinRequestWaiting)
	if err != nil {
		return fmt.Errorf("approve join request: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("approve join request rows: %w", err)
	} else if affected == 0 {
		return ErrAlreadyResolved
	}

	member := &models.ClassroomMember{
		ID:          uuid.NewString(),
		ClassroomID: request.ClassroomID,
		UserID:      request.CandidateUserID,
		Role:        models.MemberRoleMember,
		CreatedAt:   now,
	}
	if _, err := tx.NamedExecContext(ctx,
		`INSERT INTO classroom_members (id, classroom_id, user_id, role, created_at)
         VALUES (:id, :classroom_id, :user_id, :role, :created_at)`, member); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create member from join request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit approve join request: %w", err)
	}
	return nil
}

// Deny flips a waiting request to denied. ErrAlreadyResolved on terminal
// states.
func (r *JoinRequestRepository) Deny(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE classroom_join_requests SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`,
		id, models.JoinRequestDenied, time.Now().UTC(), models.JoinRequestWaiting)
	if err != nil {
		return fmt.Errorf("deny join request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deny join request rows: %w", err)
	}
	if affected == 0 {
		return ErrAlreadyResolved
	}
	return nil
}
