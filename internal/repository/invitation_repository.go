package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classtime/classtime-api/internal/models"
)

const invitationColumns = "id, classroom_id, candidate_user_id, status, created_at, updated_at"

// InvitationRepository handles persistence of classroom invitations.
type InvitationRepository struct {
	db *sqlx.DB
}

// NewInvitationRepository constructs the repository.
func NewInvitationRepository(db *sqlx.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// FindWaiting returns the waiting invitation for (classroomID, candidateID).
// sql.ErrNoRows when none is pending.
func (r *InvitationRepository) FindWaiting(ctx context.Context, classroomID, candidateID string) (*models.ClassroomInvitation, error) {
	query := fmt.Sprintf(`SELECT %s FROM classroom_invitations
        WHERE classroom_id = $1 AND candidate_user_id = $2 AND status = $3 LIMIT 1`, invitationColumns)
	var invitation models.ClassroomInvitation
	if err := r.db.GetContext(ctx, &invitation, query, classroomID, candidateID, models.InvitationWaiting); err != nil {
		return nil, err
	}
	return &invitation, nil
}

// FindLatest returns the candidate's most recent invitation for the
// classroom regardless of status, so callers can tell a resolved
// invitation apart from a missing one. sql.ErrNoRows when none exists.
func (r *InvitationRepository) FindLatest(ctx context.Context, classroomID, candidateID string) (*models.ClassroomInvitation, error) {
	query := fmt.Sprintf(`SELECT %s FROM classroom_invitations
        WHERE classroom_id = $1 AND candidate_user_id = $2
        ORDER BY created_at DESC LIMIT 1`, invitationColumns)
	var invitation models.ClassroomInvitation
	if err := r.db.GetContext(ctx, &invitation, query, classroomID, candidateID); err != nil {
		return nil, err
	}
	return &invitation, nil
}

// Create inserts a waiting invitation. The partial unique index on
// (classroom_id, candidate_user_id) WHERE status = 'waiting' turns a racing
// duplicate into ErrDuplicate.
func (r *InvitationRepository) Create(ctx context.Context, invitation *models.ClassroomInvitation) error {
	if invitation.ID == "" {
		invitation.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	invitation.Status = models.InvitationWaiting
	invitation.CreatedAt = now
	invitation.UpdatedAt = now
	const query = `INSERT INTO classroom_invitations (id, classroom_id, candidate_user_id, status, created_at, updated_at)
        VALUES (:id, :classroom_id, :candidate_user_id, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, invitation); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create invitation: %w", err)
	}
	return nil
}

// Accept atomically creates the membership row and flips the invitation to
// accepted. The status update is guarded on 'waiting'; a zero-row update
// aborts the transaction with ErrAlreadyResolved so terminal states stay
// immutable and no duplicate member row can appear.
func (r *InvitationRepository) Accept(ctx context.Context, invitation *models.ClassroomInvitation) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin accept invitation: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`UPDATE classroom_invitations SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`,
		invitation.ID, models.InvitationAccepted, now, models.InvitationWaiting)
	if err != nil {
		return fmt.Errorf("accept invitation: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("accept invitation rows: %w", err)
	} else if affected == 0 {
		return ErrAlreadyResolved
	}

	member := &models.ClassroomMember{
		ID:          uuid.NewString(),
		ClassroomID: invitation.ClassroomID,
		UserID:      invitation.CandidateUserID,
		Role:        models.MemberRoleMember,
		CreatedAt:   now,
	}
	if _, err := tx.NamedExecContext(ctx,
		`INSERT INTO classroom_members (id, classroom_id, user_id, role, created_at)
         VALUES (:id, :classroom_id, :user_id, :role, :created_at)`, member); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create member from invitation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit accept invitation: %w", err)
	}
	return nil
}

// Refuse flips a waiting invitation to refused. ErrAlreadyResolved when the
// invitation already reached a terminal state.
func (r *InvitationRepository) Refuse(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE classroom_invitations SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`,
		id, models.InvitationRefused, time.Now().UTC(), models.InvitationWaiting)
	if err != nil {
		return fmt.Errorf("refuse invitation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("refuse invitation rows: %w", err)
	}
	if affected == 0 {
		return ErrAlreadyResolved
	}
	return nil
}

// ListWaitingByCandidate returns a user's pending invitations with classroom
// context, newest first.
func (r *InvitationRepository) ListWaitingByCandidate(ctx context.Context, candidateID string) ([]models.InvitationDetail, error) {
	const query = `SELECT i.id, i.classroom_id, i.candidate_user_id, i.status, i.created_at, i.updated_at,
        c.name AS classroom_name, c.subject AS classroom_subject
        FROM classroom_invitations i
        JOIN classrooms c ON c.id = i.classroom_id
        WHERE i.candidate_user_id = $1 AND i.status = $2
        ORDER BY i.created_at DESC`
	var invitations []models.InvitationDetail
	if err := r.db.SelectContext(ctx, &invitations, query, candidateID, models.InvitationWaiting); err != nil {
		return nil, fmt.Errorf("list candidate invitations: %w", err)
	}
	return invitations, nil
}
