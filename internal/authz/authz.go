// Package authz holds the authorization predicates gating every sensitive
// operation. All predicates are fail-closed: a missing identity, malformed
// id, or store failure denies access. Predicates return true when the
// caller is authorized, and callers test `if !ok`.
package authz

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/classtime/classtime-api/internal/models"
)

// MemberStore is the single lookup the predicates need.
type MemberStore interface {
	FindMember(ctx context.Context, classroomID, userID string) (*models.ClassroomMember, error)
}

// Authorizer evaluates caller permissions against classroom membership.
type Authorizer struct {
	members MemberStore
	logger  *zap.Logger
}

// NewAuthorizer constructs an Authorizer.
func NewAuthorizer(members MemberStore, logger *zap.Logger) *Authorizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authorizer{members: members, logger: logger}
}

// IsValidID reports whether s is a well-formed entity id.
func IsValidID(s string) bool {
	if s == "" {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// IsAuthenticated reports whether the identity extracted from a verified
// token carries a well-formed user id. It never consults the store; token
// verification happened upstream.
func (a *Authorizer) IsAuthenticated(id models.Identity) bool {
	return IsValidID(id.UserID)
}

// IsClassroomMember reports whether the caller holds a membership row in the
// given classroom.
func (a *Authorizer) IsClassroomMember(ctx context.Context, id models.Identity, classroomID string) bool {
	member, ok := a.lookup(ctx, id, classroomID)
	return ok && member != nil
}

// IsClassroomAdmin reports whether the caller holds an admin membership row
// in the given classroom.
func (a *Authorizer) IsClassroomAdmin(ctx context.Context, id models.Identity, classroomID string) bool {
	member, ok := a.lookup(ctx, id, classroomID)
	return ok && member != nil && member.Role == models.MemberRoleAdmin
}

func (a *Authorizer) lookup(ctx context.Context, id models.Identity, classroomID string) (*models.ClassroomMember, bool) {
	if !a.IsAuthenticated(id) || !IsValidID(classroomID) {
		return nil, false
	}

	member, err := a.members.FindMember(ctx, classroomID, id.UserID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			a.logger.Warn("membership lookup failed, denying access",
				zap.String("classroom_id", classroomID),
				zap.String("user_id", id.UserID),
				zap.Error(err))
		}
		return nil, false
	}

	return member, true
}
