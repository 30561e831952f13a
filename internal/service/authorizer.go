package service

import (
	"context"

	"github.com/classtime/classtime-api/internal/models"
)

// Authorizer is the set of fail-closed permission predicates services gate
// on. Predicates return true when the caller is authorized.
type Authorizer interface {
	IsAuthenticated(id models.Identity) bool
	IsClassroomMember(ctx context.Context, id models.Identity, classroomID string) bool
	IsClassroomAdmin(ctx context.Context, id models.Identity, classroomID string) bool
}
