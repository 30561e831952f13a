package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classtime/classtime-api/internal/authz"
	"github.com/classtime/classtime-api/internal/models"
	"github.com/classtime/classtime-api/internal/repository"
	appErrors "github.com/classtime/classtime-api/pkg/errors"
)

// InvitationStore persists the invitation state machine.
type InvitationStore interface {
	FindWaiting(ctx context.Context, classroomID, candidateID string) (*models.ClassroomInvitation, error)
	FindLatest(ctx context.Context, classroomID, candidateID string) (*models.ClassroomInvitation, error)
	Create(ctx context.Context, invitation *models.ClassroomInvitation) error
	Accept(ctx context.Context, invitation *models.ClassroomInvitation) error
	Refuse(ctx context.Context, id string) error
	ListWaitingByCandidate(ctx context.Context, candidateID string) ([]models.InvitationDetail, error)
}

// JoinRequestStore persists the join-request state machine.
type JoinRequestStore interface {
	FindByID(ctx context.Context, id string) (*models.ClassroomJoinRequest, error)
	FindWaiting(ctx context.Context, classroomID, candidateID string) (*models.ClassroomJoinRequest, error)
	Create(ctx context.Context, request *models.ClassroomJoinRequest) error
	Approve(ctx context.Context, request *models.ClassroomJoinRequest) error
	Deny(ctx context.Context, id string) error
}

// MembershipLookup is the member existence check the workflows need.
type MembershipLookup interface {
	FindMember(ctx context.Context, classroomID, userID string) (*models.ClassroomMember, error)
}

// CandidateStore resolves invitation candidates by identifier.
type CandidateStore interface {
	FindByIdent(ctx context.Context, ident string) (*models.User, error)
}

// ClassroomLookup loads classrooms for existence checks and notifications.
type ClassroomLookup interface {
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
}

// MembershipService drives the two membership state machines. Terminal
// states are immutable; the store's guarded updates and unique indexes close
// every check-then-create race, so concurrent duplicates surface as Conflict
// instead of duplicate rows.
type MembershipService struct {
	invitations  InvitationStore
	joinRequests JoinRequestStore
	members      MembershipLookup
	classrooms   ClassroomLookup
	users        CandidateStore
	authorizer   Authorizer
	notifier     Notifier
	metrics      *MetricsService
	validate     *validator.Validate
	logger       *zap.Logger
}

// NewMembershipService constructs a MembershipService.
func NewMembershipService(
	invitations InvitationStore,
	joinRequests JoinRequestStore,
	members MembershipLookup,
	classrooms ClassroomLookup,
	users CandidateStore,
	authorizer Authorizer,
	notifier Notifier,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *MembershipService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MembershipService{
		invitations:  invitations,
		joinRequests: joinRequests,
		members:      members,
		classrooms:   classrooms,
		users:        users,
		authorizer:   authorizer,
		notifier:     notifier,
		metrics:      metrics,
		validate:     validate,
		logger:       logger,
	}
}

// InviteUser creates a waiting invitation for the candidate. Admin-only.
// The candidate identifier resolves by exact email first, then username.
func (s *MembershipService) InviteUser(ctx context.Context, caller models.Identity, req *models.InviteUserRequest) error {
	if !s.authorizer.IsAuthenticated(caller) {
		return appErrors.ErrUnauthorized
	}
	if !authz.IsValidID(req.ClassroomID) {
		return invalidField(msgInvalidClassroomID)
	}
	if strings.TrimSpace(req.CandidateIdent) == "" {
		return invalidField("Candidate invalid or not specified")
	}
	if err := s.validate.Struct(req); err != nil {
		return failValidation(err)
	}

	if !s.authorizer.IsClassroomAdmin(ctx, caller, req.ClassroomID) {
		return appErrors.ErrForbidden
	}

	candidate, err := s.users.FindByIdent(ctx, req.CandidateIdent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "User not found")
		}
		return internalError(err)
	}

	if _, err := s.members.FindMember(ctx, req.ClassroomID, candidate.ID); err == nil {
		return appErrors.Clone(appErrors.ErrConflict, "A given candidate is already a member of this classroom")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return internalError(err)
	}

	if _, err := s.invitations.FindWaiting(ctx, req.ClassroomID, candidate.ID); err == nil {
		return appErrors.Clone(appErrors.ErrConflict, "A given candidate already received an invitation")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return internalError(err)
	}

	invitation := &models.ClassroomInvitation{
		ClassroomID:     req.ClassroomID,
		CandidateUserID: candidate.ID,
	}
	if err := s.invitations.Create(ctx, invitation); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return appErrors.Clone(appErrors.ErrConflict, "A given candidate already received an invitation")
		}
		return internalError(err)
	}

	s.metrics.RecordTransition("invitation", "created")

	if classroom, err := s.classrooms.FindByID(ctx, req.ClassroomID); err == nil {
		s.notifier.InvitationSent(ctx, candidate, classroom)
	} else {
		s.logger.Warn("invitation notification skipped",
			zap.String("classroom_id", req.ClassroomID), zap.Error(err))
	}

	return nil
}

// RespondToInvitation resolves the caller's waiting invitation. Accepting
// atomically creates the membership row and flips the status; responding to
// an already-terminal invitation yields Conflict.
func (s *MembershipService) RespondToInvitation(ctx context.Context, caller models.Identity, req *models.InvitationAnswerRequest) error {
	if !s.authorizer.IsAuthenticated(caller) {
		return appErrors.ErrUnauthorized
	}
	if !authz.IsValidID(req.ClassroomID) {
		return invalidField(msgInvalidClassroomID)
	}
	if req.Answer != models.AnswerAccept && req.Answer != models.AnswerRefuse {
		return invalidField(msgInvalidAnswer)
	}

	// Look up regardless of status: a resolved invitation must answer with
	// Conflict, not NotFound.
	invitation, err := s.invitations.FindLatest(ctx, req.ClassroomID, caller.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Invitation not found")
		}
		return internalError(err)
	}
	if invitation.Status != models.InvitationWaiting {
		return appErrors.Clone(appErrors.ErrConflict, "Invitation already responded to")
	}

	switch req.Answer {
	case models.AnswerAccept:
		err = s.invitations.Accept(ctx, invitation)
	case models.AnswerRefuse:
		err = s.invitations.Refuse(ctx, invitation.ID)
	}
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyResolved) || errors.Is(err, repository.ErrDuplicate) {
			return appErrors.Clone(appErrors.ErrConflict, "Invitation already responded to")
		}
		return internalError(err)
	}

	s.metrics.RecordTransition("invitation", req.Answer)
	if req.Answer == models.AnswerAccept {
		s.notifier.MembershipGranted(ctx, invitation.ClassroomID, caller.UserID)
	}
	return nil
}

// SendJoinRequest creates a waiting join request from the caller.
func (s *MembershipService) SendJoinRequest(ctx context.Context, caller models.Identity, req *models.SendJoinRequestRequest) error {
	if !s.authorizer.IsAuthenticated(caller) {
		return appErrors.ErrUnauthorized
	}
	if !authz.IsValidID(req.ClassroomID) {
		return invalidField(msgInvalidClassroomID)
	}

	if _, err := s.members.FindMember(ctx, req.ClassroomID, caller.UserID); err == nil {
		return appErrors.Clone(appErrors.ErrConflict, "You are already a member of this classroom")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return internalError(err)
	}

	if _, err := s.joinRequests.FindWaiting(ctx, req.ClassroomID, caller.UserID); err == nil {
		return appErrors.Clone(appErrors.ErrConflict, "You already sent a join request to this classroom")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return internalError(err)
	}

	classroom, err := s.classrooms.FindByID(ctx, req.ClassroomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Classroom not found")
		}
		return internalError(err)
	}

	request := &models.ClassroomJoinRequest{
		ClassroomID:     req.ClassroomID,
		CandidateUserID: caller.UserID,
	}
	if err := s.joinRequests.Create(ctx, request); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return appErrors.Clone(appErrors.ErrConflict, "You already sent a join request to this classroom")
		}
		return internalError(err)
	}

	s.metrics.RecordTransition("join_request", "created")
	s.notifier.JoinRequestReceived(ctx, classroom, caller.UserID)
	return nil
}

// ResolveJoinRequest approves or denies a waiting join request. Only admins
// of the request's classroom may resolve it.
func (s *MembershipService) ResolveJoinRequest(ctx context.Context, caller models.Identity, req *models.JoinRequestAnswerRequest) error {
	if !s.authorizer.IsAuthenticated(caller) {
		return appErrors.ErrUnauthorized
	}
	if !authz.IsValidID(req.RequestID) {
		return invalidField(msgInvalidRequestID)
	}
	if req.Answer != models.AnswerApprove && req.Answer != models.AnswerDeny {
		return invalidField(msgInvalidAnswer)
	}

	request, err := s.joinRequests.FindByID(ctx, req.RequestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Join request not found")
		}
		return internalError(err)
	}

	if !s.authorizer.IsClassroomAdmin(ctx, caller, request.ClassroomID) {
		return appErrors.ErrForbidden
	}

	switch req.Answer {
	case models.AnswerApprove:
		err = s.joinRequests.Approve(ctx, request)
	case models.AnswerDeny:
		err = s.joinRequests.Deny(ctx, request.ID)
	}
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyResolved) || errors.Is(err, repository.ErrDuplicate) {
			return appErrors.Clone(appErrors.ErrConflict, "Join request already resolved")
		}
		return internalError(err)
	}

	s.metrics.RecordTransition("join_request", req.Answer)
	if req.Answer == models.AnswerApprove {
		s.notifier.MembershipGranted(ctx, request.ClassroomID, request.CandidateUserID)
	}
	return nil
}

// UserInvitations lists the caller's waiting invitations with classroom
// context. Self-only.
func (s *MembershipService) UserInvitations(ctx context.Context, caller models.Identity, userID string) ([]models.InvitationDetail, error) {
	if !s.authorizer.IsAuthenticated(caller) {
		return nil, appErrors.ErrUnauthorized
	}
	if !authz.IsValidID(userID) {
		return nil, invalidField(msgInvalidUserID)
	}
	if caller.UserID != userID {
		return nil, appErrors.ErrForbidden
	}

	invitations, err := s.invitations.ListWaitingByCandidate(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}
	if invitations == nil {
		invitations = []models.InvitationDetail{}
	}
	return invitations, nil
}
