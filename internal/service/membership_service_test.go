package service

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/classtime/classtime-api/internal/models"
	"github.com/classtime/classtime-api/internal/repository"
	appErrors "github.com/classtime/classtime-api/pkg/errors"
)

const (
	testUserID      = "7b8a1f2e-9c3d-4e5f-8a6b-0c1d2e3f4a5b"
	testCandidateID = "3f4e5d6c-7b8a-4c9d-8e0f-1a2b3c4d5e6f"
	testClassroomID = "1a2b3c4d-5e6f-4a8b-9c0d-1e2f3a4b5c6d"
	testRequestID   = "9c8b7a6d-5e4f-4d3c-8b2a-1f0e9d8c7b6a"
)

type stubAuthz struct {
	authed bool
	member bool
	admin  bool
}

func (s stubAuthz) IsAuthenticated(models.Identity) bool { return s.authed }
func (s stubAuthz) IsClassroomMember(context.Context, models.Identity, string) bool {
	return s.member
}
func (s stubAuthz) IsClassroomAdmin(context.Context, models.Identity, string) bool {
	return s.admin
}

type stubInvitationStore struct {
	waiting   *models.ClassroomInvitation
	created   *models.ClassroomInvitation
	createErr error
	acceptErr error
	refuseErr error
	accepted  bool
	refused   bool
	list      []models.InvitationDetail
}

func (s *stubInvitationStore) FindWaiting(context.Context, string, string) (*models.ClassroomInvitation, error) {
	if s.waiting == nil || s.waiting.Status != models.InvitationWaiting {
		return nil, sql.ErrNoRows
	}
	return s.waiting, nil
}

func (s *stubInvitationStore) FindLatest(context.Context, string, string) (*models.ClassroomInvitation, error) {
	if s.waiting == nil {
		return nil, sql.ErrNoRows
	}
	return s.waiting, nil
}

func (s *stubInvitationStore) Create(_ context.Context, invitation *models.ClassroomInvitation) error {
	if s.createErr != nil {
		return s.createErr
	}
	invitation.Status = models.InvitationWaiting
	s.created = invitation
	return nil
}

func (s *stubInvitationStore) Accept(_ context.Context, invitation *models.ClassroomInvitation) error {
	if s.acceptErr != nil {
		return s.acceptErr
	}
	if invitation.Status != models.InvitationWaiting {
		return repository.ErrAlreadyResolved
	}
	invitation.Status = models.InvitationAccepted
	s.accepted = true
	return nil
}

func (s *stubInvitationStore) Refuse(_ context.Context, id string) error {
	if s.refuseErr != nil {
		return s.refuseErr
	}
	if s.waiting != nil && s.waiting.ID == id && s.waiting.Status != models.InvitationWaiting {
		return repository.ErrAlreadyResolved
	}
	if s.waiting != nil && s.waiting.ID == id {
		s.waiting.Status = models.InvitationRefused
	}
	s.refused = true
	return nil
}

func (s *stubInvitationStore) ListWaitingByCandidate(context.Context, string) ([]models.InvitationDetail, error) {
	return s.list, nil
}

type stubJoinRequestStore struct {
	byID       *models.ClassroomJoinRequest
	waiting    *models.ClassroomJoinRequest
	created    *models.ClassroomJoinRequest
	approveErr error
	denyErr    error
	approved   bool
	denied     bool
}

func (s *stubJoinRequestStore) FindByID(context.Context, string) (*models.ClassroomJoinRequest, error) {
	if s.byID == nil {
		return nil, sql.ErrNoRows
	}
	return s.byID, nil
}

func (s *stubJoinRequestStore) FindWaiting(context.Context, string, string) (*models.ClassroomJoinRequest, error) {
	if s.waiting == nil {
		return nil, sql.ErrNoRows
	}
	return s.waiting, nil
}

func (s *stubJoinRequestStore) Create(_ context.Context, request *models.ClassroomJoinRequest) error {
	request.Status = models.JoinRequestWaiting
	s.created = request
	return nil
}

func (s *stubJoinRequestStore) Approve(context.Context, *models.ClassroomJoinRequest) error {
	if s.approveErr != nil {
		return s.approveErr
	}
	s.approved = true
	return nil
}

func (s *stubJoinRequestStore) Deny(context.Context, string) error {
	if s.denyErr != nil {
		return s.denyErr
	}
	s.denied = true
	return nil
}

type stubMemberLookup struct {
	member *models.ClassroomMember
}

func (s *stubMemberLookup) FindMember(context.Context, string, string) (*models.ClassroomMember, error) {
	if s.member == nil {
		return nil, sql.ErrNoRows
	}
	return s.member, nil
}

type stubClassroomLookup struct {
	classroom *models.Classroom
}

func (s *stubClassroomLookup) FindByID(context.Context, string) (*models.Classroom, error) {
	if s.classroom == nil {
		return nil, sql.ErrNoRows
	}
	return s.classroom, nil
}

type stubCandidateStore struct {
	user *models.User
}

func (s *stubCandidateStore) FindByIdent(context.Context, string) (*models.User, error) {
	if s.user == nil {
		return nil, sql.ErrNoRows
	}
	return s.user, nil
}

type membershipFixture struct {
	invitations  *stubInvitationStore
	joinRequests *stubJoinRequestStore
	members      *stubMemberLookup
	classrooms   *stubClassroomLookup
	users        *stubCandidateStore
}

func newMembershipService(authorizer Authorizer, fx *membershipFixture) *MembershipService {
	return NewMembershipService(
		fx.invitations,
		fx.joinRequests,
		fx.members,
		fx.classrooms,
		fx.users,
		authorizer,
		NewLogNotifier(zap.NewNop(), false),
		NewMetricsService(),
		validator.New(),
		zap.NewNop(),
	)
}

func newMembershipFixture() *membershipFixture {
	return &membershipFixture{
		invitations:  &stubInvitationStore{},
		joinRequests: &stubJoinRequestStore{},
		members:      &stubMemberLookup{},
		classrooms:   &stubClassroomLookup{classroom: &models.Classroom{ID: testClassroomID, Name: "Calculus"}},
		users:        &stubCandidateStore{user: &models.User{ID: testCandidateID, Email: "bw@marvel.com"}},
	}
}

func caller() models.Identity {
	return models.Identity{UserID: testUserID, Email: "admin@example.com"}
}

func TestInviteUserCreatesWaitingInvitation(t *testing.T) {
	fx := newMembershipFixture()
	svc := newMembershipService(stubAuthz{authed: true, member: true, admin: true}, fx)

	err := svc.InviteUser(context.Background(), caller(), &models.InviteUserRequest{
		ClassroomID:    testClassroomID,
		CandidateIdent: "bw@marvel.com",
	})
	require.NoError(t, err)
	require.NotNil(t, fx.invitations.created)
	assert.Equal(t, models.InvitationWaiting, fx.invitations.created.Status)
	assert.Equal(t, testCandidateID, fx.invitations.created.CandidateUserID)
}

func TestInviteUserSecondInviteConflicts(t *testing.T) {
	fx := newMembershipFixture()
	fx.invitations.waiting = &models.ClassroomInvitation{
		ID:              "existing",
		ClassroomID:     testClassroomID,
		CandidateUserID: testCandidateID,
		Status:          models.InvitationWaiting,
	}
	svc := newMembershipService(stubAuthz{authed: true, member: true, admin: true}, fx)

	err := svc.InviteUser(context.Background(), caller(), &models.InviteUserRequest{
		ClassroomID:    testClassroomID,
		CandidateIdent: "bw@marvel.com",
	})
	require.Error(t, err)
	e := appErrors.FromError(err)
	assert.Equal(t, http.StatusConflict, e.Status)
	assert.Equal(t, "A given candidate already received an invitation", e.Message)
	assert.Nil(t, fx.invitations.created)
}

func TestInviteUserByNonAdminMemberForbidden(t *testing.T) {
	fx := newMembershipFixture()
	svc := newMembershipService(stubAuthz{authed: true, member: true, admin: false}, fx)

	err := svc.InviteUser(context.Background(), caller(), &models.InviteUserRequest{
		ClassroomID:    testClassroomID,
		CandidateIdent: "bw@marvel.com",
	})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Nil(t, fx.invitations.created)
}

func TestInviteUserCandidateAlreadyMember(t *testing.T) {
	fx := newMembershipFixture()
	fx.members.member = &models.ClassroomMember{ClassroomID: testClassroomID, UserID: testCandidateID}
	svc := newMembershipService(stubAuthz{authed: true, member: true, admin: true}, fx)

	err := svc.InviteUser(context.Background(), caller(), &models.InviteUserRequest{
		ClassroomID:    testClassroomID,
		CandidateIdent: "bw@marvel.com",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, appErrors.FromError(err).Status)
}

func TestInviteUserUnknownCandidateNotFound(t *testing.T) {
	fx := newMembershipFixture()
	fx.users.user = nil
	svc := newMembershipService(stubAuthz{authed: true, member: true, admin: true}, fx)

	err := svc.InviteUser(context.Background(), caller(), &models.InviteUserRequest{
		ClassroomID:    testClassroomID,
		CandidateIdent: "ghost@example.com",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestInviteUserMalformedClassroomID(t *testing.T) {
	fx := newMembershipFixture()
	svc := newMembershipService(stubAuthz{authed: true, member: true, admin: true}, fx)

	err := svc.InviteUser(context.Background(), caller(), &models.InviteUserRequest{
		ClassroomID:    "not-a-uuid",
		CandidateIdent: "bw@marvel.com",
	})
	require.Error(t, err)
	e := appErrors.FromError(err)
	assert.Equal(t, http.StatusBadRequest, e.Status)
	assert.Equal(t, "Classroom ID invalid or not specified", e.Message)
}

func TestRespondToInvitationAcceptCreatesMembership(t *testing.T) {
	fx := newMembershipFixture()
	fx.invitations.waiting = &models.ClassroomInvitation{
		ID:              "i1",
		ClassroomID:     testClassroomID,
		CandidateUserID: testUserID,
		Status:          models.InvitationWaiting,
	}
	svc := newMembershipService(stubAuthz{authed: true}, fx)

	err := svc.RespondToInvitation(context.Background(), caller(), &models.InvitationAnswerRequest{
		ClassroomID: testClassroomID,
		Answer:      models.AnswerAccept,
	})
	require.NoError(t, err)
	assert.True(t, fx.invitations.accepted)
}

func TestRespondToInvitationTwiceConflicts(t *testing.T) {
	fx := newMembershipFixture()
	fx.invitations.waiting = &models.ClassroomInvitation{
		ID:              "i1",
		ClassroomID:     testClassroomID,
		CandidateUserID: testUserID,
		Status:          models.InvitationWaiting,
	}
	svc := newMembershipService(stubAuthz{authed: true}, fx)

	first := svc.RespondToInvitation(context.Background(), caller(), &models.InvitationAnswerRequest{
		ClassroomID: testClassroomID,
		Answer:      models.AnswerAccept,
	})
	require.NoError(t, first)
	require.True(t, fx.invitations.accepted)

	// The invitation is now terminal; a second response of either kind is a
	// Conflict, never NotFound.
	for _, answer := range []string{models.AnswerAccept, models.AnswerRefuse} {
		err := svc.RespondToInvitation(context.Background(), caller(), &models.InvitationAnswerRequest{
			ClassroomID: testClassroomID,
			Answer:      answer,
		})
		require.Error(t, err)
		e := appErrors.FromError(err)
		assert.Equal(t, http.StatusConflict, e.Status)
		assert.Equal(t, "Invitation already responded to", e.Message)
	}
}

func TestRespondToInvitationConcurrentResolveConflicts(t *testing.T) {
	fx := newMembershipFixture()
	fx.invitations.waiting = &models.ClassroomInvitation{
		ID:              "i1",
		ClassroomID:     testClassroomID,
		CandidateUserID: testUserID,
		Status:          models.InvitationWaiting,
	}
	// The guarded update loses the race after the lookup saw 'waiting'.
	fx.invitations.acceptErr = repository.ErrAlreadyResolved
	svc := newMembershipService(stubAuthz{authed: true}, fx)

	err := svc.RespondToInvitation(context.Background(), caller(), &models.InvitationAnswerRequest{
		ClassroomID: testClassroomID,
		Answer:      models.AnswerAccept,
	})
	require.Error(t, err)
	e := appErrors.FromError(err)
	assert.Equal(t, http.StatusConflict, e.Status)
	assert.Equal(t, "Invitation already responded to", e.Message)
}

func TestRespondToInvitationMissingNotFound(t *testing.T) {
	fx := newMembershipFixture()
	svc := newMembershipService(stubAuthz{authed: true}, fx)

	err := svc.RespondToInvitation(context.Background(), caller(), &models.InvitationAnswerRequest{
		ClassroomID: testClassroomID,
		Answer:      models.AnswerRefuse,
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestRespondToInvitationBadAnswer(t *testing.T) {
	fx := newMembershipFixture()
	svc := newMembershipService(stubAuthz{authed: true}, fx)

	err := svc.RespondToInvitation(context.Background(), caller(), &models.InvitationAnswerRequest{
		ClassroomID: testClassroomID,
		Answer:      "maybe",
	})
	require.Error(t, err)
	e := appErrors.FromError(err)
	assert.Equal(t, http.StatusBadRequest, e.Status)
	assert.Equal(t, "Answer invalid or not specified", e.Message)
}

func TestSendJoinRequestCreatesWaitingRequest(t *testing.T) {
	fx := newMembershipFixture()
	svc := newMembershipService(stubAuthz{authed: true}, fx)

	err := svc.SendJoinRequest(context.Background(), caller(), &models.SendJoinRequestRequest{ClassroomID: testClassroomID})
	require.NoError(t, err)
	require.NotNil(t, fx.joinRequests.created)
	assert.Equal(t, models.JoinRequestWaiting, fx.joinRequests.created.Status)
	assert.Equal(t, testUserID, fx.joinRequests.created.CandidateUserID)
}

func TestSendJoinRequestAlreadyMemberConflict(t *testing.T) {
	fx := newMembershipFixture()
	fx.members.member = &models.ClassroomMember{ClassroomID: testClassroomID, UserID: testUserID}
	svc := newMembershipService(stubAuthz{authed: true}, fx)

	err := svc.SendJoinRequest(context.Background(), caller(), &models.SendJoinRequestRequest{ClassroomID: testClassroomID})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, appErrors.FromError(err).Status)
}

func TestSendJoinRequestClassroomMissingNotFound(t *testing.T) {
	fx := newMembershipFixture()
	fx.classrooms.classroom = nil
	svc := newMembershipService(stubAuthz{authed: true}, fx)

	err := svc.SendJoinRequest(context.Background(), caller(), &models.SendJoinRequestRequest{ClassroomID: testClassroomID})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestResolveJoinRequestApproveByAdmin(t *testing.T) {
	fx := newMembershipFixture()
	fx.joinRequests.byID = &models.ClassroomJoinRequest{
		ID:              testRequestID,
		ClassroomID:     testClassroomID,
		CandidateUserID: testCandidateID,
		Status:          models.JoinRequestWaiting,
	}
	svc := newMembershipService(stubAuthz{authed: true, member: true, admin: true}, fx)

	err := svc.ResolveJoinRequest(context.Background(), caller(), &models.JoinRequestAnswerRequest{
		RequestID: testRequestID,
		Answer:    models.AnswerApprove,
	})
	require.NoError(t, err)
	assert.True(t, fx.joinRequests.approved)
}

func TestResolveJoinRequestNonAdminForbidden(t *testing.T) {
	fx := newMembershipFixture()
	fx.joinRequests.byID = &models.ClassroomJoinRequest{
		ID:          testRequestID,
		ClassroomID: testClassroomID,
	}
	svc := newMembershipService(stubAuthz{authed: true, member: true, admin: false}, fx)

	err := svc.ResolveJoinRequest(context.Background(), caller(), &models.JoinRequestAnswerRequest{
		RequestID: testRequestID,
		Answer:    models.AnswerDeny,
	})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.False(t, fx.joinRequests.denied)
}

func TestResolveJoinRequestTerminalConflicts(t *testing.T) {
	fx := newMembershipFixture()
	fx.joinRequests.byID = &models.ClassroomJoinRequest{
		ID:          testRequestID,
		ClassroomID: testClassroomID,
		Status:      models.JoinRequestApproved,
	}
	fx.joinRequests.approveErr = repository.ErrAlreadyResolved
	svc := newMembershipService(stubAuthz{authed: true, member: true, admin: true}, fx)

	err := svc.ResolveJoinRequest(context.Background(), caller(), &models.JoinRequestAnswerRequest{
		RequestID: testRequestID,
		Answer:    models.AnswerApprove,
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, appErrors.FromError(err).Status)
}

func TestUserInvitationsSelfOnly(t *testing.T) {
	fx := newMembershipFixture()
	fx.invitations.list = []models.InvitationDetail{{ClassroomName: "Calculus"}}
	svc := newMembershipService(stubAuthz{authed: true}, fx)

	invitations, err := svc.UserInvitations(context.Background(), caller(), testUserID)
	require.NoError(t, err)
	assert.Len(t, invitations, 1)

	_, err = svc.UserInvitations(context.Background(), caller(), testCandidateID)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}
