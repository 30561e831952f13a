package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/classtime/classtime-api/internal/authz"
	"github.com/classtime/classtime-api/internal/middleware"
	"github.com/classtime/classtime-api/internal/models"
	"github.com/classtime/classtime-api/internal/service"
	"github.com/classtime/classtime-api/pkg/response"
)

const (
	testAdminID     = "7b8a1f2e-9c3d-4e5f-8a6b-0c1d2e3f4a5b"
	testCandidateID = "3f4e5d6c-7b8a-4c9d-8e0f-1a2b3c4d5e6f"
	testClassroomID = "1a2b3c4d-5e6f-4a8b-9c0d-1e2f3a4b5c6d"
)

// memberStoreStub serves both the authorizer and the workflow lookups. It
// reports the admin as an admin member and everyone else as a non-member.
type memberStoreStub struct{}

func (memberStoreStub) FindMember(_ context.Context, classroomID, userID string) (*models.ClassroomMember, error) {
	if classroomID == testClassroomID && userID == testAdminID {
		return &models.ClassroomMember{
			ClassroomID: classroomID,
			UserID:      userID,
			Role:        models.MemberRoleAdmin,
		}, nil
	}
	return nil, sql.ErrNoRows
}

type invitationStoreStub struct {
	waiting   *models.ClassroomInvitation
	created   *models.ClassroomInvitation
	createErr error
}

func (s *invitationStoreStub) FindWaiting(context.Context, string, string) (*models.ClassroomInvitation, error) {
	if s.waiting == nil {
		return nil, sql.ErrNoRows
	}
	return s.waiting, nil
}

func (s *invitationStoreStub) FindLatest(context.Context, string, string) (*models.ClassroomInvitation, error) {
	if s.waiting == nil {
		return nil, sql.ErrNoRows
	}
	return s.waiting, nil
}

func (s *invitationStoreStub) Create(_ context.Context, invitation *models.ClassroomInvitation) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = invitation
	return nil
}

func (s *invitationStoreStub) Accept(context.Context, *models.ClassroomInvitation) error { return nil }
func (s *invitationStoreStub) Refuse(context.Context, string) error                      { return nil }
func (s *invitationStoreStub) ListWaitingByCandidate(context.Context, string) ([]models.InvitationDetail, error) {
	return nil, nil
}

type joinRequestStoreStub struct{}

func (joinRequestStoreStub) FindByID(context.Context, string) (*models.ClassroomJoinRequest, error) {
	return nil, sql.ErrNoRows
}
func (joinRequestStoreStub) FindWaiting(context.Context, string, string) (*models.ClassroomJoinRequest, error) {
	return nil, sql.ErrNoRows
}
func (joinRequestStoreStub) Create(context.Context, *models.ClassroomJoinRequest) error { return nil }
func (joinRequestStoreStub) Approve(context.Context, *models.ClassroomJoinRequest) error {
	return nil
}
func (joinRequestStoreStub) Deny(context.Context, string) error { return nil }

type classroomLookupStub struct{}

func (classroomLookupStub) FindByID(context.Context, string) (*models.Classroom, error) {
	return &models.Classroom{ID: testClassroomID, Name: "Calculus"}, nil
}

type candidateStoreStub struct{}

func (candidateStoreStub) FindByIdent(context.Context, string) (*models.User, error) {
	return &models.User{ID: testCandidateID, Email: "bw@marvel.com"}, nil
}

func newMembershipHandler(invitations *invitationStoreStub) *MembershipHandler {
	members := memberStoreStub{}
	svc := service.NewMembershipService(
		invitations,
		joinRequestStoreStub{},
		members,
		classroomLookupStub{},
		candidateStoreStub{},
		authz.NewAuthorizer(members, zap.NewNop()),
		service.NewLogNotifier(zap.NewNop(), false),
		service.NewMetricsService(),
		validator.New(),
		zap.NewNop(),
	)
	return NewMembershipHandler(svc)
}

func postJSON(t *testing.T, path, body string, claims *models.JWTClaims) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return w, c
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: testAdminID, Email: "admin@example.com"}
}

func TestInviteHandlerCreatesInvitation(t *testing.T) {
	invitations := &invitationStoreStub{}
	h := newMembershipHandler(invitations)

	w, c := postJSON(t, "/invitations",
		`{"classroomId":"`+testClassroomID+`","candidateIdent":"bw@marvel.com"}`, adminClaims())
	h.Invite(c)

	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.True(t, envelope.Success)
	assert.Nil(t, envelope.Err)
	require.NotNil(t, invitations.created)
	assert.Equal(t, testCandidateID, invitations.created.CandidateUserID)
}

func TestInviteHandlerConflictEnvelope(t *testing.T) {
	invitations := &invitationStoreStub{
		waiting: &models.ClassroomInvitation{
			ClassroomID:     testClassroomID,
			CandidateUserID: testCandidateID,
			Status:          models.InvitationWaiting,
		},
	}
	h := newMembershipHandler(invitations)

	w, c := postJSON(t, "/invitations",
		`{"classroomId":"`+testClassroomID+`","candidateIdent":"bw@marvel.com"}`, adminClaims())
	h.Invite(c)

	require.Equal(t, http.StatusConflict, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Err)
	assert.Equal(t, "inviteUser", envelope.Err.Name)
	assert.Equal(t, "A given candidate already received an invitation", envelope.Err.Message)
}

func TestInviteHandlerUnauthenticated(t *testing.T) {
	h := newMembershipHandler(&invitationStoreStub{})

	w, c := postJSON(t, "/invitations",
		`{"classroomId":"`+testClassroomID+`","candidateIdent":"bw@marvel.com"}`, nil)
	h.Invite(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Err)
	assert.Equal(t, "inviteUser", envelope.Err.Name)
	assert.Equal(t, "Authentication Required", envelope.Err.Message)
}

func TestInviteHandlerNonAdminForbidden(t *testing.T) {
	h := newMembershipHandler(&invitationStoreStub{})

	w, c := postJSON(t, "/invitations",
		`{"classroomId":"`+testClassroomID+`","candidateIdent":"bw@marvel.com"}`,
		&models.JWTClaims{UserID: testCandidateID, Email: "bw@marvel.com"})
	h.Invite(c)

	require.Equal(t, http.StatusForbidden, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Err)
	assert.Equal(t, "Permission Denied", envelope.Err.Message)
}

func TestInviteHandlerMalformedBody(t *testing.T) {
	h := newMembershipHandler(&invitationStoreStub{})

	w, c := postJSON(t, "/invitations", `{"classroomId":`, adminClaims())
	h.Invite(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInviteHandlerStoreErrorMasked(t *testing.T) {
	invitations := &invitationStoreStub{createErr: errors.New("pq: connection reset")}
	h := newMembershipHandler(invitations)

	w, c := postJSON(t, "/invitations",
		`{"classroomId":"`+testClassroomID+`","candidateIdent":"bw@marvel.com"}`, adminClaims())
	h.Invite(c)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Err)
	assert.Equal(t, "Server Error", envelope.Err.Message)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestRespondHandlerBadAnswer(t *testing.T) {
	h := newMembershipHandler(&invitationStoreStub{})

	w, c := postJSON(t, "/invitations/respond",
		`{"classroomId":"`+testClassroomID+`","answer":"maybe"}`, adminClaims())
	h.Respond(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Err)
	assert.Equal(t, "respondToClassroomInvitation", envelope.Err.Name)
	assert.Equal(t, "Answer invalid or not specified", envelope.Err.Message)
}
