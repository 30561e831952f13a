package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classtime/classtime-api/internal/models"
	"github.com/classtime/classtime-api/internal/service"
	appErrors "github.com/classtime/classtime-api/pkg/errors"
	"github.com/classtime/classtime-api/pkg/response"
)

// MembershipHandler wires HTTP endpoints to the membership workflows.
type MembershipHandler struct {
	service *service.MembershipService
}

// NewMembershipHandler creates a new handler.
func NewMembershipHandler(svc *service.MembershipService) *MembershipHandler {
	return &MembershipHandler{service: svc}
}

// Invite godoc
// @Summary Invite a candidate to a classroom
// @Description Classroom admins invite a candidate by email or username
// @Tags Membership
// @Accept json
// @Produce json
// @Param payload body models.InviteUserRequest true "Invitation payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /invitations [post]
func (h *MembershipHandler) Invite(c *gin.Context) {
	var req models.InviteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "inviteUser", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid invitation payload"))
		return
	}

	if err := h.service.InviteUser(c.Request.Context(), identityFromContext(c), &req); err != nil {
		response.Error(c, "inviteUser", err)
		return
	}
	response.OK(c, nil)
}

// Respond godoc
// @Summary Respond to a classroom invitation
// @Description Accept or refuse the caller's waiting invitation
// @Tags Membership
// @Accept json
// @Produce json
// @Param payload body models.InvitationAnswerRequest true "Answer payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /invitations/respond [post]
func (h *MembershipHandler) Respond(c *gin.Context) {
	var req models.InvitationAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "respondToClassroomInvitation", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid answer payload"))
		return
	}

	if err := h.service.RespondToInvitation(c.Request.Context(), identityFromContext(c), &req); err != nil {
		response.Error(c, "respondToClassroomInvitation", err)
		return
	}
	response.OK(c, nil)
}

// SendJoinRequest godoc
// @Summary Request to join a classroom
// @Tags Membership
// @Accept json
// @Produce json
// @Param payload body models.SendJoinRequestRequest true "Join request payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /join-requests [post]
func (h *MembershipHandler) SendJoinRequest(c *gin.Context) {
	var req models.SendJoinRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "sendClassroomJoinRequest", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid join request payload"))
		return
	}

	if err := h.service.SendJoinRequest(c.Request.Context(), identityFromContext(c), &req); err != nil {
		response.Error(c, "sendClassroomJoinRequest", err)
		return
	}
	response.OK(c, nil)
}

// ResolveJoinRequest godoc
// @Summary Resolve a classroom join request
// @Description Classroom admins approve or deny a waiting join request
// @Tags Membership
// @Accept json
// @Produce json
// @Param payload body models.JoinRequestAnswerRequest true "Resolution payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /join-requests/resolve [post]
func (h *MembershipHandler) ResolveJoinRequest(c *gin.Context) {
	var req models.JoinRequestAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "resolveClassroomJoinRequest", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid resolution payload"))
		return
	}

	if err := h.service.ResolveJoinRequest(c.Request.Context(), identityFromContext(c), &req); err != nil {
		response.Error(c, "resolveClassroomJoinRequest", err)
		return
	}
	response.OK(c, nil)
}
