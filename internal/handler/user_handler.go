package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classtime/classtime-api/internal/models"
	"github.com/classtime/classtime-api/internal/service"
	appErrors "github.com/classtime/classtime-api/pkg/errors"
	"github.com/classtime/classtime-api/pkg/response"
)

// UserHandler wires HTTP endpoints to the user service.
type UserHandler struct {
	users       *service.UserService
	memberships *service.MembershipService
	classrooms  *service.ClassroomService
}

// NewUserHandler creates a new handler.
func NewUserHandler(users *service.UserService, memberships *service.MembershipService, classrooms *service.ClassroomService) *UserHandler {
	return &UserHandler{users: users, memberships: memberships, classrooms: classrooms}
}

// Profile godoc
// @Summary Get user profile
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *UserHandler) Profile(c *gin.Context) {
	user, err := h.users.Profile(c.Request.Context(), identityFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, "userProfile", err)
		return
	}
	response.OK(c, gin.H{"user": user})
}

// EditProfile godoc
// @Summary Edit own profile
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body models.EditProfileRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /users/me [put]
func (h *UserHandler) EditProfile(c *gin.Context) {
	var req models.EditProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "editProfile", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}

	user, err := h.users.EditProfile(c.Request.Context(), identityFromContext(c), &req)
	if err != nil {
		response.Error(c, "editProfile", err)
		return
	}
	response.OK(c, gin.H{"user": user})
}

// Classrooms godoc
// @Summary List a user's classrooms
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /users/{id}/classrooms [get]
func (h *UserHandler) Classrooms(c *gin.Context) {
	classrooms, err := h.classrooms.UserClassrooms(c.Request.Context(), identityFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, "userClassrooms", err)
		return
	}
	response.OK(c, gin.H{"classrooms": classrooms})
}

// Invitations godoc
// @Summary List a user's waiting invitations
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /users/{id}/invitations [get]
func (h *UserHandler) Invitations(c *gin.Context) {
	invitations, err := h.memberships.UserInvitations(c.Request.Context(), identityFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, "userClassroomInvitations", err)
		return
	}
	response.OK(c, gin.H{"invitations": invitations})
}
