package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classtime/classtime-api/internal/models"
	"github.com/classtime/classtime-api/internal/service"
	appErrors "github.com/classtime/classtime-api/pkg/errors"
	"github.com/classtime/classtime-api/pkg/response"
)

// ClassroomHandler wires HTTP endpoints to the classroom service.
type ClassroomHandler struct {
	service *service.ClassroomService
}

// NewClassroomHandler creates a new handler.
func NewClassroomHandler(svc *service.ClassroomService) *ClassroomHandler {
	return &ClassroomHandler{service: svc}
}

// Create godoc
// @Summary Create a classroom
// @Description Open a classroom with the caller as its first admin
// @Tags Classrooms
// @Accept json
// @Produce json
// @Param payload body models.CreateClassroomRequest true "Classroom payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /classrooms [post]
func (h *ClassroomHandler) Create(c *gin.Context) {
	var req models.CreateClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "createClassroom", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid classroom payload"))
		return
	}

	classroom, err := h.service.CreateClassroom(c.Request.Context(), identityFromContext(c), &req)
	if err != nil {
		response.Error(c, "createClassroom", err)
		return
	}
	response.Created(c, gin.H{"classroomId": classroom.ID, "classroom": classroom})
}

// Profile godoc
// @Summary Get classroom profile
// @Description Public classroom view with the caller's membership flag
// @Tags Classrooms
// @Produce json
// @Param id path string true "Classroom ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classrooms/{id} [get]
func (h *ClassroomHandler) Profile(c *gin.Context) {
	profile, err := h.service.Profile(c.Request.Context(), identityFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, "classroomProfile", err)
		return
	}
	response.OK(c, gin.H{
		"classroom": profile.Classroom,
		"creator":   profile.Creator,
		"posts":     profile.Posts,
		"isMember":  profile.IsMember,
	})
}

// Members godoc
// @Summary List classroom members
// @Tags Classrooms
// @Produce json
// @Param id path string true "Classroom ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /classrooms/{id}/members [get]
func (h *ClassroomHandler) Members(c *gin.Context) {
	members, err := h.service.Members(c.Request.Context(), identityFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, "classroomMembers", err)
		return
	}
	response.OK(c, gin.H{"members": members})
}

// ExportRoster godoc
// @Summary Export classroom roster
// @Description Download the roster as CSV or PDF
// @Tags Classrooms
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Classroom ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /classrooms/{id}/roster [get]
func (h *ClassroomHandler) ExportRoster(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	data, contentType, err := h.service.ExportRoster(c.Request.Context(), identityFromContext(c), c.Param("id"), format)
	if err != nil {
		response.Error(c, "exportRoster", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=roster.%s", format))
	c.Data(http.StatusOK, contentType, data)
}
