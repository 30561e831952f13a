package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classtime/classtime-api/internal/models"
	"github.com/classtime/classtime-api/internal/service"
	appErrors "github.com/classtime/classtime-api/pkg/errors"
	"github.com/classtime/classtime-api/pkg/response"
)

// PostHandler wires HTTP endpoints to the post service.
type PostHandler struct {
	service *service.PostService
}

// NewPostHandler creates a new handler.
func NewPostHandler(svc *service.PostService) *PostHandler {
	return &PostHandler{service: svc}
}

// Create godoc
// @Summary Publish a post
// @Description Classroom members publish course content
// @Tags Posts
// @Accept json
// @Produce json
// @Param payload body models.CreatePostRequest true "Post payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /posts [post]
func (h *PostHandler) Create(c *gin.Context) {
	var req models.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "createPost", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid post payload"))
		return
	}

	post, err := h.service.CreatePost(c.Request.Context(), identityFromContext(c), &req)
	if err != nil {
		response.Error(c, "createPost", err)
		return
	}
	response.Created(c, gin.H{"post": post})
}

// Remove godoc
// @Summary Remove a post
// @Description Allowed for the post's creator and classroom admins
// @Tags Posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /posts/{id} [delete]
func (h *PostHandler) Remove(c *gin.Context) {
	if err := h.service.RemovePost(c.Request.Context(), identityFromContext(c), c.Param("id")); err != nil {
		response.Error(c, "removePost", err)
		return
	}
	response.OK(c, nil)
}

// Get godoc
// @Summary Get a post
// @Description Public posts are readable by anyone, private posts by members
// @Tags Posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /posts/{id} [get]
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.service.GetPost(c.Request.Context(), identityFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, "getPost", err)
		return
	}
	response.OK(c, gin.H{"post": post})
}

// ListByClassroom godoc
// @Summary List classroom posts
// @Tags Posts
// @Produce json
// @Param id path string true "Classroom ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /classrooms/{id}/posts [get]
func (h *PostHandler) ListByClassroom(c *gin.Context) {
	posts, err := h.service.ClassroomPosts(c.Request.Context(), identityFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, "classroomPosts", err)
		return
	}
	response.OK(c, gin.H{"posts": posts})
}
