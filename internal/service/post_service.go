package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classtime/classtime-api/internal/authz"
	"github.com/classtime/classtime-api/internal/models"
	"github.com/classtime/classtime-api/pkg/config"
	appErrors "github.com/classtime/classtime-api/pkg/errors"
)

// PostStore persists course content posts.
type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id string) (*models.Post, error)
	ListByClassroom(ctx context.Context, classroomID string) ([]models.Post, error)
	Delete(ctx context.Context, id string) error
}

// PostService serves post creation, removal and reads.
type PostService struct {
	posts      PostStore
	cache      *CacheService
	authorizer Authorizer
	validate   *validator.Validate
	cacheCfg   config.CacheConfig
	logger     *zap.Logger
}

// NewPostService constructs a PostService.
func NewPostService(posts PostStore, cache *CacheService, authorizer Authorizer, validate *validator.Validate, cacheCfg config.CacheConfig, logger *zap.Logger) *PostService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostService{posts: posts, cache: cache, authorizer: authorizer, validate: validate, cacheCfg: cacheCfg, logger: logger}
}

func classroomPostsKey(classroomID string) string {
	return fmt.Sprintf("classroom:posts:%s", classroomID)
}

// CreatePost publishes content into a classroom. Member-only.
func (s *PostService) CreatePost(ctx context.Context, caller models.Identity, req *models.CreatePostRequest) (*models.Post, error) {
	if !s.authorizer.IsAuthenticated(caller) {
		return nil, appErrors.ErrUnauthorized
	}
	if !authz.IsValidID(req.ClassroomID) {
		return nil, invalidField(msgInvalidClassroomID)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, failValidation(err)
	}
	if !s.authorizer.IsClassroomMember(ctx, caller, req.ClassroomID) {
		return nil, appErrors.ErrForbidden
	}

	post := &models.Post{
		ClassroomID: req.ClassroomID,
		CreatorID:   caller.UserID,
		Title:       req.Title,
		Recipe:      req.Recipe,
		IsPublic:    req.IsPublic,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, internalError(err)
	}

	s.invalidateClassroomCaches(ctx, req.ClassroomID)
	return post, nil
}

// RemovePost deletes a post. Allowed for the post's creator and for admins
// of its classroom.
func (s *PostService) RemovePost(ctx context.Context, caller models.Identity, postID string) error {
	if !s.authorizer.IsAuthenticated(caller) {
		return appErrors.ErrUnauthorized
	}
	if !authz.IsValidID(postID) {
		return invalidField(msgInvalidPostID)
	}

	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Post not found")
		}
		return internalError(err)
	}

	if post.CreatorID != caller.UserID && !s.authorizer.IsClassroomAdmin(ctx, caller, post.ClassroomID) {
		return appErrors.ErrForbidden
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return internalError(err)
	}

	s.invalidateClassroomCaches(ctx, post.ClassroomID)
	return nil
}

// ClassroomPosts lists a classroom's posts. Member-only.
func (s *PostService) ClassroomPosts(ctx context.Context, caller models.Identity, classroomID string) ([]models.Post, error) {
	if !authz.IsValidID(classroomID) {
		return nil, invalidField(msgInvalidClassroomID)
	}
	if !s.authorizer.IsClassroomMember(ctx, caller, classroomID) {
		return nil, appErrors.ErrForbidden
	}

	var posts []models.Post
	hit, _ := s.cache.Get(ctx, classroomPostsKey(classroomID), &posts)
	if !hit {
		loaded, err := s.posts.ListByClassroom(ctx, classroomID)
		if err != nil {
			return nil, internalError(err)
		}
		posts = loaded
		_ = s.cache.Set(ctx, classroomPostsKey(classroomID), posts, s.cacheCfg.PostTTL)
	}

	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

// GetPost returns a single post. Public posts are readable by anyone;
// private posts require classroom membership.
func (s *PostService) GetPost(ctx context.Context, caller models.Identity, postID string) (*models.Post, error) {
	if !authz.IsValidID(postID) {
		return nil, invalidField(msgInvalidPostID)
	}

	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Post not found")
		}
		return nil, internalError(err)
	}

	if !post.IsPublic && !s.authorizer.IsClassroomMember(ctx, caller, post.ClassroomID) {
		return nil, appErrors.ErrForbidden
	}

	return post, nil
}

func (s *PostService) invalidateClassroomCaches(ctx context.Context, classroomID string) {
	_ = s.cache.Invalidate(ctx, classroomPostsKey(classroomID))
	_ = s.cache.Invalidate(ctx, classroomProfileKey(classroomID))
}
